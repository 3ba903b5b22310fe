package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newConditionsCmd() *cobra.Command {
	var (
		modelFile   string
		targetClass int
		onlyPure    bool
	)

	cmd := &cobra.Command{
		Use:   "conditions",
		Short: "Extract the conjunctive conditions for one class from a fitted model",
		RunE: func(cmd *cobra.Command, args []string) error {
			mf, err := os.Open(modelFile)
			if err != nil {
				return errors.Wrapf(err, "opening model %s", modelFile)
			}
			defer mf.Close()

			m, err := loadModel(mf)
			if err != nil {
				return err
			}

			conds, err := m.tr.Conditions(targetClass, onlyPure)
			if err != nil {
				return errors.Wrap(err, "extracting conditions")
			}

			reportConditions(cmd.OutOrStdout(), conds)
			return nil
		},
	}

	cmd.Flags().StringVar(&modelFile, "model", "ambitree.model", "fitted model file")
	cmd.Flags().IntVar(&targetClass, "class", 0, "target class, as a label value from the training data")
	cmd.Flags().BoolVar(&onlyPure, "only-pure", false, "restrict to pure leaves")

	return cmd
}
