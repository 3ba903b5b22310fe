package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ambitree",
		Short: "Grow and query ambiguity/decision trees for multiclass classification",
	}

	root.AddCommand(newFitCmd())
	root.AddCommand(newPredictCmd())
	root.AddCommand(newConditionsCmd())

	return root
}
