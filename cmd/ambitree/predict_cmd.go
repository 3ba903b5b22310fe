package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/wlattner/ambitree/internal/datasource"
	"github.com/wlattner/ambitree/tree"
)

func newPredictCmd() *cobra.Command {
	var (
		dataFile      string
		dbFile        string
		dbTable       string
		modelFile     string
		outFile       string
		predChoice    string
		decodeClasses bool
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict class labels for a CSV dataset using a fitted model",
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

			var ds *datasource.Dataset
			switch {
			case dataFile != "" && dbFile != "":
				return errors.New("--data and --db are mutually exclusive")
			case dbFile != "":
				if dbTable == "" {
					return errors.New("--table is required with --db")
				}
				ds, err = datasource.LoadSQLite(dbFile, dbTable, "", false)
				if err != nil {
					return errors.Wrap(err, "parsing data")
				}
			case dataFile != "":
				f, openErr := os.Open(dataFile)
				if openErr != nil {
					return errors.Wrapf(openErr, "opening %s", dataFile)
				}
				defer f.Close()

				ds, err = datasource.LoadCSV(f, false)
				if err != nil {
					return errors.Wrap(err, "parsing data")
				}
			default:
				return errors.New("one of --data or --db is required")
			}

			opt := fitOptions{PredChoice: predChoice}
			cfg, err := opt.toConfig()
			if err != nil {
				return err
			}

			pred, err := m.tr.Predict(ds.XBin, ds.XCont, ds.Missing, tree.PredictConfig{
				PositiveClass: m.PositiveClass,
				PredChoice:    cfg.PredChoice,
				DecodeClasses: decodeClasses,
			})
			if err != nil {
				return errors.Wrap(err, "predicting")
			}

			out, err := os.Create(outFile)
			if err != nil {
				return errors.Wrapf(err, "creating %s", outFile)
			}
			defer out.Close()

			w := bufio.NewWriter(out)
			for _, p := range pred {
				fmt.Fprintln(w, strconv.Itoa(p))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&dataFile, "data", "", "csv file with rows to predict")
	cmd.Flags().StringVar(&dbFile, "db", "", "sqlite database file with rows to predict, alternative to --data")
	cmd.Flags().StringVar(&dbTable, "table", "", "table name to read rows to predict from, required with --db")
	cmd.Flags().StringVar(&modelFile, "model", "ambitree.model", "fitted model file")
	cmd.Flags().StringVar(&outFile, "out", "predictions.csv", "output file for predictions")
	cmd.Flags().StringVar(&predChoice, "pred-choice", "majority", "majority, pure_majority, majority_general, or pure_majority_general")
	cmd.Flags().BoolVar(&decodeClasses, "decode-classes", true, "decode compressed class ids back to the original training labels")

	return cmd
}
