package main

import (
	"os"
	"time"

	"github.com/davecheney/profile"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/wlattner/ambitree/internal/datasource"
	"github.com/wlattner/ambitree/tree"
)

func newFitCmd() *cobra.Command {
	var (
		dataFile      string
		dbFile        string
		dbTable       string
		labelCol      string
		modelFile     string
		configFile    string
		criterion     string
		splitChoice   string
		sepNaN        bool
		cacheNodes    bool
		positiveClass int
		runProfile    bool
	)

	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit an ambiguity tree from a CSV training file",
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg tree.Config
			if configFile != "" {
				opt, err := loadFitOptions(configFile)
				if err != nil {
					return err
				}
				cfg, err = opt.toConfig()
				if err != nil {
					return err
				}
			} else {
				opt := fitOptions{
					Criterion:     criterion,
					SplitChoice:   splitChoice,
					SepNaN:        sepNaN,
					CacheNodes:    cacheNodes,
					PositiveClass: positiveClass,
				}
				var err error
				cfg, err = opt.toConfig()
				if err != nil {
					return err
				}
			}

			var ds *datasource.Dataset
			var err error
			switch {
			case dataFile != "" && dbFile != "":
				return errors.New("--data and --db are mutually exclusive")
			case dbFile != "":
				if dbTable == "" {
					return errors.New("--table is required with --db")
				}
				ds, err = datasource.LoadSQLite(dbFile, dbTable, labelCol, true)
				if err != nil {
					return errors.Wrap(err, "parsing training data")
				}
			case dataFile != "":
				f, openErr := os.Open(dataFile)
				if openErr != nil {
					return errors.Wrapf(openErr, "opening %s", dataFile)
				}
				defer f.Close()

				ds, err = datasource.LoadCSV(f, true)
				if err != nil {
					return errors.Wrap(err, "parsing training data")
				}
			default:
				return errors.New("one of --data or --db is required")
			}

			if runProfile {
				defer profile.Start(profile.CPUProfile).Stop()
			}

			start := time.Now()
			tr, err := tree.Fit(ds.XBin, ds.XCont, ds.Y, ds.Missing, cfg)
			if err != nil {
				return errors.Wrap(err, "fitting tree")
			}
			duration := time.Since(start)

			varNames := append(append([]string{}, ds.BinCols...), ds.ContCols...)
			return finishFit(cmd, tr, duration, ds, varNames, cfg, modelFile)
		},
	}

	cmd.Flags().StringVar(&dataFile, "data", "", "csv file with training data")
	cmd.Flags().StringVar(&dbFile, "db", "", "sqlite database file with training data, alternative to --data")
	cmd.Flags().StringVar(&dbTable, "table", "", "table name to read training data from, required with --db")
	cmd.Flags().StringVar(&labelCol, "label-col", "label", "label column name, used with --db")
	cmd.Flags().StringVar(&modelFile, "model", "ambitree.model", "file to write the fitted model")
	cmd.Flags().StringVar(&configFile, "config", "", "yaml file with fit options, overrides individual flags")
	cmd.Flags().StringVar(&criterion, "criterion", "gini", "impurity criterion: gini or zero")
	cmd.Flags().StringVar(&splitChoice, "split-choice", "single_max", "single_max or all_max")
	cmd.Flags().BoolVar(&sepNaN, "sep-nan", false, "evaluate a dedicated NaN-separation split per continuous feature")
	cmd.Flags().BoolVar(&cacheNodes, "cache-nodes", false, "deduplicate equal-sample-set nodes into an ambiguity DAG")
	cmd.Flags().IntVar(&positiveClass, "positive-class", 0, "positive class id for *_general voting")
	cmd.Flags().BoolVar(&runProfile, "profile", false, "cpu profile")

	return cmd
}

func finishFit(cmd *cobra.Command, tr *tree.Tree, duration time.Duration, ds *datasource.Dataset, varNames []string, cfg tree.Config, modelFile string) error {
	fb, fc := tr.Shape()
	m, err := newModel(tr, duration, len(ds.Y), varNames, cfg.PositiveClass, tr.Criterion(), fb, fc, tr.Classes())
	if err != nil {
		return err
	}

	out, err := os.Create(modelFile)
	if err != nil {
		return errors.Wrapf(err, "creating %s", modelFile)
	}
	defer out.Close()

	if err := m.Save(out); err != nil {
		return err
	}

	report(cmd.OutOrStdout(), m)
	return nil
}
