package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gradkit/kernel"
	"github.com/YuminosukeSato/gradkit/pkg/config"
	"github.com/YuminosukeSato/gradkit/pkg/dataset"
)

type gramResult struct {
	Kernel string      `json:"kernel"`
	Stable bool        `json:"stable"`
	Rows   int         `json:"rows"`
	Cols   int         `json:"cols"`
	Data   [][]float64 `json:"data"`
}

func gramCmd() *cobra.Command {
	var dataPath string
	cmd := &cobra.Command{
		Use:   "gram",
		Short: "print the gram matrix of the samples in a CSV file",
		Long: "Reads one sample per row (the label column is ignored) and prints\n" +
			"K(X, X) as JSON. With --stable the stability term is added to the diagonal.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			res, err := gram(cfg, dataPath)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "CSV file, one sample per row")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func gram(cfg *config.Config, dataPath string) (*gramResult, error) {
	k, err := config.BuildKernel(cfg.Kernel)
	if err != nil {
		return nil, err
	}
	ds, err := dataset.ReadFile(dataPath, dataset.Options{
		LabelColumn: cfg.Data.LabelColumn,
		Header:      cfg.Data.Header,
	})
	if err != nil {
		return nil, err
	}
	X, _, err := ds.FeatureMajor()
	if err != nil {
		return nil, err
	}

	var K *mat.Dense
	if cfg.Model.StableGram {
		K, err = kernel.GramMatrixStable(k, X, X)
	} else {
		K, err = kernel.GramMatrix(k, X, X)
	}
	if err != nil {
		return nil, err
	}

	r, c := K.Dims()
	res := &gramResult{Kernel: k.Name(), Stable: cfg.Model.StableGram, Rows: r, Cols: c}
	for i := 0; i < r; i++ {
		res.Data = append(res.Data, mat.Row(nil, i, K))
	}
	return res, nil
}
