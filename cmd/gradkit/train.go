package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gradkit/core/model"
	"github.com/YuminosukeSato/gradkit/kernel_model"
	"github.com/YuminosukeSato/gradkit/metrics"
	"github.com/YuminosukeSato/gradkit/pkg/config"
	"github.com/YuminosukeSato/gradkit/pkg/dataset"
	"github.com/YuminosukeSato/gradkit/pkg/errors"
	"github.com/YuminosukeSato/gradkit/pkg/log"
	"github.com/YuminosukeSato/gradkit/pkg/report"
	"github.com/YuminosukeSato/gradkit/preprocessing"
	"github.com/YuminosukeSato/gradkit/solver"
)

type trainResult struct {
	Model          *model.ModelWeights `json:"model"`
	Solver         string              `json:"solver"`
	Updates        int                 `json:"updates"`
	FinalLoss      float64             `json:"final_loss"`
	Metrics        map[string]float64  `json:"metrics"`
	DictionarySize int                 `json:"dictionary_size,omitempty"`
}

func trainCmd() *cobra.Command {
	var dataPath, plotPath string
	cmd := &cobra.Command{
		Use:   "train",
		Short: "fit a model to a CSV file and print the weights as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			res, losses, err := train(cfg, dataPath)
			if err != nil {
				return err
			}
			if plotPath != "" {
				if err := report.SaveLossCurve(plotPath, cfg.Model.Type, losses); err != nil {
					return err
				}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "CSV file, one sample per row")
	cmd.Flags().StringVar(&plotPath, "plot", "", "write the loss curve to this image file")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

// loadData reads the CSV file into the d×M layout and applies the label
// mapping and feature scaling of cfg.
func loadData(cfg *config.Config, path string) (mat.Matrix, *mat.VecDense, error) {
	ds, err := dataset.ReadFile(path, dataset.Options{
		LabelColumn: cfg.Data.LabelColumn,
		Header:      cfg.Data.Header,
	})
	if err != nil {
		return nil, nil, err
	}
	X, y, err := ds.FeatureMajor()
	if err != nil {
		return nil, nil, err
	}

	if cfg.Data.ZeroOneLabels {
		if y, err = preprocessing.SignLabels(y); err != nil {
			return nil, nil, err
		}
	} else if cfg.Logistic() {
		for i := 0; i < y.Len(); i++ {
			if v := y.AtVec(i); v != 1 && v != -1 {
				err := errors.NewValidationError("labels",
					"logistic models need -1/+1 labels; set data.zero_one_labels for 0/1 data", v)
				log.GetLoggerWithName("gradkit").Error("invalid labels", err,
					log.ErrorCodeKey, log.ErrorInvalidInput,
					log.SamplesKey, y.Len(),
				)
				return nil, nil, err
			}
		}
	}

	scaler, err := config.BuildScaler(cfg.Data)
	if err != nil || scaler == nil {
		return X, y, err
	}
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		return nil, nil, errors.Wrap(err, "scale features")
	}
	log.GetLoggerWithName("gradkit").Debug("features scaled",
		log.PhaseKey, log.PhasePreprocessing,
		log.OperationKey, log.OperationTransform,
		"scaler", cfg.Data.Scale,
	)
	return scaled, y, nil
}

func train(cfg *config.Config, dataPath string) (*trainResult, []float64, error) {
	logger := log.GetLoggerWithName("gradkit")

	X, y, err := loadData(cfg, dataPath)
	if err != nil {
		return nil, nil, err
	}
	m, err := config.BuildModel(cfg)
	if err != nil {
		return nil, nil, err
	}

	rec, err := fit(cfg, m, X, y)
	if err != nil {
		return nil, nil, err
	}
	losses := rec.GetLossValues()

	scores, err := evaluate(cfg, m, X, y)
	if err != nil {
		return nil, nil, err
	}

	res := &trainResult{
		Model:   model.ExportWeights(m),
		Solver:  cfg.Solver.Type,
		Updates: len(losses),
		Metrics: scores,
	}
	if len(losses) > 0 {
		res.FinalLoss = losses[len(losses)-1]
	}
	if sk, ok := m.(*kernel_model.StochasticKernelLogistic); ok {
		res.DictionarySize = sk.DictionarySize()
	}

	fields := []any{
		log.PhaseKey, log.PhaseTraining,
		log.ModelNameKey, m.Name(),
		log.IterationKey, res.Updates,
		log.LossKey, res.FinalLoss,
		log.RegularizationKey, cfg.Model.Lambda,
	}
	if acc, ok := scores["accuracy"]; ok {
		fields = append(fields, log.AccuracyKey, acc)
	}
	if res.DictionarySize > 0 {
		fields = append(fields, log.DictionarySizeKey, res.DictionarySize)
	}
	logger.Info("training finished", fields...)
	return res, losses, nil
}

// fit runs the configured solver and returns it for its loss history.
func fit(cfg *config.Config, m model.Model, X mat.Matrix, y *mat.VecDense) (model.LossRecorder, error) {
	opts := []solver.Option{solver.WithMaxIter(cfg.Solver.MaxIter)}

	if cfg.Solver.Type == "stochastic" {
		s, err := solver.NewStochastic(m, opts...)
		if err != nil {
			return nil, err
		}
		for epoch := 1; epoch <= cfg.Solver.Epochs; epoch++ {
			if err := s.FitEpoch(cfg.Solver.StepSize, X, y); err != nil {
				return nil, errors.Wrapf(err, "epoch %d", epoch)
			}
		}
		return s, nil
	}

	b, err := solver.NewBatch(m, X, y, opts...)
	if err != nil {
		return nil, err
	}
	if err := b.Fit(cfg.Solver.StepSize, cfg.Solver.Convergence, cfg.Solver.Value); err != nil {
		return nil, err
	}
	return b, nil
}

// evaluate scores the fitted model on its training data.
func evaluate(cfg *config.Config, m model.Model, X mat.Matrix, y *mat.VecDense) (map[string]float64, error) {
	log.GetLoggerWithName("gradkit").Debug("scoring training data",
		log.OperationKey, log.OperationPredict,
		log.SamplesKey, y.Len(),
	)
	pred, err := m.Predict(X)
	if err != nil {
		return nil, errors.Wrap(err, "predict")
	}
	scores := make(map[string]float64)

	if !cfg.Logistic() {
		if scores["mse"], err = metrics.MSE(y, pred); err != nil {
			return nil, err
		}
		if scores["mae"], err = metrics.MAE(y, pred); err != nil {
			return nil, err
		}
		// R² is undefined for constant targets
		if r2, err := metrics.R2Score(y, pred); err == nil {
			scores["r2"] = r2
		}
		return scores, nil
	}

	if scores["accuracy"], err = metrics.BinaryAccuracy(y, pred, 0.5); err != nil {
		return nil, err
	}
	if scores["log_loss"], err = metrics.BinaryLogLoss(y, pred); err != nil {
		return nil, err
	}
	if scores["auc"], err = metrics.AUC(y, pred); err != nil {
		return nil, err
	}
	return scores, nil
}
