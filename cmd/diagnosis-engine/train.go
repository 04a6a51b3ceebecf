package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/torqcare/torqcare-diagnosis/internal/training"
	"github.com/torqcare/torqcare-diagnosis/internal/utils"
)

func trainCmd() *cobra.Command {
	var (
		dataPath     string
		outDir       string
		epochs       int
		learningRate float64
		logLevel     string
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Fit the three predictors from a labelled telemetry CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := utils.NewLogger(logLevel, false)

			records, err := training.LoadCSV(dataPath, logger)
			if err != nil {
				return err
			}
			logger.Info("dataset loaded",
				slog.String("path", dataPath), slog.Int("records", len(records)))

			pipeline := training.NewPipeline(logger, training.Options{
				Epochs:       epochs,
				LearningRate: learningRate,
			})
			artifacts, report, err := pipeline.Train(records)
			if err != nil {
				return err
			}
			if err := artifacts.Save(outDir); err != nil {
				return err
			}

			fmt.Printf("trained on %d samples\n", report.Samples)
			fmt.Printf("failure accuracy:   %.4f\n", report.FailureAccuracy)
			fmt.Printf("component accuracy: %.4f\n", report.ComponentAccuracy)
			fmt.Printf("rul rmse (days):    %.2f\n", report.RULRMSEDays)
			fmt.Printf("artifacts written to %s\n", outDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "data/sensor_data.csv", "Labelled telemetry CSV")
	cmd.Flags().StringVar(&outDir, "out", "artifacts", "Artifact output directory")
	cmd.Flags().IntVar(&epochs, "epochs", 0, "Gradient descent epochs (0 for default)")
	cmd.Flags().Float64Var(&learningRate, "learning-rate", 0, "Gradient descent learning rate (0 for default)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log verbosity")
	return cmd
}
