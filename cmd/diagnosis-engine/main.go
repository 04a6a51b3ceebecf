package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "diagnosis-engine",
		Short: "TorqCare predictive-maintenance diagnosis engine",
		Long: `Serves vehicle failure diagnoses from trained model artifacts and runs
the offline jobs around them: training the predictors from labelled fleet
telemetry and generating mock telemetry for development.`,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(trainCmd())
	rootCmd.AddCommand(generateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
