package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/torqcare/torqcare-diagnosis/internal/telemetry"
)

func generateCmd() *cobra.Command {
	var (
		outPath  string
		vehicles int
		readings int
		seed     int64
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate mock labelled fleet telemetry",
		RunE: func(cmd *cobra.Command, args []string) error {
			generator := telemetry.NewGenerator(vehicles, readings, seed)
			records := generator.Generate()
			if err := telemetry.WriteCSV(outPath, records); err != nil {
				return err
			}
			fmt.Printf("wrote %d records to %s\n", len(records), outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "data/sensor_data.csv", "Output CSV path")
	cmd.Flags().IntVar(&vehicles, "vehicles", 100, "Number of vehicles in the fleet")
	cmd.Flags().IntVar(&readings, "readings", 200, "Readings per vehicle")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed")
	return cmd
}
