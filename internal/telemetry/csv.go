package telemetry

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/torqcare/torqcare-diagnosis/internal/features"
	"github.com/torqcare/torqcare-diagnosis/internal/training"
)

// WriteCSV persists labelled records in the layout training.LoadCSV reads
// back: identity columns, the feature columns in schema order, then labels.
func WriteCSV(path string, records []training.Record) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dataset: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	fields := features.Fields()
	header := []string{"vehicle_id", "timestamp"}
	for _, f := range fields {
		header = append(header, f.Name)
	}
	header = append(header, "failed", "rul_hours", "component")
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, 0, len(header))
	for _, rec := range records {
		row = row[:0]
		row = append(row, rec.Reading.VehicleID, rec.Reading.Timestamp.Format(time.RFC3339))
		for _, f := range fields {
			if v := f.Value(&rec.Reading); v != nil {
				row = append(row, strconv.FormatFloat(*v, 'f', 4, 64))
			} else {
				row = append(row, "")
			}
		}
		failed := "0"
		if rec.Failed {
			failed = "1"
		}
		row = append(row, failed, strconv.FormatFloat(rec.RULHours, 'f', 1, 64), string(rec.Component))
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush dataset: %w", err)
	}
	return nil
}
