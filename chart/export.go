package chart

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dnldd/synth/shared"
	"github.com/dnldd/synth/simulate"
)

// WriteSeries writes the provided price series as csv rows to the writer.
func WriteSeries(w io.Writer, series *shared.Series) error {
	err := series.Validate()
	if err != nil {
		return fmt.Errorf("validating series: %w", err)
	}

	cw := csv.NewWriter(w)
	err = cw.Write([]string{"date", "price"})
	if err != nil {
		return fmt.Errorf("writing series header: %v", err)
	}

	for idx := range series.Dates {
		record := []string{
			series.Dates[idx].Format(shared.DateLayout),
			strconv.FormatFloat(series.Values[idx], 'f', -1, 64),
		}
		err = cw.Write(record)
		if err != nil {
			return fmt.Errorf("writing series record: %v", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteVolumeSeries writes the provided volume series as csv rows to the
// writer.
func WriteVolumeSeries(w io.Writer, series *shared.VolumeSeries) error {
	err := series.Validate()
	if err != nil {
		return fmt.Errorf("validating volume series: %w", err)
	}

	cw := csv.NewWriter(w)
	err = cw.Write([]string{"date", "volume"})
	if err != nil {
		return fmt.Errorf("writing volume series header: %v", err)
	}

	for idx := range series.Dates {
		record := []string{
			series.Dates[idx].Format(shared.DateLayout),
			strconv.FormatInt(series.Volumes[idx], 10),
		}
		err = cw.Write(record)
		if err != nil {
			return fmt.Errorf("writing volume series record: %v", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportRun writes the provided run's series to a csv file in the provided
// directory, named after the scenario, and returns the written file path.
func ExportRun(dir string, run *simulate.Run) (string, error) {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return "", fmt.Errorf("creating export directory: %v", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s.csv", run.Scenario.Name))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating export file: %v", err)
	}
	defer file.Close()

	switch {
	case run.Volume != nil:
		err = WriteVolumeSeries(file, run.Volume)
	case run.Prices != nil:
		err = WriteSeries(file, run.Prices)
	default:
		err = fmt.Errorf("run %s has no series to export", run.ID)
	}
	if err != nil {
		return "", fmt.Errorf("exporting run %s: %w", run.ID, err)
	}

	return path, nil
}
