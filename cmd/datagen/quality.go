package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/synthdata/internal/dataset"
	"github.com/gyaneshwarpardhi/synthdata/internal/quality"
)

var minScore int

var qualityCmd = &cobra.Command{
	Use:   "quality <table.csv|table.json>",
	Short: "Score an exported table for placeholders, ranges, dates, diversity, and nulls",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stream, err := readStream(args[0])
		if err != nil {
			return err
		}
		rep := quality.Validate(stream, quality.Options{})
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return err
		}
		if rep.QualityScore < minScore {
			return fmt.Errorf("quality score %d below %d", rep.QualityScore, minScore)
		}
		return nil
	},
}

func init() {
	qualityCmd.Flags().IntVar(&minScore, "min-score", 0, "Fail when the score is below this value")
}

// readStream loads a CSV (header row first) or a JSON table export.
func readStream(path string) (dataset.Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		var t dataset.Table
		if err := json.NewDecoder(f).Decode(&t); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return t.Rows, nil
	}
	return readCSV(f)
}

func readCSV(r io.Reader) (dataset.Stream, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return dataset.Stream{}, nil
	}
	header := rows[0]
	out := make(dataset.Stream, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(dataset.Record, len(header))
		for i, col := range header {
			if i < len(row) && row[i] != "" {
				rec[col] = row[i]
			} else {
				rec[col] = nil
			}
		}
		out = append(out, rec)
	}
	return out, nil
}
