package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"golang.org/x/sync/errgroup"

	"nbgrade/internal/logging"
)

// Load reads the attribute and effectiveness tables concurrently.
// A missing file yields an error matching os.ErrNotExist.
func Load(ctx context.Context, attributesPath, effectivenessPath string) (*Dataset, error) {
	timer := logging.StartTimer(logging.CategoryDataset, "dataset load")
	defer timer.Stop()

	d := &Dataset{}

	eg, _ := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return d.loadAttributes(attributesPath)
	})
	eg.Go(func() error {
		return d.loadEffectiveness(effectivenessPath)
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	logging.Dataset("loaded %d records and %d attacker types", len(d.records), len(d.effectiveness))
	return d, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset file %s: %w", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s has no header row", path)
	}
	return rows, nil
}

func (d *Dataset) loadAttributes(path string) error {
	rows, err := readCSV(path)
	if err != nil {
		return err
	}

	header := rows[0]
	nameCol := -1
	for i, col := range header {
		if col == ColName {
			nameCol = i
		}
	}
	if nameCol < 0 {
		return fmt.Errorf("%s has no %q column", path, ColName)
	}

	records := make(map[string]map[string]interface{}, len(rows)-1)
	names := make([]string, 0, len(rows)-1)
	for lineNo, row := range rows[1:] {
		rec := make(map[string]interface{}, len(header))
		for i, col := range header {
			if !integerColumns[col] {
				rec[col] = row[i]
				continue
			}
			n, err := strconv.Atoi(row[i])
			if err != nil {
				return fmt.Errorf("%s line %d: column %q: %w", path, lineNo+2, col, err)
			}
			rec[col] = n
		}
		name := row[nameCol]
		if _, dup := records[name]; !dup {
			names = append(names, name)
		}
		records[name] = rec
	}

	d.columns = header
	d.names = names
	d.records = records
	return nil
}

func (d *Dataset) loadEffectiveness(path string) error {
	rows, err := readCSV(path)
	if err != nil {
		return err
	}

	attackers := rows[0][1:]
	table := make(map[string]map[string]float64, len(attackers))
	for _, a := range attackers {
		table[a] = make(map[string]float64)
	}
	for lineNo, row := range rows[1:] {
		defender := row[0]
		for i, cell := range row[1:] {
			m, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return fmt.Errorf("%s line %d: %w", path, lineNo+2, err)
			}
			table[attackers[i]][defender] = m
		}
	}

	d.effectiveness = table
	return nil
}
