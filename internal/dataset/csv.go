package dataset

import (
	"context"
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/choropleth-cli/internal/model"
)

// ReadCSV reads attribute records from CSV with a name,population,flag header.
// Column order is free and extra columns are ignored.
func ReadCSV(ctx context.Context, r io.Reader) ([]model.RegionAttributes, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // allow variable fields
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "csv: context cancelled")
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "csv: read row")
		}
		rows = append(rows, record)
	}
	return parseTable(rows)
}

// ReadCSVFile reads a CSV attribute file from disk.
func ReadCSVFile(ctx context.Context, path string) ([]model.RegionAttributes, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: open csv")
	}
	defer f.Close() //nolint:errcheck
	return ReadCSV(ctx, f)
}
