package io

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/fitcharts/pkg/dataset"
	fcerrors "github.com/matzehuels/fitcharts/pkg/errors"
)

// Format identifies a dataset encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatTOML Format = "toml"
)

// FormatFromPath returns the dataset format implied by the file extension.
// The second result is false for unknown extensions.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".csv":
		return FormatCSV, true
	case ".toml":
		return FormatTOML, true
	}
	return "", false
}

// ParseFormat parses a format name such as "json" or ".csv".
func ParseFormat(s string) (Format, error) {
	f, ok := FormatFromPath("x." + strings.TrimPrefix(strings.TrimSpace(s), "."))
	if !ok {
		return "", fcerrors.New(fcerrors.ErrCodeInvalidFormat, "unknown dataset format %q", s)
	}
	return f, nil
}

// Read decodes records from r in the given format. Read does not close r.
func Read(r io.Reader, format Format) ([]dataset.Record, error) {
	switch format {
	case FormatJSON:
		return ReadJSON(r)
	case FormatCSV:
		return ReadCSV(r)
	case FormatTOML:
		return ReadTOML(r)
	}
	return nil, fcerrors.New(fcerrors.ErrCodeInvalidFormat, "unknown dataset format %q", format)
}

// ReadJSON decodes a JSON dataset from r.
//
// The document is either an array of records or an object with a "data"
// array. Any other well-formed JSON yields zero records.
func ReadJSON(r io.Reader) ([]dataset.Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return []dataset.Record{}, nil
		}
		return nil, fcerrors.Wrap(fcerrors.ErrCodeInvalidDataset, err, "decode json")
	}
	if obj, ok := doc.(map[string]any); ok {
		doc = obj["data"]
	}
	return dataset.Records(doc), nil
}

// ReadCSV decodes a CSV dataset from r. The header row names the fields;
// rows shorter than the header leave the trailing fields unset.
func ReadCSV(r io.Reader) ([]dataset.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []dataset.Record{}, nil
	}
	if err != nil {
		return nil, fcerrors.Wrap(fcerrors.ErrCodeInvalidDataset, err, "read csv header")
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	records := []dataset.Record{}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fcerrors.Wrap(fcerrors.ErrCodeInvalidDataset, err, "read csv row %d", len(records)+2)
		}
		rec := make(dataset.Record, len(header))
		for i, h := range header {
			if h == "" || i >= len(row) {
				continue
			}
			rec[h] = row[i]
		}
		records = append(records, rec)
	}
	return records, nil
}

type tomlDataset struct {
	Data []map[string]any `toml:"data"`
}

// ReadTOML decodes a TOML dataset from r. Records come from the [[data]]
// array of tables; a document without one yields zero records. TOML nan and
// inf values are kept as the strings "NaN", "+Inf" and "-Inf".
func ReadTOML(r io.Reader) ([]dataset.Record, error) {
	var doc tomlDataset
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fcerrors.Wrap(fcerrors.ErrCodeInvalidDataset, err, "decode toml")
	}
	records := make([]dataset.Record, len(doc.Data))
	for i, m := range doc.Data {
		records[i] = dataset.Record(m)
	}
	return dataset.FiniteRecords(records), nil
}

// Import reads the dataset file at path, choosing the decoder by extension.
// Unknown extensions are read as JSON.
func Import(path string) ([]dataset.Record, error) {
	format, ok := FormatFromPath(path)
	if !ok {
		format = FormatJSON
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fcerrors.Wrap(fcerrors.ErrCodeInvalidDataset, err, "open %s", path)
	}
	defer f.Close()
	return Read(f, format)
}

// ImportJSON reads a JSON dataset file at path.
func ImportJSON(path string) ([]dataset.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fcerrors.Wrap(fcerrors.ErrCodeInvalidDataset, err, "open %s", path)
	}
	defer f.Close()
	return ReadJSON(f)
}
