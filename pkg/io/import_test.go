package io

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/fitcharts/pkg/dataset"
	fcerrors "github.com/matzehuels/fitcharts/pkg/errors"
)

func TestReadJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"array", `[{"name":"Mon","value":1},{"name":"Tue","value":2}]`, 2},
		{"data key", `{"data":[{"label":"Week 1","steps":52000}]}`, 1},
		{"empty array", `[]`, 0},
		{"empty input", ``, 0},
		{"object without data", `{"rows":[{"value":1}]}`, 0},
		{"string", `"hello"`, 0},
		{"number", `42`, 0},
		{"data not array", `{"data":{"value":1}}`, 0},
		{"mixed elements", `[{"value":1}, 7, null]`, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := ReadJSON(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ReadJSON: %v", err)
			}
			if recs == nil {
				t.Fatal("ReadJSON returned nil slice")
			}
			if len(recs) != tt.want {
				t.Errorf("len = %d, want %d", len(recs), tt.want)
			}
		})
	}
}

func TestReadJSONKeepsNumbers(t *testing.T) {
	recs, err := ReadJSON(strings.NewReader(`[{"name":"Mon","value":1800.5}]`))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := recs[0]["value"].(json.Number); !ok {
		t.Fatalf("value type = %T, want json.Number", recs[0]["value"])
	}
	items := dataset.Normalize(recs, "value")
	if items[0].Value != 1800.5 {
		t.Errorf("Value = %v, want 1800.5", items[0].Value)
	}
}

func TestReadJSONMalformed(t *testing.T) {
	_, err := ReadJSON(strings.NewReader(`[{"name":`))
	if err == nil {
		t.Fatal("expected error for malformed json")
	}
	if !fcerrors.Is(err, fcerrors.ErrCodeInvalidDataset) {
		t.Errorf("code = %v, want %v", fcerrors.GetCode(err), fcerrors.ErrCodeInvalidDataset)
	}
}

func TestReadCSV(t *testing.T) {
	input := "\ufeffname, value,note\nMon,1800,rest day\nTue, 2100\n"
	recs, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len = %d, want 2", len(recs))
	}
	if recs[0]["name"] != "Mon" || recs[0]["value"] != "1800" || recs[0]["note"] != "rest day" {
		t.Errorf("first record = %v", recs[0])
	}
	if _, ok := recs[1]["note"]; ok {
		t.Errorf("short row should leave note unset: %v", recs[1])
	}

	items := dataset.Normalize(recs, "value")
	if items[1].Value != 2100 || items[1].Coerced {
		t.Errorf("second item = %+v", items[1])
	}
}

func TestReadCSVEmpty(t *testing.T) {
	recs, err := ReadCSV(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if recs == nil || len(recs) != 0 {
		t.Errorf("want empty non-nil slice, got %v", recs)
	}
}

func TestReadCSVMalformed(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("name,value\n\"Mon,1\n"))
	if !fcerrors.Is(err, fcerrors.ErrCodeInvalidDataset) {
		t.Errorf("err = %v, want INVALID_DATASET", err)
	}
}

func TestReadTOML(t *testing.T) {
	input := `
[[data]]
name = "Mon"
value = 1800

[[data]]
name = "Tue"
value = 2100.5
`
	recs, err := ReadTOML(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadTOML: %v", err)
	}
	items := dataset.Normalize(recs, "value")
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].Value != 1800 || items[1].Value != 2100.5 {
		t.Errorf("values = %v, %v", items[0].Value, items[1].Value)
	}
}

func TestReadTOMLNonFinite(t *testing.T) {
	input := `
[[data]]
name = "Mon"
value = nan
samples = [1.0, inf]

[[data]]
name = "Tue"
value = -inf

[[data]]
name = "Wed"
value = 10
`
	recs, err := ReadTOML(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadTOML: %v", err)
	}
	if recs[0]["value"] != "NaN" || recs[1]["value"] != "-Inf" {
		t.Errorf("non-finite values = %v, %v", recs[0]["value"], recs[1]["value"])
	}
	if samples, _ := recs[0]["samples"].([]any); len(samples) != 2 || samples[1] != "+Inf" {
		t.Errorf("samples = %#v", recs[0]["samples"])
	}
	if _, err := json.Marshal(recs); err != nil {
		t.Errorf("records should be JSON encodable: %v", err)
	}

	items := dataset.Normalize(recs, "value")
	for _, it := range items[:2] {
		if it.Value != 0 || !it.Coerced {
			t.Errorf("%s = %v (coerced %v), want 0 coerced", it.Name, it.Value, it.Coerced)
		}
	}
	if items[2].Value != 10 || items[2].Coerced {
		t.Errorf("Wed = %+v", items[2])
	}
}

func TestReadTOMLWrongShape(t *testing.T) {
	recs, err := ReadTOML(strings.NewReader(`title = "no data here"`))
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 0 {
		t.Errorf("len = %d, want 0", len(recs))
	}

	if _, err := ReadTOML(strings.NewReader(`[[data]`)); !fcerrors.Is(err, fcerrors.ErrCodeInvalidDataset) {
		t.Errorf("err = %v, want INVALID_DATASET", err)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
		ok   bool
	}{
		{"week.json", FormatJSON, true},
		{"WEEK.CSV", FormatCSV, true},
		{"dir/macros.toml", FormatTOML, true},
		{"notes.txt", "", false},
		{"noext", "", false},
	}
	for _, tt := range tests {
		got, ok := FormatFromPath(tt.path)
		if got != tt.want || ok != tt.ok {
			t.Errorf("FormatFromPath(%q) = %q, %v; want %q, %v", tt.path, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(".CSV"); err != nil || f != FormatCSV {
		t.Errorf("ParseFormat(.CSV) = %q, %v", f, err)
	}
	if _, err := ParseFormat("yaml"); !fcerrors.Is(err, fcerrors.ErrCodeInvalidFormat) {
		t.Errorf("ParseFormat(yaml) err = %v", err)
	}
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	jsonPath := write("week.json", `[{"name":"Mon","value":1}]`)
	csvPath := write("week.csv", "name,value\nMon,1\nTue,2\n")
	tomlPath := write("week.toml", "[[data]]\nname = \"Mon\"\nvalue = 1\n")
	otherPath := write("week.data", `{"data":[{"value":3}]}`)

	for path, want := range map[string]int{jsonPath: 1, csvPath: 2, tomlPath: 1, otherPath: 1} {
		recs, err := Import(path)
		if err != nil {
			t.Errorf("Import(%s): %v", filepath.Base(path), err)
			continue
		}
		if len(recs) != want {
			t.Errorf("Import(%s) len = %d, want %d", filepath.Base(path), len(recs), want)
		}
	}

	if recs, err := ImportJSON(jsonPath); err != nil || len(recs) != 1 {
		t.Errorf("ImportJSON = %v, %v", recs, err)
	}

	_, err := Import(filepath.Join(dir, "missing.json"))
	if !fcerrors.Is(err, fcerrors.ErrCodeInvalidDataset) {
		t.Errorf("missing file err = %v, want INVALID_DATASET", err)
	}
}
