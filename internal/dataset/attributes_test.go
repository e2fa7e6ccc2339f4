package dataset

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/choropleth-cli/internal/model"
)

var wantAttrs = []model.RegionAttributes{
	{Name: "東京都", Population: 14000000, Flag: true},
	{Name: "沖縄県", Population: 1400000, Flag: false},
}

func TestReadJSON_WrappedObject(t *testing.T) {
	data := `{"prefectures": [
		{"name": "東京都", "population": 14000000, "flag": true},
		{"name": "沖縄県", "population": 1400000, "flag": false}
	]}`
	got, err := ReadJSON([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, wantAttrs, got)
}

func TestReadJSON_BareArray(t *testing.T) {
	data := `  [{"name": "東京都", "population": 14000000, "flag": true},
		{"name": "沖縄県", "population": 1400000}]`
	got, err := ReadJSON([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, wantAttrs, got)
}

func TestReadJSON_Invalid(t *testing.T) {
	_, err := ReadJSON([]byte(`{"prefectures": 3}`))
	require.Error(t, err)
}

func TestReadYAML(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"mapping", "prefectures:\n  - name: 東京都\n    population: 14000000\n    flag: true\n  - name: 沖縄県\n    population: 1400000\n"},
		{"sequence", "- name: 東京都\n  population: 14000000\n  flag: true\n- name: 沖縄県\n  population: 1400000\n  flag: false\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadYAML([]byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, wantAttrs, got)
		})
	}
}

func TestReadYAML_Empty(t *testing.T) {
	got, err := ReadYAML(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadCSV(t *testing.T) {
	data := "population,name,flag,region\n14000000,東京都,true,kanto\n\"1,400,000\",沖縄県,,kyushu\n\n"
	got, err := ReadCSV(context.Background(), strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, wantAttrs, got)
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"missing population column", "name,flag\n東京都,true\n", "header must include"},
		{"bad population", "name,population\n東京都,many\n", "invalid population"},
		{"bad flag", "name,population,flag\n東京都,1,maybe\n", "invalid flag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(context.Background(), strings.NewReader(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReadCSV_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ReadCSV(ctx, strings.NewReader("name,population\n東京都,1\n"))
	require.Error(t, err)
}

func TestReadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attrs.xlsx")
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("prefectures")
	require.NoError(t, err)
	for _, r := range [][]string{
		{"name", "population", "flag"},
		{"東京都", "14000000", "TRUE"},
		{"沖縄県", "1400000", "FALSE"},
	} {
		row := sheet.AddRow()
		for _, v := range r {
			row.AddCell().SetString(v)
		}
	}
	require.NoError(t, f.Save(path))

	got, err := ReadXLSX(path, XLSXOptions{})
	require.NoError(t, err)
	assert.Equal(t, wantAttrs, got)

	got, err = ReadXLSX(path, XLSXOptions{SheetName: "prefectures"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = ReadXLSX(path, XLSXOptions{SheetName: "missing"})
	require.Error(t, err)
	_, err = ReadXLSX(path, XLSXOptions{SheetIndex: 3})
	require.Error(t, err)
}

func TestReadSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attrs.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE regions (name TEXT, population REAL, flag INTEGER)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO regions VALUES ('東京都', 14000000, 1), ('沖縄県', 1400000, NULL)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	got, err := ReadSQLite(context.Background(), path, DefaultTable)
	require.NoError(t, err)
	assert.Equal(t, wantAttrs, got)
}

func TestReadSQLite_InvalidTable(t *testing.T) {
	_, err := ReadSQLite(context.Background(), "unused.db", "regions; DROP TABLE regions")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid table name")
}

func TestLoadAttributes_DispatchByExtension(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"todouhuken.json": `{"prefectures": [{"name": "東京都", "population": 14000000, "flag": true}]}`,
		"todouhuken.yml":  "- name: 東京都\n  population: 14000000\n  flag: true\n",
		"todouhuken.csv":  "name,population,flag\n東京都,14000000,true\n",
	}
	for name, body := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

		got, err := LoadAttributes(context.Background(), path)
		require.NoError(t, err, name)
		assert.Equal(t, wantAttrs[:1], got, name)
	}

	_, err := LoadAttributes(context.Background(), filepath.Join(dir, "todouhuken.parquet"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported attribute format")
}
