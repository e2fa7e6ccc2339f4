package dataset

import (
	"bytes"
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/choropleth-cli/internal/model"
)

// attributeFile is the wrapped attribute layout: {"prefectures": [...]}.
type attributeFile struct {
	Prefectures []model.RegionAttributes `json:"prefectures" yaml:"prefectures"`
}

// ReadJSON decodes attribute records from either a {"prefectures": [...]}
// object or a bare array.
func ReadJSON(data []byte) ([]model.RegionAttributes, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []model.RegionAttributes
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, eris.Wrap(err, "dataset: decode attribute array")
		}
		return list, nil
	}

	var f attributeFile
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return nil, eris.Wrap(err, "dataset: decode attribute object")
	}
	return f.Prefectures, nil
}

// ReadJSONFile reads a JSON attribute file from disk.
func ReadJSONFile(path string) ([]model.RegionAttributes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: read attribute json")
	}
	return ReadJSON(data)
}

// ReadYAML decodes attribute records from either a prefectures mapping or a
// bare sequence.
func ReadYAML(data []byte) ([]model.RegionAttributes, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, eris.Wrap(err, "dataset: parse attribute yaml")
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	if node.Content[0].Kind == yaml.SequenceNode {
		var list []model.RegionAttributes
		if err := node.Content[0].Decode(&list); err != nil {
			return nil, eris.Wrap(err, "dataset: decode attribute sequence")
		}
		return list, nil
	}

	var f attributeFile
	if err := node.Content[0].Decode(&f); err != nil {
		return nil, eris.Wrap(err, "dataset: decode attribute mapping")
	}
	return f.Prefectures, nil
}

// ReadYAMLFile reads a YAML attribute file from disk.
func ReadYAMLFile(path string) ([]model.RegionAttributes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: read attribute yaml")
	}
	return ReadYAML(data)
}

// columns locates the attribute columns in a tabular header row.
type columns struct {
	name, population, flag int
}

func findColumns(header []string) (columns, error) {
	c := columns{name: -1, population: -1, flag: -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "name":
			c.name = i
		case "population":
			c.population = i
		case "flag":
			c.flag = i
		}
	}
	if c.name < 0 || c.population < 0 {
		return c, eris.New("dataset: header must include name and population columns")
	}
	return c, nil
}

// parseRow converts one tabular row. A missing or empty flag cell is false.
func (c columns) parseRow(row []string, line int) (model.RegionAttributes, error) {
	cell := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	a := model.RegionAttributes{Name: cell(c.name)}

	pop := strings.ReplaceAll(cell(c.population), ",", "")
	v, err := strconv.ParseFloat(pop, 64)
	if err != nil {
		return a, eris.Wrapf(err, "dataset: row %d: invalid population %q", line, cell(c.population))
	}
	a.Population = v

	if f := cell(c.flag); f != "" {
		b, err := strconv.ParseBool(strings.ToLower(f))
		if err != nil {
			return a, eris.Wrapf(err, "dataset: row %d: invalid flag %q", line, f)
		}
		a.Flag = b
	}
	return a, nil
}

// parseTable converts a header row plus data rows, skipping blank rows.
func parseTable(rows [][]string) ([]model.RegionAttributes, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	cols, err := findColumns(rows[0])
	if err != nil {
		return nil, err
	}

	out := make([]model.RegionAttributes, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		a, err := cols.parseRow(row, i+2)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
