package questionnaire

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Row is one respondent's answers keyed by column header.
type Row map[string]string

// ParseCSVRows reads a header line followed by one respondent per line.
func ParseCSVRows(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read csv header: empty input")
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", len(rows)+1, err)
		}
		row := make(Row, len(header))
		for i, col := range header {
			row[col] = strings.TrimSpace(rec[i])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// rowsSchema accepts an array of flat objects whose values are strings,
// numbers or null.
const rowsSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "array",
	"items": {
		"type": "object",
		"minProperties": 1,
		"additionalProperties": {"type": ["string", "number", "null"]}
	}
}`

var (
	compiledRows    *jsonschema.Schema
	compileRowsErr  error
	compileRowsOnce sync.Once
)

func rowsValidator() (*jsonschema.Schema, error) {
	compileRowsOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(rowsSchema))
		if err != nil {
			compileRowsErr = fmt.Errorf("parse rows schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		const url = "schema://import-rows.json"
		if err := c.AddResource(url, doc); err != nil {
			compileRowsErr = fmt.Errorf("add rows schema: %w", err)
			return
		}
		compiledRows, compileRowsErr = c.Compile(url)
	})
	return compiledRows, compileRowsErr
}

// ParseJSONRows reads an array of objects, one per respondent. Numeric
// answers keep their literal form.
func ParseJSONRows(r io.Reader) ([]Row, error) {
	doc, err := jsonschema.UnmarshalJSON(r)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	schema, err := rowsValidator()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("rows do not match the import format: %w", err)
	}

	items := doc.([]any)
	rows := make([]Row, len(items))
	for i, item := range items {
		obj := item.(map[string]any)
		row := make(Row, len(obj))
		for k, v := range obj {
			switch v := v.(type) {
			case nil:
				row[k] = ""
			case string:
				row[k] = strings.TrimSpace(v)
			case json.Number:
				row[k] = v.String()
			default:
				row[k] = fmt.Sprint(v)
			}
		}
		rows[i] = row
	}
	return rows, nil
}
