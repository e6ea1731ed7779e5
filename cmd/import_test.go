package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRowsFormat(t *testing.T) {
	csvIn := "STEM,ABM,HUMSS,Strand\n10,2,3,STEM\n"
	jsonIn := `[{"STEM": 10, "ABM": 2, "HUMSS": 3, "Strand": "STEM"}]`

	tests := []struct {
		name    string
		in      string
		path    string
		format  string
		wantErr bool
	}{
		{name: "csv by extension", in: csvIn, path: "survey.CSV"},
		{name: "json by extension", in: jsonIn, path: "survey.json"},
		{name: "flag overrides extension", in: jsonIn, path: "survey.txt", format: "json"},
		{name: "unknown extension", in: csvIn, path: "survey.xlsx", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := parseRows(strings.NewReader(tt.in), tt.path, tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, "10", rows[0]["STEM"])
			assert.Equal(t, "STEM", rows[0]["Strand"])
		})
	}
}
