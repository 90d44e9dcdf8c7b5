package exporter

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"lfsclean/internal/errors"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{"XLSX", FormatXLSX, false},
		{" json ", FormatJSON, false},
		{"", FormatCSV, false},
		{"parquet", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.True(t, stderrors.Is(err, errors.ErrUnsupportedFormat))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat_ContentType(t *testing.T) {
	assert.Equal(t, "text/csv; charset=utf-8", FormatCSV.ContentType())
	assert.Contains(t, FormatXLSX.ContentType(), "spreadsheetml")
	assert.Equal(t, "application/json", FormatJSON.ContentType())
	assert.Equal(t, ".xlsx", FormatXLSX.Extension())
}
