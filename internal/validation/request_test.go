package validation

import (
	stderrors "errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lfsclean/internal/errors"
	"lfsclean/pkg/contracts/domain"
)

func TestParseCleanParams(t *testing.T) {
	defaults := domain.DefaultCleaningOptions()

	tests := []struct {
		name  string
		query string
		want  CleanParams
	}{
		{
			name:  "defaults",
			query: "",
			want:  CleanParams{Options: defaults, Format: "csv"},
		},
		{
			name:  "all overrides",
			query: "unemployed_only=false&classification=1&format=XLSX&sheet=Cohort",
			want: CleanParams{
				Options: domain.CleaningOptions{UnemployedOnly: false, ClassificationMode: true},
				Format:  "xlsx",
				Sheet:   "Cohort",
			},
		},
		{
			name:  "json format",
			query: "format=json&classification=true",
			want: CleanParams{
				Options: domain.CleaningOptions{UnemployedOnly: true, ClassificationMode: true},
				Format:  "json",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			got, err := ParseCleanParams(q, defaults, "csv")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCleanParams_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		fields []string
	}{
		{name: "bad bool", query: "unemployed_only=maybe", fields: []string{ParamUnemployedOnly}},
		{name: "bad format", query: "format=parquet", fields: []string{"format"}},
		{name: "long sheet", query: "sheet=" + "abcdefghijklmnopqrstuvwxyz0123456789", fields: []string{"sheet"}},
		{name: "several", query: "classification=sometimes&format=xml", fields: []string{ParamClassification, "format"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			_, err = ParseCleanParams(q, domain.DefaultCleaningOptions(), "csv")
			require.Error(t, err)

			var apiErr *errors.APIError
			require.True(t, stderrors.As(err, &apiErr))
			assert.Equal(t, 400, apiErr.StatusCode)

			problems, ok := apiErr.Details.([]errors.ValidationError)
			require.True(t, ok)
			var got []string
			for _, p := range problems {
				got = append(got, p.Field)
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}
