package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"lfsclean/pkg/contracts/domain"
)

// ExtraColumn is an unrelated column present in fixture extracts, as real
// microdata files carry many more columns than the cleaner keeps.
const ExtraColumn = "REC_NUM"

// SurveyRow is one raw extract row keyed by source column name
type SurveyRow map[string]string

// WorkedExampleRow returns an unemployed, non-student Ontario respondent
// surveyed in March 2023.
func WorkedExampleRow() SurveyRow {
	return SurveyRow{
		domain.SourceYear:              "2023",
		domain.SourceMonth:             "3",
		domain.SourceLabourForceStatus: "3",
		domain.SourceProvince:          "35",
		domain.SourceAgeGroup:          "4",
		domain.SourceSex:               "1",
		domain.SourceEducation:         "3",
		domain.SourceImmigration:       "3",
		domain.SourceOccupation:        "7",
		domain.SourceDuration:          "5",
		domain.SourceStudentStatus:     "1",
	}
}

// With returns a copy of r with column set to value
func (r SurveyRow) With(column, value string) SurveyRow {
	out := make(SurveyRow, len(r)+1)
	for k, v := range r {
		out[k] = v
	}
	out[column] = value
	return out
}

// Without returns a copy of r lacking column
func (r SurveyRow) Without(column string) SurveyRow {
	out := make(SurveyRow, len(r))
	for k, v := range r {
		if k != column {
			out[k] = v
		}
	}
	return out
}

// SurveyHeader is the fixture header: ExtraColumn followed by the source columns
func SurveyHeader() []string {
	return append([]string{ExtraColumn}, domain.SourceNames()...)
}

// SurveyRecords renders rows as a header plus data records. ExtraColumn
// holds the 1-based row number.
func SurveyRecords(rows ...SurveyRow) [][]string {
	header := SurveyHeader()
	records := [][]string{header}
	for i, row := range rows {
		rec := make([]string, len(header))
		rec[0] = strconv.Itoa(i + 1)
		for j, col := range header[1:] {
			rec[j+1] = row[col]
		}
		records = append(records, rec)
	}
	return records
}

// WriteSurveyCSV writes rows as a CSV extract under dir and returns its path
func WriteSurveyCSV(t *testing.T, dir, name string, rows ...SurveyRow) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture %s: %v", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(SurveyRecords(rows...)); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}
	return path
}
