package exporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"lfsclean/pkg/contracts/domain"
)

// WriteDropReportJSON writes a drop report as indented JSON
func WriteDropReportJSON(path string, report *domain.DropReport) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode drop report: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// DropReportRecords flattens a report into Section,Key,Count rows in a
// stable order.
func DropReportRecords(report *domain.DropReport) [][]string {
	records := [][]string{
		{"rows", "in", strconv.Itoa(report.RowsIn)},
		{"rows", "out", strconv.Itoa(report.RowsOut)},
	}

	steps := []string{domain.StepStudents, domain.StepNotInLabourForce, domain.StepEmployed, domain.StepIncomplete}
	for _, step := range steps {
		if n, ok := report.DroppedByStep[step]; ok {
			records = append(records, []string{"dropped", step, strconv.Itoa(n)})
		}
	}

	for _, section := range []struct {
		name   string
		counts map[string]int
	}{
		{"unknown_codes", report.UnknownCodes},
		{"missing_values", report.MissingValues},
	} {
		keys := make([]string, 0, len(section.counts))
		for k := range section.counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			records = append(records, []string{section.name, k, strconv.Itoa(section.counts[k])})
		}
	}

	return records
}

// WriteDropReportCSV writes a drop report as Section,Key,Count rows
func (w *CSVWriter) WriteDropReportCSV(filePath string, report *domain.DropReport) error {
	return w.WriteSimpleCSV(filePath, []string{"Section", "Key", "Count"}, DropReportRecords(report))
}
