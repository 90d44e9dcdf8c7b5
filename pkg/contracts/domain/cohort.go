package domain

import (
	"time"
)

// CohortRecord is one respondent-month row of a cleaned table.
// LabourForceStatus is empty when the table was cleaned in unemployed-only mode,
// DurationMonths is nil when it was cleaned in classification mode.
type CohortRecord struct {
	Date              time.Time `json:"date"`
	LabourForceStatus string    `json:"labour_force_status,omitempty"`
	Province          string    `json:"province"`
	AgeGroup          string    `json:"age_group"`
	Gender            string    `json:"gender"`
	EducationLevel    string    `json:"education_level"`
	ImmigrationStatus string    `json:"immigration_status"`
	Occupation        string    `json:"occupation"`
	DurationMonths    *float64  `json:"duration_months,omitempty"`
}

// CleaningOptions selects the optional steps of the cleaning pipeline
type CleaningOptions struct {
	// UnemployedOnly keeps unemployed respondents only and drops Labour Force Status
	UnemployedOnly bool `json:"unemployed_only" yaml:"unemployed_only"`

	// ClassificationMode drops the joblessness duration column
	ClassificationMode bool `json:"classification_mode" yaml:"classification_mode"`
}

// DefaultCleaningOptions returns the default pipeline options
func DefaultCleaningOptions() CleaningOptions {
	return CleaningOptions{
		UnemployedOnly:     true,
		ClassificationMode: false,
	}
}
