package domain

// Source column names as published in the Labour Force Survey public use microdata file.
const (
	SourceYear              = "SURVYEAR"
	SourceMonth             = "SURVMNTH"
	SourceLabourForceStatus = "LFSSTAT"
	SourceProvince          = "PROV"
	SourceAgeGroup          = "AGE_12"
	SourceSex               = "SEX"
	SourceEducation         = "EDUC"
	SourceImmigration       = "IMMIG"
	SourceOccupation        = "NOC_10"
	SourceDuration          = "DURJLESS"
	SourceStudentStatus     = "SCHOOLN"
)

// Human-readable column names used in cleaned tables.
const (
	ColumnDate              = "Date"
	ColumnYear              = "Year"
	ColumnMonth             = "Month"
	ColumnLabourForceStatus = "Labour Force Status"
	ColumnProvince          = "Province"
	ColumnAgeGroup          = "Age Group"
	ColumnGender            = "Gender"
	ColumnEducation         = "Education Level"
	ColumnImmigration       = "Immigration Status"
	ColumnOccupation        = "Occupation of Job"
	ColumnDuration          = "Duration of Joblessness (Months)"
	ColumnStudentStatus     = "Current Student Status"
)

// ColumnMapping pairs a source column with its renamed label
type ColumnMapping struct {
	Source string
	Target string
}

// SourceColumns lists the eleven required input columns in output order.
var SourceColumns = []ColumnMapping{
	{Source: SourceYear, Target: ColumnYear},
	{Source: SourceMonth, Target: ColumnMonth},
	{Source: SourceLabourForceStatus, Target: ColumnLabourForceStatus},
	{Source: SourceProvince, Target: ColumnProvince},
	{Source: SourceAgeGroup, Target: ColumnAgeGroup},
	{Source: SourceSex, Target: ColumnGender},
	{Source: SourceEducation, Target: ColumnEducation},
	{Source: SourceImmigration, Target: ColumnImmigration},
	{Source: SourceOccupation, Target: ColumnOccupation},
	{Source: SourceDuration, Target: ColumnDuration},
	{Source: SourceStudentStatus, Target: ColumnStudentStatus},
}

// SourceNames returns the required source column names in order
func SourceNames() []string {
	names := make([]string, len(SourceColumns))
	for i, c := range SourceColumns {
		names[i] = c.Source
	}
	return names
}

// CategoricalColumns are the decoded label columns that can appear in a cleaned table.
var CategoricalColumns = []string{
	ColumnLabourForceStatus,
	ColumnProvince,
	ColumnAgeGroup,
	ColumnGender,
	ColumnEducation,
	ColumnImmigration,
	ColumnOccupation,
}

// DateLayout is the text layout of the Date column in cleaned tables.
const DateLayout = "2006-01"
