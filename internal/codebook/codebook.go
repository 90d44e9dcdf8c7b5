package codebook

import (
	"math"
	"sort"
	"strings"

	"github.com/spf13/cast"

	"lfsclean/pkg/contracts/domain"
)

// Labels the pipeline filters on.
const (
	LabelEmployed         = "Employed"
	LabelUnemployed       = "Unemployed"
	LabelNotInLabourForce = "Not in Labour Force"
	LabelNonStudent       = "Non-student"
)

// Status describes the result of decoding one cell
type Status int

const (
	StatusKnown Status = iota
	StatusUnknown
	StatusMissing
)

func (s Status) String() string {
	switch s {
	case StatusKnown:
		return "known"
	case StatusUnknown:
		return "unknown"
	case StatusMissing:
		return "missing"
	default:
		return "invalid"
	}
}

// Outcome is the decoded form of one raw cell
type Outcome struct {
	Code   int
	Label  string
	Status Status
}

// OK reports whether the cell decoded to a label
func (o Outcome) OK() bool {
	return o.Status == StatusKnown
}

// Table maps the codes of one survey column to labels
type Table struct {
	Column string
	Labels map[int]string
}

// Decode returns the label for code
func (t Table) Decode(code int) (string, bool) {
	label, ok := t.Labels[code]
	return label, ok
}

// DecodeValue parses a raw cell and decodes it
func (t Table) DecodeValue(raw string) Outcome {
	code, ok := ParseCode(raw)
	if !ok {
		if IsMissing(raw) {
			return Outcome{Status: StatusMissing}
		}
		return Outcome{Status: StatusUnknown}
	}
	label, ok := t.Decode(code)
	if !ok {
		return Outcome{Code: code, Status: StatusUnknown}
	}
	return Outcome{Code: code, Label: label, Status: StatusKnown}
}

// Codes returns the table's codes in ascending order
func (t Table) Codes() []int {
	codes := make([]int, 0, len(t.Labels))
	for c := range t.Labels {
		codes = append(codes, c)
	}
	sort.Ints(codes)
	return codes
}

// DistinctLabels returns each label once, in code order
func (t Table) DistinctLabels() []string {
	seen := make(map[string]bool)
	var labels []string
	for _, c := range t.Codes() {
		l := t.Labels[c]
		if !seen[l] {
			seen[l] = true
			labels = append(labels, l)
		}
	}
	return labels
}

// IsMissing reports whether raw is an empty or not-available cell
func IsMissing(raw string) bool {
	switch strings.TrimSpace(raw) {
	case "", "NA", "NaN", "nan", "<nil>":
		return true
	}
	return false
}

// ParseCode parses a raw cell into an integer code. Integral float text such
// as "3.0" is accepted since spreadsheet exports often write codes that way.
func ParseCode(raw string) (int, bool) {
	if IsMissing(raw) {
		return 0, false
	}
	f, err := cast.ToFloat64E(strings.TrimSpace(raw))
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func rangeLabels(labels map[int]string, from, to int, label string) map[int]string {
	for c := from; c <= to; c++ {
		labels[c] = label
	}
	return labels
}

// Month decodes SURVMNTH
var Month = Table{
	Column: domain.ColumnMonth,
	Labels: map[int]string{
		1:  "January",
		2:  "February",
		3:  "March",
		4:  "April",
		5:  "May",
		6:  "June",
		7:  "July",
		8:  "August",
		9:  "September",
		10: "October",
		11: "November",
		12: "December",
	},
}

// LabourForceStatus decodes LFSSTAT. Codes 1 and 2 (employed at work and
// employed absent from work) collapse to one label.
var LabourForceStatus = Table{
	Column: domain.ColumnLabourForceStatus,
	Labels: map[int]string{
		1: LabelEmployed,
		2: LabelEmployed,
		3: LabelUnemployed,
		4: LabelNotInLabourForce,
	},
}

// Province decodes PROV
var Province = Table{
	Column: domain.ColumnProvince,
	Labels: map[int]string{
		10: "Newfoundland and Labrador",
		11: "Prince Edward Island",
		12: "Nova Scotia",
		13: "New Brunswick",
		24: "Quebec",
		35: "Ontario",
		46: "Manitoba",
		47: "Saskatchewan",
		48: "Alberta",
		59: "British Columbia",
	},
}

// AgeGroup decodes AGE_12 into three bands
var AgeGroup = Table{
	Column: domain.ColumnAgeGroup,
	Labels: rangeLabels(rangeLabels(map[int]string{1: "20 and below"},
		2, 5, "20 to 40 years"),
		6, 12, "40 and above"),
}

// Sex decodes SEX
var Sex = Table{
	Column: domain.ColumnGender,
	Labels: map[int]string{
		1: "Male",
		2: "Female",
	},
}

// Education decodes EDUC
var Education = Table{
	Column: domain.ColumnEducation,
	Labels: map[int]string{
		1: "Some high school",
		2: "High school graduate",
		3: "Some postsecondary",
		4: "Postsecondary certificate or diploma",
		5: "Bachelor's degree",
		6: "Above bachelor's degree",
	},
}

// Immigration decodes IMMIG
var Immigration = Table{
	Column: domain.ColumnImmigration,
	Labels: map[int]string{
		1: "Immigrant",
		2: "Immigrant",
		3: "Non-immigrant",
	},
}

// Occupation decodes NOC_10
var Occupation = Table{
	Column: domain.ColumnOccupation,
	Labels: map[int]string{
		1:  "Management Occupations",
		2:  "Business & Finance Occupations",
		3:  "Applied Science & Engineering Occupations",
		4:  "Health Occupations",
		5:  "Social, Education and Government Service Occupations",
		6:  "Arts, Culture, Recreation and Sport Occupations",
		7:  "Sales and Service occupations",
		8:  "Trades and Transportation occupations",
		9:  "Natural Resources and Agriculture occupations",
		10: "Manufacturing and Utilities occupations",
	},
}

// StudentStatus decodes SCHOOLN
var StudentStatus = Table{
	Column: domain.ColumnStudentStatus,
	Labels: map[int]string{
		1: LabelNonStudent,
		2: "Student (Full-time)",
		3: "Student (Part-time)",
	},
}

// Coded lists the nine decoded tables in column order
var Coded = []Table{
	Month,
	LabourForceStatus,
	Province,
	AgeGroup,
	Sex,
	Education,
	Immigration,
	Occupation,
	StudentStatus,
}

// ForColumn returns the table that decodes the named cleaned column
func ForColumn(column string) (Table, bool) {
	for _, t := range Coded {
		if t.Column == column {
			return t, true
		}
	}
	return Table{}, false
}
