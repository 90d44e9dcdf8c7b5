package domain

// Filter step names used in drop reports and metrics.
const (
	StepStudents         = "students"
	StepNotInLabourForce = "not_in_labour_force"
	StepEmployed         = "employed"
	StepIncomplete       = "incomplete"
)

// DropReport accounts for every row a cleaning run removed
type DropReport struct {
	RowsIn  int `json:"rows_in"`
	RowsOut int `json:"rows_out"`

	// DroppedByStep counts rows removed by each filter step
	DroppedByStep map[string]int `json:"dropped_by_step"`

	// UnknownCodes counts cells per column whose code had no label
	UnknownCodes map[string]int `json:"unknown_codes"`

	// MissingValues counts missing cells per column seen by the completeness filter
	MissingValues map[string]int `json:"missing_values"`
}

// NewDropReport creates an empty report for rowsIn input rows
func NewDropReport(rowsIn int) *DropReport {
	return &DropReport{
		RowsIn:        rowsIn,
		DroppedByStep: make(map[string]int),
		UnknownCodes:  make(map[string]int),
		MissingValues: make(map[string]int),
	}
}

// TotalDropped returns the number of rows removed across all steps
func (r *DropReport) TotalDropped() int {
	total := 0
	for _, n := range r.DroppedByStep {
		total += n
	}
	return total
}

// Merge adds the counts of other into r
func (r *DropReport) Merge(other *DropReport) {
	if other == nil {
		return
	}
	r.RowsIn += other.RowsIn
	r.RowsOut += other.RowsOut
	for k, v := range other.DroppedByStep {
		r.DroppedByStep[k] += v
	}
	for k, v := range other.UnknownCodes {
		r.UnknownCodes[k] += v
	}
	for k, v := range other.MissingValues {
		r.MissingValues[k] += v
	}
}
