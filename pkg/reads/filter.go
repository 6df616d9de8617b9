package reads

// Filter rejects reads that must never reach the compressor.
type Filter struct {
	Name   string
	Reject func(Read) bool
}

var (
	UnmappedFilter  = Filter{Name: "unmapped", Reject: Read.Unmapped}
	SecondaryFilter = Filter{Name: "secondary", Reject: Read.Secondary}
	DuplicateFilter = Filter{Name: "duplicate", Reject: Read.Duplicate}
	QCFailFilter    = Filter{Name: "qc_fail", Reject: Read.QCFail}
)

// DefaultFilters returns the filter chain applied ahead of read reduction.
func DefaultFilters() []Filter {
	return []Filter{UnmappedFilter, SecondaryFilter, DuplicateFilter, QCFailFilter}
}

// Rejected returns the name of the first filter rejecting r, if any.
func Rejected(filters []Filter, r Read) (string, bool) {
	for _, f := range filters {
		if f.Reject(r) {
			return f.Name, true
		}
	}
	return "", false
}
