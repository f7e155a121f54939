package telemetry

import (
	"strings"
	"sync"
)

type ReportKind int

const (
	REPORT_BROKEN ReportKind = iota
	REPORT_WARNING
	REPORT_DEBUG
	REPORT_COUNT
)

type Report struct {
	Kind   ReportKind
	ID     string
	Params []any
	Count  int64
}

// RecorderAPI keeps every report in memory so tests can assert on them.
type RecorderAPI struct {
	mutex   sync.Mutex
	reports []Report
}

func NewRecorderAPI() *RecorderAPI {
	return &RecorderAPI{}
}

func (r *RecorderAPI) push(report Report) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.reports = append(r.reports, report)
}

func (r *RecorderAPI) ReportBroken(id string, params ...any) {
	r.push(Report{Kind: REPORT_BROKEN, ID: id, Params: params})
}

func (r *RecorderAPI) ReportWarning(id string, params ...any) {
	r.push(Report{Kind: REPORT_WARNING, ID: id, Params: params})
}

func (r *RecorderAPI) ReportDebug(msg string, params ...any) {
	r.push(Report{Kind: REPORT_DEBUG, ID: msg, Params: params})
}

func (r *RecorderAPI) ReportCount(id string, count int64) {
	r.push(Report{Kind: REPORT_COUNT, ID: id, Count: count})
}

// Reports returns a copy of the reports of the given kind, in the order they were made.
func (r *RecorderAPI) Reports(kind ReportKind) []Report {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var out []Report
	for _, report := range r.reports {
		if report.Kind == kind {
			out = append(out, report)
		}
	}
	return out
}

// Has returns true if a report of the given kind has an id ending with `idSuffix`.
// Matching on the suffix lets callers ignore ScopedAPI namespaces.
func (r *RecorderAPI) Has(kind ReportKind, idSuffix string) bool {
	for _, report := range r.Reports(kind) {
		if strings.HasSuffix(report.ID, idSuffix) {
			return true
		}
	}
	return false
}
