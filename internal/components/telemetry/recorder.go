package telemetry

import (
	"strings"
	"sync"
)

type Report struct {
	Kind   string
	Id     string
	Params []any
}

// Recorder implements API by keeping every report in memory, it is meant for
// asserting on reports in tests.
type Recorder struct {
	mu      sync.Mutex
	reports []Report
}

func (r *Recorder) add(kind, id string, params []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, Report{Kind: kind, Id: id, Params: params})
}

func (r *Recorder) ReportBroken(id string, params ...any) {
	r.add("broken", id, params)
}

func (r *Recorder) ReportWarning(id string, params ...any) {
	r.add("warning", id, params)
}

func (r *Recorder) ReportDebug(msg string, params ...any) {
	r.add("debug", msg, params)
}

func (r *Recorder) ReportCount(id string, count int64) {
	r.add("count", id, []any{count})
}

// Reports returns the reports of the given kind whose id ends with suffix.
func (r *Recorder) Reports(kind, suffix string) []Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Report
	for _, rep := range r.reports {
		if rep.Kind == kind && strings.HasSuffix(rep.Id, suffix) {
			out = append(out, rep)
		}
	}
	return out
}
