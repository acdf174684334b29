package rational

import (
	"fmt"
	"io"
	"strings"

	"github.com/YuminosukeSato/ratfit/pkg/log"
)

// Record is the per-iteration summary passed to a Reporter.
type Record struct {
	Iter     int
	Residual float64
	DeltaFit float64
	Cond     float64
}

// Reporter receives one Record per iteration. Header is called once before
// the first record.
type Reporter interface {
	Header()
	Report(r Record)
}

// ReporterFunc adapts a function to Reporter. Its Header does nothing.
type ReporterFunc func(r Record)

func (f ReporterFunc) Header()         {}
func (f ReporterFunc) Report(r Record) { f(r) }

// TableReporter writes a fixed-width iteration table.
type TableReporter struct {
	w io.Writer
}

// NewTableReporter returns a TableReporter writing to w.
func NewTableReporter(w io.Writer) *TableReporter {
	return &TableReporter{w: w}
}

func (t *TableReporter) Header() {
	fmt.Fprintf(t.w, "%4s %21s %8s %8s\n", "iter", "residual norm", "delta fit", "cond")
	fmt.Fprintf(t.w, "%s %s %s %s\n",
		strings.Repeat("-", 4), strings.Repeat("-", 21), strings.Repeat("-", 8), strings.Repeat("-", 8))
}

func (t *TableReporter) Report(r Record) {
	fmt.Fprintf(t.w, "%4d %21.15e %8.2e %8.2e\n", r.Iter, r.Residual, r.DeltaFit, r.Cond)
}

// LogReporter emits every record as a structured log line.
type LogReporter struct {
	logger log.Logger
}

// NewLogReporter returns a LogReporter writing to l, or to the package
// logger when l is nil.
func NewLogReporter(l log.Logger) *LogReporter {
	if l == nil {
		l = log.GetLoggerWithName("rational.iteration")
	}
	return &LogReporter{logger: l}
}

func (l *LogReporter) Header() {}

func (l *LogReporter) Report(r Record) {
	l.logger.Info("sk iteration",
		log.IterationKey, r.Iter,
		log.ResidualKey, r.Residual,
		log.DeltaFitKey, r.DeltaFit,
		log.CondKey, r.Cond,
	)
}

// Recorder collects records in memory.
type Recorder struct {
	Records []Record
}

func (r *Recorder) Header() {}

func (r *Recorder) Report(rec Record) {
	r.Records = append(r.Records, rec)
}
