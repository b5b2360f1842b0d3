package process

import (
	"sync"

	"github.com/grailbio/base/log"
)

// Reporter receives a process's advisory messages. Errors are not reported
// here; a process aborts by returning one.
type Reporter interface {
	// Info records an informational, non-fatal message.
	Info(msg string)
	// Warning records a warning.
	Warning(msg string)
	// Progress records the completed fraction of the run, in [0, 1].
	Progress(fraction float64)
}

func clamp(fraction float64) float64 {
	switch {
	case fraction < 0:
		return 0
	case fraction > 1:
		return 1
	}
	return fraction
}

// LogReporter writes messages to the grailbio log.
type LogReporter struct {
	// Prefix is prepended to every line, typically the slug and run id.
	Prefix string
}

// Info implements Reporter.
func (r LogReporter) Info(msg string) { log.Printf("%s: %s", r.Prefix, msg) }

// Warning implements Reporter.
func (r LogReporter) Warning(msg string) { log.Error.Printf("%s: warning: %s", r.Prefix, msg) }

// Progress implements Reporter.
func (r LogReporter) Progress(fraction float64) {
	log.Printf("%s: progress %.0f%%", r.Prefix, clamp(fraction)*100)
}

// Recorder is a Reporter that keeps everything it is told. It is safe for
// concurrent use.
type Recorder struct {
	mu       sync.Mutex
	infos    []string
	warnings []string
	progress []float64
}

// Info implements Reporter.
func (r *Recorder) Info(msg string) {
	r.mu.Lock()
	r.infos = append(r.infos, msg)
	r.mu.Unlock()
}

// Warning implements Reporter.
func (r *Recorder) Warning(msg string) {
	r.mu.Lock()
	r.warnings = append(r.warnings, msg)
	r.mu.Unlock()
}

// Progress implements Reporter.
func (r *Recorder) Progress(fraction float64) {
	r.mu.Lock()
	r.progress = append(r.progress, clamp(fraction))
	r.mu.Unlock()
}

// Infos returns the informational messages received so far.
func (r *Recorder) Infos() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.infos...)
}

// Warnings returns the warnings received so far.
func (r *Recorder) Warnings() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.warnings...)
}

// ProgressLog returns the progress values received so far.
func (r *Recorder) ProgressLog() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.progress...)
}
