package process

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/resolwebio/bio/toolrun"
)

// Env is the environment a process runs in.
type Env struct {
	// Dir is the working directory. Tools run here and outputs are written
	// here; output records hold paths relative to it.
	Dir string
	// Cores is the number of cores allotted to the run.
	Cores int
	// Runner runs external tools, with Dir as their working directory.
	Runner toolrun.Runner
	// Reporter receives messages and progress.
	Reporter Reporter
	// RunID identifies the run in logs.
	RunID uuid.UUID
}

// NewEnv creates an Env for a run of slug in dir, with a fresh run id, one
// core, and a LogReporter.
func NewEnv(slug, dir string, runner toolrun.Runner) *Env {
	id := uuid.New()
	return &Env{
		Dir:      dir,
		Cores:    1,
		Runner:   runner,
		Reporter: LogReporter{Prefix: slug + "/" + id.String()},
		RunID:    id,
	}
}

// Path resolves name against the working directory.
func (e *Env) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(e.Dir, name)
}

// Exists reports whether name exists in the working directory.
func (e *Env) Exists(name string) bool {
	_, err := os.Stat(e.Path(name))
	return err == nil
}
