package bqsr

import (
	"path/filepath"
	"strings"
)

// Names are the artifact names of a run, all derived from the input BAM.
// They are relative to the working directory.
type Names struct {
	// BAM is the base name of the input, e.g. "sample.bam". ApplyBQSR
	// writes the final alignment under this name.
	BAM string
	// Stem is BAM without its extension, e.g. "sample".
	Stem string
}

// NewNames derives artifact names from the input BAM path.
func NewNames(bamPath string) Names {
	base := filepath.Base(bamPath)
	return Names{BAM: base, Stem: strings.TrimSuffix(base, filepath.Ext(base))}
}

// ReadGroupBAM is the read-group-normalized intermediate alignment.
func (n Names) ReadGroupBAM() string { return n.Stem + "_RG.bam" }

// RecalTable is the BaseRecalibrator output.
func (n Names) RecalTable() string { return n.Stem + "_recalibration.table" }

// Stats is the flagstat report of the final alignment.
func (n Names) Stats() string { return n.BAM + "_stats.txt" }

// Bigwig is the coverage track bamtobigwig.sh writes.
func (n Names) Bigwig() string { return n.Stem + ".bw" }

// BAI is the index ApplyBQSR writes next to the final alignment.
func (n Names) BAI() string { return n.Stem + ".bai" }
