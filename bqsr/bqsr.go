// Package bqsr implements the base quality score recalibration process: a
// two pass run of GATK BaseRecalibrator and ApplyBQSR, optionally preceded
// by read-group replacement with AddOrReplaceReadGroups, followed by
// samtools flagstat and a bigwig coverage track.
package bqsr

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/resolwebio/bio/bamstat"
	"github.com/resolwebio/bio/interval"
	"github.com/resolwebio/bio/process"
	"github.com/resolwebio/bio/readgroup"
	"github.com/resolwebio/bio/toolrun"
)

// Alignment is a data:alignment:bam: input record.
type Alignment struct {
	BAM        string `json:"bam"`
	SampleName string `json:"sample_name,omitempty"`
	Species    string `json:"species"`
	Build      string `json:"build"`
}

// Reference is a data:seq:nucleotide: input record.
type Reference struct {
	FASTA string `json:"fasta"`
}

// Variants is a data:variants:vcf: input record.
type Variants struct {
	VCF string `json:"vcf"`
}

// Intervals is a data:bed: input record.
type Intervals struct {
	BED string `json:"bed"`
}

// Inputs of the bqsr process.
type Inputs struct {
	BAM        Alignment  `json:"bam"`
	Reference  Reference  `json:"reference"`
	KnownSites []Variants `json:"known_sites"`
	// Intervals is optional.
	Intervals *Intervals `json:"intervals,omitempty"`
	// ReadGroup, if nonempty, replaces the read groups of the input BAM.
	ReadGroup string `json:"read_group,omitempty"`
	// ValidationStringency defaults to STRICT.
	ValidationStringency string `json:"validation_stringency,omitempty"`
}

// Outputs of the bqsr process. Paths are relative to the working directory.
type Outputs struct {
	BAM   string `json:"bam"`
	BAI   string `json:"bai"`
	Stats string `json:"stats"`
	// Bigwig is empty when bamtobigwig.sh produced no track.
	Bigwig     string `json:"bigwig,omitempty"`
	Species    string `json:"species"`
	Build      string `json:"build"`
	RecalTable string `json:"recal_table"`
}

// Opts configures the external tools.
type Opts struct {
	// GATK is the gatk launcher.
	GATK string
	// Samtools is the samtools executable.
	Samtools string
	// BamToBigwig is the coverage conversion script.
	BamToBigwig string
	// VerifyReadGroups makes Run check the header of the rewritten BAM for
	// the requested read group.
	VerifyReadGroups bool
}

// DefaultOpts expects the tools in PATH.
var DefaultOpts = Opts{
	GATK:        "gatk",
	Samtools:    "samtools",
	BamToBigwig: "bamtobigwig.sh",
}

// DataName renders Descriptor.DataName for in.
func DataName(in Inputs) string {
	if in.BAM.SampleName == "" {
		return "?"
	}
	return in.BAM.SampleName
}

// Validate checks that the required records are present and that the
// validation stringency is one of the declared choices. It returns the
// effective stringency.
func (in Inputs) Validate() (string, error) {
	switch {
	case in.BAM.BAM == "":
		return "", errors.E(errors.Invalid, "bqsr: bam input is required")
	case in.Reference.FASTA == "":
		return "", errors.E(errors.Invalid, "bqsr: reference input is required")
	case in.Intervals != nil && in.Intervals.BED == "":
		return "", errors.E(errors.Invalid, "bqsr: intervals input has no BED file")
	}
	for i, site := range in.KnownSites {
		if site.VCF == "" {
			return "", errors.E(errors.Invalid, fmt.Sprintf("bqsr: known_sites[%d] has no VCF file", i))
		}
	}
	stringency := in.ValidationStringency
	if stringency == "" {
		stringency = Strict
	}
	field, _ := Descriptor.InputField("validation_stringency")
	if err := field.CheckChoice(stringency); err != nil {
		return "", err
	}
	return stringency, nil
}

// staged holds local paths of the inputs.
type staged struct {
	bam, fasta, bed string
	knownSites      []string
}

func stage(ctx context.Context, env *process.Env, in Inputs) (s staged, err error) {
	if s.bam, err = process.Stage(ctx, env.Dir, in.BAM.BAM); err != nil {
		return
	}
	if s.fasta, err = process.Stage(ctx, env.Dir, in.Reference.FASTA); err != nil {
		return
	}
	for _, site := range in.KnownSites {
		var vcf string
		if vcf, err = process.Stage(ctx, env.Dir, site.VCF); err != nil {
			return
		}
		s.knownSites = append(s.knownSites, vcf)
	}
	if in.Intervals != nil {
		if s.bed, err = process.Stage(ctx, env.Dir, in.Intervals.BED); err != nil {
			return
		}
		var summary interval.Summary
		if summary, err = interval.Check(ctx, s.bed); err != nil {
			return
		}
		log.Printf("bqsr: %s: %d intervals on %d chromosomes, %d bases",
			s.bed, summary.Intervals, summary.Chroms, summary.Bases)
	}
	return
}

func requireArtifact(env *process.Env, name string) error {
	if !env.Exists(name) {
		return errors.E(errors.NotExist, "bqsr: expected output is missing:", name)
	}
	return nil
}

// sameFile reports whether a and b name the same local path.
func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

func verifyReadGroup(ctx context.Context, env *process.Env, name string, spec readgroup.Spec) error {
	rgs, err := bamstat.ReadGroups(ctx, env.Path(name))
	if err != nil {
		return err
	}
	if len(rgs) != 1 {
		return errors.E(errors.Integrity, fmt.Sprintf("bqsr: %s has %d read groups, want 1", name, len(rgs)))
	}
	if got, want := bamstat.ReadGroupTag(rgs[0], "SM"), spec.Value("-SM"); got != want {
		return errors.E(errors.Integrity, fmt.Sprintf("bqsr: %s read group sample is %q, want %q", name, got, want))
	}
	return nil
}

// Run runs the process in env. Input validation, including the read-group
// specification, completes before any external tool is started. Tool
// failures are returned unmodified; a missing bigwig track is only
// reported.
func Run(ctx context.Context, env *process.Env, in Inputs, opts *Opts) (*Outputs, error) {
	if opts == nil {
		o := DefaultOpts
		opts = &o
	}
	stringency, err := in.Validate()
	if err != nil {
		return nil, err
	}
	var rg readgroup.Spec
	if in.ReadGroup != "" {
		if rg, err = readgroup.Parse(in.ReadGroup); err != nil {
			return nil, err
		}
	}
	log.Debug.Printf("bqsr: run %s: %s", env.RunID, DataName(in))

	inputs, err := stage(ctx, env, in)
	if err != nil {
		return nil, err
	}
	names := NewNames(inputs.bam)
	if sameFile(inputs.bam, env.Path(names.BAM)) {
		return nil, errors.E(errors.Invalid,
			fmt.Sprintf("bqsr: input %s would be overwritten by the recalibrated alignment; run in another directory", inputs.bam))
	}
	run := func(name string, args ...string) error {
		return env.Runner.Run(ctx, toolrun.Cmd{Name: name, Args: args})
	}

	rgBAM := names.ReadGroupBAM()
	if in.ReadGroup != "" {
		log.Printf("bqsr: replacing read groups of %s with %s", inputs.bam, rg.String())
		args := append([]string{
			"AddOrReplaceReadGroups",
			"--INPUT", inputs.bam,
			"--VALIDATION_STRINGENCY", stringency,
			"--OUTPUT", rgBAM,
		}, rg.Args()...)
		if err := run(opts.GATK, args...); err != nil {
			return nil, err
		}
		if err := requireArtifact(env, rgBAM); err != nil {
			return nil, err
		}
		if opts.VerifyReadGroups {
			if err := verifyReadGroup(ctx, env, rgBAM, rg); err != nil {
				return nil, err
			}
		}
	} else if err := process.CopyFile(ctx, inputs.bam, env.Path(rgBAM)); err != nil {
		return nil, err
	}

	if err := run(opts.Samtools, "index", rgBAM); err != nil {
		return nil, err
	}

	recalTable := names.RecalTable()
	brArgs := []string{
		"BaseRecalibrator",
		"--input", rgBAM,
		"--output", recalTable,
		"--reference", inputs.fasta,
		"--read-validation-stringency", stringency,
	}
	if inputs.bed != "" {
		brArgs = append(brArgs, "--intervals", inputs.bed)
	}
	for _, vcf := range inputs.knownSites {
		brArgs = append(brArgs, "--known-sites", vcf)
	}
	if err := run(opts.GATK, brArgs...); err != nil {
		return nil, err
	}
	if err := requireArtifact(env, recalTable); err != nil {
		return nil, err
	}
	env.Reporter.Progress(0.5)

	// The recalibrated alignment takes the original upload's name, not the
	// _RG intermediate's.
	bam := names.BAM
	if err := run(opts.GATK,
		"ApplyBQSR",
		"--input", rgBAM,
		"--output", bam,
		"--reference", inputs.fasta,
		"--bqsr-recal-file", recalTable,
		"--read-validation-stringency", stringency,
	); err != nil {
		return nil, err
	}
	if err := requireArtifact(env, bam); err != nil {
		return nil, err
	}

	stats := names.Stats()
	if err := env.Runner.Run(ctx, toolrun.Cmd{
		Name:   opts.Samtools,
		Args:   []string{"flagstat", bam},
		Stdout: stats,
	}); err != nil {
		return nil, err
	}
	env.Reporter.Progress(0.8)

	cores := env.Cores
	if cores < 1 {
		env.Reporter.Warning(fmt.Sprintf("%d cores requested, using 1", cores))
		cores = 1
	}
	if err := run(opts.BamToBigwig, bam, in.BAM.Species, strconv.Itoa(cores)); err != nil {
		return nil, err
	}
	out := &Outputs{
		BAM:        bam,
		BAI:        names.BAI(),
		Stats:      stats,
		Species:    in.BAM.Species,
		Build:      in.BAM.Build,
		RecalTable: recalTable,
	}
	if bigwig := names.Bigwig(); env.Exists(bigwig) {
		out.Bigwig = bigwig
	} else {
		env.Reporter.Info("BigWig file not calculated.")
	}
	env.Reporter.Progress(0.9)
	return out, nil
}
