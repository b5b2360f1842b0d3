package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/resolwebio/bio/bqsr"
	"github.com/resolwebio/bio/process"
	"github.com/resolwebio/bio/readgroup"
	"github.com/resolwebio/bio/toolrun"
	"v.io/x/lib/cmdline"
)

// runOpts mirrors the flags of the run command.
type runOpts struct {
	inputsPath string
	outputs    string
	dir        string
	cores      int

	bam, sampleName, species, build string
	reference                       string
	knownSites                      string
	intervals                       string
	readGroup                       string
	stringency                      string

	tools bqsr.Opts
}

func newCmdRun() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "run",
		Short: "Run base quality score recalibration",
		Long: `
Run reads its inputs from the -inputs JSON file, if given, and then from the
individual input flags; a nonempty flag overrides the file. The output record
is written as JSON to -outputs, or to stdout.`,
	}
	opts := runOpts{tools: bqsr.DefaultOpts}
	cmd.Flags.StringVar(&opts.inputsPath, "inputs", "", "JSON file holding the input record")
	cmd.Flags.StringVar(&opts.outputs, "outputs", "", "Write the output record here instead of stdout")
	cmd.Flags.StringVar(&opts.dir, "dir", ".", "Working directory; outputs are written here")
	cmd.Flags.IntVar(&opts.cores, "cores", 1, "Cores passed to bamtobigwig.sh")
	cmd.Flags.StringVar(&opts.bam, "bam", "", "Input BAM")
	cmd.Flags.StringVar(&opts.sampleName, "sample-name", "", "Sample name of the input BAM")
	cmd.Flags.StringVar(&opts.species, "species", "", "Species of the input BAM")
	cmd.Flags.StringVar(&opts.build, "build", "", "Genome build of the input BAM")
	cmd.Flags.StringVar(&opts.reference, "reference", "", "Reference genome FASTA")
	cmd.Flags.StringVar(&opts.knownSites, "known-sites", "", "Comma-separated known sites VCFs")
	cmd.Flags.StringVar(&opts.intervals, "intervals", "", "Optional BED restricting the computation")
	cmd.Flags.StringVar(&opts.readGroup, "read-group", "", `Replace read groups, e.g. "-ID=1;-LB=lib;-PL=ILLUMINA;-PU=unit;-SM=sample"`)
	cmd.Flags.StringVar(&opts.stringency, "validation-stringency", "", "STRICT, LENIENT or SILENT (default STRICT)")
	cmd.Flags.StringVar(&opts.tools.GATK, "gatk", bqsr.DefaultOpts.GATK, "gatk launcher")
	cmd.Flags.StringVar(&opts.tools.Samtools, "samtools", bqsr.DefaultOpts.Samtools, "samtools executable")
	cmd.Flags.StringVar(&opts.tools.BamToBigwig, "bamtobigwig", bqsr.DefaultOpts.BamToBigwig, "bigwig conversion script")
	cmd.Flags.BoolVar(&opts.tools.VerifyReadGroups, "verify-read-groups", bqsr.DefaultOpts.VerifyReadGroups,
		"Check the header of the read-group-replaced BAM")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 0 {
			return env.UsageErrorf("run takes no arguments, but got %v", argv)
		}
		ctx := vcontext.Background()
		out, err := runProcess(ctx, opts)
		if err != nil {
			return err
		}
		return writeOutputs(ctx, opts.outputs, env.Stdout, out)
	})
	return cmd
}

func loadInputs(ctx context.Context, path string) (in bqsr.Inputs, err error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return in, errors.E(err, "open inputs", path)
	}
	defer func() {
		if cerr := f.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	data, err := ioutil.ReadAll(f.Reader(ctx))
	if err != nil {
		return in, errors.E(err, "read inputs", path)
	}
	if err = json.Unmarshal(data, &in); err != nil {
		return in, errors.E(errors.Invalid, err, path)
	}
	return in, nil
}

// inputs assembles the input record from the -inputs file and the flags.
func (o runOpts) inputs(ctx context.Context) (in bqsr.Inputs, err error) {
	if o.inputsPath != "" {
		if in, err = loadInputs(ctx, o.inputsPath); err != nil {
			return
		}
	}
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&in.BAM.BAM, o.bam)
	set(&in.BAM.SampleName, o.sampleName)
	set(&in.BAM.Species, o.species)
	set(&in.BAM.Build, o.build)
	set(&in.Reference.FASTA, o.reference)
	set(&in.ReadGroup, o.readGroup)
	set(&in.ValidationStringency, o.stringency)
	if o.knownSites != "" {
		in.KnownSites = nil
		for _, vcf := range strings.Split(o.knownSites, ",") {
			in.KnownSites = append(in.KnownSites, bqsr.Variants{VCF: vcf})
		}
	}
	if o.intervals != "" {
		in.Intervals = &bqsr.Intervals{BED: o.intervals}
	}
	return
}

func runProcess(ctx context.Context, o runOpts) (*bqsr.Outputs, error) {
	in, err := o.inputs(ctx)
	if err != nil {
		return nil, err
	}
	dir, err := filepath.Abs(o.dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.E(err, "mkdir", dir)
	}
	env := process.NewEnv(bqsr.Descriptor.Slug, dir, toolrun.NewExec(dir))
	env.Cores = o.cores
	log.Printf("bqsr %s: run %s in %s", bqsr.Descriptor.Version, env.RunID, dir)
	tools := o.tools
	return bqsr.Run(ctx, env, in, &tools)
}

func writeOutputs(ctx context.Context, path string, stdout io.Writer, out *bqsr.Outputs) error {
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "" {
		_, err = stdout.Write(data)
		return err
	}
	f, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(err, "create", path)
	}
	if _, err = f.Writer(ctx).Write(data); err != nil {
		f.Discard(ctx)
		return errors.E(err, "write", path)
	}
	return f.Close(ctx)
}

func newCmdValidateReadGroup() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "validate-read-group",
		Short:    "Check a read-group specification and print the AddOrReplaceReadGroups arguments",
		ArgsName: "spec",
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return env.UsageErrorf("validate-read-group takes one spec argument, but got %v", argv)
		}
		return validateReadGroup(env.Stdout, argv[0])
	})
	return cmd
}

func validateReadGroup(w io.Writer, spec string) error {
	rg, err := readgroup.Parse(spec)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, strings.Join(rg.Args(), " "))
	return err
}
