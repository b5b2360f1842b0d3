package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/vcontext"
	"github.com/resolwebio/bio/bamstat"
	"github.com/resolwebio/bio/bqsr"
	"github.com/resolwebio/bio/process"
	"gopkg.in/yaml.v3"
	"v.io/x/lib/cmdline"
)

func newCmdDescribe() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "describe",
		Short: "Print the process descriptor",
	}
	format := cmd.Flags.String("format", "yaml", `Output format, "yaml" or "json"`)
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 0 {
			return env.UsageErrorf("describe takes no arguments, but got %v", argv)
		}
		return describe(env.Stdout, &bqsr.Descriptor, *format)
	})
	return cmd
}

func describe(w io.Writer, d *process.Descriptor, format string) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case "yaml":
		data, err = yaml.Marshal(d)
	case "json":
		if data, err = json.MarshalIndent(d, "", "  "); err == nil {
			data = append(data, '\n')
		}
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func newCmdFlagstat() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "flagstat",
		Short:    "Show stats of a BAM file. This command is a clone of 'samtools flagstat'.",
		ArgsName: "path",
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return env.UsageErrorf("flagstat takes one pathname argument, but got %v", argv)
		}
		return bamstat.Flagstat(vcontext.Background(), argv[0], env.Stdout)
	})
	return cmd
}
