package main

import (
	golog "log"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/file/s3file"
	"v.io/x/lib/cmdline"
)

func main() {
	golog.SetFlags(golog.Ldate | golog.Ltime | golog.Lmicroseconds | golog.Lshortfile)
	file.RegisterImplementation("s3", func() file.Implementation {
		return s3file.NewImplementation(s3file.NewDefaultProvider(session.Options{}), s3file.Options{})
	})
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(
		&cmdline.Command{
			Name:     "bio-bqsr",
			Short:    "Base quality score recalibration of BAM files",
			LookPath: false,
			Children: []*cmdline.Command{
				newCmdRun(),
				newCmdValidateReadGroup(),
				newCmdDescribe(),
				newCmdFlagstat(),
			},
		})
}
