package main

import (
	"fmt"
	"os"

	"github.com/eleven-am/cinelog/internal/cli"
	"github.com/eleven-am/cinelog/pkg/cinelog"
)

// Set via -ldflags at build time.
var (
	gitCommit string
	buildDate string
)

func main() {
	if err := Execute(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func Execute(args []string) error {
	cinelog.SetBuildInfo(gitCommit, buildDate, "")

	cmd := cli.NewRootCommand()
	cmd.SilenceErrors = true
	cmd.SetArgs(args)
	return cmd.Execute()
}
