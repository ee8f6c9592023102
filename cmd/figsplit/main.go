// Command figsplit partitions the figurative-language corpus into
// reproducible train, validation, and test artifacts.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "figsplit: %v\n", err)
		os.Exit(2)
	}
}

func run(args []string, stdout io.Writer, stderr io.Writer) error {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func newRootCmd(stdout io.Writer, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "figsplit",
		Short:         "Partition the corpus into train, validation, and test artifacts",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(*cobra.Command, []string) error {
			return usageError()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.AddCommand(
		newBuildCmd(stdout, stderr),
		newVerifyCmd(stdout),
		newDriftCmd(stdout),
	)
	return root
}

func usageError() error {
	return errors.New("usage: figsplit <build|verify|drift> [flags]")
}
