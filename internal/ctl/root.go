// Package ctl implements gophctl, the operator tool for a gophgram
// deployment: key generation, offline password hashing, schema migration
// and token inspection.
package ctl

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Execute builds the command tree and runs it against os.Args.
func Execute(version string) error {
	return NewRootCmd(version, os.Stdin, os.Stdout).Execute()
}

// NewRootCmd returns the gophctl command tree reading from in and writing to
// out.
func NewRootCmd(version string, in io.Reader, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "gophctl",
		Short:         "Operate a gophgram server",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetIn(in)
	cmd.SetOut(out)

	cmd.AddCommand(newKeygenCmd())
	cmd.AddCommand(newHashCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newInspectTokenCmd())

	return cmd
}
