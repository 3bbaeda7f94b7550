package main

import (
	"github.com/spf13/cobra"
)

func newExportCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export SESSION_ID",
		Short: "Print the transcript of a stored session as JSON",
		Long:  "Reads the session from the persistent store (--store sqlite, the default).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, err := openEngine(ctx, flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			tr, err := eng.Export(ctx, args[0])
			if err != nil {
				return err
			}
			return writeTranscript(cmd.OutOrStdout(), tr)
		},
	}
}
