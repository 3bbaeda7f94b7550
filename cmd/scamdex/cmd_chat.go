package main

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"
)

func newChatCmd(flags *rootFlags) *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Play the counterparty on stdin; the engine replies as the operator",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			eng, err := openEngine(ctx, flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			out := cmd.OutOrStdout()
			if sessionID == "" {
				sessionID = eng.Start(ctx).State.SessionID
			}
			fmt.Fprintf(out, "Session %s. Type messages, Ctrl-D to finish.\n", sessionID)

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				res, err := eng.Submit(ctx, sessionID, scanner.Text())
				if err != nil {
					return fmt.Errorf("submit: %w", err)
				}
				printTurn(out, res)
				if res.View.ResultMode {
					break
				}
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			view, err := eng.Get(ctx, sessionID)
			if err != nil {
				return err
			}
			printSummary(out, view)
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "Resume a stored session instead of starting a new one")
	return cmd
}
