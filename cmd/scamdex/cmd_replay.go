package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sush8471/ScamDEX-AI/internal/domain"
	"github.com/sush8471/ScamDEX-AI/internal/session"
)

func newReplayCmd(flags *rootFlags) *cobra.Command {
	var export bool

	cmd := &cobra.Command{
		Use:   "replay FILE",
		Short: "Feed recorded counterparty messages through a fresh investigation",
		Long: "FILE is either plain text with one counterparty message per line, or an\n" +
			"exported transcript whose counterparty messages are replayed in order.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := readReplay(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			eng, err := openEngine(ctx, flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			out := cmd.OutOrStdout()
			id := eng.Start(ctx).State.SessionID
			for _, line := range lines {
				fmt.Fprintf(out, "scammer>  %s\n", line)
				res, err := eng.Submit(ctx, id, line)
				if err != nil {
					return fmt.Errorf("submit: %w", err)
				}
				printTurn(out, res)
				if res.Reason == session.RejectComplete || res.Reason == session.RejectResultMode {
					break
				}
			}

			if export {
				waitForResult(cmd, eng, id)
				tr, err := eng.Export(ctx, id)
				if err != nil {
					return err
				}
				return writeTranscript(out, tr)
			}
			view, err := eng.Get(ctx, id)
			if err != nil {
				return err
			}
			printSummary(out, view)
			return nil
		},
	}
	cmd.Flags().BoolVar(&export, "export", false, "Print the transcript JSON instead of a summary")
	return cmd
}

// waitForResult gives a pending completion a moment to land so the exported
// end time reflects it.
func waitForResult(cmd *cobra.Command, eng *localEngine, id string) {
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		v, err := eng.Get(cmd.Context(), id)
		if err != nil || v.ResultMode || !v.State.InvestigationComplete {
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
}

func readReplay(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read replay file: %w", err)
	}

	var tr domain.Transcript
	if json.Unmarshal(data, &tr) == nil && len(tr.Messages) > 0 {
		var lines []string
		for _, m := range tr.Messages {
			if m.Sender == domain.SenderCounterparty {
				lines = append(lines, m.Text)
			}
		}
		return lines, nil
	}

	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("replay file %s has no messages", path)
	}
	return lines, nil
}
