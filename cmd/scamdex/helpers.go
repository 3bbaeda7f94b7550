package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/sush8471/ScamDEX-AI/internal/agent"
	"github.com/sush8471/ScamDEX-AI/internal/domain"
	"github.com/sush8471/ScamDEX-AI/internal/session"
	"github.com/sush8471/ScamDEX-AI/internal/store"
)

// localEngine is an engine bound to a repository the caller must close.
type localEngine struct {
	*session.Engine
	repo store.Repository
}

func (l *localEngine) Close() error { return l.repo.Close() }

func openEngine(ctx context.Context, flags *rootFlags, stderr io.Writer) (*localEngine, error) {
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	repo, err := store.Open(ctx, store.Backend{Kind: flags.store, DBPath: flags.dbPath})
	if err != nil {
		return nil, err
	}

	var collab agent.Collaborator = agent.Offline{}
	if flags.collaborator != "" {
		client, err := agent.NewWebhookClient(agent.WebhookConfig{
			URL:            flags.collaborator,
			RequestTimeout: 30 * time.Second,
		}, logger)
		if err != nil {
			_ = repo.Close()
			return nil, err
		}
		collab = client
	}

	opts := session.DefaultOptions()
	opts.Logger = logger
	if flags.fast {
		opts.FallbackDelay = 0
		opts.CompletionDelay = 0
		opts.FallbackCompletionDelay = 0
	}
	return &localEngine{
		Engine: session.NewEngine(collab, store.NewSessionStore(repo, logger), opts),
		repo:   repo,
	}, nil
}

// printTurn writes the operator reply and a one-line intel summary.
func printTurn(w io.Writer, out session.Outcome) {
	if !out.Accepted {
		fmt.Fprintf(w, "(ignored: %s)\n", out.Reason)
		return
	}
	if out.Reply != nil {
		fmt.Fprintf(w, "operator> %s\n", out.Reply.Text)
	}
	printIntel(w, out.View)
}

func printIntel(w io.Writer, v session.View) {
	in := v.State.Intel
	fmt.Fprintf(w, "  [%s | confidence %d%% | indicators %d | elapsed %s]\n",
		in.ScamType, in.Confidence, v.IndicatorCount, v.Elapsed)
}

func printSummary(w io.Writer, v session.View) {
	in := v.State.Intel
	fmt.Fprintf(w, "Session:    %s\n", v.State.SessionID)
	fmt.Fprintf(w, "Verdict:    %s (detected=%t)\n", in.ScamType, in.ScamDetected)
	fmt.Fprintf(w, "Confidence: %d%%\n", in.Confidence)
	for _, set := range []struct {
		name  string
		items []string
	}{
		{"UPI IDs", in.PaymentHandles.Items()},
		{"Phones", in.PhoneNumbers.Items()},
		{"Links", in.Links.Items()},
		{"Keywords", in.Keywords.Items()},
	} {
		if len(set.items) > 0 {
			fmt.Fprintf(w, "%-11s %v\n", set.name+":", set.items)
		}
	}
}

func writeTranscript(w io.Writer, tr domain.Transcript) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tr); err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	return nil
}
