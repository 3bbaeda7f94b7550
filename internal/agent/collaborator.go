package agent

import (
	"context"
	"errors"
)

var (
	// ErrCollaborator wraps every failure talking to the collaborator.
	ErrCollaborator = errors.New("collaborator call failed")
	// ErrUnavailable is returned when no collaborator is configured.
	ErrUnavailable = errors.New("collaborator not configured")
)

// Collaborator generates the operator's reply for a counterparty turn.
// Implementations make a single attempt; callers fall back on any error.
type Collaborator interface {
	Converse(ctx context.Context, req Request) (Verdict, error)
}

// Offline is a Collaborator that is never reachable, so every turn takes the
// fallback path.
type Offline struct{}

// Converse always fails with ErrUnavailable.
func (Offline) Converse(context.Context, Request) (Verdict, error) {
	return Verdict{}, ErrUnavailable
}

// Ensure implementations satisfy Collaborator.
var (
	_ Collaborator = (*WebhookClient)(nil)
	_ Collaborator = Offline{}
)
