package event

import "context"

// Sink is the output interface. Implementations deliver events to
// different backends (stdout, webhook, in-process callback).
type Sink interface {
	SendApplied(ctx context.Context, ev Applied) error
	SendPass(ctx context.Context, p Pass) error
	Close() error
}

// envelope wraps every serialized event with its type.
type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}
