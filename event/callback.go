package event

import "context"

// AppliedFunc is called for each applied augmentation.
type AppliedFunc func(ctx context.Context, ev Applied) error

// PassFunc is called for each pass summary.
type PassFunc func(ctx context.Context, p Pass) error

// Callback delivers events via in-process function calls with zero
// serialisation. Either handler may be nil.
type Callback struct {
	onApplied AppliedFunc
	onPass    PassFunc
}

// NewCallback creates a Callback sink.
func NewCallback(onApplied AppliedFunc, onPass PassFunc) *Callback {
	return &Callback{onApplied: onApplied, onPass: onPass}
}

func (c *Callback) SendApplied(ctx context.Context, ev Applied) error {
	if c.onApplied != nil {
		return c.onApplied(ctx, ev)
	}
	return nil
}

func (c *Callback) SendPass(ctx context.Context, p Pass) error {
	if c.onPass != nil {
		return c.onPass(ctx, p)
	}
	return nil
}

func (c *Callback) Close() error { return nil }
