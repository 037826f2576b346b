// Package event defines the observability side channel of the keeper:
// structured records of what the reconciler did, delivered to pluggable
// sinks. Consumers use it to watch convergence and spot host markup
// drift (a pass that stops applying anything it used to apply).
package event

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Trigger names what caused a reconciliation pass.
type Trigger string

const (
	TriggerInitial  Trigger = "initial"
	TriggerMutation Trigger = "mutation"
	TriggerSweep    Trigger = "sweep"
)

// Applied records one augmentation newly applied to one item.
type Applied struct {
	ID           string `json:"id"`
	PageURL      string `json:"page_url"`
	ItemID       string `json:"item_id"` // host item name attr, or ordinal
	Kind         string `json:"kind"`
	Augmentation string `json:"augmentation"`
	Timestamp    int64  `json:"timestamp"` // epoch milliseconds
}

// Pass summarises one full reconciliation pass.
type Pass struct {
	ID         string  `json:"id"`
	PageURL    string  `json:"page_url"`
	Trigger    Trigger `json:"trigger"`
	Items      int     `json:"items"`
	Applied    int     `json:"applied"`
	DurationMS int64   `json:"duration_ms"`
	Timestamp  int64   `json:"timestamp"`
}

// NewID returns a lexically sortable event ID.
func NewID() string {
	return ulid.Make().String()
}

// Now returns the current time in epoch milliseconds.
func Now() int64 {
	return time.Now().UnixMilli()
}
