// Package reconcile drives the augmentation pipeline: a single-goroutine
// loop that converts document change notifications and a fixed-interval
// sweep into reconciliation passes over the page's content items.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/hazyhaar/zhikeeper/augment"
	"github.com/hazyhaar/zhikeeper/content"
	"github.com/hazyhaar/zhikeeper/dom"
	"github.com/hazyhaar/zhikeeper/event"
	"github.com/hazyhaar/zhikeeper/extract"
)

// DefaultSweepInterval is how often the backstop sweep re-checks the
// augmentations the host page can silently undo (button replacement
// resets the share rewrite, re-renders restore hidden action buttons).
const DefaultSweepInterval = time.Second

// Augmentation names as reported in events.
const (
	AugRatioBadge  = "ratio-badge"
	AugKindBadge   = "kind-badge"
	AugTimePanel   = "time-panel"
	AugRelocate    = "relocate-actions"
	AugShare       = "share-rewrite"
	AugMenuProxies = "menu-proxies"
)

// Keeper reconciles one document. All passes run on one goroutine;
// triggers only post into its loop.
type Keeper struct {
	doc    dom.Document
	aug    *augment.Augmenter
	sink   event.Sink
	logger *slog.Logger
	sweep  time.Duration

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// Option configures a Keeper.
type Option func(*Keeper)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(k *Keeper) { k.logger = l }
}

// WithSweepInterval overrides the backstop sweep cadence. Zero or
// negative disables the sweep.
func WithSweepInterval(d time.Duration) Option {
	return func(k *Keeper) { k.sweep = d }
}

// WithSink routes reconciliation events to the sink. Multiple sinks go
// through an event.Router.
func WithSink(s event.Sink) Option {
	return func(k *Keeper) { k.sink = s }
}

// New creates a Keeper over doc applying aug's augmentations.
func New(doc dom.Document, aug *augment.Augmenter, opts ...Option) *Keeper {
	k := &Keeper{
		doc:    doc,
		aug:    aug,
		logger: slog.Default(),
		sweep:  DefaultSweepInterval,
	}
	for _, o := range opts {
		o(k)
	}
	return k
}

// Start runs the initial pass, then launches the reconciliation loop.
// It returns after the initial pass completes; the loop runs until ctx
// is cancelled or Stop is called.
func (k *Keeper) Start(ctx context.Context) error {
	k.mu.Lock()
	if k.started {
		k.mu.Unlock()
		return errors.New("reconcile: keeper already started")
	}
	k.started = true
	loopCtx, cancel := context.WithCancel(ctx)
	k.cancel = cancel
	k.done = make(chan struct{})
	k.mu.Unlock()

	ticks, err := k.doc.Watch(loopCtx)
	if err != nil {
		cancel()
		close(k.done)
		return fmt.Errorf("reconcile: watch document: %w", err)
	}

	k.pass(loopCtx, event.TriggerInitial)

	go k.loop(loopCtx, ticks)
	return nil
}

// Stop cancels the loop and waits for it to drain. Safe to call more
// than once.
func (k *Keeper) Stop() {
	k.mu.Lock()
	cancel, done := k.cancel, k.done
	k.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (k *Keeper) loop(ctx context.Context, ticks <-chan struct{}) {
	defer close(k.done)

	var sweepC <-chan time.Time
	if k.sweep > 0 {
		ticker := time.NewTicker(k.sweep)
		defer ticker.Stop()
		sweepC = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ticks:
			if !ok {
				return
			}
			k.pass(ctx, event.TriggerMutation)
		case <-sweepC:
			k.sweepPass(ctx)
		}
	}
}

// pass reconciles every content item on the page. Item failures are
// logged and never abort the pass.
func (k *Keeper) pass(ctx context.Context, trigger event.Trigger) {
	start := time.Now()
	items := k.doc.QueryAll(augment.ItemSelector)
	applied := 0
	for i, item := range items {
		applied += k.reconcileItem(ctx, item, i)
	}
	k.emitPass(ctx, trigger, len(items), applied, time.Since(start))
	if applied > 0 {
		k.logger.Debug("reconcile: pass complete",
			"trigger", trigger, "items", len(items), "applied", applied)
	}
}

// sweepPass re-runs only the augmentations the host can undo without a
// mutation the watcher is guaranteed to surface.
func (k *Keeper) sweepPass(ctx context.Context) {
	start := time.Now()
	items := k.doc.QueryAll(augment.ItemSelector)
	applied := 0
	for i, item := range items {
		kind, ok := extract.KindOf(item)
		if !ok {
			continue
		}
		if n := k.aug.RelocateActions(item); n > 0 {
			applied += n
			k.emitApplied(ctx, item, i, kind, AugRelocate)
		}
		if k.aug.RewireShare(ctx, item, kind) {
			applied++
			k.emitApplied(ctx, item, i, kind, AugShare)
		}
	}
	if applied > 0 {
		k.emitPass(ctx, event.TriggerSweep, len(items), applied, time.Since(start))
	}
}

// reconcileItem runs the full applier chain over one item and returns
// how many augmentations were newly applied. The time panel runs before
// the ratio badge: on question pages the badge anchors after the panel.
func (k *Keeper) reconcileItem(ctx context.Context, item dom.Element, ordinal int) int {
	kind, ok := extract.KindOf(item)
	if !ok {
		return 0
	}
	rec := extract.Extract(item)

	applied := 0
	if k.aug.ApplyTimePanel(item, rec) {
		applied++
		k.emitApplied(ctx, item, ordinal, kind, AugTimePanel)
	}
	if k.aug.ApplyRatioBadge(item, rec) {
		applied++
		k.emitApplied(ctx, item, ordinal, kind, AugRatioBadge)
	}
	if k.aug.ApplyKindBadge(item, rec) {
		applied++
		k.emitApplied(ctx, item, ordinal, kind, AugKindBadge)
	}
	if n := k.aug.RelocateActions(item); n > 0 {
		applied += n
		k.emitApplied(ctx, item, ordinal, kind, AugRelocate)
	}
	if k.aug.RewireShare(ctx, item, kind) {
		applied++
		k.emitApplied(ctx, item, ordinal, kind, AugShare)
	}
	if k.aug.EnhanceMenu(item) {
		applied++
		k.emitApplied(ctx, item, ordinal, kind, AugMenuProxies)
	}
	return applied
}

func (k *Keeper) emitApplied(ctx context.Context, item dom.Element, ordinal int, kind content.Kind, aug string) {
	if k.sink == nil {
		return
	}
	ev := event.Applied{
		ID:           event.NewID(),
		PageURL:      k.doc.URL().String(),
		ItemID:       itemID(item, ordinal),
		Kind:         string(kind),
		Augmentation: aug,
		Timestamp:    event.Now(),
	}
	if err := k.sink.SendApplied(ctx, ev); err != nil {
		k.logger.Warn("reconcile: emit applied failed", "error", err)
	}
}

func (k *Keeper) emitPass(ctx context.Context, trigger event.Trigger, items, applied int, dur time.Duration) {
	if k.sink == nil {
		return
	}
	p := event.Pass{
		ID:         event.NewID(),
		PageURL:    k.doc.URL().String(),
		Trigger:    trigger,
		Items:      items,
		Applied:    applied,
		DurationMS: dur.Milliseconds(),
		Timestamp:  event.Now(),
	}
	if err := k.sink.SendPass(ctx, p); err != nil {
		k.logger.Warn("reconcile: emit pass failed", "error", err)
	}
}

// itemID names an item for event records: the host's name attribute
// (the content's numeric ID on zhihu markup) when present, otherwise
// the item's ordinal position in the pass.
func itemID(item dom.Element, ordinal int) string {
	if name := item.Attr("name"); name != "" {
		return name
	}
	return "#" + strconv.Itoa(ordinal)
}
