package rodom

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/hazyhaar/zhikeeper/dom"
)

// Runtime bindings bridging page events back into Go. One binding per
// concern: clicks on injected elements, and MutationObserver batches.
const (
	clickBinding    = "__zk_click"
	mutationBinding = "__zk_mutation"
)

// DefaultDebounceWindow is the trailing-edge coalescing window for
// mutation notifications. A busy page fires MutationObserver callbacks
// far faster than a reconciliation pass is worth running.
const DefaultDebounceWindow = 250 * time.Millisecond

// DefaultDebounceMax forces a tick after this many raw pings even while
// the window keeps resetting, so continuous mutation cannot starve the
// reconciler.
const DefaultDebounceMax = 1000

// Document implements dom.Document over one rod page.
type Document struct {
	page   *rod.Page
	logger *slog.Logger

	mu       sync.Mutex
	handlers map[string]func()
	nextID   uint64

	debounce    time.Duration
	debounceMax int
	rawMut      chan struct{}
	watching    bool
}

var _ dom.Document = (*Document)(nil)

// DocumentOption configures a Document.
type DocumentOption func(*Document)

// WithDebounceWindow overrides the mutation coalescing window.
func WithDebounceWindow(d time.Duration) DocumentOption {
	return func(doc *Document) {
		if d > 0 {
			doc.debounce = d
		}
	}
}

// WithDebounceMax overrides the forced-tick ping threshold.
func WithDebounceMax(n int) DocumentOption {
	return func(doc *Document) {
		if n > 0 {
			doc.debounceMax = n
		}
	}
}

// newDocument wires the runtime bindings and starts the event listener.
func newDocument(ctx context.Context, page *rod.Page, logger *slog.Logger, opts ...DocumentOption) (*Document, error) {
	d := &Document{
		page:        page,
		logger:      logger,
		handlers:    make(map[string]func()),
		debounce:    DefaultDebounceWindow,
		debounceMax: DefaultDebounceMax,
		rawMut:      make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(d)
	}

	for _, name := range []string{clickBinding, mutationBinding} {
		if err := (proto.RuntimeAddBinding{Name: name}).Call(page); err != nil {
			return nil, fmt.Errorf("rodom: add binding %s: %w", name, err)
		}
	}

	go page.Context(ctx).EachEvent(func(e *proto.RuntimeBindingCalled) {
		switch e.Name {
		case clickBinding:
			d.dispatchClick(e.Payload)
		case mutationBinding:
			select {
			case d.rawMut <- struct{}{}:
			default:
			}
		}
	})()

	return d, nil
}

// NewDocument wraps an already-open rod page. The page must be loaded.
func NewDocument(ctx context.Context, page *rod.Page, logger *slog.Logger, opts ...DocumentOption) (*Document, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return newDocument(ctx, page, logger, opts...)
}

// Page exposes the underlying rod page for callers that need raw CDP
// access, such as the clipboard writer.
func (d *Document) Page() *rod.Page {
	return d.page
}

func (d *Document) dispatchClick(id string) {
	d.mu.Lock()
	fn := d.handlers[id]
	d.mu.Unlock()
	if fn == nil {
		d.logger.Debug("rodom: click for unknown handler", "id", id)
		return
	}
	fn()
}

// registerHandler stores fn and returns its dispatch ID.
func (d *Document) registerHandler(fn func()) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	id := strconv.FormatUint(d.nextID, 10)
	d.handlers[id] = fn
	return id
}

func (d *Document) Query(selector string) (dom.Element, bool) {
	has, el, err := d.page.Has(selector)
	if err != nil || !has {
		return nil, false
	}
	return &element{doc: d, el: el}, true
}

func (d *Document) QueryAll(selector string) []dom.Element {
	els, err := d.page.Elements(selector)
	if err != nil {
		return nil
	}
	out := make([]dom.Element, 0, len(els))
	for _, el := range els {
		out = append(out, &element{doc: d, el: el})
	}
	return out
}

func (d *Document) ElementByID(id string) (dom.Element, bool) {
	return d.Query(fmt.Sprintf("[id=%q]", id))
}

func (d *Document) Root() (dom.Element, bool) {
	return d.Query("html")
}

func (d *Document) Body() (dom.Element, bool) {
	return d.Query("body")
}

func (d *Document) URL() *url.URL {
	info, err := d.page.Info()
	if err != nil {
		return &url.URL{}
	}
	u, err := url.Parse(info.URL)
	if err != nil {
		return &url.URL{}
	}
	return u
}

func (d *Document) Navigate(rawURL string) error {
	if err := d.page.Navigate(rawURL); err != nil {
		return fmt.Errorf("rodom: navigate %s: %w", rawURL, err)
	}
	if err := d.page.WaitLoad(); err != nil {
		d.logger.Warn("rodom: wait load after navigate", "url", rawURL, "error", err)
	}
	return nil
}

func (d *Document) PrefersDark() bool {
	res, err := d.page.Eval(`() => window.matchMedia("(prefers-color-scheme: dark)").matches`)
	if err != nil {
		return false
	}
	return res.Value.Bool()
}
