// Package memdom implements dom.Document over an in-memory HTML tree.
//
// It exists so the reconciliation pipeline can run against a synthetic
// page: tests parse a fixture, mutate it through the same dom interfaces
// the production backend exposes, and observe coalesced change
// notifications — no browser involved. Click handlers live in a side
// table keyed by node, mirroring how the live backend keeps handlers
// outside the serialized tree.
package memdom

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/hazyhaar/zhikeeper/dom"
)

// Document is a synthetic page. All operations are safe for concurrent
// use; mutations notify watchers.
type Document struct {
	mu          sync.Mutex
	root        *html.Node // the html.Document node
	handlers    map[*html.Node][]func()
	selectors   map[string]cascadia.SelectorGroup
	watchers    []chan struct{}
	loc         *url.URL
	prefersDark bool
	navigations []string
}

// Option configures a Document.
type Option func(*Document)

// WithURL sets the document location. Default: https://www.zhihu.com/.
func WithURL(raw string) Option {
	return func(d *Document) {
		if u, err := url.Parse(raw); err == nil {
			d.loc = u
		}
	}
}

// WithPrefersDark sets the simulated device color-scheme preference.
func WithPrefersDark(dark bool) Option {
	return func(d *Document) { d.prefersDark = dark }
}

// Parse builds a Document from an HTML source. Parsing is lenient, as in
// a browser: malformed markup still yields a tree.
func Parse(src string, opts ...Option) (*Document, error) {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("memdom: parse: %w", err)
	}

	d := &Document{
		root:      root,
		handlers:  make(map[*html.Node][]func()),
		selectors: make(map[string]cascadia.SelectorGroup),
	}
	d.loc, _ = url.Parse("https://www.zhihu.com/")

	for _, o := range opts {
		o(d)
	}
	return d, nil
}

// compile returns a cached selector group. Invalid selectors match
// nothing: the host markup is queried with a fixed set of selectors, and
// a typo should surface as "not found", not a crash.
func (d *Document) compile(sel string) cascadia.SelectorGroup {
	if g, ok := d.selectors[sel]; ok {
		return g
	}
	g, err := cascadia.ParseGroup(sel)
	if err != nil {
		g = nil
	}
	d.selectors[sel] = g
	return g
}

// queryLocked collects descendants of scope matching sel, in tree order.
func (d *Document) queryLocked(scope *html.Node, sel string, firstOnly bool) []*html.Node {
	g := d.compile(sel)
	if g == nil {
		return nil
	}

	var out []*html.Node
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && g.Match(c) {
				out = append(out, c)
				if firstOnly {
					return false
				}
			}
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(scope)
	return out
}

func (d *Document) wrap(n *html.Node) *element {
	return &element{doc: d, node: n}
}

// notifyLocked wakes every watcher without blocking. A full channel means
// a notification is already pending — coalescing is the point.
func (d *Document) notifyLocked() {
	for _, ch := range d.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Query returns the first element in the document matching selector.
func (d *Document) Query(selector string) (dom.Element, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	nodes := d.queryLocked(d.root, selector, true)
	if len(nodes) == 0 {
		return nil, false
	}
	return d.wrap(nodes[0]), true
}

// QueryAll returns all elements matching selector, in tree order.
func (d *Document) QueryAll(selector string) []dom.Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	nodes := d.queryLocked(d.root, selector, false)
	out := make([]dom.Element, len(nodes))
	for i, n := range nodes {
		out[i] = d.wrap(n)
	}
	return out
}

// ElementByID resolves an element by its id attribute.
func (d *Document) ElementByID(id string) (dom.Element, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var found *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && getAttr(n, "id") == id {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)

	if found == nil {
		return nil, false
	}
	return d.wrap(found), true
}

// Root returns the html element.
func (d *Document) Root() (dom.Element, bool) {
	return d.topLevel("html")
}

// Body returns the body element.
func (d *Document) Body() (dom.Element, bool) {
	return d.topLevel("body")
}

func (d *Document) topLevel(tag string) (dom.Element, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var found *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == tag {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)

	if found == nil {
		return nil, false
	}
	return d.wrap(found), true
}

// URL returns the document location.
func (d *Document) URL() *url.URL {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.loc == nil {
		return &url.URL{}
	}
	u := *d.loc
	return &u
}

// Navigate records a navigation and moves the document location. The tree
// itself is untouched — a synthetic document has nothing to reload.
func (d *Document) Navigate(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("memdom: navigate: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.loc = u
	d.navigations = append(d.navigations, rawURL)
	return nil
}

// Navigations returns every URL passed to Navigate, in order. Test hook.
func (d *Document) Navigations() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.navigations...)
}

// PrefersDark reports the simulated device preference.
func (d *Document) PrefersDark() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.prefersDark
}

// Watch registers a coalesced change-notification channel, closed when
// ctx is done.
func (d *Document) Watch(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)

	d.mu.Lock()
	d.watchers = append(d.watchers, ch)
	d.mu.Unlock()

	go func() {
		<-ctx.Done()
		d.mu.Lock()
		for i, w := range d.watchers {
			if w == ch {
				d.watchers = append(d.watchers[:i], d.watchers[i+1:]...)
				break
			}
		}
		d.mu.Unlock()
		close(ch)
	}()

	return ch, nil
}

// Render serializes the current tree. Debug/test helper.
func (d *Document) Render() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var sb strings.Builder
	_ = html.Render(&sb, d.root)
	return sb.String()
}
