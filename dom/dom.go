// Package dom abstracts the live document tree the pipeline reconciles.
//
// Two backends implement it: rodom drives a real page over the Chrome
// DevTools Protocol, memdom holds a synthetic in-memory tree for tests and
// offline runs. Appliers and the reconciliation driver only ever see these
// interfaces, so the same marker-guarded logic is exercised against both.
//
// Error philosophy: the host's markup is not contractually stable, so
// "element not found" is an ordinary answer, not an error. Query returns
// (nil, false); mutating a node the host has since removed degrades to a
// no-op error the caller may ignore.
package dom

import (
	"context"
	"net/url"
)

// Position names an insertion point relative to an element, mirroring
// insertAdjacentHTML.
type Position string

const (
	BeforeBegin Position = "beforebegin"
	AfterBegin  Position = "afterbegin"
	BeforeEnd   Position = "beforeend"
	AfterEnd    Position = "afterend"
)

// Element is one live node. Implementations wrap a backend handle; two
// Elements may refer to the same underlying node.
type Element interface {
	// Tag returns the lower-case tag name.
	Tag() string

	// Text returns the concatenated text content of the subtree.
	Text() string

	// Attr returns the attribute value, or "" when absent.
	Attr(name string) string

	// SetAttr sets an attribute.
	SetAttr(name, value string) error

	// RemoveAttr removes an attribute. Removing an absent attribute is a
	// no-op.
	RemoveAttr(name string) error

	// HasClass reports whether the class list contains class.
	HasClass(class string) bool

	// Query returns the first descendant matching the CSS selector.
	Query(selector string) (Element, bool)

	// QueryAll returns all descendants matching the CSS selector.
	QueryAll(selector string) []Element

	// InsertHTML parses fragment and inserts it at pos, as
	// insertAdjacentHTML does.
	InsertHTML(pos Position, fragment string) error

	// Remove detaches the element from the tree.
	Remove() error

	// Hide suppresses display of the element without removing it. The
	// node stays in the tree and remains clickable programmatically.
	Hide() error

	// Click activates the element the way a script-driven click does,
	// ignoring visibility.
	Click() error

	// OnClick attaches an activation handler. Handlers attached here
	// suppress the default action for the activation they observe.
	OnClick(fn func()) error

	// ReplaceWithTwin substitutes the element with a visual clone that
	// carries none of the original's handlers, and returns the clone.
	ReplaceWithTwin() (Element, error)
}

// Document is the page-level view.
type Document interface {
	// Query returns the first element in the document matching selector.
	Query(selector string) (Element, bool)

	// QueryAll returns all elements matching selector.
	QueryAll(selector string) []Element

	// ElementByID resolves an element by its id attribute.
	ElementByID(id string) (Element, bool)

	// Root returns the document element (html).
	Root() (Element, bool)

	// Body returns the body element.
	Body() (Element, bool)

	// URL returns the document's current location. Never nil; an
	// unparseable location yields an empty URL.
	URL() *url.URL

	// Navigate performs a full navigation to rawURL.
	Navigate(rawURL string) error

	// PrefersDark reports the viewer's device color-scheme preference.
	PrefersDark() bool

	// Watch returns a coalesced change-notification channel. Each receive
	// means "the tree changed since you last looked" — a trigger to
	// re-scan, never a diff. The channel closes when ctx is done.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
