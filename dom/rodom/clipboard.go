package rodom

import (
	"context"
	"errors"
	"fmt"

	"github.com/hazyhaar/zhikeeper/clipboard"
)

// Clipboard writes citation text into the page session's clipboard.
// Primary path is the async Clipboard API; when the page revokes it or
// the document has lost focus, a hidden-textarea execCommand copy is
// the fallback.
type Clipboard struct {
	doc *Document
}

var _ clipboard.Clipboard = (*Clipboard)(nil)

// NewClipboard creates a clipboard writer bound to doc's page.
func NewClipboard(doc *Document) *Clipboard {
	return &Clipboard{doc: doc}
}

const writePrimaryJS = `async (text) => {
	if (!navigator.clipboard || !navigator.clipboard.writeText) {
		throw new Error("clipboard api unavailable");
	}
	await navigator.clipboard.writeText(text);
}`

const writeFallbackJS = `(text) => {
	const ta = document.createElement("textarea");
	ta.value = text;
	ta.style.position = "fixed";
	ta.style.opacity = "0";
	document.body.appendChild(ta);
	ta.select();
	const ok = document.execCommand("copy");
	ta.remove();
	if (!ok) {
		throw new Error("execCommand copy failed");
	}
}`

// WriteText copies text, trying the Clipboard API first and the legacy
// execCommand path second. It fails only when both paths fail.
func (c *Clipboard) WriteText(ctx context.Context, text string) error {
	page := c.doc.page.Context(ctx)

	_, primaryErr := page.Eval(writePrimaryJS, text)
	if primaryErr == nil {
		return nil
	}

	if _, fallbackErr := page.Eval(writeFallbackJS, text); fallbackErr != nil {
		return fmt.Errorf("rodom: clipboard write: %w",
			errors.Join(clipboard.ErrUnavailable, primaryErr, fallbackErr))
	}
	return nil
}
