// Package theme aligns the page's color theme with the viewer's device
// preference. The host has a hidden dark theme: a theme=dark query
// parameter switches it on, and the document root's data-theme attribute
// tracks the active theme.
//
// Sync is one-shot by design — it runs once per page load, and a mismatch
// triggers a full navigation to the corrected URL, after which the new
// load syncs again (and then matches).
package theme

import (
	"fmt"
	"log/slog"

	"github.com/hazyhaar/zhikeeper/dom"
)

// Mode controls the sync behavior.
type Mode string

const (
	// ModeAuto follows the device color-scheme preference.
	ModeAuto Mode = "auto"
	// ModeLight and ModeDark force a theme.
	ModeLight Mode = "light"
	ModeDark  Mode = "dark"
	// ModeOff disables theme syncing.
	ModeOff Mode = "off"
)

// DefaultTheme is what the host renders when nothing selects a theme.
const DefaultTheme = "light"

// Sync compares the wanted theme with the page's current one and, on
// mismatch, navigates to the same URL with a corrected theme parameter.
// Returns whether a navigation was issued.
func Sync(doc dom.Document, mode Mode, logger *slog.Logger) (bool, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if mode == ModeOff {
		return false, nil
	}

	want := string(mode)
	if mode == ModeAuto || mode == "" {
		want = DefaultTheme
		if doc.PrefersDark() {
			want = "dark"
		}
	}

	have := Current(doc)
	if have == want {
		return false, nil
	}

	u := doc.URL()
	q := u.Query()
	q.Set("theme", want)
	u.RawQuery = q.Encode()

	logger.Info("theme: mismatch, navigating", "have", have, "want", want, "url", u.String())
	if err := doc.Navigate(u.String()); err != nil {
		return false, fmt.Errorf("theme: navigate: %w", err)
	}
	return true, nil
}

// Current reads the page's active theme: the root data-theme attribute
// when valid, else the URL's theme parameter, else the host default.
func Current(doc dom.Document) string {
	if root, ok := doc.Root(); ok {
		if t := root.Attr("data-theme"); t == "dark" || t == "light" {
			return t
		}
	}
	if t := doc.URL().Query().Get("theme"); t == "dark" || t == "light" {
		return t
	}
	return DefaultTheme
}
