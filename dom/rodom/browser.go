// Package rodom implements the dom interfaces over a live Chrome page
// driven through the DevTools Protocol. Queries and mutations run as
// JavaScript evaluated in the page; change notifications come from an
// injected MutationObserver bridged into Go over a runtime binding, and
// injected-element clicks come back over a second binding.
package rodom

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// BrowserConfig configures the browser manager.
type BrowserConfig struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome via launcher.
	RemoteURL string

	// Headful runs a visible Chrome instead of headless-shell.
	Headful bool

	// ResourceBlocking lists resource types to block (images, fonts,
	// media, stylesheets). The keeper only reads and rewrites markup, so
	// blocking heavy resources is usually safe.
	ResourceBlocking []string

	Logger *slog.Logger
}

func (c *BrowserConfig) defaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Manager owns the Chrome process and hands out pages.
type Manager struct {
	cfg     BrowserConfig
	browser *rod.Browser
	lnch    *launcher.Launcher
}

// NewManager creates a browser Manager. Call Start to launch Chrome.
func NewManager(cfg BrowserConfig) *Manager {
	cfg.defaults()
	return &Manager{cfg: cfg}
}

// Start launches Chrome, or connects to the configured remote instance.
func (m *Manager) Start(ctx context.Context) error {
	log := m.cfg.Logger

	var wsURL string
	if m.cfg.RemoteURL != "" {
		wsURL = m.cfg.RemoteURL
		log.Info("rodom: connecting to remote browser", "url", wsURL)
	} else {
		l := launcher.New().
			Headless(!m.cfg.Headful).
			Set("disable-blink-features", "AutomationControlled")
		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("rodom: launch chrome: %w", err)
		}
		wsURL = u
		m.lnch = l
		log.Info("rodom: launched local chrome", "headful", m.cfg.Headful)
	}

	b := rod.New().ControlURL(wsURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return fmt.Errorf("rodom: connect: %w", err)
	}
	if err := b.IgnoreCertErrors(true); err != nil {
		log.Warn("rodom: ignore cert errors failed", "error", err)
	}
	m.browser = b
	return nil
}

// Close shuts down Chrome.
func (m *Manager) Close() error {
	if m.browser != nil {
		m.browser.Close()
		m.browser = nil
	}
	if m.lnch != nil {
		m.lnch.Cleanup()
		m.lnch = nil
	}
	return nil
}

// Open creates a stealth tab, grants clipboard access for the page's
// origin, navigates, waits for load, and wraps the page as a Document.
func (m *Manager) Open(ctx context.Context, pageURL string, opts ...DocumentOption) (*Document, error) {
	if m.browser == nil {
		return nil, fmt.Errorf("rodom: manager not started")
	}

	page, err := stealth.Page(m.browser)
	if err != nil {
		return nil, fmt.Errorf("rodom: create tab: %w", err)
	}

	if len(m.cfg.ResourceBlocking) > 0 {
		if err := applyResourceBlocking(page, m.cfg.ResourceBlocking); err != nil {
			m.cfg.Logger.Warn("rodom: resource blocking failed", "error", err)
		}
	}

	// The share rewrite writes citations via navigator.clipboard, which
	// needs an explicit permission grant under automation.
	grant := proto.BrowserGrantPermissions{
		Permissions: []proto.BrowserPermissionType{
			proto.BrowserPermissionTypeClipboardReadWrite,
			proto.BrowserPermissionTypeClipboardSanitizedWrite,
		},
	}
	if err := grant.Call(m.browser); err != nil {
		m.cfg.Logger.Warn("rodom: clipboard permission grant failed", "error", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		page.Close()
		return nil, fmt.Errorf("rodom: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		m.cfg.Logger.Warn("rodom: wait load timeout", "url", pageURL, "error", err)
	}

	doc, err := newDocument(ctx, page, m.cfg.Logger, opts...)
	if err != nil {
		page.Close()
		return nil, err
	}
	return doc, nil
}

// applyResourceBlocking intercepts requests and fails the blocked types.
func applyResourceBlocking(page *rod.Page, types []string) error {
	blockSet := make(map[string]bool, len(types))
	for _, t := range types {
		blockSet[strings.ToLower(t)] = true
	}

	router := page.HijackRequests()
	router.MustAdd("*", func(ctx *rod.Hijack) {
		if shouldBlock(blockSet, string(ctx.Request.Type())) {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		ctx.ContinueRequest(&proto.FetchContinueRequest{})
	})
	go router.Run()

	return nil
}

func shouldBlock(blockSet map[string]bool, resType string) bool {
	switch strings.ToLower(resType) {
	case "image":
		return blockSet["images"]
	case "font":
		return blockSet["fonts"]
	case "media":
		return blockSet["media"]
	case "stylesheet":
		return blockSet["stylesheets"]
	}
	return blockSet[strings.ToLower(resType)]
}
