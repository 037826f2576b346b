// Package augment holds the idempotent DOM augmentations applied to
// content items: the ratio badge, the kind badge, the time panel, the
// action-button relocation, the overflow-menu proxies, and the
// share-to-citation rewrite.
//
// Every applier is reentrant. Two triggers race to apply the same
// mutation (change notifications and the interval sweep); correctness
// rests on marker checks, not mutual exclusion. Appliers silently no-op
// when an expected anchor is missing — the host markup is not a contract.
package augment

import (
	"log/slog"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/hazyhaar/zhikeeper/clipboard"
	"github.com/hazyhaar/zhikeeper/dom"
)

// ItemSelector enumerates the content items the pipeline reconciles.
const ItemSelector = ".ContentItem.AnswerItem, .ContentItem.ArticleItem"

// Host markup anchors.
const (
	selQuestionRef   = `[itemprop="zhihu:question"]`
	selTitle         = ".ContentItem-title"
	selTitleSpan     = ".ContentItem-title span"
	selMeta          = ".ContentItem-meta"
	selRichContent   = ".RichContent"
	selNativeTime    = ".ContentItem-time"
	selAuthorInfo    = ".AuthorInfo"
	selAuthorLink    = ".AuthorInfo-name a"
	selAction        = ".ContentItem-action"
	selShareMenu     = ".ShareMenu"
	selShareToggler  = ".ShareMenu-toggler"
	selOptionsButton = ".OptionsButton"
	selMenuContainer = ".Menu"
	selStarIcon      = ".Zi--Star"
	selHeartIcon     = ".Zi--Heart"

	classCollapsed   = "is-collapsed"
	classPopoverOpen = "Popover-content-enter-done"
)

// Injected-element classes and idempotency markers. A marker, once set on
// a node, is never cleared by the pipeline; the one exception is the time
// panel, which removes itself when its item collapses.
const (
	ClassRatioTag  = "zk-ratio-tag"
	ClassKindTag   = "zk-kind-tag"
	ClassTimePanel = "zk-time-panel"
	ClassToast     = "zk-copy-toast"
	ClassMenuProxy = "zk-menu-proxy"

	AttrTimeHidden     = "data-zk-time-hidden"
	AttrOriginalButton = "data-zk-original-button"
	AttrShareRewired   = "data-zk-share"
	AttrMenuArmed      = "data-zk-menu"
	AttrMenuItems      = "data-zk-menu-items"
	AttrProxyRole      = "data-zk-role"
)

// Relocated-button roles.
const (
	RoleCollect = "collect"
	RoleLike    = "like"
)

// Bases are the canonical URL prefixes per kind.
type Bases struct {
	// Web hosts questions and answers.
	Web string
	// Column hosts long-form articles.
	Column string
}

func defaultBases() Bases {
	return Bases{
		Web:    "https://www.zhihu.com",
		Column: "https://zhuanlan.zhihu.com",
	}
}

// Augmenter applies augmentations to items of one document.
type Augmenter struct {
	doc      dom.Document
	clip     clipboard.Clipboard
	bases    Bases
	logger   *slog.Logger
	policy   *bluemonday.Policy
	toastTTL time.Duration
}

// Option configures an Augmenter.
type Option func(*Augmenter)

// WithBases overrides the canonical URL prefixes.
func WithBases(b Bases) Option {
	return func(a *Augmenter) {
		if b.Web != "" {
			a.bases.Web = strings.TrimRight(b.Web, "/")
		}
		if b.Column != "" {
			a.bases.Column = strings.TrimRight(b.Column, "/")
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Augmenter) { a.logger = l }
}

// WithToastTTL sets how long the copy confirmation stays on screen.
func WithToastTTL(d time.Duration) Option {
	return func(a *Augmenter) { a.toastTTL = d }
}

// New creates an Augmenter for the document. clip handles citation
// copies; a nil clip disables the share rewrite.
func New(doc dom.Document, clip clipboard.Clipboard, opts ...Option) *Augmenter {
	a := &Augmenter{
		doc:      doc,
		clip:     clip,
		bases:    defaultBases(),
		logger:   slog.Default(),
		policy:   bluemonday.StrictPolicy(),
		toastTTL: 2 * time.Second,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// onQuestionPage reports whether the document is a dedicated
// question-detail page, where feed-only anchors are absent.
func (a *Augmenter) onQuestionPage() bool {
	return strings.HasPrefix(a.doc.URL().Path, "/question/")
}

// insert wraps InsertHTML with the package's silent-degradation policy.
func (a *Augmenter) insert(el dom.Element, pos dom.Position, fragment string) bool {
	if err := el.InsertHTML(pos, fragment); err != nil {
		a.logger.Warn("augment: insert failed", "position", pos, "error", err)
		return false
	}
	return true
}

// escape neutralises page-derived text before it is re-injected as part
// of an HTML fragment.
func (a *Augmenter) escape(s string) string {
	return a.policy.Sanitize(s)
}
