package augment

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/hazyhaar/zhikeeper/content"
	"github.com/hazyhaar/zhikeeper/dom"
	"github.com/hazyhaar/zhikeeper/extract"
)

var (
	answerURLRe  = regexp.MustCompile(`/question/(\d+)/answer/(\d+)`)
	articleURLRe = regexp.MustCompile(`/p/(\d+)`)
)

// User-visible copy confirmations.
const (
	msgCopied     = "链接已复制到剪贴板"
	msgCopyFailed = "复制失败，请手动复制"
)

// RewireShare replaces the native share control's behavior with "compose
// citation, copy to clipboard". The original button node is discarded and
// a behavioral twin substituted so no residual native handler can fire.
// Idempotent via a marker on the button, which the twin inherits.
func (a *Augmenter) RewireShare(ctx context.Context, item dom.Element, kind content.Kind) bool {
	if a.clip == nil {
		return false
	}

	menu, ok := item.Query(selShareMenu)
	if !ok {
		return false
	}
	toggler, ok := menu.Query(selShareToggler)
	if !ok {
		return false
	}
	btn, ok := toggler.Query("button")
	if !ok {
		return false
	}
	if btn.Attr(AttrShareRewired) == "true" {
		return false
	}

	text, ok := a.ShareText(item, kind)
	if !ok {
		return false
	}

	// Marker first: the twin is a clone and carries it along.
	_ = btn.SetAttr(AttrShareRewired, "true")
	twin, err := btn.ReplaceWithTwin()
	if err != nil {
		a.logger.Warn("augment: replace share button", "error", err)
		return false
	}
	if err := twin.OnClick(func() { a.copyCitation(ctx, text) }); err != nil {
		a.logger.Warn("augment: wire share click", "error", err)
		return false
	}
	return true
}

func (a *Augmenter) copyCitation(ctx context.Context, text string) {
	if err := a.clip.WriteText(ctx, text); err != nil {
		a.logger.Warn("augment: copy citation", "error", err)
		// The citation rides along so the viewer can copy it by hand.
		// It carries page-derived title and author text, so the toast
		// path must sanitize it before re-injection.
		a.showToast(msgCopyFailed + "\n" + text)
		return
	}
	a.showToast(msgCopied)
}

// ShareText composes the citation string for an item:
//
//	{title} - {author}的回答 - 知乎\n{url}   (Answer)
//	{title} - {author}的文章 - 知乎\n{url}   (Article)
//
// ok is false only when kind is unknown; missing title or author degrade
// to empty strings, as the sources are best-effort.
func (a *Augmenter) ShareText(item dom.Element, kind content.Kind) (string, bool) {
	title := titleOf(item, kind)
	author := authorOf(item, kind)
	u := a.canonicalURL(item, kind)

	switch kind {
	case content.KindAnswer:
		return fmt.Sprintf("%s - %s的回答 - 知乎\n%s", title, author, u), true
	case content.KindArticle:
		return fmt.Sprintf("%s - %s的文章 - 知乎\n%s", title, author, u), true
	default:
		return "", false
	}
}

func titleOf(item dom.Element, kind content.Kind) string {
	if kind == content.KindAnswer {
		ref, ok := item.Query(selQuestionRef)
		if !ok {
			return ""
		}
		return strings.TrimSpace(extract.MetaContent(ref, "name"))
	}
	return strings.TrimSpace(extract.MetaContent(item, "headline"))
}

// authorOf resolves the author through three tiers: the authorship link
// (expanded state), the quoted-author prefix heuristic (collapsed state),
// then the structured-data author tag. Each tier fails silently into the
// next; all failing yields "".
func authorOf(item dom.Element, kind content.Kind) string {
	if link, ok := item.Query(selAuthorLink); ok {
		if name := strings.TrimSpace(link.Text()); name != "" {
			return name
		}
	}

	bodySel := `.RichText[itemprop="text"]`
	if kind == content.KindArticle {
		bodySel = `.RichText[itemprop="articleBody"]`
	}
	if rich, ok := item.Query(bodySel); ok {
		if name := authorBeforeColon(rich.Text()); name != "" {
			return name
		}
	}

	if meta, ok := item.Query(`[itemprop="author"] meta[itemprop="name"]`); ok {
		return strings.TrimSpace(meta.Attr("content"))
	}
	return ""
}

// authorBeforeColon extracts the substring before a full-width colon in
// the first 50 runes of the body text. Collapsed items quote the author
// as a "作者：" style prefix; this is a locale-specific heuristic, not a
// contract, and returns "" whenever the convention does not hold.
func authorBeforeColon(text string) string {
	runes := []rune(strings.TrimSpace(text))
	limit := len(runes)
	if limit > 50 {
		limit = 50
	}
	for i := 0; i < limit; i++ {
		if runes[i] == '：' {
			if i == 0 {
				return ""
			}
			return strings.TrimSpace(string(runes[:i]))
		}
	}
	return ""
}

// canonicalURL re-composes the canonical URL from the item's url meta tag.
// Answer URLs are {web}/question/{qid}/answer/{aid}; article URLs are
// {column}/p/{id}. When no ID pattern matches, the raw value is kept with
// its scheme and host normalised.
func (a *Augmenter) canonicalURL(item dom.Element, kind content.Kind) string {
	raw := extract.MetaContent(item, "url")

	switch kind {
	case content.KindAnswer:
		if m := answerURLRe.FindStringSubmatch(raw); m != nil {
			return fmt.Sprintf("%s/question/%s/answer/%s", a.bases.Web, m[1], m[2])
		}
	case content.KindArticle:
		if m := articleURLRe.FindStringSubmatch(raw); m != nil {
			return fmt.Sprintf("%s/p/%s", a.bases.Column, m[1])
		}
	}

	switch {
	case raw == "":
		return ""
	case strings.HasPrefix(raw, "http"):
		return raw
	case strings.HasPrefix(raw, "//"):
		return "https:" + raw
	default:
		return a.bases.Web + raw
	}
}
