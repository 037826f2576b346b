package augment

import (
	"fmt"

	"github.com/hazyhaar/zhikeeper/content"
	"github.com/hazyhaar/zhikeeper/dom"
)

// ApplyKindBadge labels Article items with a static "文章" tag before the
// title link. Feeds interleave answers and articles with near-identical
// rendering; the tag disambiguates at a glance. No-op for Answer items.
func (a *Augmenter) ApplyKindBadge(item dom.Element, rec content.Record) bool {
	if rec.Kind != content.KindArticle {
		return false
	}
	if _, ok := item.Query("." + ClassKindTag); ok {
		return false
	}

	span, ok := item.Query(selTitleSpan)
	if !ok {
		return false
	}
	link, ok := span.Query("a")
	if !ok {
		return false
	}
	return a.insert(link, dom.BeforeBegin,
		fmt.Sprintf(`<span class="%s">文章</span>`, ClassKindTag))
}
