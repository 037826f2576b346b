package augment

import (
	"fmt"

	"github.com/hazyhaar/zhikeeper/content"
	"github.com/hazyhaar/zhikeeper/dom"
)

// ApplyRatioBadge injects the engagement-ratio badge. The badge element
// itself is the idempotency marker. Always renders, including the 0.00
// insufficient-signal case, so the tier mapping stays total.
//
// Insertion point depends on kind and page context:
//   - Answer in a feed: inside the question reference, before its link.
//   - Article: inside the title link container, before the link.
//   - Answer on a question-detail page (no question reference rendered):
//     prepended into the time panel, when one has been inserted.
//
// Reports whether the badge was inserted by this call.
func (a *Augmenter) ApplyRatioBadge(item dom.Element, rec content.Record) bool {
	if _, ok := item.Query("." + ClassRatioTag); ok {
		return false
	}

	badge := fmt.Sprintf(`<span class="%s %s--%s">%.2f</span>`,
		ClassRatioTag, ClassRatioTag, rec.Tier(), rec.Ratio())

	if ref, ok := item.Query(selQuestionRef); ok {
		if link, ok := ref.Query("a"); ok {
			return a.insert(link, dom.BeforeBegin, badge)
		}
		return false
	}

	if rec.Kind == content.KindArticle {
		if span, ok := item.Query(selTitleSpan); ok {
			if link, ok := span.Query("a"); ok {
				return a.insert(link, dom.BeforeBegin, badge)
			}
		}
		return false
	}

	if a.onQuestionPage() {
		if panel, ok := item.Query("." + ClassTimePanel); ok {
			return a.insert(panel, dom.AfterBegin, badge)
		}
	}
	return false
}
