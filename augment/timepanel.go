package augment

import (
	"fmt"
	"strings"

	"github.com/hazyhaar/zhikeeper/content"
	"github.com/hazyhaar/zhikeeper/dom"
)

// ApplyTimePanel inserts a published/edited panel under the item title and
// hides the native timestamp display.
//
// This is the one augmentation that reverses itself: a collapsed item gets
// no panel, and a panel inserted while expanded is removed when the item
// collapses (its marker — the panel element — goes with it, so re-expanding
// recreates exactly one panel). The native timestamp stays hidden across
// the round trip.
func (a *Augmenter) ApplyTimePanel(item dom.Element, rec content.Record) bool {
	if rich, ok := item.Query(selRichContent); ok && rich.HasClass(classCollapsed) {
		if panel, ok := item.Query("." + ClassTimePanel); ok {
			_ = panel.Remove()
		}
		return false
	}

	if _, ok := item.Query("." + ClassTimePanel); ok {
		return false
	}

	text := timePanelText(rec)
	if text == "" {
		return false
	}
	panel := fmt.Sprintf(`<div class="%s">%s</div>`, ClassTimePanel, a.escape(text))

	if title, ok := item.Query(selTitle); ok {
		var inserted bool
		if meta, ok := item.Query(selMeta); ok {
			inserted = a.insert(meta, dom.BeforeBegin, panel)
		} else {
			inserted = a.insert(title, dom.AfterEnd, panel)
		}
		if inserted {
			a.hideNativeTime(item)
		}
		return inserted
	}

	// Answers on a question-detail page have no title element of their
	// own; the panel goes right after the author block instead.
	if rec.Kind == content.KindAnswer && a.onQuestionPage() {
		if info, ok := item.Query(selAuthorInfo); ok {
			if a.insert(info, dom.AfterEnd, panel) {
				a.hideNativeTime(item)
				return true
			}
		}
	}
	return false
}

// timePanelText renders the panel body. Absent or unparseable timestamps
// format to "" and their line is suppressed; the edited line only appears
// when it differs from the published one. An empty result means no panel.
func timePanelText(rec content.Record) string {
	var created, modified string
	if rec.DateCreated != nil {
		created = content.FormatTime(*rec.DateCreated)
	}
	if rec.DateModified != nil {
		modified = content.FormatTime(*rec.DateModified)
	}

	var parts []string
	if created != "" {
		parts = append(parts, "📅 发布于 "+created)
	}
	if modified != "" && modified != created {
		parts = append(parts, "✏️ 编辑于 "+modified)
	}
	return strings.Join(parts, " | ")
}

// hideNativeTime suppresses the item's native timestamp display, exactly
// once per node instance.
func (a *Augmenter) hideNativeTime(item dom.Element) {
	t, ok := item.Query(selNativeTime)
	if !ok || t.Attr(AttrTimeHidden) == "true" {
		return
	}
	if err := t.Hide(); err != nil {
		a.logger.Warn("augment: hide native time", "error", err)
		return
	}
	_ = t.SetAttr(AttrTimeHidden, "true")
}
