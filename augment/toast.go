package augment

import (
	"fmt"
	"time"

	"github.com/hazyhaar/zhikeeper/dom"
)

// showToast displays a transient confirmation overlay. Only one toast is
// on screen at a time; the newest wins. The overlay removes itself after
// the configured delay.
func (a *Augmenter) showToast(msg string) {
	body, ok := a.doc.Body()
	if !ok {
		return
	}
	if old, ok := a.doc.Query("." + ClassToast); ok {
		_ = old.Remove()
	}

	overlay := fmt.Sprintf(`<div class="%s">%s</div>`, ClassToast, a.escape(msg))
	if !a.insert(body, dom.BeforeEnd, overlay) {
		return
	}
	toast, ok := a.doc.Query("." + ClassToast)
	if !ok {
		return
	}
	time.AfterFunc(a.toastTTL, func() { _ = toast.Remove() })
}
