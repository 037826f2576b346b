package augment

import (
	"strings"

	"github.com/hazyhaar/zhikeeper/dom"
)

// RelocateActions hides the collect and like controls of an item and tags
// each with its role so the overflow-menu proxies can find it later. The
// buttons are hidden, never removed: their native click handlers must stay
// invokable programmatically. Returns how many buttons were newly
// relocated.
func (a *Augmenter) RelocateActions(item dom.Element) int {
	moved := 0
	for _, btn := range item.QueryAll(selAction) {
		role := actionRole(btn)
		if role == "" {
			continue
		}
		if btn.Attr(AttrOriginalButton) == role {
			continue
		}
		if err := btn.Hide(); err != nil {
			a.logger.Warn("augment: hide action button", "role", role, "error", err)
			continue
		}
		_ = btn.SetAttr(AttrOriginalButton, role)
		moved++
	}
	return moved
}

// actionRole identifies a native action button by its visible text,
// aria-label, or icon.
func actionRole(btn dom.Element) string {
	label := btn.Text()
	if strings.TrimSpace(label) == "" {
		label = btn.Attr("aria-label")
	}

	if strings.Contains(label, "收藏") {
		return RoleCollect
	}
	if _, ok := btn.Query(selStarIcon); ok {
		return RoleCollect
	}
	if strings.Contains(label, "喜欢") {
		return RoleLike
	}
	if _, ok := btn.Query(selHeartIcon); ok {
		return RoleLike
	}
	return ""
}
