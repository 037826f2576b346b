package augment

import (
	"fmt"
	"strings"

	"github.com/hazyhaar/zhikeeper/dom"
)

// Icon markup for the proxy entries, matching the host's own icon set so
// the injected entries blend in.
const (
	iconStar  = `<svg width="1.2em" height="1.2em" viewBox="0 0 24 24" class="Zi Zi--Star" fill="currentColor"><path d="M10.484 3.307c.673-1.168 2.358-1.168 3.032 0l2.377 4.122a.25.25 0 0 0 .165.12l4.655.987c1.319.28 1.84 1.882.937 2.884l-3.186 3.535a.25.25 0 0 0-.063.193l.5 4.733c.142 1.34-1.222 2.33-2.453 1.782l-4.346-1.938a.25.25 0 0 0-.204 0l-4.346 1.938c-1.231.549-2.595-.442-2.453-1.782l.5-4.733a.25.25 0 0 0-.064-.193L2.35 11.42c-.903-1.002-.382-2.604.937-2.884l4.655-.987a.25.25 0 0 0 .164-.12l2.378-4.122Z"></path></svg>`
	iconHeart = `<svg width="1.2em" height="1.2em" viewBox="0 0 24 24" class="Zi Zi--Heart" fill="currentColor"><path fill-rule="evenodd" d="M17.142 3.041c1.785.325 3.223 1.518 4.167 3.071 1.953 3.215.782 7.21-1.427 9.858a23.968 23.968 0 0 1-4.085 3.855c-.681.5-1.349.923-1.962 1.234-.597.303-1.203.532-1.748.587a.878.878 0 0 1-.15.002c-.545-.04-1.162-.276-1.762-.582a14.845 14.845 0 0 1-2.008-1.27 24.254 24.254 0 0 1-4.21-4.002c-2.1-2.56-3.16-6.347-1.394-9.463.92-1.624 2.362-2.892 4.173-3.266 1.657-.341 3.469.097 5.264 1.44 1.75-1.309 3.516-1.76 5.142-1.464Z" clip-rule="evenodd"></path></svg>`
)

// EnhanceMenu injects proxy entries for the relocated collect/like buttons
// into the item's overflow menu.
//
// The popup panel does not exist until the menu opens, and it mounts
// outside the item subtree, so the panel is resolved document-wide on
// every pass: opening the menu flips a class, the class mutation triggers
// a pass, and the pass lands here. Proxies are injected once per panel
// mount, guarded by a marker on the menu container; a separate marker on
// the trigger records that the item is armed. A role whose hidden native
// button is absent gets no proxy entry.
func (a *Augmenter) EnhanceMenu(item dom.Element) bool {
	trigger, ok := item.Query(selOptionsButton)
	if !ok {
		return false
	}
	if trigger.Attr(AttrMenuArmed) != "true" {
		_ = trigger.SetAttr(AttrMenuArmed, "true")
	}

	popover, ok := a.popoverFor(trigger)
	if !ok || !popover.HasClass(classPopoverOpen) {
		return false
	}
	container, ok := popover.Query(selMenuContainer)
	if !ok || container.Attr(AttrMenuItems) == "true" {
		return false
	}
	_ = container.SetAttr(AttrMenuItems, "true")

	added := false
	for _, p := range []struct{ role, icon, label string }{
		{RoleCollect, iconStar, "收藏"},
		{RoleLike, iconHeart, "喜欢"},
	} {
		if _, ok := item.Query(roleSelector(p.role)); !ok {
			continue
		}
		if a.addMenuProxy(container, popover, item, p.role, p.icon, p.label) {
			added = true
		}
	}
	return added
}

// popoverFor resolves the popup panel a trigger controls, via its ARIA
// relationship or the host's -toggle/-content id convention.
func (a *Augmenter) popoverFor(trigger dom.Element) (dom.Element, bool) {
	id := trigger.Attr("aria-controls")
	if id == "" {
		if prefix, ok := strings.CutSuffix(trigger.Attr("id"), "-toggle"); ok && prefix != "" {
			id = prefix + "-content"
		}
	}
	if id == "" {
		return nil, false
	}
	return a.doc.ElementByID(id)
}

func (a *Augmenter) addMenuProxy(container, popover, item dom.Element, role, icon, label string) bool {
	entry := fmt.Sprintf(
		`<button type="button" class="Button Menu-item Button--plain %s" %s=%q>%s%s</button>`,
		ClassMenuProxy, AttrProxyRole, role, icon, label)
	if !a.insert(container, dom.BeforeEnd, entry) {
		return false
	}

	proxy, ok := container.Query(fmt.Sprintf(`.%s[%s=%q]`, ClassMenuProxy, AttrProxyRole, role))
	if !ok {
		return false
	}
	err := proxy.OnClick(func() {
		// The native button is located at click time via its role marker:
		// the host may have re-rendered the item since injection.
		if native, ok := item.Query(roleSelector(role)); ok {
			if err := native.Click(); err != nil {
				a.logger.Warn("augment: proxy click", "role", role, "error", err)
			}
		}
		_ = popover.Hide()
	})
	if err != nil {
		a.logger.Warn("augment: wire proxy click", "role", role, "error", err)
		return false
	}
	return true
}

func roleSelector(role string) string {
	return fmt.Sprintf(`[%s=%q]`, AttrOriginalButton, role)
}
