package augment

import (
	"strings"
	"testing"

	"github.com/hazyhaar/zhikeeper/dom"
)

// feedAnswerWithMenuHTML pairs the item with its overflow popover, which
// the host mounts outside the item subtree.
const feedAnswerWithMenuHTML = feedAnswerHTML + `
<div id="Popover1-content" class="Popover-content-enter-done">
	<div class="Menu">
		<button type="button" class="Button Menu-item">举报</button>
	</div>
</div>`

func TestRelocateActions(t *testing.T) {
	doc, item := newFixture(t, feedAnswerHTML)
	a := newAugmenter(doc, nil)

	if got := a.RelocateActions(item); got != 2 {
		t.Fatalf("relocated: got %d, want 2 (collect + like)", got)
	}

	collect, ok := item.Query(roleSelector(RoleCollect))
	if !ok {
		t.Fatal("collect button not marked")
	}
	if !containsDisplayNone(collect) {
		t.Error("collect button should be hidden")
	}
	like, ok := item.Query(roleSelector(RoleLike))
	if !ok {
		t.Fatal("like button not marked")
	}
	if !containsDisplayNone(like) {
		t.Error("like button should be hidden")
	}

	// The options trigger has no collect/like role and stays visible.
	trigger, _ := item.Query(selOptionsButton)
	if containsDisplayNone(trigger) {
		t.Error("options trigger should not be relocated")
	}

	if got := a.RelocateActions(item); got != 0 {
		t.Errorf("second pass: got %d, want 0", got)
	}
}

func TestEnhanceMenu_InjectsProxiesOnceOpen(t *testing.T) {
	doc, item := newFixture(t, feedAnswerWithMenuHTML)
	a := newAugmenter(doc, nil)
	a.RelocateActions(item)

	if !a.EnhanceMenu(item) {
		t.Fatal("open menu should get proxies")
	}

	trigger, _ := item.Query(selOptionsButton)
	if trigger.Attr(AttrMenuArmed) != "true" {
		t.Error("trigger should be marked armed")
	}

	popover, _ := doc.ElementByID("Popover1-content")
	proxies := popover.QueryAll("." + ClassMenuProxy)
	if len(proxies) != 2 {
		t.Fatalf("proxies: got %d, want 2", len(proxies))
	}

	if a.EnhanceMenu(item) {
		t.Error("second pass over the same mount should be a no-op")
	}
	if n := queryCount(popover, "."+ClassMenuProxy); n != 2 {
		t.Errorf("proxies after double pass: got %d, want 2", n)
	}
}

func TestEnhanceMenu_ClosedPopoverWaits(t *testing.T) {
	doc, item := newFixture(t, feedAnswerHTML+`
		<div id="Popover1-content"><div class="Menu"></div></div>`)
	a := newAugmenter(doc, nil)
	a.RelocateActions(item)

	if a.EnhanceMenu(item) {
		t.Error("closed popover should get no proxies")
	}
	// The trigger is still armed so the next open pass lands here.
	trigger, _ := item.Query(selOptionsButton)
	if trigger.Attr(AttrMenuArmed) != "true" {
		t.Error("trigger should be armed even while closed")
	}
}

func TestEnhanceMenu_ProxyClickDrivesNativeButton(t *testing.T) {
	doc, item := newFixture(t, feedAnswerWithMenuHTML)
	a := newAugmenter(doc, nil)
	a.RelocateActions(item)
	a.EnhanceMenu(item)

	native, _ := item.Query(roleSelector(RoleCollect))
	clicked := 0
	if err := native.OnClick(func() { clicked++ }); err != nil {
		t.Fatal(err)
	}

	popover, _ := doc.ElementByID("Popover1-content")
	proxy, ok := popover.Query("." + ClassMenuProxy + `[` + AttrProxyRole + `="collect"]`)
	if !ok {
		t.Fatal("collect proxy not found")
	}
	if err := proxy.Click(); err != nil {
		t.Fatal(err)
	}

	if clicked != 1 {
		t.Errorf("native clicks: got %d, want 1", clicked)
	}
	if !containsDisplayNone(native) {
		t.Error("native button should stay hidden after the proxy click")
	}
	if !containsDisplayNone(popover) {
		t.Error("popover should close after a proxy click")
	}
}

func TestEnhanceMenu_SkipsRoleWithoutNativeButton(t *testing.T) {
	// Only a collect button exists; no like proxy should appear.
	doc, item := newFixture(t, `
		<div class="ContentItem AnswerItem">
			<button class="ContentItem-action Button"><span class="Zi Zi--Star"></span>收藏</button>
			<button class="ContentItem-action Button OptionsButton" id="Popover9-toggle">设置</button>
		</div>
		<div id="Popover9-content" class="Popover-content-enter-done"><div class="Menu"></div></div>`)
	a := newAugmenter(doc, nil)
	a.RelocateActions(item)
	a.EnhanceMenu(item)

	popover, _ := doc.ElementByID("Popover9-content")
	proxies := popover.QueryAll("." + ClassMenuProxy)
	if len(proxies) != 1 {
		t.Fatalf("proxies: got %d, want 1", len(proxies))
	}
	if got := proxies[0].Attr(AttrProxyRole); got != RoleCollect {
		t.Errorf("proxy role: got %q, want %q", got, RoleCollect)
	}
}

func containsDisplayNone(el dom.Element) bool {
	return el != nil && strings.Contains(el.Attr("style"), "display: none")
}
