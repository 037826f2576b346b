package augment

import (
	"context"
	"strings"
	"testing"

	"github.com/hazyhaar/zhikeeper/clipboard"
	"github.com/hazyhaar/zhikeeper/content"
	"github.com/hazyhaar/zhikeeper/dom"
)

func TestShareText_Answer(t *testing.T) {
	doc, item := newFixture(t, feedAnswerHTML)
	a := newAugmenter(doc, nil)

	got, ok := a.ShareText(item, content.KindAnswer)
	if !ok {
		t.Fatal("ShareText should succeed for an answer")
	}
	want := "为什么天空是蓝色的？ - 张三的回答 - 知乎\nhttps://www.zhihu.com/question/123/answer/456"
	if got != want {
		t.Errorf("share text:\ngot  %q\nwant %q", got, want)
	}
}

func TestShareText_Article(t *testing.T) {
	doc, item := newFixture(t, feedArticleHTML)
	a := newAugmenter(doc, nil)

	got, ok := a.ShareText(item, content.KindArticle)
	if !ok {
		t.Fatal("ShareText should succeed for an article")
	}
	want := "如何写好单元测试 - 李四的文章 - 知乎\nhttps://zhuanlan.zhihu.com/p/789"
	if got != want {
		t.Errorf("share text:\ngot  %q\nwant %q", got, want)
	}
}

func TestShareText_CustomBases(t *testing.T) {
	doc, item := newFixture(t, feedAnswerHTML)
	a := New(doc, nil, WithBases(Bases{Web: "https://example.test/"}))

	got, _ := a.ShareText(item, content.KindAnswer)
	want := "为什么天空是蓝色的？ - 张三的回答 - 知乎\nhttps://example.test/question/123/answer/456"
	if got != want {
		t.Errorf("share text with custom base:\ngot  %q\nwant %q", got, want)
	}
}

func TestAuthorOf_Tiers(t *testing.T) {
	// Tier 1: the authorship link.
	_, item := newFixture(t, feedAnswerHTML)
	if got := authorOf(item, content.KindAnswer); got != "张三" {
		t.Errorf("link tier: got %q, want 张三", got)
	}

	// Tier 2: quoted-author prefix in a collapsed body.
	_, item = newFixture(t, `
		<div class="ContentItem AnswerItem">
			<div class="RichContent is-collapsed">
				<div class="RichText" itemprop="text">王五：天空呈蓝色是因为瑞利散射。</div>
			</div>
		</div>`)
	if got := authorOf(item, content.KindAnswer); got != "王五" {
		t.Errorf("colon tier: got %q, want 王五", got)
	}

	// Tier 3: structured data.
	_, item = newFixture(t, `
		<div class="ContentItem AnswerItem">
			<div itemprop="author"><meta itemprop="name" content="赵六"></div>
			<div class="RichText" itemprop="text">没有前缀的正文。</div>
		</div>`)
	if got := authorOf(item, content.KindAnswer); got != "赵六" {
		t.Errorf("meta tier: got %q, want 赵六", got)
	}

	// All tiers failing degrades to "".
	_, item = newFixture(t, `<div class="ContentItem AnswerItem"></div>`)
	if got := authorOf(item, content.KindAnswer); got != "" {
		t.Errorf("no sources: got %q, want empty", got)
	}
}

func TestAuthorBeforeColon(t *testing.T) {
	long := make([]rune, 0, 60)
	for i := 0; i < 55; i++ {
		long = append(long, '字')
	}
	cases := []struct {
		in, want string
	}{
		{"张三：正文开始", "张三"},
		{"  张三 ： 正文", "张三"},
		{"：开头就是冒号", ""},
		{"没有冒号的正文", ""},
		{"ASCII colon: not it", ""},
		{string(long) + "：太晚了", ""}, // colon past the 50-rune window
	}
	for _, c := range cases {
		if got := authorBeforeColon(c.in); got != c.want {
			t.Errorf("authorBeforeColon(%q): got %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCanonicalURL_Fallbacks(t *testing.T) {
	cases := []struct {
		name, meta, want string
	}{
		{"protocol-relative kept", `//www.zhihu.com/special/1`, "https://www.zhihu.com/special/1"},
		{"absolute kept", `https://www.zhihu.com/special/1`, "https://www.zhihu.com/special/1"},
		{"path prefixed", `/special/1`, "https://www.zhihu.com/special/1"},
		{"empty stays empty", ``, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			doc, item := newFixture(t, `
				<div class="ContentItem AnswerItem">
					<meta itemprop="url" content="`+c.meta+`">
				</div>`)
			a := newAugmenter(doc, nil)
			if got := a.canonicalURL(item, content.KindAnswer); got != c.want {
				t.Errorf("canonicalURL: got %q, want %q", got, c.want)
			}
		})
	}
}

func TestRewireShare_ClickCopiesCitation(t *testing.T) {
	doc, item := newFixture(t, feedAnswerHTML)
	clip := &clipboard.Memory{}
	a := newAugmenter(doc, clip)

	if !a.RewireShare(context.Background(), item, content.KindAnswer) {
		t.Fatal("first rewire should apply")
	}

	btn := shareButton(t, item)
	if btn.Attr(AttrShareRewired) != "true" {
		t.Error("twin should inherit the rewired marker")
	}

	if err := btn.Click(); err != nil {
		t.Fatal(err)
	}
	writes := clip.Writes()
	if len(writes) != 1 {
		t.Fatalf("clipboard writes: got %d, want 1", len(writes))
	}
	want := "为什么天空是蓝色的？ - 张三的回答 - 知乎\nhttps://www.zhihu.com/question/123/answer/456"
	if writes[0] != want {
		t.Errorf("citation:\ngot  %q\nwant %q", writes[0], want)
	}

	// Success toast.
	containsText(t, doc, "."+ClassToast, msgCopied)
}

func TestRewireShare_Idempotent(t *testing.T) {
	doc, item := newFixture(t, feedAnswerHTML)
	clip := &clipboard.Memory{}
	a := newAugmenter(doc, clip)

	a.RewireShare(context.Background(), item, content.KindAnswer)
	if a.RewireShare(context.Background(), item, content.KindAnswer) {
		t.Error("second rewire should be a no-op")
	}

	// One click, one write: the twin replaced the original outright.
	_ = shareButton(t, item).Click()
	if got := len(clip.Writes()); got != 1 {
		t.Errorf("writes after one click: got %d, want 1", got)
	}
}

func TestRewireShare_BothClipboardPathsFail(t *testing.T) {
	doc, item := newFixture(t, feedAnswerHTML)
	clip := &clipboard.Memory{
		PrimaryErr:  clipboard.ErrUnavailable,
		FallbackErr: clipboard.ErrUnavailable,
	}
	a := newAugmenter(doc, clip)

	a.RewireShare(context.Background(), item, content.KindAnswer)
	_ = shareButton(t, item).Click()

	if got := len(clip.Writes()); got != 0 {
		t.Errorf("writes: got %d, want 0", got)
	}
	containsText(t, doc, "."+ClassToast, msgCopyFailed)
	containsText(t, doc, "."+ClassToast, "为什么天空是蓝色的？ - 张三的回答 - 知乎")
}

func TestRewireShare_FailureToastNeutralizesPageMarkup(t *testing.T) {
	doc, item := newFixture(t, feedAnswerHostileTitleHTML)
	clip := &clipboard.Memory{
		PrimaryErr:  clipboard.ErrUnavailable,
		FallbackErr: clipboard.ErrUnavailable,
	}
	a := newAugmenter(doc, clip)

	a.RewireShare(context.Background(), item, content.KindAnswer)
	_ = shareButton(t, item).Click()

	toast, ok := doc.Query("." + ClassToast)
	if !ok {
		t.Fatal("toast not found")
	}
	if _, ok := toast.Query("img"); ok {
		t.Error("page-derived markup must not become elements inside the toast")
	}
	got := toast.Text()
	if !strings.Contains(got, "速度") || !strings.Contains(got, "与激情") {
		t.Errorf("toast text %q lost the title around the stripped markup", got)
	}
	if strings.Contains(got, "onerror") {
		t.Errorf("toast text %q retains stripped attribute payload", got)
	}
}

func TestRewireShare_NilClipboardDisables(t *testing.T) {
	doc, item := newFixture(t, feedAnswerHTML)
	a := newAugmenter(doc, nil)

	if a.RewireShare(context.Background(), item, content.KindAnswer) {
		t.Error("rewire without a clipboard should be disabled")
	}
}

func shareButton(t *testing.T, item dom.Element) dom.Element {
	t.Helper()
	toggler, ok := item.Query(selShareToggler)
	if !ok {
		t.Fatal("share toggler not found")
	}
	btn, ok := toggler.Query("button")
	if !ok {
		t.Fatal("share button not found")
	}
	return btn
}
