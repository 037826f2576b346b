package augment

import (
	"testing"

	"github.com/hazyhaar/zhikeeper/dom/memdom"
	"github.com/hazyhaar/zhikeeper/extract"
)

func TestApplyRatioBadge_FeedAnswer(t *testing.T) {
	doc, item := newFixture(t, feedAnswerHTML)
	a := newAugmenter(doc, nil)
	rec := extract.Extract(item)

	if !a.ApplyRatioBadge(item, rec) {
		t.Fatal("first apply should insert the badge")
	}

	badge, ok := item.Query("." + ClassRatioTag)
	if !ok {
		t.Fatal("badge not found after apply")
	}
	if got := badge.Text(); got != "0.05" {
		t.Errorf("badge text: got %q, want %q", got, "0.05")
	}
	if !badge.HasClass(ClassRatioTag + "--high-signal") {
		t.Error("600 upvotes at ratio 0.05 should be tiered high-signal")
	}

	// The badge sits inside the question reference, before its link.
	ref, _ := item.Query(selQuestionRef)
	if _, ok := ref.Query("." + ClassRatioTag); !ok {
		t.Error("badge should be inside the question reference")
	}
}

func TestApplyRatioBadge_Idempotent(t *testing.T) {
	doc, item := newFixture(t, feedAnswerHTML)
	a := newAugmenter(doc, nil)
	rec := extract.Extract(item)

	a.ApplyRatioBadge(item, rec)
	if a.ApplyRatioBadge(item, rec) {
		t.Error("second apply should be a no-op")
	}
	if n := queryCount(item, "."+ClassRatioTag); n != 1 {
		t.Errorf("badges after double apply: got %d, want 1", n)
	}
}

func TestApplyRatioBadge_ZeroUpvotesStillRenders(t *testing.T) {
	doc, item := newFixture(t, `
		<div class="ContentItem AnswerItem">
			<meta itemprop="commentCount" content="7">
			<div itemprop="zhihu:question"><a href="/question/1">q</a></div>
		</div>`)
	a := newAugmenter(doc, nil)

	if !a.ApplyRatioBadge(item, extract.Extract(item)) {
		t.Fatal("zero-upvote item should still get a badge")
	}
	badge, _ := item.Query("." + ClassRatioTag)
	if got := badge.Text(); got != "0.00" {
		t.Errorf("badge text: got %q, want %q", got, "0.00")
	}
	if !badge.HasClass(ClassRatioTag + "--neutral") {
		t.Error("zero-upvote badge should be neutral")
	}
}

func TestApplyRatioBadge_Article(t *testing.T) {
	doc, item := newFixture(t, feedArticleHTML)
	a := newAugmenter(doc, nil)

	if !a.ApplyRatioBadge(item, extract.Extract(item)) {
		t.Fatal("article should get a badge before its title link")
	}
	span, _ := item.Query(selTitleSpan)
	if _, ok := span.Query("." + ClassRatioTag); !ok {
		t.Error("badge should be inside the title span")
	}
	// 12 comments / 40 upvotes = 0.30 → moderate.
	badge, _ := item.Query("." + ClassRatioTag)
	if got := badge.Text(); got != "0.30" {
		t.Errorf("badge text: got %q, want %q", got, "0.30")
	}
	if !badge.HasClass(ClassRatioTag + "--moderate") {
		t.Error("ratio 0.30 should be tiered moderate")
	}
}

func TestApplyRatioBadge_QuestionPageUsesTimePanel(t *testing.T) {
	doc, item := newFixture(t, questionAnswerHTML,
		memdom.WithURL("https://www.zhihu.com/question/123"))
	a := newAugmenter(doc, nil)
	rec := extract.Extract(item)

	// Without a panel there is no anchor; the badge waits.
	if a.ApplyRatioBadge(item, rec) {
		t.Error("badge should not apply before the panel exists")
	}

	if !a.ApplyTimePanel(item, rec) {
		t.Fatal("time panel should apply")
	}
	if !a.ApplyRatioBadge(item, rec) {
		t.Fatal("badge should apply into the panel")
	}
	panel, _ := item.Query("." + ClassTimePanel)
	if _, ok := panel.Query("." + ClassRatioTag); !ok {
		t.Error("badge should be prepended into the time panel")
	}
}

func TestApplyKindBadge(t *testing.T) {
	doc, item := newFixture(t, feedArticleHTML)
	a := newAugmenter(doc, nil)
	rec := extract.Extract(item)

	if !a.ApplyKindBadge(item, rec) {
		t.Fatal("article should get a kind tag")
	}
	containsText(t, doc, "."+ClassKindTag, "文章")
	if a.ApplyKindBadge(item, rec) {
		t.Error("second apply should be a no-op")
	}
	if n := queryCount(item, "."+ClassKindTag); n != 1 {
		t.Errorf("kind tags: got %d, want 1", n)
	}
}

func TestApplyKindBadge_AnswerNoOp(t *testing.T) {
	doc, item := newFixture(t, feedAnswerHTML)
	a := newAugmenter(doc, nil)

	if a.ApplyKindBadge(item, extract.Extract(item)) {
		t.Error("answers never get a kind tag")
	}
}
