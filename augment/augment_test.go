package augment

import (
	"strings"
	"testing"

	"github.com/hazyhaar/zhikeeper/clipboard"
	"github.com/hazyhaar/zhikeeper/dom"
	"github.com/hazyhaar/zhikeeper/dom/memdom"
)

// Fixtures mirror the host's rendered item markup closely enough for
// every selector the appliers use.
const feedAnswerHTML = `
<div class="ContentItem AnswerItem" name="456">
	<meta itemprop="upvoteCount" content="600">
	<meta itemprop="commentCount" content="30">
	<meta itemprop="dateCreated" content="2023-05-01T08:15:30Z">
	<meta itemprop="dateModified" content="2023-05-06T09:30:00Z">
	<meta itemprop="url" content="https://www.zhihu.com/question/123/answer/456">
	<h2 class="ContentItem-title"><span><a href="/question/123">为什么天空是蓝色的？</a></span></h2>
	<div itemprop="zhihu:question">
		<meta itemprop="name" content="为什么天空是蓝色的？">
		<a href="/question/123">为什么天空是蓝色的？</a>
	</div>
	<div class="ContentItem-meta">
		<div class="AuthorInfo" itemprop="author">
			<meta itemprop="name" content="张三">
			<span class="AuthorInfo-name"><a href="/people/zhang">张三</a></span>
		</div>
	</div>
	<div class="RichContent">
		<div class="RichText" itemprop="text">天空呈蓝色是因为瑞利散射。</div>
		<div class="ContentItem-time"><a href="#">发布于 2023-05-01</a></div>
	</div>
	<div class="ContentItem-actions">
		<button class="ContentItem-action Button"><span class="Zi Zi--Star"></span>收藏</button>
		<button class="ContentItem-action Button">喜欢</button>
		<button class="ContentItem-action Button OptionsButton" id="Popover1-toggle">设置</button>
	</div>
	<div class="ShareMenu">
		<div class="ShareMenu-toggler"><button type="button">分享</button></div>
	</div>
</div>`

// Same shape as feedAnswerHTML, but the question title carries markup.
// Attribute entities decode on parse, so the metadata string holds a
// literal <img> tag by the time it reaches the citation.
const feedAnswerHostileTitleHTML = `
<div class="ContentItem AnswerItem" name="457">
	<meta itemprop="upvoteCount" content="10">
	<meta itemprop="commentCount" content="2">
	<meta itemprop="url" content="https://www.zhihu.com/question/124/answer/457">
	<div itemprop="zhihu:question">
		<meta itemprop="name" content="速度&lt;img src=x onerror=alert(1)&gt;与激情">
		<a href="/question/124">速度与激情</a>
	</div>
	<div class="ContentItem-meta">
		<div class="AuthorInfo" itemprop="author">
			<meta itemprop="name" content="李四">
			<span class="AuthorInfo-name"><a href="/people/li">李四</a></span>
		</div>
	</div>
	<div class="ShareMenu">
		<div class="ShareMenu-toggler"><button type="button">分享</button></div>
	</div>
</div>`

const feedArticleHTML = `
<div class="ContentItem ArticleItem" data-za-extra-module='{"card":{"content":{"upvote_num":40}}}'>
	<meta itemprop="commentCount" content="12">
	<meta itemprop="headline" content="如何写好单元测试">
	<meta itemprop="datePublished" content="2023-04-10T12:00:00Z">
	<meta itemprop="url" content="//zhuanlan.zhihu.com/p/789">
	<h2 class="ContentItem-title"><span><a href="/p/789">如何写好单元测试</a></span></h2>
	<div class="ContentItem-meta">
		<div class="AuthorInfo" itemprop="author">
			<meta itemprop="name" content="李四">
			<span class="AuthorInfo-name"><a href="/people/li">李四</a></span>
		</div>
	</div>
	<div class="RichContent">
		<div class="RichText" itemprop="articleBody">好的测试从断言开始。</div>
		<div class="ContentItem-time"><a href="#">发布于 2023-04-10</a></div>
	</div>
	<div class="ShareMenu">
		<div class="ShareMenu-toggler"><button type="button">分享</button></div>
	</div>
</div>`

// questionAnswerHTML is an answer as rendered on a question-detail page:
// no title of its own and no question reference.
const questionAnswerHTML = `
<div class="ContentItem AnswerItem" name="456">
	<meta itemprop="upvoteCount" content="10">
	<meta itemprop="commentCount" content="3">
	<meta itemprop="dateCreated" content="2023-05-01T08:15:30Z">
	<meta itemprop="url" content="/question/123/answer/456">
	<div class="ContentItem-meta">
		<div class="AuthorInfo" itemprop="author">
			<meta itemprop="name" content="张三">
			<span class="AuthorInfo-name"><a href="/people/zhang">张三</a></span>
		</div>
	</div>
	<div class="RichContent">
		<div class="RichText" itemprop="text">天空呈蓝色是因为瑞利散射。</div>
		<div class="ContentItem-time"><a href="#">发布于 2023-05-01</a></div>
	</div>
</div>`

func newFixture(t *testing.T, body string, opts ...memdom.Option) (*memdom.Document, dom.Element) {
	t.Helper()
	doc, err := memdom.Parse("<html><body>"+body+"</body></html>", opts...)
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	item, ok := doc.Query(ItemSelector)
	if !ok {
		t.Fatal("fixture has no content item")
	}
	return doc, item
}

func newAugmenter(doc *memdom.Document, clip clipboard.Clipboard) *Augmenter {
	return New(doc, clip)
}

func queryCount(el dom.Element, sel string) int {
	return len(el.QueryAll(sel))
}

func containsText(t *testing.T, doc *memdom.Document, sel, want string) {
	t.Helper()
	el, ok := doc.Query(sel)
	if !ok {
		t.Fatalf("%s not found", sel)
	}
	if got := el.Text(); !strings.Contains(got, want) {
		t.Errorf("%s text: got %q, want contains %q", sel, got, want)
	}
}
