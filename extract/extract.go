// Package extract derives a normalized content.Record from a live content
// item. Sources are heterogeneous and partially redundant — inline meta
// tags, a JSON card blob, structured-data attributes — and none of them is
// contractually stable, so every resolution path defaults instead of
// failing: Extract never returns an error and never panics on malformed
// input.
package extract

import (
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/tidwall/gjson"

	"github.com/hazyhaar/zhikeeper/content"
	"github.com/hazyhaar/zhikeeper/dom"
)

// Host markup hooks. These mirror zhihu's rendered classes and itemprop
// keys; changing markup degrades extraction to defaults, never to a crash.
const (
	classAnswer  = "AnswerItem"
	classArticle = "ArticleItem"

	attrCardBlob = "data-za-extra-module"
	// pathUpvotes locates the upvote count inside the card blob; Articles
	// have no upvoteCount meta tag.
	pathUpvotes = "card.content.upvote_num"
)

// KindOf classifies a content item by its class list. ok is false for
// nodes that are neither Answer nor Article.
func KindOf(item dom.Element) (content.Kind, bool) {
	switch {
	case item.HasClass(classAnswer):
		return content.KindAnswer, true
	case item.HasClass(classArticle):
		return content.KindArticle, true
	default:
		return "", false
	}
}

// Extract produces a best-effort Record for the item. Missing or
// malformed sources yield zero values for the affected fields only.
func Extract(item dom.Element) content.Record {
	kind, ok := KindOf(item)
	if !ok {
		return content.Record{}
	}

	rec := content.Record{Kind: kind}
	rec.CommentCount = metaCount(item, "commentCount")

	switch kind {
	case content.KindAnswer:
		rec.UpvoteCount = metaCount(item, "upvoteCount")
		rec.DateCreated = metaTime(item, "dateCreated")
	case content.KindArticle:
		// Articles carry no upvoteCount meta tag; the count lives in the
		// card blob. Absent or malformed blob → 0.
		rec.UpvoteCount = cardUpvotes(item)
		rec.DateCreated = metaTime(item, "datePublished")
	}
	rec.DateModified = metaTime(item, "dateModified")

	return rec
}

// MetaContent returns the content attribute of the item's
// meta[itemprop=prop] tag, or "".
func MetaContent(item dom.Element, prop string) string {
	meta, ok := item.Query(`meta[itemprop="` + prop + `"]`)
	if !ok {
		return ""
	}
	return meta.Attr("content")
}

func metaCount(item dom.Element, prop string) int {
	n, err := strconv.Atoi(strings.TrimSpace(MetaContent(item, prop)))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func metaTime(item dom.Element, prop string) *time.Time {
	return ParseTime(MetaContent(item, prop))
}

// cardUpvotes reads the upvote count from the JSON card blob. Fails
// closed: parse errors and absent fields are 0.
func cardUpvotes(item dom.Element) int {
	blob := item.Attr(attrCardBlob)
	if blob == "" || !gjson.Valid(blob) {
		return 0
	}
	n := gjson.Get(blob, pathUpvotes)
	if !n.Exists() || n.Int() < 0 {
		return 0
	}
	return int(n.Int())
}

// ParseTime parses a source timestamp: RFC 3339 first (the host's usual
// form), then a lenient pass for anything else. Unparseable input is nil.
func ParseTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	if t, err := dateparse.ParseLocal(s); err == nil {
		return &t
	}
	return nil
}
