package memdom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/hazyhaar/zhikeeper/dom"
)

var _ dom.Document = (*Document)(nil)
var _ dom.Element = (*element)(nil)

// element wraps one node. Two elements may point at the same node; node
// identity, not wrapper identity, is what matters for handlers.
type element struct {
	doc  *Document
	node *html.Node
}

func (e *element) Tag() string {
	return strings.ToLower(e.node.Data)
}

func (e *element) Text() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(e.node)
	return sb.String()
}

func (e *element) Attr(name string) string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return getAttr(e.node, name)
}

func (e *element) SetAttr(name, value string) error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	setAttr(e.node, name, value)
	e.doc.notifyLocked()
	return nil
}

func (e *element) RemoveAttr(name string) error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	for i, a := range e.node.Attr {
		if a.Key == name {
			e.node.Attr = append(e.node.Attr[:i], e.node.Attr[i+1:]...)
			e.doc.notifyLocked()
			return nil
		}
	}
	return nil
}

func (e *element) HasClass(class string) bool {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	for _, c := range strings.Fields(getAttr(e.node, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func (e *element) Query(selector string) (dom.Element, bool) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	nodes := e.doc.queryLocked(e.node, selector, true)
	if len(nodes) == 0 {
		return nil, false
	}
	return e.doc.wrap(nodes[0]), true
}

func (e *element) QueryAll(selector string) []dom.Element {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	nodes := e.doc.queryLocked(e.node, selector, false)
	out := make([]dom.Element, len(nodes))
	for i, n := range nodes {
		out[i] = e.doc.wrap(n)
	}
	return out
}

func (e *element) InsertHTML(pos dom.Position, fragment string) error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	// Fragments are parsed in the context of the element that will
	// contain them, as insertAdjacentHTML does.
	ctx := e.node
	if pos == dom.BeforeBegin || pos == dom.AfterEnd {
		if e.node.Parent == nil {
			return fmt.Errorf("memdom: insert %s: detached node", pos)
		}
		ctx = e.node.Parent
	}

	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{
		Type:     html.ElementNode,
		Data:     ctx.Data,
		DataAtom: ctx.DataAtom,
	})
	if err != nil {
		return fmt.Errorf("memdom: parse fragment: %w", err)
	}

	// Anchors are captured before inserting so multi-node fragments keep
	// their order.
	var parent, anchor *html.Node
	switch pos {
	case dom.BeforeBegin:
		parent, anchor = e.node.Parent, e.node
	case dom.AfterBegin:
		parent, anchor = e.node, e.node.FirstChild
	case dom.BeforeEnd:
		parent, anchor = e.node, nil
	case dom.AfterEnd:
		parent, anchor = e.node.Parent, e.node.NextSibling
	default:
		return fmt.Errorf("memdom: unknown position %q", pos)
	}
	for _, n := range nodes {
		parent.InsertBefore(n, anchor)
	}

	e.doc.notifyLocked()
	return nil
}

func (e *element) Remove() error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	if e.node.Parent == nil {
		return nil
	}
	e.node.Parent.RemoveChild(e.node)
	e.doc.dropHandlersLocked(e.node)
	e.doc.notifyLocked()
	return nil
}

func (e *element) Hide() error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	style := getAttr(e.node, "style")
	if strings.Contains(style, "display: none") {
		return nil
	}
	if style != "" && !strings.HasSuffix(strings.TrimSpace(style), ";") {
		style += "; "
	}
	setAttr(e.node, "style", style+"display: none")
	e.doc.notifyLocked()
	return nil
}

func (e *element) Click() error {
	e.doc.mu.Lock()
	fns := append([]func(){}, e.doc.handlers[e.node]...)
	e.doc.mu.Unlock()

	// Handlers run unlocked: clicking typically mutates the tree.
	for _, fn := range fns {
		fn()
	}
	return nil
}

func (e *element) OnClick(fn func()) error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.doc.handlers[e.node] = append(e.doc.handlers[e.node], fn)
	return nil
}

func (e *element) ReplaceWithTwin() (dom.Element, error) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	if e.node.Parent == nil {
		return nil, fmt.Errorf("memdom: replace twin: detached node")
	}

	twin := cloneTree(e.node)
	e.node.Parent.InsertBefore(twin, e.node)
	e.node.Parent.RemoveChild(e.node)
	// The twin starts with no handlers — that is the point.
	e.doc.dropHandlersLocked(e.node)
	e.doc.notifyLocked()
	return e.doc.wrap(twin), nil
}

// dropHandlersLocked forgets handlers for a detached subtree.
func (d *Document) dropHandlersLocked(n *html.Node) {
	delete(d.handlers, n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.dropHandlersLocked(c)
	}
}

func cloneTree(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(cloneTree(child))
	}
	return c
}

func getAttr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, name, value string) {
	for i, a := range n.Attr {
		if a.Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}
