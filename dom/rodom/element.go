package rodom

import (
	"fmt"
	"strconv"

	"github.com/go-rod/rod"

	"github.com/hazyhaar/zhikeeper/dom"
)

// element implements dom.Element over one rod element handle. All reads
// and mutations evaluate JavaScript scoped to the node, so a handle the
// host has since detached degrades to an eval error, not a crash.
type element struct {
	doc *Document
	el  *rod.Element
}

var _ dom.Element = (*element)(nil)

func (e *element) Tag() string {
	res, err := e.el.Eval(`() => this.tagName.toLowerCase()`)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

func (e *element) Text() string {
	res, err := e.el.Eval(`() => this.textContent || ""`)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

func (e *element) Attr(name string) string {
	res, err := e.el.Eval(`(n) => this.getAttribute(n) || ""`, name)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

func (e *element) SetAttr(name, value string) error {
	if _, err := e.el.Eval(`(n, v) => this.setAttribute(n, v)`, name, value); err != nil {
		return fmt.Errorf("rodom: set attr %s: %w", name, err)
	}
	return nil
}

func (e *element) RemoveAttr(name string) error {
	if _, err := e.el.Eval(`(n) => this.removeAttribute(n)`, name); err != nil {
		return fmt.Errorf("rodom: remove attr %s: %w", name, err)
	}
	return nil
}

func (e *element) HasClass(class string) bool {
	res, err := e.el.Eval(`(c) => this.classList.contains(c)`, class)
	if err != nil {
		return false
	}
	return res.Value.Bool()
}

func (e *element) Query(selector string) (dom.Element, bool) {
	has, el, err := e.el.Has(selector)
	if err != nil || !has {
		return nil, false
	}
	return &element{doc: e.doc, el: el}, true
}

func (e *element) QueryAll(selector string) []dom.Element {
	els, err := e.el.Elements(selector)
	if err != nil {
		return nil
	}
	out := make([]dom.Element, 0, len(els))
	for _, el := range els {
		out = append(out, &element{doc: e.doc, el: el})
	}
	return out
}

func (e *element) InsertHTML(pos dom.Position, fragment string) error {
	if _, err := e.el.Eval(`(p, h) => this.insertAdjacentHTML(p, h)`, string(pos), fragment); err != nil {
		return fmt.Errorf("rodom: insert html at %s: %w", pos, err)
	}
	return nil
}

func (e *element) Remove() error {
	if _, err := e.el.Eval(`() => this.remove()`); err != nil {
		return fmt.Errorf("rodom: remove element: %w", err)
	}
	return nil
}

func (e *element) Hide() error {
	if _, err := e.el.Eval(`() => { this.style.display = "none"; }`); err != nil {
		return fmt.Errorf("rodom: hide element: %w", err)
	}
	return nil
}

func (e *element) Click() error {
	// A script click, not an input-device click: hidden and offscreen
	// nodes must stay activatable.
	if _, err := e.el.Eval(`() => this.click()`); err != nil {
		return fmt.Errorf("rodom: click: %w", err)
	}
	return nil
}

func (e *element) OnClick(fn func()) error {
	id := e.doc.registerHandler(fn)
	_, err := e.el.Eval(`(id) => {
		this.addEventListener("click", (ev) => {
			ev.preventDefault();
			ev.stopPropagation();
			window.`+clickBinding+`(id);
		});
	}`, id)
	if err != nil {
		return fmt.Errorf("rodom: attach click handler: %w", err)
	}
	return nil
}

func (e *element) ReplaceWithTwin() (dom.Element, error) {
	token := e.doc.nextToken()
	_, err := e.el.Eval(`(token) => {
		const twin = this.cloneNode(true);
		twin.setAttribute("data-zk-twin", token);
		this.replaceWith(twin);
	}`, token)
	if err != nil {
		return nil, fmt.Errorf("rodom: replace with twin: %w", err)
	}

	sel := `[data-zk-twin="` + token + `"]`
	has, twin, err := e.doc.page.Has(sel)
	if err != nil || !has {
		return nil, fmt.Errorf("rodom: twin not found after replace")
	}
	if _, err := twin.Eval(`() => this.removeAttribute("data-zk-twin")`); err != nil {
		return nil, fmt.Errorf("rodom: unmark twin: %w", err)
	}
	return &element{doc: e.doc, el: twin}, nil
}

// nextToken issues a document-unique marker value for transient
// attribute round trips.
func (d *Document) nextToken() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	return "t" + strconv.FormatUint(d.nextID, 10)
}
