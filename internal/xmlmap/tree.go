package xmlmap

import (
	"strings"

	"github.com/beevik/etree"
)

// Tree wraps a parsed document and answers unqualified tag lookups. Elements
// are visible only when their namespace is empty or in the allowlist, so a
// foreign namespace reusing an NF-e tag name cannot shadow the real field.
type Tree struct {
	doc     *etree.Document
	allowed map[string]struct{}
}

func newTree(doc *etree.Document, namespaces []string) *Tree {
	allowed := make(map[string]struct{}, len(namespaces)+1)
	allowed[""] = struct{}{}
	for _, ns := range namespaces {
		allowed[strings.TrimSpace(ns)] = struct{}{}
	}
	return &Tree{doc: doc, allowed: allowed}
}

// Root returns the document element.
func (t *Tree) Root() *etree.Element {
	return t.doc.Root()
}

// FindScope resolves path under scope and returns the element or nil. Each
// slash-separated step is a descendant lookup anchored on the previous step's
// first match, in document order. A nil scope finds nothing.
func (t *Tree) FindScope(path string, scope *etree.Element) *etree.Element {
	if scope == nil {
		return nil
	}
	cur := scope
	for _, step := range strings.Split(path, "/") {
		if step == "" {
			continue
		}
		cur = t.firstDescendant(cur, step)
		if cur == nil {
			return nil
		}
	}
	if cur == scope {
		return nil
	}
	return cur
}

// FindAll returns every visible descendant of scope named tag, in document order.
func (t *Tree) FindAll(tag string, scope *etree.Element) []*etree.Element {
	if scope == nil {
		return nil
	}
	var out []*etree.Element
	t.walk(scope, func(e *etree.Element) bool {
		if e.Tag == tag {
			out = append(out, e)
		}
		return true
	})
	return out
}

// FindText returns the trimmed text of path under scope, or def when the
// element is missing or empty.
func (t *Tree) FindText(path string, scope *etree.Element, def string) string {
	el := t.FindScope(path, scope)
	if el == nil {
		return def
	}
	if text := strings.TrimSpace(el.Text()); text != "" {
		return text
	}
	return def
}

// Child returns the first visible direct child of parent named tag.
func (t *Tree) Child(parent *etree.Element, tag string) *etree.Element {
	if parent == nil {
		return nil
	}
	for _, c := range parent.ChildElements() {
		if c.Tag == tag && t.visible(c) {
			return c
		}
	}
	return nil
}

func (t *Tree) firstDescendant(scope *etree.Element, tag string) *etree.Element {
	var found *etree.Element
	t.walk(scope, func(e *etree.Element) bool {
		if e.Tag == tag {
			found = e
			return false
		}
		return true
	})
	return found
}

// walk visits the visible descendants of scope depth-first until fn returns false.
// Children of a hidden element are not visited.
func (t *Tree) walk(scope *etree.Element, fn func(*etree.Element) bool) bool {
	for _, c := range scope.ChildElements() {
		if !t.visible(c) {
			continue
		}
		if !fn(c) {
			return false
		}
		if !t.walk(c, fn) {
			return false
		}
	}
	return true
}

func (t *Tree) visible(e *etree.Element) bool {
	_, ok := t.allowed[e.NamespaceURI()]
	return ok
}
