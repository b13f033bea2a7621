// Package node is a small in-memory render tree: elements with attributes and
// children, and text nodes. It provides the container primitives, deep clone
// and containment test a reconciler drives.
package node

import (
	"html"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Kind distinguishes elements from text nodes.
type Kind uint8

const (
	ElementNode Kind = iota + 1
	TextNode
)

// Node is one element or text node. Every node, clones included, carries a
// unique id.
type Node struct {
	id       string
	kind     Kind
	tag      string
	data     string
	attrs    map[string]string
	parent   *Node
	children []*Node
}

// New creates an element and appends children to it.
func New(tag string, children ...*Node) *Node {
	n := &Node{
		id:    uuid.NewString(),
		kind:  ElementNode,
		tag:   tag,
		attrs: make(map[string]string),
	}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

// Text creates a text node.
func Text(data string) *Node {
	return &Node{
		id:   uuid.NewString(),
		kind: TextNode,
		data: data,
	}
}

func (n *Node) ID() string      { return n.id }
func (n *Node) Kind() Kind      { return n.kind }
func (n *Node) Tag() string     { return n.tag }
func (n *Node) Parent() *Node   { return n.parent }
func (n *Node) IsElement() bool { return n.kind == ElementNode }

// Children returns a copy of n's child list.
func (n *Node) Children() []*Node {
	return slices.Clone(n.children)
}

// Elements returns n's element children.
func (n *Node) Elements() []*Node {
	elems := make([]*Node, 0, len(n.children))
	for _, c := range n.children {
		if c.kind == ElementNode {
			elems = append(elems, c)
		}
	}
	return elems
}

// With sets an attribute and returns n, for building trees inline.
func (n *Node) With(name, value string) *Node {
	n.SetAttr(name, value)
	return n
}

func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

func (n *Node) HasAttr(name string) bool {
	_, ok := n.attrs[name]
	return ok
}

func (n *Node) SetAttr(name, value string) {
	if n.kind != ElementNode {
		panic("node: attributes are only supported on elements")
	}
	n.attrs[name] = value
}

func (n *Node) RemoveAttr(name string) {
	delete(n.attrs, name)
}

// TextContent returns the data of a text node, or the concatenated text of
// an element's descendants.
func (n *Node) TextContent() string {
	if n.kind == TextNode {
		return n.data
	}
	var sb strings.Builder
	n.Walk(func(d *Node) bool {
		if d.kind == TextNode {
			sb.WriteString(d.data)
		}
		return true
	})
	return sb.String()
}

// SetTextContent sets the data of a text node, or replaces an element's
// children with a single text node.
func (n *Node) SetTextContent(data string) {
	if n.kind == TextNode {
		n.data = data
		return
	}
	for _, c := range n.children {
		c.parent = nil
	}
	n.children = n.children[:0]
	if data != "" {
		n.AppendChild(Text(data))
	}
}

// AppendChild adds child as the last child of n, detaching it from its
// current parent first.
func (n *Node) AppendChild(child *Node) {
	n.adopt(child)
	n.children = append(n.children, child)
}

// InsertBefore adds child to n just before ref. A nil ref appends. Panics if
// ref is not a child of n.
func (n *Node) InsertBefore(child, ref *Node) {
	if ref == nil {
		n.AppendChild(child)
		return
	}
	if ref.parent != n {
		panic("node: reference node is not a child")
	}
	if child == ref {
		return
	}
	n.adopt(child)
	at := slices.Index(n.children, ref)
	n.children = slices.Insert(n.children, at, child)
}

// RemoveChild detaches child from n. Panics if child is not a child of n.
func (n *Node) RemoveChild(child *Node) {
	if child.parent != n {
		panic("node: not a child")
	}
	n.detach(child)
}

// Remove detaches n from its parent, if any.
func (n *Node) Remove() {
	if n.parent != nil {
		n.parent.detach(n)
	}
}

// Clone copies n. A deep clone copies the whole subtree. The copy is
// detached and every copied node gets a fresh id.
func (n *Node) Clone(deep bool) *Node {
	c := &Node{
		id:   uuid.NewString(),
		kind: n.kind,
		tag:  n.tag,
		data: n.data,
	}
	if n.kind == ElementNode {
		c.attrs = make(map[string]string, len(n.attrs))
		for k, v := range n.attrs {
			c.attrs[k] = v
		}
	}
	if deep {
		for _, child := range n.children {
			c.AppendChild(child.Clone(true))
		}
	}
	return c
}

// Contains reports whether other is n or one of its descendants.
func (n *Node) Contains(other *Node) bool {
	for p := other; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// Walk visits n and its descendants depth first. Returning false from fn
// skips the visited node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// Query returns the first descendant of n (n excluded) carrying attribute
// name, with the given value unless value is empty.
func (n *Node) Query(name, value string) *Node {
	var found *Node
	for _, c := range n.children {
		c.Walk(func(d *Node) bool {
			if found != nil {
				return false
			}
			if v, ok := d.attrs[name]; ok && (value == "" || v == value) {
				found = d
				return false
			}
			return true
		})
		if found != nil {
			break
		}
	}
	return found
}

// QueryAll returns n (if it matches) and every descendant carrying attribute
// name, in document order.
func (n *Node) QueryAll(name string) []*Node {
	var found []*Node
	n.Walk(func(d *Node) bool {
		if _, ok := d.attrs[name]; ok {
			found = append(found, d)
		}
		return true
	})
	return found
}

// String renders n as markup with attributes in name order.
func (n *Node) String() string {
	var sb strings.Builder
	n.render(&sb)
	return sb.String()
}

func (n *Node) render(sb *strings.Builder) {
	if n.kind == TextNode {
		sb.WriteString(html.EscapeString(n.data))
		return
	}
	sb.WriteByte('<')
	sb.WriteString(n.tag)
	names := make([]string, 0, len(n.attrs))
	for k := range n.attrs {
		names = append(names, k)
	}
	slices.Sort(names)
	for _, k := range names {
		sb.WriteByte(' ')
		sb.WriteString(k)
		sb.WriteString(`="`)
		sb.WriteString(html.EscapeString(n.attrs[k]))
		sb.WriteByte('"')
	}
	sb.WriteByte('>')
	for _, c := range n.children {
		c.render(sb)
	}
	sb.WriteString("</")
	sb.WriteString(n.tag)
	sb.WriteByte('>')
}

func (n *Node) adopt(child *Node) {
	if n.kind != ElementNode {
		panic("node: text nodes cannot have children")
	}
	if child.Contains(n) {
		panic("node: cannot insert a node into its own subtree")
	}
	if child.parent != nil {
		child.parent.detach(child)
	}
	child.parent = n
}

func (n *Node) detach(child *Node) {
	if at := slices.Index(n.children, child); at >= 0 {
		n.children = slices.Delete(n.children, at, at+1)
	}
	child.parent = nil
}
