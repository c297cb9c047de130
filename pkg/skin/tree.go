package skin

import (
	"encoding/xml"
	"fmt"
	"io"
)

// NodeKind distinguishes an element node from a text node in the generic
// drawing tree.
type NodeKind int

const (
	// KindElement is a tagged element carrying attributes and children.
	KindElement NodeKind = iota
	// KindText is a leaf text run (possibly a substitutable placeholder).
	KindText
)

// Node is a generic, dynamically-attributed XML tree node. Both the skin
// template library and the final drawing document are built from Nodes; no
// fixed schema is assumed beyond a fixed set of known attribute names
// (s:pid, s:x, s:y, s:dir, s:position, s:type, s:width, s:height, s:alias,
// s:attribute), all accessed through the typed helpers below rather than
// scattered string coercions.
type Node struct {
	Kind     NodeKind
	Tag      string // qualified tag, e.g. "rect", "s:alias"; empty for text
	Attrs    map[string]string
	Children []*Node
	Text     string // only meaningful when Kind == KindText
}

// Attr returns an attribute value and whether it was present.
func (n *Node) Attr(name string) (string, bool) {
	if n.Attrs == nil {
		return "", false
	}
	v, ok := n.Attrs[name]
	return v, ok
}

// SetAttr sets (or overwrites) an attribute on an element node.
func (n *Node) SetAttr(name, value string) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[name] = value
}

// Clone deep-copies n and its entire subtree, so that a shared template can
// be mutated per-cell without corrupting other instantiations.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	clone := &Node{Kind: n.Kind, Tag: n.Tag, Text: n.Text}
	if n.Attrs != nil {
		clone.Attrs = make(map[string]string, len(n.Attrs))
		for k, v := range n.Attrs {
			clone.Attrs[k] = v
		}
	}
	for _, c := range n.Children {
		clone.Children = append(clone.Children, c.Clone())
	}
	return clone
}

// Find returns the first descendant (including n itself) whose tag matches.
func (n *Node) Find(tag string) *Node {
	if n.Kind == KindElement && n.Tag == tag {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(tag); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every descendant element (including n itself) whose tag matches.
func (n *Node) FindAll(tag string) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(cur *Node) {
		if cur.Kind == KindElement && cur.Tag == tag {
			out = append(out, cur)
		}
		for _, c := range cur.Children {
			walk(c)
		}
	}
	walk(n)
	return out
}

// FindAllWithAttr returns every descendant element strictly beneath n (n
// itself is never included) carrying the given attribute, in document order.
func (n *Node) FindAllWithAttr(attr string) []*Node {
	var out []*Node
	var walk func(*Node, bool)
	walk = func(cur *Node, isRoot bool) {
		if cur.Kind == KindElement {
			if _, ok := cur.Attr(attr); ok && !isRoot {
				out = append(out, cur)
			}
			for _, c := range cur.Children {
				walk(c, false)
			}
		}
	}
	walk(n, true)
	return out
}

// ParseTree decodes an XML document into a generic Node tree. Namespace
// prefixes are preserved verbatim as "prefix:local" rather than resolved
// against xmlns declarations, since the skin vocabulary (s:pid, s:type, ...)
// is a fixed, unprefixed-by-URI convention rather than real XML namespacing.
func ParseTree(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)
	var root *Node
	var stack []*Node

	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("skin: parsing xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Node{Kind: KindElement, Tag: qualifiedName(t.Name), Attrs: make(map[string]string)}
			for _, a := range t.Attr {
				el.Attrs[qualifiedName(a.Name)] = a.Value
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			} else if root == nil {
				root = el
			}
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			text := string(t)
			if len(stack) > 0 && hasNonSpace(text) {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, &Node{Kind: KindText, Text: text})
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("skin: document has no root element")
	}
	return root, nil
}

// Write serializes n and its subtree back to XML. Attribute order is
// unspecified (map iteration), matching the output-stability guarantees the
// rest of the skin package already makes for generated text.
func Write(w io.Writer, n *Node) error {
	enc := xml.NewEncoder(w)
	if err := writeNode(enc, n); err != nil {
		return fmt.Errorf("skin: writing xml: %w", err)
	}
	return enc.Flush()
}

func writeNode(enc *xml.Encoder, n *Node) error {
	if n.Kind == KindText {
		return enc.EncodeToken(xml.CharData(n.Text))
	}

	start := xml.StartElement{Name: xml.Name{Local: n.Tag}}
	for k, v := range n.Attrs {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: k}, Value: v})
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := writeNode(enc, c); err != nil {
			return err
		}
	}
	return enc.EncodeToken(xml.EndElement{Name: start.Name})
}

func qualifiedName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func hasNonSpace(s string) bool {
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return true
		}
	}
	return false
}
