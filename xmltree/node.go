// Package xmltree provides a small generic XML element tree. Draft documents
// travel through the conversion pipeline as trees, so the second pass can
// rewrite relation placeholders without reparsing or string surgery.
//
// The tree is deliberately simple: attributes, text and child elements.
// Mixed content ordering is not preserved, which is fine for metadata
// documents.
package xmltree

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// Node is one XML element.
type Node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []*Node    `xml:",any"`
}

// New returns an element with the given name, using a prefixed local name
// like "mods:titleInfo" when building namespaced documents by hand.
func New(name string, children ...*Node) *Node {
	return &Node{XMLName: xml.Name{Local: name}, Children: children}
}

// NewText returns an element wrapping a text value.
func NewText(name, text string) *Node {
	n := New(name)
	n.Text = text
	return n
}

// Parse decodes an XML document into a tree.
func Parse(b []byte) (*Node, error) {
	var n Node
	if err := xml.Unmarshal(b, &n); err != nil {
		return nil, fmt.Errorf("parse xml: %w", err)
	}
	return &n, nil
}

// Marshal renders the tree as an indented XML document with header.
func Marshal(n *Node) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(n); err != nil {
		return nil, fmt.Errorf("encode xml: %w", err)
	}
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

// LocalName returns the element name with any namespace or prefix stripped,
// so trees built by hand ("mods:mods") and parsed trees (resolved namespace)
// compare equal.
func (n *Node) LocalName() string {
	if i := strings.LastIndex(n.XMLName.Local, ":"); i >= 0 {
		return n.XMLName.Local[i+1:]
	}
	return n.XMLName.Local
}

// Clone returns a deep copy. Embedding content from another document always
// goes through Clone, so later mutation of the source cannot leak into the
// copy.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{XMLName: n.XMLName, Text: n.Text}
	if n.Attrs != nil {
		c.Attrs = make([]xml.Attr, len(n.Attrs))
		copy(c.Attrs, n.Attrs)
	}
	for _, child := range n.Children {
		c.Children = append(c.Children, child.Clone())
	}
	return c
}

// Visit walks the tree depth first, parents before children.
func (n *Node) Visit(f func(*Node)) {
	f(n)
	for _, c := range n.Children {
		c.Visit(f)
	}
}

// FindFirst returns the first descendant (or the node itself) with the given
// local name, or nil.
func (n *Node) FindFirst(local string) *Node {
	var found *Node
	n.Visit(func(c *Node) {
		if found == nil && c.LocalName() == local {
			found = c
		}
	})
	return found
}

// Attr returns the value of the named attribute. Prefixed and namespace
// resolved attribute names both match, see MatchAttr.
func (n *Node) Attr(space, local string) (string, bool) {
	for _, a := range n.Attrs {
		if MatchAttr(a, space, local) {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets a literal attribute, e.g. "ID" or "xlink:href".
func (n *Node) SetAttr(name, value string) {
	for i, a := range n.Attrs {
		if a.Name.Space == "" && a.Name.Local == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, xml.Attr{Name: xml.Name{Local: name}, Value: value})
}

// RemoveAttr deletes all attributes matching space and local name.
func (n *Node) RemoveAttr(space, local string) {
	attrs := n.Attrs[:0]
	for _, a := range n.Attrs {
		if MatchAttr(a, space, local) {
			continue
		}
		attrs = append(attrs, a)
	}
	n.Attrs = attrs
}

// Reprefix rewrites namespace resolved attribute names back into prefixed
// literal form so a parsed tree marshals as valid XML again. ns maps
// namespace URIs to prefixes; attributes in unmapped namespaces keep only
// their local name. Default xmlns declarations are dropped, the encoder
// re-emits them from the element names.
func Reprefix(n *Node, ns map[string]string) {
	n.Visit(func(c *Node) {
		attrs := c.Attrs[:0]
		for _, a := range c.Attrs {
			switch {
			case a.Name.Space == "" && a.Name.Local == "xmlns":
				continue
			case a.Name.Space == "xmlns":
				a.Name = xml.Name{Local: "xmlns:" + a.Name.Local}
			case a.Name.Space != "":
				if prefix, ok := ns[a.Name.Space]; ok {
					a.Name = xml.Name{Local: prefix + ":" + a.Name.Local}
				} else {
					a.Name = xml.Name{Local: a.Name.Local}
				}
			}
			attrs = append(attrs, a)
		}
		c.Attrs = attrs
	})
}

// conventionalPrefixes are the prefixes this codebase uses when building
// trees in code, bound to their namespace URIs. MatchAttr only equates a
// prefixed attribute name with a namespace through this table.
var conventionalPrefixes = map[string]string{
	"mods":  "http://www.loc.gov/mods/v3",
	"xlink": "http://www.w3.org/1999/xlink",
	"temp":  "urn:temp-linking",
}

// MatchAttr reports whether an attribute has the given namespace and local
// name. encoding/xml resolves prefixes on decode but keeps literal prefixed
// names on trees built in code, so both spellings are accepted: the resolved
// form {space}local and the prefixed form p:local, provided p is the
// conventional prefix for the requested namespace. An empty space matches
// unprefixed attributes only.
func MatchAttr(a xml.Attr, space, local string) bool {
	if a.Name.Space == space && a.Name.Local == local {
		return true
	}
	if space == "" || a.Name.Space != "" {
		return false
	}
	i := strings.LastIndex(a.Name.Local, ":")
	if i < 0 || a.Name.Local[i+1:] != local {
		return false
	}
	return conventionalPrefixes[a.Name.Local[:i]] == space
}
