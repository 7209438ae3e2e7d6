package convert

import (
	"github.com/miku/picakit/idmap"
	"github.com/miku/picakit/object"
	"github.com/miku/picakit/xmltree"
)

// Relation kinds, taken from the type attribute of the carrying element.
const (
	KindHost     = "host"     // contained in another object
	KindReviewOf = "reviewOf" // review of another object
	KindRelated  = "related"  // no type attribute present
)

// Placeholder is an unresolved cross reference inside a draft document: an
// element carrying a temp namespace attribute that names another record by
// an external identifier. Pass 2 resolves or drops it.
type Placeholder struct {
	Key  string // namespace qualified store key, e.g. "issn:10786279"
	Kind string

	node  *xmltree.Node
	space string // namespace of the temp attribute as found
	local string // local name of the temp attribute as found
}

// tempAttrs maps the recognized temp attributes to store key constructors.
var tempAttrs = []struct {
	local string
	keyOf func(string) string
}{
	{"relatedPPN", idmap.PPNKey},
	{"relatedISBN", idmap.ISBNKey},
	{"relatedISSN", idmap.ISSNKey},
}

// ExtractPlaceholders runs the fixed placeholder query over a draft
// document: any element with a temp:relatedPPN, temp:relatedISBN or
// temp:relatedISSN attribute, in document order.
func ExtractPlaceholders(doc *xmltree.Node) []Placeholder {
	var phs []Placeholder
	doc.Visit(func(n *xmltree.Node) {
		for _, ta := range tempAttrs {
			v, ok := n.Attr(object.TempNamespace, ta.local)
			if !ok {
				continue
			}
			kind := KindRelated
			if t, ok := n.Attr("", "type"); ok && t != "" {
				kind = t
			}
			phs = append(phs, Placeholder{
				Key:   ta.keyOf(v),
				Kind:  kind,
				node:  n,
				space: object.TempNamespace,
				local: ta.local,
			})
		}
	})
	return phs
}

// strip removes the temp attribute from the carrying element, leaving no
// trace of the placeholder in the output.
func (p *Placeholder) strip() {
	p.node.RemoveAttr(p.space, p.local)
}

// stripTemp removes temp attributes and declarations from a whole tree. Used
// on payload copies embedded into another document: the source draft may not
// have been resolved yet, its pending placeholders must not leak into the
// copy.
func stripTemp(doc *xmltree.Node) {
	doc.Visit(func(n *xmltree.Node) {
		for _, ta := range tempAttrs {
			n.RemoveAttr(object.TempNamespace, ta.local)
		}
	})
	stripTempDecls(doc)
}

// stripTempDecls drops xmlns:temp declarations once all placeholders on a
// document are resolved or discarded.
func stripTempDecls(doc *xmltree.Node) {
	doc.Visit(func(n *xmltree.Node) {
		attrs := n.Attrs[:0]
		for _, a := range n.Attrs {
			if a.Value == object.TempNamespace &&
				(a.Name.Space == "xmlns" || a.Name.Local == "xmlns:temp" || a.Name.Local == "temp") {
				continue
			}
			attrs = append(attrs, a)
		}
		n.Attrs = attrs
	})
}
