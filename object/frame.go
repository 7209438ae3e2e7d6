// Package object wraps transformed metadata in the archival object frame the
// repository expects: structure, metadata container and service state, with
// the generated id on the root element.
package object

import (
	"sort"

	"github.com/miku/picakit/xmltree"
)

// Namespace URIs used in object documents.
const (
	ModsNamespace  = "http://www.loc.gov/mods/v3"
	XlinkNamespace = "http://www.w3.org/1999/xlink"
	TempNamespace  = "urn:temp-linking"
)

// DefaultStatus is the service state newly converted objects start in.
const DefaultStatus = "published"

// Wrap puts a metadata payload (usually a mods tree) into an object frame.
func Wrap(payload *xmltree.Node, id, status string) *xmltree.Node {
	if status == "" {
		status = DefaultStatus
	}
	modsContainer := xmltree.New("def.modsContainer")
	modsContainer.SetAttr("class", "MCRMetaXML")
	modsContainer.SetAttr("heritable", "false")
	modsContainer.SetAttr("notinherit", "true")

	inner := xmltree.New("modsContainer", payload)
	inner.SetAttr("inherited", "0")
	modsContainer.Children = append(modsContainer.Children, inner)

	servstates := xmltree.New("servstates")
	servstates.SetAttr("class", "MCRMetaClassification")
	servstate := xmltree.New("servstate")
	servstate.SetAttr("categid", status)
	servstate.SetAttr("classid", "state")
	servstate.SetAttr("inherited", "0")
	servstates.Children = append(servstates.Children, servstate)

	root := xmltree.New("mycoreobject",
		xmltree.New("structure"),
		xmltree.New("metadata", modsContainer),
		xmltree.New("service", servstates),
	)
	root.SetAttr("ID", id)
	return root
}

// ID returns the object id from the root element.
func ID(doc *xmltree.Node) (string, bool) {
	return doc.Attr("", "ID")
}

// Metadata returns the mods payload of an object document, or nil.
func Metadata(doc *xmltree.Node) *xmltree.Node {
	return doc.FindFirst("mods")
}

// modsOrder is the canonical child order of a mods element.
var modsOrder = []string{
	"genre", "typeOfResource", "titleInfo", "nonSort", "subTitle", "title",
	"partNumber", "partName", "name", "namePart", "displayForm", "role",
	"affiliation", "originInfo", "place", "publisher", "dateIssued",
	"dateCreated", "dateModified", "dateValid", "dateOther", "edition",
	"issuance", "frequency", "relatedItem", "identifier", "language",
	"physicalDescription", "abstract", "note", "subject", "classification",
	"location", "shelfLocator", "url", "accessCondition", "part",
	"extension", "recordInfo",
}

var modsOrderIndex = func() map[string]int {
	m := make(map[string]int, len(modsOrder))
	for i, name := range modsOrder {
		m[name] = i
	}
	return m
}()

// SortMods orders the children of a mods element canonically. Unknown
// elements sort last, ties break on name, the sort is stable.
func SortMods(mods *xmltree.Node) {
	pos := func(n *xmltree.Node) int {
		if i, ok := modsOrderIndex[n.LocalName()]; ok {
			return i
		}
		return len(modsOrder)
	}
	sort.SliceStable(mods.Children, func(i, j int) bool {
		pi, pj := pos(mods.Children[i]), pos(mods.Children[j])
		if pi == pj {
			return mods.Children[i].LocalName() < mods.Children[j].LocalName()
		}
		return pi < pj
	})
}
