// Package mods implements the builtin PICA to MODS mapping. It covers the
// common description fields and emits relation placeholders for host items
// and reviewed works, which the conversion pipeline resolves in its second
// pass. For anything beyond this mapping, use the stylesheet transform.
package mods

import (
	"regexp"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/miku/picakit/object"
	"github.com/miku/picakit/pica"
	"github.com/miku/picakit/xmltree"
)

// Fields consulted by the mapping, besides the identifier fields in pica.
const (
	tagTitle     = "021A" // $a title, $d subtitle
	tagPerson    = "028A" // $a family, $d given
	tagDate      = "011@" // $a date of publication
	tagPublisher = "033A" // $p place, $n publisher
	tagLanguage  = "010@" // $a language code
	tagExtent    = "034D" // $a extent
	tagAbstract  = "047I" // $a abstract
	tagHost      = "039B" // $9 PPN, $s ISSN of the host item
	tagReview    = "039P" // $9 PPN, $i ISBN of the reviewed work
)

// Transform maps a PICA record to a framed object document with a mods
// payload.
type Transform struct {
	// Status is the service state of new objects, default "published".
	Status string
}

// Transform implements convert.Transform.
func (t *Transform) Transform(rec pica.Record, targetID string) (*xmltree.Node, error) {
	mods := xmltree.New("mods:mods")
	mods.SetAttr("xmlns:mods", object.ModsNamespace)
	mods.SetAttr("xmlns:temp", object.TempNamespace)

	if title, ok := rec.First(tagTitle, 'a'); ok {
		ti := xmltree.New("mods:titleInfo", xmltree.NewText("mods:title", clean(title)))
		if sub, ok := rec.First(tagTitle, 'd'); ok {
			ti.Children = append(ti.Children, xmltree.NewText("mods:subTitle", clean(sub)))
		}
		mods.Children = append(mods.Children, ti)
	}
	for _, f := range rec.Filter(tagPerson) {
		name := xmltree.New("mods:name")
		name.SetAttr("type", "personal")
		if family, ok := f.First('a'); ok {
			part := xmltree.NewText("mods:namePart", clean(family))
			part.SetAttr("type", "family")
			name.Children = append(name.Children, part)
		}
		if given, ok := f.First('d'); ok {
			part := xmltree.NewText("mods:namePart", clean(given))
			part.SetAttr("type", "given")
			name.Children = append(name.Children, part)
		}
		if len(name.Children) > 0 {
			mods.Children = append(mods.Children, name)
		}
	}
	if origin := t.originInfo(rec); origin != nil {
		mods.Children = append(mods.Children, origin)
	}
	if lang, ok := rec.First(tagLanguage, 'a'); ok {
		term := xmltree.NewText("mods:languageTerm", clean(lang))
		term.SetAttr("type", "code")
		mods.Children = append(mods.Children, xmltree.New("mods:language", term))
	}
	if extent, ok := rec.First(tagExtent, 'a'); ok {
		mods.Children = append(mods.Children,
			xmltree.New("mods:physicalDescription", xmltree.NewText("mods:extent", clean(extent))))
	}
	if abstract, ok := rec.First(tagAbstract, 'a'); ok {
		mods.Children = append(mods.Children, xmltree.NewText("mods:abstract", clean(abstract)))
	}
	for _, isbn := range rec.ISBNs() {
		id := xmltree.NewText("mods:identifier", clean(isbn))
		id.SetAttr("type", "isbn")
		mods.Children = append(mods.Children, id)
	}
	for _, issn := range rec.ISSNs() {
		id := xmltree.NewText("mods:identifier", clean(issn))
		id.SetAttr("type", "issn")
		mods.Children = append(mods.Children, id)
	}
	for _, f := range rec.Filter(tagHost) {
		if item := relatedItem(f, "host", '9', "relatedPPN", 's', "relatedISSN"); item != nil {
			mods.Children = append(mods.Children, item)
		}
	}
	for _, f := range rec.Filter(tagReview) {
		if item := relatedItem(f, "reviewOf", '9', "relatedPPN", 'i', "relatedISBN"); item != nil {
			mods.Children = append(mods.Children, item)
		}
	}
	if ppn, ok := rec.PPN(); ok {
		mods.Children = append(mods.Children,
			xmltree.New("mods:recordInfo", xmltree.NewText("mods:recordIdentifier", ppn)))
	}
	object.SortMods(mods)
	return object.Wrap(mods, targetID, t.Status), nil
}

func (t *Transform) originInfo(rec pica.Record) *xmltree.Node {
	origin := xmltree.New("mods:originInfo")
	if place, ok := rec.First(tagPublisher, 'p'); ok {
		origin.Children = append(origin.Children,
			xmltree.New("mods:place", xmltree.NewText("mods:placeTerm", clean(place))))
	}
	if publisher, ok := rec.First(tagPublisher, 'n'); ok {
		origin.Children = append(origin.Children, xmltree.NewText("mods:publisher", clean(publisher)))
	}
	if date, ok := rec.First(tagDate, 'a'); ok {
		origin.Children = append(origin.Children, xmltree.NewText("mods:dateIssued", NormalizeDate(date)))
	}
	if len(origin.Children) == 0 {
		return nil
	}
	return origin
}

// relatedItem builds a relation placeholder from a linking field, preferring
// the PPN subfield over the standard number one.
func relatedItem(f pica.Field, kind string, ppnCode byte, ppnAttr string, numCode byte, numAttr string) *xmltree.Node {
	item := xmltree.New("mods:relatedItem")
	item.SetAttr("type", kind)
	if ppn, ok := f.First(ppnCode); ok && strings.TrimSpace(ppn) != "" {
		item.SetAttr("temp:"+ppnAttr, strings.TrimSpace(ppn))
		return item
	}
	if num, ok := f.First(numCode); ok && strings.TrimSpace(num) != "" {
		item.SetAttr("temp:"+numAttr, strings.TrimSpace(num))
		return item
	}
	return nil
}

var yearOnly = regexp.MustCompile(`^[0-9]{4}$`)

// NormalizeDate canonicalizes a publication date to ISO form. Plain years
// pass through, anything else is parsed leniently; unparseable values are
// kept verbatim rather than lost.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if yearOnly.MatchString(s) {
		return s
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return s
	}
	return t.Format("2006-01-02")
}

// clean collapses runs of whitespace, PICA values occasionally carry stray
// newlines from the export.
func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
