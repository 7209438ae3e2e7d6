package mods

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/miku/picakit/object"
	"github.com/miku/picakit/pica"
)

func field(tag string, subfields ...pica.Subfield) pica.Field {
	return pica.Field{Tag: tag, Subfields: subfields}
}

func sf(code byte, value string) pica.Subfield {
	return pica.Subfield{Code: code, Value: value}
}

func TestTransformBook(t *testing.T) {
	rec := pica.Record{Fields: []pica.Field{
		field("003@", sf('0', "040269111")),
		field("002@", sf('0', "Aau")),
		field("021A", sf('a', "Grundlagen  der\nKatalogkunde"), sf('d', "eine Einführung")),
		field("028A", sf('a', "Meier"), sf('d', "Anna")),
		field("011@", sf('a', "1998")),
		field("033A", sf('p', "Berlin"), sf('n', "Akademie Verlag")),
		field("004A", sf('0', "3-11-017932-1")),
		field("010@", sf('a', "ger")),
		field("034D", sf('a', "XII, 340 S.")),
	}}
	tr := &Transform{}
	doc, err := tr.Transform(rec, "test_mods_00000001")
	if err != nil {
		t.Fatal(err)
	}
	if id, _ := object.ID(doc); id != "test_mods_00000001" {
		t.Errorf("got id %q", id)
	}
	mods := object.Metadata(doc)
	if mods == nil {
		t.Fatal("no mods payload")
	}

	title := mods.FindFirst("title")
	if title == nil || title.Text != "Grundlagen der Katalogkunde" {
		t.Errorf("title: %+v", title)
	}
	if sub := mods.FindFirst("subTitle"); sub == nil || sub.Text != "eine Einführung" {
		t.Errorf("subTitle: %+v", sub)
	}
	var parts []string
	for _, c := range mods.FindFirst("name").Children {
		parts = append(parts, c.Text)
	}
	if diff := cmp.Diff([]string{"Meier", "Anna"}, parts); diff != "" {
		t.Errorf("name parts (-want +got):\n%s", diff)
	}
	if d := mods.FindFirst("dateIssued"); d == nil || d.Text != "1998" {
		t.Errorf("dateIssued: %+v", d)
	}
	isbn := mods.FindFirst("identifier")
	if isbn == nil || isbn.Text != "3-11-017932-1" {
		t.Errorf("identifier: %+v", isbn)
	}
	if v, _ := isbn.Attr("", "type"); v != "isbn" {
		t.Errorf("identifier type: %q", v)
	}
	if ri := mods.FindFirst("recordIdentifier"); ri == nil || ri.Text != "040269111" {
		t.Errorf("recordIdentifier: %+v", ri)
	}
	// canonical order: titleInfo before name before originInfo, recordInfo last
	var order []string
	for _, c := range mods.Children {
		order = append(order, c.LocalName())
	}
	want := []string{
		"titleInfo", "name", "originInfo", "identifier", "language",
		"physicalDescription", "recordInfo",
	}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("mods child order (-want +got):\n%s", diff)
	}
}

func TestTransformHostPlaceholder(t *testing.T) {
	rec := pica.Record{Fields: []pica.Field{
		field("003@", sf('0', "100")),
		field("021A", sf('a', "Ein Aufsatz")),
		field("039B", sf('9', "200"), sf('s', "0044-2410")),
	}}
	doc, err := (&Transform{}).Transform(rec, "x_0001")
	if err != nil {
		t.Fatal(err)
	}
	item := object.Metadata(doc).FindFirst("relatedItem")
	if item == nil {
		t.Fatal("relatedItem missing")
	}
	if v, _ := item.Attr("", "type"); v != "host" {
		t.Errorf("type: %q", v)
	}
	// $9 wins over $s
	if v, ok := item.Attr(object.TempNamespace, "relatedPPN"); !ok || v != "200" {
		t.Errorf("relatedPPN: %q, %v", v, ok)
	}
	if _, ok := item.Attr(object.TempNamespace, "relatedISSN"); ok {
		t.Errorf("relatedISSN should not be set when a PPN is present")
	}
}

func TestTransformReviewFallsBackToISBN(t *testing.T) {
	rec := pica.Record{Fields: []pica.Field{
		field("003@", sf('0', "100")),
		field("039P", sf('i', "3-11-017932-1")),
	}}
	doc, err := (&Transform{}).Transform(rec, "x_0001")
	if err != nil {
		t.Fatal(err)
	}
	item := object.Metadata(doc).FindFirst("relatedItem")
	if item == nil {
		t.Fatal("relatedItem missing")
	}
	if v, _ := item.Attr("", "type"); v != "reviewOf" {
		t.Errorf("type: %q", v)
	}
	if v, ok := item.Attr(object.TempNamespace, "relatedISBN"); !ok || v != "3-11-017932-1" {
		t.Errorf("relatedISBN: %q, %v", v, ok)
	}
}

func TestTransformStatus(t *testing.T) {
	rec := pica.Record{Fields: []pica.Field{field("003@", sf('0', "100"))}}
	doc, err := (&Transform{Status: "review"}).Transform(rec, "x_0001")
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := doc.FindFirst("servstate").Attr("", "categid"); v != "review" {
		t.Errorf("categid: %q", v)
	}
}

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"1998", "1998"},
		{" 2004 ", "2004"},
		{"2021/03/12", "2021-03-12"},
		{"2021-03-12", "2021-03-12"},
		{"[ca. 1850]", "[ca. 1850]"},
	}
	for _, c := range cases {
		if got := NormalizeDate(c.in); got != c.want {
			t.Errorf("NormalizeDate(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
