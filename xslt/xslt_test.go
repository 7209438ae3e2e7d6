package xslt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/miku/picakit/object"
	"github.com/miku/picakit/pica"
)

func TestCheck(t *testing.T) {
	tr := &Transform{}
	if err := tr.Check(); err == nil {
		t.Error("expected error for missing stylesheet")
	}
	tr.Stylesheet = filepath.Join(t.TempDir(), "nope.xsl")
	if err := tr.Check(); err == nil {
		t.Error("expected error for nonexistent stylesheet")
	}
	stylesheet := filepath.Join(t.TempDir(), "pica2mods.xsl")
	if err := os.WriteFile(stylesheet, []byte("<xsl:stylesheet/>"), 0644); err != nil {
		t.Fatal(err)
	}
	tr.Stylesheet = stylesheet
	tr.Command = "cat {{ input }} > {{ output }}"
	if err := tr.Check(); err != nil {
		t.Errorf("custom command should not require xsltproc: %v", err)
	}
}

// With cat standing in for the processor, the transform sees its own PICA XML
// serialization back and frames it.
func TestTransformCustomCommand(t *testing.T) {
	stylesheet := filepath.Join(t.TempDir(), "identity.xsl")
	if err := os.WriteFile(stylesheet, []byte("<xsl:stylesheet/>"), 0644); err != nil {
		t.Fatal(err)
	}
	tr := &Transform{Stylesheet: stylesheet, Command: "cat {{ input }} > {{ output }}"}
	rec := pica.Record{Fields: []pica.Field{
		{Tag: "003@", Subfields: []pica.Subfield{{Code: '0', Value: "123456789"}}},
	}}
	doc, err := tr.Transform(rec, "x_0001")
	if err != nil {
		t.Fatal(err)
	}
	if id, _ := object.ID(doc); id != "x_0001" {
		t.Errorf("id: %q", id)
	}
	df := doc.FindFirst("datafield")
	if df == nil {
		t.Fatal("processor output not embedded")
	}
	if v, _ := df.Attr("", "tag"); v != "003@" {
		t.Errorf("tag: %q", v)
	}
	if sub := doc.FindFirst("subfield"); sub == nil || sub.Text != "123456789" {
		t.Errorf("subfield: %+v", sub)
	}
}

// The target id must reach the processor as a rendered command parameter,
// not as a literal placeholder.
func TestTransformCommandParameters(t *testing.T) {
	stylesheet := filepath.Join(t.TempDir(), "identity.xsl")
	if err := os.WriteFile(stylesheet, []byte("<xsl:stylesheet/>"), 0644); err != nil {
		t.Fatal(err)
	}
	tr := &Transform{
		Stylesheet: stylesheet,
		Command:    `echo '<doc id="{{ id }}"/>' > {{ output }}`,
	}
	doc, err := tr.Transform(pica.Record{Fields: []pica.Field{
		{Tag: "003@", Subfields: []pica.Subfield{{Code: '0', Value: "111"}}},
	}}, "x_0042")
	if err != nil {
		t.Fatal(err)
	}
	inner := doc.FindFirst("doc")
	if inner == nil {
		t.Fatal("processor output missing")
	}
	if v, _ := inner.Attr("", "id"); v != "x_0042" {
		t.Errorf("id parameter: %q", v)
	}
}
