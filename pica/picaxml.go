package pica

import (
	"encoding/xml"
	"fmt"
	"io"
)

// NamespaceURI identifies the PICA XML schema.
const NamespaceURI = "info:srw/schema/5/picaXML-v1.0"

// RecordXML is the PICA XML shape of a record, usable for both encoding and
// decoding, e.g. of records embedded in SRU responses.
type RecordXML struct {
	XMLName    xml.Name   `xml:"record"`
	Datafields []FieldXML `xml:"datafield"`
}

type FieldXML struct {
	Tag        string        `xml:"tag,attr"`
	Occurrence string        `xml:"occurrence,attr,omitempty"`
	Subfields  []SubfieldXML `xml:"subfield"`
}

type SubfieldXML struct {
	Code  string `xml:"code,attr"`
	Value string `xml:",chardata"`
}

type collectionXML struct {
	XMLName xml.Name    `xml:"collection"`
	Xmlns   string      `xml:"xmlns,attr"`
	Records []RecordXML `xml:"record"`
}

// ToRecord converts the XML shape back to the value model. Subfields with an
// empty code attribute are dropped.
func (rx RecordXML) ToRecord() Record {
	var rec Record
	for _, fx := range rx.Datafields {
		field := Field{Tag: fx.Tag, Occurrence: fx.Occurrence}
		for _, sx := range fx.Subfields {
			if sx.Code == "" {
				continue
			}
			field.Subfields = append(field.Subfields, Subfield{Code: sx.Code[0], Value: sx.Value})
		}
		rec.Fields = append(rec.Fields, field)
	}
	return rec
}

// NewRecordXML converts a record into its PICA XML shape.
func NewRecordXML(rec Record) RecordXML {
	var rx RecordXML
	for _, f := range rec.Fields {
		fx := FieldXML{Tag: f.Tag, Occurrence: f.Occurrence}
		for _, sf := range f.Subfields {
			fx.Subfields = append(fx.Subfields, SubfieldXML{Code: string(sf.Code), Value: sf.Value})
		}
		rx.Datafields = append(rx.Datafields, fx)
	}
	return rx
}

// WriteXML writes records as a PICA XML collection with the default
// namespace, indented for readability.
func WriteXML(w io.Writer, records []Record) error {
	coll := collectionXML{Xmlns: NamespaceURI}
	for _, rec := range records {
		coll.Records = append(coll.Records, NewRecordXML(rec))
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(coll); err != nil {
		return fmt.Errorf("encode pica xml: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}
