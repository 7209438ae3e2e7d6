// Package pica implements a value model and parser for PICA+ catalog records
// in the delimiter framed "Importformat", plus encoders for the Importformat
// itself and for PICA XML.
package pica

import "strings"

// Control characters framing the Importformat.
const (
	// SubfieldSeparator starts a new subfield within a field value (US).
	SubfieldSeparator = '\x1f'
	// FieldIntroducer starts a field line (RS).
	FieldIntroducer = '\x1e'
	// RecordSeparator ends a record (GS, followed by a newline).
	RecordSeparator = "\x1d\n"
)

// Well known fields.
const (
	// TagPPN is the field holding the catalog production number in $0.
	TagPPN = "003@"
	// TagType is the bibliographic type field, e.g. "Aa..." in $0.
	TagType = "002@"
	// TagISBN and TagISSN hold standard numbers in $0.
	TagISBN = "004A"
	TagISSN = "005A"
)

// Subfield is a single code/value pair. Duplicate codes within a field are
// allowed and order is significant.
type Subfield struct {
	Code  byte
	Value string
}

// Field is a tagged group of subfields with an optional two digit occurrence.
type Field struct {
	Tag        string
	Occurrence string
	Subfields  []Subfield
}

// First returns the value of the first subfield with the given code.
func (f Field) First(code byte) (string, bool) {
	for _, sf := range f.Subfields {
		if sf.Code == code {
			return sf.Value, true
		}
	}
	return "", false
}

// Record is an ordered list of fields. The parser never emits a record with
// zero fields.
type Record struct {
	Fields []Field
}

// Filter returns all fields with the given tag, matched case insensitively.
func (r Record) Filter(tag string) []Field {
	var fields []Field
	for _, f := range r.Fields {
		if strings.EqualFold(f.Tag, tag) {
			fields = append(fields, f)
		}
	}
	return fields
}

// First returns the first value for a tag and subfield code.
func (r Record) First(tag string, code byte) (string, bool) {
	for _, f := range r.Fields {
		if !strings.EqualFold(f.Tag, tag) {
			continue
		}
		if v, ok := f.First(code); ok {
			return v, ok
		}
	}
	return "", false
}

// All returns all values for a tag and subfield code, in record order.
func (r Record) All(tag string, code byte) []string {
	var values []string
	for _, f := range r.Fields {
		if !strings.EqualFold(f.Tag, tag) {
			continue
		}
		for _, sf := range f.Subfields {
			if sf.Code == code {
				values = append(values, sf.Value)
			}
		}
	}
	return values
}

// PPN returns the production number from 003@ $0, surrounding whitespace
// trimmed but otherwise raw: the check digit is kept as is.
func (r Record) PPN() (string, bool) {
	v, ok := r.First(TagPPN, '0')
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// ISBNs returns the raw values of 004A $0.
func (r Record) ISBNs() []string { return r.All(TagISBN, '0') }

// ISSNs returns the raw values of 005A $0.
func (r Record) ISSNs() []string { return r.All(TagISSN, '0') }

// TypeCode returns the bibliographic type from 002@ $0, e.g. "Aau".
func (r Record) TypeCode() (string, bool) {
	v, ok := r.First(TagType, '0')
	return strings.TrimSpace(v), ok
}
