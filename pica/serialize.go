package pica

import (
	"io"
	"strings"
)

// ImportLine renders the field as a single Importformat line, without the
// introducer character.
func (f Field) ImportLine() string {
	var sb strings.Builder
	sb.WriteString(f.Tag)
	if f.Occurrence != "" {
		sb.WriteByte('/')
		sb.WriteString(f.Occurrence)
	}
	sb.WriteByte(' ')
	for i, sf := range f.Subfields {
		if i > 0 {
			sb.WriteByte(SubfieldSeparator)
		}
		sb.WriteByte(sf.Code)
		sb.WriteString(sf.Value)
	}
	return sb.String()
}

// Write serializes records back to Importformat text, the inverse of a parse:
// one introduced line per field, records terminated by the record separator.
func Write(w io.Writer, records []Record) error {
	var sb strings.Builder
	for _, rec := range records {
		sb.Reset()
		for _, f := range rec.Fields {
			sb.WriteByte(FieldIntroducer)
			sb.WriteString(f.ImportLine())
			sb.WriteByte('\n')
		}
		sb.WriteString(RecordSeparator)
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}
