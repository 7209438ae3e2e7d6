package pica

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// fieldLine is the canonical field grammar: a four character tag, an optional
// two digit occurrence, a single separating whitespace character and the
// value. The value may start with whitespace, which is preserved.
var fieldLine = regexp.MustCompile(`^([a-zA-Z0-9@]{4})(?:/([0-9]{2}))?\s(.*)$`)

// Stats counts what the parser saw. All anomalies are non-fatal.
type Stats struct {
	Records         int
	EmptyBlocks     int
	EmptyRecords    int
	Comments        int
	MalformedLines  int
	MalformedFields int
	EmptySubfields  int
}

// Parser decodes Importformat text into records. Content level anomalies are
// logged and skipped, only a failing reader aborts a parse.
type Parser struct {
	// TrimValues removes leading and trailing whitespace from subfield
	// values. The exports we have seen disagree on whether that whitespace
	// carries meaning, so the default keeps values verbatim.
	TrimValues bool
	Logger     logrus.FieldLogger
	Stats      Stats
}

func (p *Parser) logger() logrus.FieldLogger {
	if p.Logger != nil {
		return p.Logger
	}
	return logrus.StandardLogger()
}

// Parse reads the whole input and returns all records, in input order.
func (p *Parser) Parse(r io.Reader) ([]Record, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	return p.ParseString(string(b)), nil
}

// ParseString parses Importformat text.
func (p *Parser) ParseString(s string) []Record {
	var records []Record
	blocks := strings.Split(s, RecordSeparator)
	// a canonical dump ends in the record separator, the split remainder is
	// not an empty block
	if n := len(blocks); n > 0 && strings.TrimSpace(blocks[n-1]) == "" {
		blocks = blocks[:n-1]
	}
	for i, block := range blocks {
		if strings.TrimSpace(block) == "" {
			p.Stats.EmptyBlocks++
			continue
		}
		rec := p.parseBlock(i+1, block)
		if len(rec.Fields) == 0 {
			p.Stats.EmptyRecords++
			p.logger().Warnf("record #%d contains no valid fields, skipping", i+1)
			continue
		}
		p.Stats.Records++
		records = append(records, rec)
	}
	return records
}

func (p *Parser) parseBlock(n int, block string) Record {
	var rec Record
	for _, line := range strings.Split(block, "\n") {
		if line == "" {
			continue
		}
		if line[0] != FieldIntroducer {
			switch {
			case strings.TrimSpace(line) == "":
				// whitespace only
			case strings.HasPrefix(strings.TrimLeft(line, " \t"), "#"):
				p.Stats.Comments++
			default:
				p.Stats.MalformedLines++
				p.logger().Warnf("record #%d: line without field introducer: %q", n, line)
			}
			continue
		}
		field, ok := p.parseField(n, line[1:])
		if !ok {
			continue
		}
		rec.Fields = append(rec.Fields, field)
	}
	return rec
}

func (p *Parser) parseField(n int, data string) (Field, bool) {
	m := fieldLine.FindStringSubmatch(data)
	if m == nil {
		p.Stats.MalformedFields++
		p.logger().Warnf("record #%d: malformed field: %q", n, data)
		return Field{}, false
	}
	field := Field{Tag: m[1], Occurrence: m[2]}
	for _, chunk := range strings.Split(m[3], string(SubfieldSeparator)) {
		if chunk == "" {
			p.Stats.EmptySubfields++
			p.logger().Warnf("record #%d: empty subfield chunk in field %s", n, field.Tag)
			continue
		}
		value := chunk[1:]
		if p.TrimValues {
			value = strings.TrimSpace(value)
		}
		field.Subfields = append(field.Subfields, Subfield{Code: chunk[0], Value: value})
	}
	return field, true
}
