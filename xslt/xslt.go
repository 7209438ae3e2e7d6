// Package xslt adapts an external XSLT processor as a conversion transform.
// The pipeline stays ignorant of how the stylesheet locates its resources;
// records travel to the processor as PICA XML files and the resulting mods
// document is parsed back into a tree and framed.
package xslt

import (
	"fmt"
	"os"

	"github.com/miku/clam"
	"github.com/miku/picakit/exdep"
	"github.com/miku/picakit/object"
	"github.com/miku/picakit/pica"
	"github.com/miku/picakit/xmltree"
)

// DefaultCommand invokes xsltproc with the target id bound to the ObjectID
// stylesheet parameter. {{ stylesheet }}, {{ id }}, {{ input }} and
// {{ output }} are filled in per record; {{ output }} is a temporary file
// managed by the command runner.
const DefaultCommand = `xsltproc --stringparam ObjectID {{ id }} {{ stylesheet }} {{ input }} > {{ output }}`

// namespacePrefixes used to re-serialize processor output.
var namespacePrefixes = map[string]string{
	object.ModsNamespace:  "mods",
	object.XlinkNamespace: "xlink",
	object.TempNamespace:  "temp",
}

// Transform runs a stylesheet over each record.
type Transform struct {
	Stylesheet string
	Command    string // command template, DefaultCommand if empty
	Status     string // object status for the frame
}

// Check verifies the external processor is available. Call once before a
// run, not per record.
func (t *Transform) Check() error {
	if t.Stylesheet == "" {
		return fmt.Errorf("xslt: missing stylesheet")
	}
	if _, err := os.Stat(t.Stylesheet); err != nil {
		return fmt.Errorf("xslt: stylesheet: %w", err)
	}
	if t.Command != "" && t.Command != DefaultCommand {
		// custom command, caller knows what binary it needs
		return nil
	}
	return exdep.Check(exdep.Tool{Name: "xsltproc", Docs: "http://xmlsoft.org/xslt/"})
}

// Transform implements convert.Transform.
func (t *Transform) Transform(rec pica.Record, targetID string) (*xmltree.Node, error) {
	input, err := os.CreateTemp("", "picakit-record-*.xml")
	if err != nil {
		return nil, err
	}
	defer os.Remove(input.Name())
	if err := pica.WriteXML(input, []pica.Record{rec}); err != nil {
		input.Close()
		return nil, fmt.Errorf("xslt: write record: %w", err)
	}
	if err := input.Close(); err != nil {
		return nil, err
	}
	command := t.Command
	if command == "" {
		command = DefaultCommand
	}
	output, err := clam.RunFile(command, clam.Map{
		"id":         targetID,
		"stylesheet": t.Stylesheet,
		"input":      input.Name(),
	})
	if err != nil {
		return nil, fmt.Errorf("xslt: %w", err)
	}
	defer os.Remove(output.Name())
	defer output.Close()
	b, err := os.ReadFile(output.Name())
	if err != nil {
		return nil, err
	}
	payload, err := xmltree.Parse(b)
	if err != nil {
		return nil, fmt.Errorf("xslt: parse processor output: %w", err)
	}
	xmltree.Reprefix(payload, namespacePrefixes)
	return object.Wrap(payload, targetID, t.Status), nil
}
