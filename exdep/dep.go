// Package exdep verifies that external tools a command relies on, like an
// XSLT processor, are actually installed.
package exdep

import (
	"fmt"
	"os/exec"
	"strings"
)

// Tool is an external program dependency.
type Tool struct {
	Name string // binary name, resolved via PATH
	Docs string // where to find installation instructions
}

// Check returns an error listing all tools that could not be found.
func Check(tools ...Tool) error {
	var missing []string
	for _, t := range tools {
		if _, err := exec.LookPath(t.Name); err != nil {
			s := t.Name
			if t.Docs != "" {
				s = fmt.Sprintf("%s (%s)", t.Name, t.Docs)
			}
			missing = append(missing, s)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing external tools: %s", strings.Join(missing, ", "))
	}
	return nil
}
