package idmap

import (
	"fmt"
	"regexp"
	"strconv"
	"sync/atomic"
)

// templatePattern splits an id template like "artus_mods_00000000" into a
// prefix and a maximal trailing digit run.
var templatePattern = regexp.MustCompile(`^(.*?)([0-9]+)$`)

// Generator mints monotonically increasing ids of the form prefix plus a
// zero padded counter. Ids are never reused within or across runs: the
// counter is seeded from the template and from the highest already stored id
// with the same shape.
type Generator struct {
	prefix  string
	width   int
	counter int64
}

// NewGenerator builds a generator from a template. A template without a
// trailing digit run is a configuration error. Stored ids that do not match
// prefix plus exactly width digits are ignored when seeding the counter.
func NewGenerator(template string, store *Store) (*Generator, error) {
	m := templatePattern.FindStringSubmatch(template)
	if m == nil {
		return nil, fmt.Errorf("invalid id template %q: expected prefix followed by digits, e.g. artus_mods_00000000", template)
	}
	g := &Generator{prefix: m[1], width: len(m[2])}
	seed, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid id template %q: %w", template, err)
	}
	g.counter = seed
	if store != nil {
		idPattern := regexp.MustCompile(`^` + regexp.QuoteMeta(g.prefix) + `([0-9]{` + strconv.Itoa(g.width) + `})$`)
		store.Each(func(_, id string) {
			m := idPattern.FindStringSubmatch(id)
			if m == nil {
				return
			}
			n, err := strconv.ParseInt(m[1], 10, 64)
			if err != nil {
				return
			}
			if n > g.counter {
				g.counter = n
			}
		})
	}
	return g, nil
}

// Next returns the next unused id. Safe for concurrent callers as long as
// the surrounding store mutation is serialized.
func (g *Generator) Next() string {
	n := atomic.AddInt64(&g.counter, 1)
	return fmt.Sprintf("%s%0*d", g.prefix, g.width, n)
}
