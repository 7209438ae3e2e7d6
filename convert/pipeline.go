// Package convert drives the two pass conversion of parsed PICA records into
// linked object documents. Pass 1 fixes the identity of every record and runs
// the transform, pass 2 resolves relation placeholders against the then
// complete identifier map and the sibling drafts.
//
// Two passes because a record may point at another record by an external
// identifier whose target id does not exist yet when the first record is
// transformed: the referenced record can appear later in the input, or not
// at all.
package convert

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/miku/picakit/atomicfile"
	"github.com/miku/picakit/idmap"
	"github.com/miku/picakit/object"
	"github.com/miku/picakit/pica"
	"github.com/miku/picakit/xmltree"
	"github.com/sirupsen/logrus"
)

// Transform turns one record into a draft document tree, parameterized with
// the target id. Implementations must be pure: same record and id, same
// document, no side effects the pipeline can observe.
type Transform interface {
	Transform(rec pica.Record, targetID string) (*xmltree.Node, error)
}

// TransformFunc adapts a function to the Transform interface.
type TransformFunc func(rec pica.Record, targetID string) (*xmltree.Node, error)

func (f TransformFunc) Transform(rec pica.Record, targetID string) (*xmltree.Node, error) {
	return f(rec, targetID)
}

// Draft is the pass 1 output for one record, pending relation resolution.
type Draft struct {
	TargetID     string
	Doc          *xmltree.Node
	Placeholders []Placeholder
}

// Summary reports what a run did.
type Summary struct {
	RunID           string `json:"run_id"`
	Records         int    `json:"records"`
	SkippedNoPPN    int    `json:"skipped_no_ppn"`
	Duplicates      int    `json:"duplicates"`
	TransformErrors int    `json:"transform_errors"`
	Drafts          int    `json:"drafts"`
	NewIDs          int    `json:"new_ids"`
	LinksResolved   int    `json:"links_resolved"`
	LinksEmbedded   int    `json:"links_embedded"`
	LinksDropped    int    `json:"links_dropped"`
	Written         int    `json:"written"`
}

// Pipeline converts records to object documents. Single writer: the store
// and the drafts are owned by the running pipeline until Run returns.
type Pipeline struct {
	Store     *idmap.Store
	Gen       *idmap.Generator
	Transform Transform
	OutputDir string
	Logger    logrus.FieldLogger

	// Aliases maps a primary store key to additional keys that should point
	// at the same target id, e.g. the queried ISBN in list ingestion mode.
	Aliases map[string][]string

	// Payload picks the embeddable metadata payload out of a draft document.
	// Defaults to the first mods element.
	Payload func(*xmltree.Node) *xmltree.Node
}

func (p *Pipeline) logger() logrus.FieldLogger {
	if p.Logger != nil {
		return p.Logger
	}
	return logrus.StandardLogger()
}

func (p *Pipeline) payload(doc *xmltree.Node) *xmltree.Node {
	if p.Payload != nil {
		return p.Payload(doc)
	}
	return object.Metadata(doc)
}

// Run executes both passes over the given records, writes one document per
// draft and persists the identifier store if it changed. Recoverable
// per-record conditions are logged and counted, only I/O faults abort.
func (p *Pipeline) Run(records []pica.Record) (*Summary, error) {
	switch {
	case p.Store == nil:
		return nil, errors.New("pipeline: missing identifier store")
	case p.Gen == nil:
		return nil, errors.New("pipeline: missing id generator")
	case p.Transform == nil:
		return nil, errors.New("pipeline: missing transform")
	}
	if err := os.MkdirAll(p.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	summary := &Summary{RunID: uuid.New().String(), Records: len(records)}
	log := p.logger().WithField("run_id", summary.RunID)

	// pass 1: fix identities, transform, collect drafts
	var (
		drafts []*Draft
		byID   = make(map[string]*Draft)
		seen   = make(map[string]bool)
	)
	for i, rec := range records {
		ppn, ok := rec.PPN()
		if !ok {
			summary.SkippedNoPPN++
			log.Warnf("record #%d has no extractable PPN, skipping", i+1)
			continue
		}
		key := idmap.PPNKey(ppn)
		if seen[key] {
			summary.Duplicates++
			log.Warnf("duplicate PPN %s, keeping the first occurrence", ppn)
			continue
		}
		seen[key] = true
		id, created := p.Store.Ensure(key, p.Gen)
		if created {
			summary.NewIDs++
			log.Infof("new mapping %s -> %s", key, id)
		}
		p.registerSecondary(rec, key, id)
		doc, err := p.Transform.Transform(rec, id)
		if err != nil {
			summary.TransformErrors++
			log.Warnf("transform failed for %s: %v", key, err)
			continue
		}
		draft := &Draft{TargetID: id, Doc: doc, Placeholders: ExtractPlaceholders(doc)}
		drafts = append(drafts, draft)
		byID[id] = draft
	}
	summary.Drafts = len(drafts)
	log.Infof("pass 1 done: %d drafts, %d new ids", summary.Drafts, summary.NewIDs)

	// pass 2: resolve placeholders, emit every draft exactly once
	for _, draft := range drafts {
		var (
			unresolved = make(map[*xmltree.Node]bool)
			resolved   = make(map[*xmltree.Node]bool)
		)
		for i := range draft.Placeholders {
			ph := &draft.Placeholders[i]
			ph.strip()
			id, ok := p.Store.Lookup(ph.Key)
			if !ok {
				summary.LinksDropped++
				unresolved[ph.node] = true
				log.Debugf("unresolved %s relation to %s in %s, dropping", ph.Kind, ph.Key, draft.TargetID)
				continue
			}
			resolved[ph.node] = true
			ph.node.SetAttr("xlink:href", id)
			ensureXlinkDecl(draft.Doc)
			summary.LinksResolved++
			related, ok := byID[id]
			if !ok {
				continue
			}
			if meta := p.payload(related.Doc); meta != nil {
				clone := meta.Clone()
				stripTemp(clone)
				ph.node.Children = append(ph.node.Children, clone)
				summary.LinksEmbedded++
			}
		}
		for node := range resolved {
			delete(unresolved, node)
		}
		pruneNodes(draft.Doc, unresolved)
		stripTempDecls(draft.Doc)
		if err := p.emit(draft); err != nil {
			return summary, err
		}
		summary.Written++
	}
	if err := p.Store.Persist(); err != nil {
		return summary, err
	}
	log.WithFields(logrus.Fields{
		"records":    summary.Records,
		"drafts":     summary.Drafts,
		"new_ids":    summary.NewIDs,
		"resolved":   summary.LinksResolved,
		"dropped":    summary.LinksDropped,
		"duplicates": summary.Duplicates,
	}).Info("conversion finished")
	return summary, nil
}

// registerSecondary maps the record's standard numbers and any configured
// aliases to the id discovered via the primary key. Existing mappings win.
func (p *Pipeline) registerSecondary(rec pica.Record, primaryKey, id string) {
	add := func(key string) {
		if key == "" {
			return
		}
		if _, ok := p.Store.Lookup(key); ok {
			return
		}
		p.Store.Set(key, id)
	}
	for _, isbn := range rec.ISBNs() {
		add(idmap.ISBNKey(isbn))
	}
	for _, issn := range rec.ISSNs() {
		add(idmap.ISSNKey(issn))
	}
	for _, alias := range p.Aliases[primaryKey] {
		add(alias)
	}
}

// emit writes one finalized draft, all or nothing.
func (p *Pipeline) emit(draft *Draft) error {
	b, err := xmltree.Marshal(draft.Doc)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", draft.TargetID, err)
	}
	dst := filepath.Join(p.OutputDir, draft.TargetID+".xml")
	if err := atomicfile.WriteFile(dst, b); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return nil
}

// pruneNodes detaches the given elements wherever they occur, so documents
// with unresolvable relations come out without an empty carrier element.
func pruneNodes(doc *xmltree.Node, drop map[*xmltree.Node]bool) {
	if len(drop) == 0 {
		return
	}
	doc.Visit(func(n *xmltree.Node) {
		kept := n.Children[:0]
		for _, c := range n.Children {
			if drop[c] {
				continue
			}
			kept = append(kept, c)
		}
		n.Children = kept
	})
}

// ensureXlinkDecl declares the xlink namespace on the metadata payload if no
// element between root and payload already does.
func ensureXlinkDecl(doc *xmltree.Node) {
	declared := false
	doc.Visit(func(n *xmltree.Node) {
		for _, a := range n.Attrs {
			if a.Value == object.XlinkNamespace {
				declared = true
			}
		}
	})
	if declared {
		return
	}
	if meta := object.Metadata(doc); meta != nil {
		meta.SetAttr("xmlns:xlink", object.XlinkNamespace)
		return
	}
	doc.SetAttr("xmlns:xlink", object.XlinkNamespace)
}
