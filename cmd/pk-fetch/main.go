// pk-fetch resolves a list of ISBNs or ISSNs against an SRU endpoint, picks
// one catalog record per identifier and feeds the records through the same
// two pass conversion as pk-convert. Identifiers that already have a mapping
// are skipped, so repeated runs only fetch what is new.
//
// $ pk-fetch -t isbn -i isbns.txt -o objects/ -m idmapper.properties -b reposis_mods_00000000
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/miku/picakit"
	"github.com/miku/picakit/config"
	"github.com/miku/picakit/convert"
	"github.com/miku/picakit/idmap"
	"github.com/miku/picakit/mods"
	"github.com/miku/picakit/pica"
	"github.com/miku/picakit/sru"
	"github.com/miku/picakit/xslt"
	log "github.com/sirupsen/logrus"
)

var (
	configPath  = flag.String("c", "", "path to YAML config file")
	input       = flag.String("i", "-", "file with one identifier per line, - for stdin")
	kind        = flag.String("t", "isbn", "identifier type: isbn or issn")
	endpoint    = flag.String("e", "", "SRU endpoint")
	outputDir   = flag.String("o", "", "output directory, one XML file per object id")
	mapperPath  = flag.String("m", "", "identifier to object id mapping file")
	idTemplate  = flag.String("b", "", "id template, e.g. reposis_mods_00000000")
	stylesheet  = flag.String("s", "", "XSLT stylesheet; empty uses the builtin mapping")
	status      = flag.String("status", "", "service state for new objects")
	showVersion = flag.Bool("version", false, "show version")
)

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Println(picakit.Version)
		os.Exit(0)
	}
	if *kind != "isbn" && *kind != "issn" {
		log.Fatalf("unsupported identifier type: %s", *kind)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}
	if *mapperPath != "" {
		cfg.MapperPath = *mapperPath
	}
	if *idTemplate != "" {
		cfg.IDTemplate = *idTemplate
	}
	if *status != "" {
		cfg.Status = *status
	}
	if *stylesheet != "" {
		cfg.Stylesheet = *stylesheet
	}
	if *endpoint != "" {
		cfg.SRU.Endpoint = *endpoint
	}
	if cfg.IDTemplate == "" {
		log.Fatal("missing id template (-b), e.g. reposis_mods_00000000")
	}
	store, err := idmap.Load(cfg.MapperPath)
	if err != nil {
		log.Fatal(err)
	}
	log.Infof("loaded %d mappings from %s", store.Len(), cfg.MapperPath)
	gen, err := idmap.NewGenerator(cfg.IDTemplate, store)
	if err != nil {
		log.Fatal(err)
	}
	identifiers, err := readList(*input)
	if err != nil {
		log.Fatal(err)
	}
	log.Infof("found %d identifiers to process", len(identifiers))

	client := sru.New(cfg.SRU.Endpoint)
	client.MaxRecords = cfg.SRU.MaxRecords

	var (
		records []pica.Record
		aliases = make(map[string][]string)
		skipped int
		missed  int
	)
	for i, identifier := range identifiers {
		log.Infof("processing %s %d/%d: %s", *kind, i+1, len(identifiers), identifier)
		var (
			key    string
			prefer string
			lookup func(string) ([]pica.Record, error)
		)
		switch *kind {
		case "isbn":
			key, prefer, lookup = idmap.ISBNKey(identifier), cfg.SRU.PreferISBN, client.ByISBN
		case "issn":
			key, prefer, lookup = idmap.ISSNKey(identifier), cfg.SRU.PreferISSN, client.ByISSN
		}
		if key == "" {
			log.Warnf("unusable identifier: %q, skipping", identifier)
			skipped++
			continue
		}
		if id, ok := store.Lookup(key); ok {
			log.Infof("%s already mapped to %s, skipping", key, id)
			skipped++
			continue
		}
		candidates, err := lookup(identifier)
		if err != nil {
			log.Warnf("lookup failed for %s: %v", identifier, err)
			missed++
			continue
		}
		rec, ok := sru.SelectBest(candidates, prefer)
		if !ok {
			log.Warnf("no records found for %s, skipping", identifier)
			missed++
			continue
		}
		ppn, ok := rec.PPN()
		if !ok {
			log.Warnf("selected record for %s has no PPN, skipping", identifier)
			missed++
			continue
		}
		records = append(records, rec)
		aliases[idmap.PPNKey(ppn)] = append(aliases[idmap.PPNKey(ppn)], key)
	}
	var transform convert.Transform = &mods.Transform{Status: cfg.Status}
	if cfg.Stylesheet != "" {
		t := &xslt.Transform{Stylesheet: cfg.Stylesheet, Command: cfg.XSLTCommand, Status: cfg.Status}
		if err := t.Check(); err != nil {
			log.Fatal(err)
		}
		transform = t
	}
	pipeline := convert.Pipeline{
		Store:     store,
		Gen:       gen,
		Transform: transform,
		OutputDir: cfg.OutputDir,
		Aliases:   aliases,
	}
	summary, err := pipeline.Run(records)
	if err != nil {
		log.Fatal(err)
	}
	log.WithFields(log.Fields{
		"identifiers": len(identifiers),
		"skipped":     skipped,
		"missed":      missed,
		"written":     summary.Written,
		"new_ids":     summary.NewIDs,
	}).Info("list ingestion finished")
}

// readList reads identifiers, one per line, ignoring blanks and # comments.
func readList(name string) ([]string, error) {
	var r *os.File
	if name == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var list []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		list = append(list, line)
	}
	return list, sc.Err()
}
