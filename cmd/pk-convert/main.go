// pk-convert runs the two pass conversion of PICA+ Importformat records into
// linked object documents: pass 1 assigns every record a durable id (minted
// or reused from the mapping file) and transforms it, pass 2 resolves
// relations between the resulting drafts.
//
// $ pk-convert -i dump.pica -o objects/ -m idmapper.properties -b artus_mods_00000000
//
// With an external stylesheet (requires xsltproc):
//
// $ pk-convert -i dump.pica -o objects/ -m idmapper.properties \
//     -b artus_mods_00000000 -s pica2mods.xsl
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/miku/picakit"
	"github.com/miku/picakit/config"
	"github.com/miku/picakit/convert"
	"github.com/miku/picakit/idmap"
	"github.com/miku/picakit/mods"
	"github.com/miku/picakit/pica"
	"github.com/miku/picakit/stream"
	"github.com/miku/picakit/xslt"
	"github.com/segmentio/encoding/json"
	log "github.com/sirupsen/logrus"
)

var (
	configPath  = flag.String("c", "", "path to YAML config file")
	input       = flag.String("i", "-", "input Importformat file (.gz and .zst supported, - for stdin)")
	outputDir   = flag.String("o", "", "output directory, one XML file per object id")
	mapperPath  = flag.String("m", "", "identifier to object id mapping file")
	idTemplate  = flag.String("b", "", "id template, e.g. artus_mods_00000000")
	stylesheet  = flag.String("s", "", "XSLT stylesheet; empty uses the builtin mapping")
	status      = flag.String("status", "", "service state for new objects")
	trimValues  = flag.Bool("trim", false, "trim whitespace around subfield values")
	reportPath  = flag.String("report", "", "write a JSON run report to this file")
	verbose     = flag.Bool("verbose", false, "debug logging")
	showVersion = flag.Bool("version", false, "show version")
)

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Println(picakit.Version)
		os.Exit(0)
	}
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	applyFlags(&cfg)
	if cfg.IDTemplate == "" {
		log.Fatal("missing id template (-b), e.g. artus_mods_00000000")
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
	transform, err := newTransform(cfg)
	if err != nil {
		log.Fatal(err)
	}
	r, err := stream.Open(*input)
	if err != nil {
		log.Fatal(err)
	}
	defer r.Close()
	parser := pica.Parser{TrimValues: cfg.TrimValues}
	records, err := parser.Parse(r)
	if err != nil {
		log.Fatal(err)
	}
	log.Infof("parsed %d records", len(records))
	pipeline := convert.Pipeline{
		Store:     store,
		Gen:       gen,
		Transform: transform,
		OutputDir: cfg.OutputDir,
	}
	summary, err := pipeline.Run(records)
	if err != nil {
		log.Fatal(err)
	}
	if *reportPath != "" {
		b, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			log.Fatal(err)
		}
		if err := os.WriteFile(*reportPath, append(b, '\n'), 0644); err != nil {
			log.Fatal(err)
		}
	}
}

func applyFlags(cfg *config.Config) {
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}
	if *mapperPath != "" {
		cfg.MapperPath = *mapperPath
	}
	if *idTemplate != "" {
		cfg.IDTemplate = *idTemplate
	}
	if *stylesheet != "" {
		cfg.Stylesheet = *stylesheet
	}
	if *status != "" {
		cfg.Status = *status
	}
	if *trimValues {
		cfg.TrimValues = true
	}
}

func newTransform(cfg config.Config) (convert.Transform, error) {
	if cfg.Stylesheet == "" {
		return &mods.Transform{Status: cfg.Status}, nil
	}
	t := &xslt.Transform{
		Stylesheet: cfg.Stylesheet,
		Command:    cfg.XSLTCommand,
		Status:     cfg.Status,
	}
	if err := t.Check(); err != nil {
		return nil, err
	}
	return t, nil
}
