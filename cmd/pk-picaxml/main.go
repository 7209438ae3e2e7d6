// pk-picaxml converts PICA+ Importformat dumps to PICA XML.
//
// $ pk-picaxml -i dump.pica -o dump.xml
// $ zstdcat dump.pica.zst | pk-picaxml > dump.xml
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/miku/picakit"
	"github.com/miku/picakit/atomicfile"
	"github.com/miku/picakit/pica"
	"github.com/miku/picakit/stream"
	log "github.com/sirupsen/logrus"
)

var (
	input       = flag.String("i", "-", "input Importformat file (.gz and .zst supported, - for stdin)")
	output      = flag.String("o", "-", "output PICA XML file, - for stdout")
	trimValues  = flag.Bool("trim", false, "trim whitespace around subfield values")
	showVersion = flag.Bool("version", false, "show version")
)

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Println(picakit.Version)
		os.Exit(0)
	}
	r, err := stream.Open(*input)
	if err != nil {
		log.Fatal(err)
	}
	defer r.Close()
	parser := pica.Parser{TrimValues: *trimValues}
	records, err := parser.Parse(r)
	if err != nil {
		log.Fatal(err)
	}
	if *output == "-" {
		bw := bufio.NewWriter(os.Stdout)
		defer bw.Flush()
		if err := pica.WriteXML(bw, records); err != nil {
			log.Fatal(err)
		}
	} else {
		f, err := atomicfile.New(*output)
		if err != nil {
			log.Fatal(err)
		}
		if err := pica.WriteXML(f, records); err != nil {
			f.Abort()
			log.Fatal(err)
		}
		if err := f.Close(); err != nil {
			log.Fatal(err)
		}
	}
	log.WithFields(log.Fields{
		"records":         parser.Stats.Records,
		"empty":           parser.Stats.EmptyRecords,
		"malformed-lines": parser.Stats.MalformedLines,
	}).Info("conversion done")
}
