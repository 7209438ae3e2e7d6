// Package sru fetches PICA records from an SRU search endpoint, used in
// identifier list ingestion mode: given an ISBN or ISSN, the catalog returns
// zero or more candidate records.
package sru

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/miku/picakit/idmap"
	"github.com/miku/picakit/pica"
	"github.com/sethgrid/pester"
)

// DefaultEndpoint is the K10plus union catalog.
const DefaultEndpoint = "https://sru.k10plus.de/opac-de-627"

// Doer abstracts https://pkg.go.dev/net/http#Client.Do.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client queries an SRU endpoint for PICA XML records.
type Client struct {
	Endpoint   string
	MaxRecords int
	UserAgent  string
	Client     Doer
}

// New returns a client with retrying HTTP behavior.
func New(endpoint string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := pester.New()
	c.MaxRetries = 3
	c.Backoff = pester.ExponentialBackoff
	c.RetryOnHTTP429 = true
	return &Client{Endpoint: endpoint, MaxRecords: 10, Client: c}
}

// response is the SRU searchRetrieve envelope, reduced to what we consume.
// Zero hits come back without a records element, or with diagnostics only.
type response struct {
	XMLName xml.Name `xml:"searchRetrieveResponse"`
	Records []struct {
		Data struct {
			Record pica.RecordXML `xml:"record"`
		} `xml:"recordData"`
	} `xml:"records>record"`
}

// ByISBN returns candidate records for an ISBN, normalized before the query.
func (c *Client) ByISBN(isbn string) ([]pica.Record, error) {
	return c.search("pica.isb=" + idmap.NormalizeNumber(isbn))
}

// ByISSN returns candidate records for an ISSN, normalized before the query.
func (c *Client) ByISSN(issn string) ([]pica.Record, error) {
	return c.search("pica.iss=" + idmap.NormalizeNumber(issn))
}

func (c *Client) search(query string) ([]pica.Record, error) {
	max := c.MaxRecords
	if max == 0 {
		max = 10
	}
	vs := url.Values{}
	vs.Set("version", "1.1")
	vs.Set("operation", "searchRetrieve")
	vs.Set("query", query)
	vs.Set("maximumRecords", strconv.Itoa(max))
	vs.Set("recordSchema", "picaxml")
	req, err := http.NewRequest("GET", c.Endpoint+"?"+vs.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sru: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("sru: unexpected status %s", resp.Status)
	}
	var envelope response
	if err := xml.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("sru: decode response: %w", err)
	}
	var records []pica.Record
	for _, r := range envelope.Records {
		rec := r.Data.Record.ToRecord()
		if len(rec.Fields) == 0 {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// SelectBest picks one candidate deterministically: the first record whose
// bibliographic type (002@ $0) starts with the preferred prefix, otherwise
// the first candidate.
func SelectBest(records []pica.Record, prefix string) (pica.Record, bool) {
	if len(records) == 0 {
		return pica.Record{}, false
	}
	if prefix != "" {
		for _, rec := range records {
			if code, ok := rec.TypeCode(); ok && strings.HasPrefix(code, prefix) {
				return rec, true
			}
		}
	}
	return records[0], true
}
