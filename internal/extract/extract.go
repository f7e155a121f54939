// Package extract discovers channel links in a single listing page.
//
// Extraction runs an ordered list of strategies, from the most structured (channel cards) to
// the least (a regular expression over the raw page), and keeps the output of the first
// strategy that finds anything.
package extract

import (
	"net/url"
	"strings"

	"tgscout/internal/channel"

	"github.com/PuerkitoBio/goquery"
)

// Page is one fetched listing page, parsed once for every strategy.
type Page struct {
	// Raw is the page content exactly as received.
	Raw string
	// Doc is nil when the content could not be parsed as HTML.
	Doc  *goquery.Document
	Base *url.URL
}

// Strategy is a single extraction technique. Extract must not depend on anything but the page.
type Strategy interface {
	Name() string
	Extract(page Page) []channel.Record
}

// DefaultStrategies is the fallback order: cards, then anchors, then the raw pattern.
var DefaultStrategies = []Strategy{
	CardStrategy{},
	AnchorStrategy{},
	PatternStrategy{},
}

type Result struct {
	Records []channel.Record
	// Strategy is the name of the strategy that produced the records, empty if none did.
	Strategy string
}

// NewPage parses the content of a page fetched from baseUrl.
func NewPage(content, baseUrl string) Page {
	page := Page{Raw: content}
	if base, err := url.Parse(baseUrl); err == nil {
		page.Base = base
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err == nil {
		page.Doc = doc
	}
	return page
}

// Extract runs DefaultStrategies over a page.
func Extract(content, baseUrl string) Result {
	return Run(NewPage(content, baseUrl), DefaultStrategies)
}

// Run applies the strategies in order and returns the deduplicated output of the first one
// that yields at least one record.
func Run(page Page, strategies []Strategy) Result {
	for _, strategy := range strategies {
		records := strategy.Extract(page)
		if len(records) == 0 {
			continue
		}
		return Result{
			Records:  Dedupe(records),
			Strategy: strategy.Name(),
		}
	}
	return Result{}
}

// Dedupe keeps the first record for every url, preserving order.
func Dedupe(records []channel.Record) []channel.Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]channel.Record, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.URL]; ok {
			continue
		}
		seen[r.URL] = struct{}{}
		out = append(out, r)
	}
	return out
}
