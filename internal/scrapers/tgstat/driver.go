// Package tgstat crawls tgstat channel listings.
//
// A crawl first pages through the JSON listing endpoint. If that fails in any way it falls
// back to fetching the listing pages themselves and running the link extractor over each.
package tgstat

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"tgscout/internal/channel"
	"tgscout/internal/components/assert"
	"tgscout/internal/components/telemetry"
	"tgscout/internal/extract"
)

const (
	report_crawler_run       = "crawler.run"
	report_crawler_api_page  = "crawler.api-page"
	report_crawler_api_item  = "crawler.api-item"
	report_crawler_html_page = "crawler.html-page"
	report_crawler_records   = "crawler.records"
)

const DefaultDelay = 500 * time.Millisecond

type Mode string

const (
	ModeAPI  Mode = "api"
	ModeHTML Mode = "html"
)

type Options struct {
	// APIBaseURL is where the listing endpoint lives, empty means DefaultAPIBaseURL.
	APIBaseURL string
	// Delay is the pause between two requests. It is never applied before the first one.
	Delay time.Duration
	// Strategies are the extraction strategies for html pages, nil means
	// extract.DefaultStrategies.
	Strategies []extract.Strategy
}

func DefaultOptions() Options {
	return Options{
		APIBaseURL: DefaultAPIBaseURL,
		Delay:      DefaultDelay,
	}
}

type CrawlResult struct {
	// Records are unique by url, in discovery order.
	Records []channel.Record
	// Mode is the paging mode that ran last, empty if the seed was unusable.
	Mode Mode
	// Warnings are the failures that ended a paging mode early.
	Warnings []error
	// Cancelled is true when the context stopped the crawl.
	Cancelled bool
}

// Crawler holds no crawl state and can run any number of crawls one after the other.
type Crawler struct {
	fetcher Fetcher
	opts    Options
	tel     telemetry.API
}

func NewCrawler(fetcher Fetcher, opts Options, tel telemetry.API) *Crawler {
	assert.NotNil(fetcher)
	assert.NotNil(tel)

	if opts.APIBaseURL == "" {
		opts.APIBaseURL = DefaultAPIBaseURL
	}
	if opts.Delay < 0 {
		opts.Delay = 0
	}
	if opts.Strategies == nil {
		opts.Strategies = extract.DefaultStrategies
	}

	return &Crawler{
		fetcher: fetcher,
		opts:    opts,
		tel:     telemetry.NewScopedAPI("tgstat_crawler", tel),
	}
}

// run is the per crawl state threaded through both paging modes.
type run struct {
	*Crawler
	session   *Session
	requests  int
	cancelled bool
}

// Run crawls the listing at seedUrl for at most maxPages pages per mode. It never fails,
// page failures end up in CrawlResult.Warnings and a cancelled context returns whatever
// was found so far.
func (c *Crawler) Run(ctx context.Context, seedUrl string, maxPages int) CrawlResult {
	if maxPages < 1 {
		maxPages = 1
	}

	r := &run{Crawler: c, session: NewSession()}
	result := CrawlResult{}

	seed, parsed, err := parseSeed(seedUrl)
	if err != nil {
		err = fmt.Errorf("invalid seed url: %w", err)
		c.tel.ReportWarning(report_crawler_run, err)
		result.Warnings = append(result.Warnings, err)
		return result
	}

	c.tel.ReportDebug(report_crawler_run, seed, maxPages)

	result.Mode = ModeAPI
	err = r.apiPaging(ctx, parsed, maxPages)
	if err != nil && !r.cancelled {
		c.tel.ReportWarning(report_crawler_api_page, fmt.Errorf("api paging failed, falling back to html: %w", err))
		result.Warnings = append(result.Warnings, err)

		result.Mode = ModeHTML
		err = r.htmlPaging(ctx, seed, parsed, maxPages)
		if err != nil && !r.cancelled {
			c.tel.ReportWarning(report_crawler_html_page, err)
			result.Warnings = append(result.Warnings, err)
		}
	}

	result.Records = r.session.Records()
	result.Cancelled = r.cancelled
	c.tel.ReportCount(report_crawler_records, int64(r.session.Len()))
	return result
}

// ready checks for cancellation and waits out the delay before every request but the first.
func (r *run) ready(ctx context.Context) bool {
	if ctx.Err() != nil {
		r.cancelled = true
		return false
	}
	if r.requests > 0 && r.opts.Delay > 0 {
		timer := time.NewTimer(r.opts.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			r.cancelled = true
			return false
		case <-timer.C:
		}
	}
	if ctx.Err() != nil {
		r.cancelled = true
		return false
	}
	r.requests++
	return true
}

// failed marks the run cancelled if the error came from the context going away.
func (r *run) failed(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		r.cancelled = true
	}
	return err
}

func (r *run) apiPaging(ctx context.Context, seed *url.URL, maxPages int) error {
	endpoint, err := apiEndpoint(r.opts.APIBaseURL, seed)
	if err != nil {
		return err
	}

	for page := 1; page <= maxPages; page++ {
		if !r.ready(ctx) {
			return nil
		}

		res, err := r.fetcher.Get(ctx, Request{
			URL:    endpoint,
			Query:  apiQuery(page),
			Accept: acceptJSON,
		})
		if err != nil {
			return r.failed(ctx, &FetchError{URL: endpoint, Page: page, Err: err})
		}
		if res.StatusCode != http.StatusOK {
			return &FetchError{
				URL:        res.URL,
				Page:       page,
				StatusCode: res.StatusCode,
				Err:        errUnexpectedStatus,
			}
		}

		listing, err := decodeAPIPage(res.Body)
		if err != nil {
			return &FetchError{URL: res.URL, Page: page, StatusCode: res.StatusCode, Err: err}
		}
		for _, malformed := range listing.malformed {
			r.tel.ReportDebug(report_crawler_api_item, page, malformed)
		}

		added := r.session.Add(listing.records)
		r.tel.ReportDebug(report_crawler_api_page, page, len(listing.records), added)

		if page > 1 && added == 0 {
			return nil
		}
		if !listing.hasNext {
			return nil
		}
	}
	return nil
}

func (r *run) htmlPaging(ctx context.Context, seed string, parsed *url.URL, maxPages int) error {
	base := htmlBase(parsed)

	for page := 1; page <= maxPages; page++ {
		if !r.ready(ctx) {
			return nil
		}

		pageUrl := htmlPageURL(seed, page)
		res, err := r.fetcher.Get(ctx, Request{URL: pageUrl, Accept: acceptHTML})
		if err != nil {
			return r.failed(ctx, &FetchError{URL: pageUrl, Page: page, Err: err})
		}
		if res.StatusCode < 200 || res.StatusCode > 299 {
			return &FetchError{
				URL:        pageUrl,
				Page:       page,
				StatusCode: res.StatusCode,
				Err:        errUnexpectedStatus,
			}
		}

		extracted := extract.Run(extract.NewPage(string(res.Body), base), r.opts.Strategies)
		added := r.session.Add(extracted.Records)
		r.tel.ReportDebug(report_crawler_html_page, page, extracted.Strategy, len(extracted.Records), added)

		if page > 1 && added == 0 {
			return nil
		}
	}
	return nil
}
