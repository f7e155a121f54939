package tgstat

import (
	"context"
	"time"

	"tgscout/internal/components/assert"
	"tgscout/internal/components/telemetry"
	"tgscout/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const report_client_get = "client.get"

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
	DefaultTimeout   = 30 * time.Second

	acceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	acceptJSON = "application/json, text/plain, */*"
)

type ClientOptions struct {
	UserAgent string
	// Timeout applies to every single request, 0 means DefaultTimeout.
	Timeout time.Duration
	// RequestsPerSecond caps the request rate, 0 means unlimited.
	RequestsPerSecond float64
	// CloudflareBypass wraps the transport with cloudflare-bp.
	CloudflareBypass bool
	// Dump receives every http exchange when not nil.
	Dump restyutil.Output
}

type Request struct {
	URL    string
	Query  map[string]string
	Accept string
}

type Response struct {
	URL        string
	StatusCode int
	Body       []byte
}

// Fetcher issues a single GET request. Non-2xx statuses are not errors at this level.
type Fetcher interface {
	Get(ctx context.Context, req Request) (Response, error)
}

// Client is the resty backed Fetcher used against tgstat.
type Client struct {
	http *resty.Client
	tel  telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) *Client {
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("tgstat_client", tel)

	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	httpClient := resty.New()
	if opts.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	httpClient.SetHeaders(map[string]string{
		"user-agent":      opts.UserAgent,
		"accept":          acceptHTML,
		"accept-language": "ru-RU,ru;q=0.9,en-US;q=0.8,en;q=0.7",
		"referer":         "https://tgstat.ru/",
	})
	httpClient.SetTimeout(opts.Timeout)

	telemetry.InstrumentResty(httpClient, tel)
	restyutil.Dump(httpClient, opts.Dump)

	if opts.RequestsPerSecond > 0 {
		// burst of 1 keeps requests evenly spaced
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	return &Client{
		http: httpClient,
		tel:  tel,
	}
}

func (c *Client) Get(ctx context.Context, req Request) (Response, error) {
	c.tel.ReportDebug(report_client_get, req.URL)

	r := c.http.R().SetContext(ctx)
	if req.Accept != "" {
		r.SetHeader("accept", req.Accept)
	}
	if len(req.Query) > 0 {
		r.SetQueryParams(req.Query)
	}

	res, err := r.Get(req.URL)
	if err != nil {
		return Response{}, err
	}

	out := Response{
		URL:        req.URL,
		StatusCode: res.StatusCode(),
		Body:       res.Body(),
	}
	if res.Request != nil && res.Request.RawRequest != nil {
		out.URL = res.Request.RawRequest.URL.String()
	}
	return out, nil
}
