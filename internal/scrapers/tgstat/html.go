package tgstat

import (
	"net/url"
	"strconv"
	"strings"
)

// htmlPageURL is the seed itself for page 1, and the seed with a page parameter appended
// for every later page.
func htmlPageURL(seed string, page int) string {
	if page <= 1 {
		return seed
	}
	sep := "?"
	if strings.Contains(seed, "?") {
		sep = "&"
	}
	return seed + sep + "page=" + strconv.Itoa(page)
}

// htmlBase is the scheme://host links on listing pages are resolved against.
func htmlBase(seed *url.URL) string {
	return seed.Scheme + "://" + seed.Host
}

// parseSeed accepts a seed with or without a scheme, https is assumed when it is missing.
func parseSeed(seed string) (string, *url.URL, error) {
	seed = strings.TrimSpace(seed)
	if !strings.Contains(seed, "://") {
		seed = "https://" + seed
	}
	parsed, err := url.Parse(seed)
	if err != nil {
		return "", nil, err
	}
	if parsed.Host == "" {
		return "", nil, &url.Error{Op: "parse", URL: seed, Err: errNoHost}
	}
	return seed, parsed, nil
}
