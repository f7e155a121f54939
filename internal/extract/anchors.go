package extract

import (
	"net/url"
	"strings"

	"tgscout/internal/channel"
	"tgscout/lib/htmlutil"
)

// AnchorStrategy accepts any anchor that points at telegram directly or at a channel page of
// the listing site.
type AnchorStrategy struct{}

func (AnchorStrategy) Name() string {
	return "anchors"
}

func isTelegramLink(href string) bool {
	return strings.Contains(href, "t.me/") || strings.Contains(href, "telegram.me/")
}

func (AnchorStrategy) Extract(page Page) []channel.Record {
	if page.Doc == nil {
		return nil
	}

	var records []channel.Record
	for _, a := range htmlutil.GetAnchors(page.Doc.Find("a[href]")) {
		var link, username string
		switch {
		case isTelegramLink(a.Href):
			link = a.Href
			username = channel.UsernameFromPath(a.Href)
		case strings.Contains(a.Href, channelPathSegment):
			username = channel.UsernameFromPath(resolve(page.Base, a.Href))
			if username == "" {
				continue
			}
			link = channel.TelegramURL(username)
		default:
			continue
		}

		text := a.Name
		if text == "" {
			text = a.Title
		}
		if text == "" {
			text = username
		}
		if text == "" {
			text = link
		}

		records = append(records, channel.Record{
			URL:    link,
			Text:   text,
			Source: "anchors",
		})
	}
	return records
}

func resolve(base *url.URL, href string) string {
	if base == nil || !strings.HasPrefix(href, "/") {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
