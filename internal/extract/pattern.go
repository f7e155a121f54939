package extract

import (
	"fmt"
	"regexp"

	"tgscout/internal/channel"
)

var telegramLinkRegex = regexp.MustCompile(`(https?://)?(t\.me|telegram\.me)/([a-zA-Z0-9_]+)`)

// PatternStrategy matches telegram links anywhere in the raw content, including scripts and
// attributes the DOM strategies do not look at.
type PatternStrategy struct{}

func (PatternStrategy) Name() string {
	return "pattern"
}

func (PatternStrategy) Extract(page Page) []channel.Record {
	var records []channel.Record
	seen := map[string]struct{}{}

	for _, groups := range telegramLinkRegex.FindAllStringSubmatch(page.Raw, -1) {
		protocol, domain, username := groups[1], groups[2], groups[3]
		if protocol == "" {
			protocol = "https://"
		}

		link := fmt.Sprintf("%s%s/%s", protocol, domain, username)
		if _, ok := seen[link]; ok {
			continue
		}
		seen[link] = struct{}{}

		records = append(records, channel.Record{
			URL:    link,
			Text:   "@" + username,
			Source: "pattern",
		})
	}
	return records
}
