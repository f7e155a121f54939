// Package channel holds the records produced by a crawl.
package channel

import (
	"strings"
)

const telegramBase = "https://t.me/"

// Record is one discovered channel. It is created once per discovered link and never mutated.
type Record struct {
	// URL is the canonical https://t.me/<username> form, it is the unique key of a record.
	URL          string
	Text         string
	Members      Members
	Description  string
	Category     string
	AvgPostReach int64
	Citations    int64
	// Source names the strategy that produced the record.
	Source string
}

// Scored is a Record after quality scoring.
type Scored struct {
	Record
	Score     int
	Rationale []string
}

// TelegramURL returns the canonical channel url for a username.
func TelegramURL(username string) string {
	return telegramBase + username
}

// UsernameFromPath derives a channel username from the last path segment of a link.
// Query strings and fragments are ignored and a leading "@" is removed. An empty string
// means the path is malformed.
func UsernameFromPath(href string) string {
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}
	parts := strings.Split(href, "/")
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimPrefix(parts[len(parts)-1], "@")
}
