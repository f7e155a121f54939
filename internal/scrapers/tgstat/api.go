package tgstat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"tgscout/internal/channel"
)

const DefaultAPIBaseURL = "https://tgstat.ru"

// apiEndpoint derives the listing endpoint from the last non-empty path segment of the seed.
func apiEndpoint(apiBaseUrl string, seed *url.URL) (string, error) {
	var segment string
	for _, part := range strings.Split(seed.Path, "/") {
		if part != "" {
			segment = part
		}
	}
	if segment == "" {
		return "", fmt.Errorf("seed %s has no path segment", seed.String())
	}
	return strings.TrimRight(apiBaseUrl, "/") + "/channels/list/" + url.PathEscape(segment), nil
}

func apiQuery(page int) map[string]string {
	return map[string]string{
		"page":     strconv.Itoa(page),
		"sort":     "members",
		"extended": "1",
	}
}

type apiPage struct {
	Items      *[]json.RawMessage `json:"items"`
	Pagination *struct {
		HasNext *bool `json:"has_next"`
	} `json:"pagination"`
}

// apiResult is one decoded listing page.
type apiResult struct {
	records []channel.Record
	// hasNext is false only when the response says so explicitly.
	hasNext   bool
	malformed []error
}

func decodeAPIPage(body []byte) (apiResult, error) {
	var page apiPage
	if err := json.Unmarshal(body, &page); err != nil {
		return apiResult{}, fmt.Errorf("decode listing: %w", err)
	}
	if page.Items == nil {
		return apiResult{}, errMissingItems
	}

	result := apiResult{hasNext: true}
	if page.Pagination != nil && page.Pagination.HasNext != nil {
		result.hasNext = *page.Pagination.HasNext
	}

	for i, raw := range *page.Items {
		record, err := decodeAPIItem(raw)
		if err != nil {
			result.malformed = append(result.malformed, fmt.Errorf("item %d: %w", i, err))
			continue
		}
		result.records = append(result.records, record)
	}
	return result, nil
}

// decodeAPIItem reads one listing item. Only the username is required, every other field
// falls back to its zero value when missing or of the wrong type.
func decodeAPIItem(raw json.RawMessage) (channel.Record, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return channel.Record{}, fmt.Errorf("not an object: %w", ErrMalformedRecord)
	}

	var username string
	if err := json.Unmarshal(fields["username"], &username); err != nil {
		return channel.Record{}, fmt.Errorf("username: %w", ErrMalformedRecord)
	}
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return channel.Record{}, fmt.Errorf("empty username: %w", ErrMalformedRecord)
	}

	title := stringField(fields, "title")
	if title == "" {
		title = username
	}

	var members channel.Members
	if data, ok := fields["members"]; ok {
		if err := json.Unmarshal(data, &members); err != nil {
			members = channel.Members{}
		}
	}

	return channel.Record{
		URL:          channel.TelegramURL(username),
		Text:         title,
		Members:      members,
		Description:  stringField(fields, "description"),
		Category:     stringField(fields, "category"),
		AvgPostReach: countField(fields, "avg_post_reach"),
		Citations:    countField(fields, "citations"),
		Source:       "api",
	}, nil
}

func stringField(fields map[string]json.RawMessage, key string) string {
	var value string
	if err := json.Unmarshal(fields[key], &value); err != nil {
		return ""
	}
	return value
}

// countField reads a non-negative count given either as a number or a numeric string.
func countField(fields map[string]json.RawMessage, key string) int64 {
	data := bytes.TrimSpace(fields[key])
	if len(data) == 0 {
		return 0
	}

	var n float64
	err := json.Unmarshal(data, &n)
	if err != nil {
		var text string
		if json.Unmarshal(data, &text) != nil {
			return 0
		}
		n, err = strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return 0
		}
	}
	if n <= 0 {
		return 0
	}
	if n >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(n)
}
