package tgstat

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"tgscout/internal/channel"
	"tgscout/internal/components/telemetry"
	"tgscout/lib/restyutil"

	"github.com/stretchr/testify/require"
)

func TestHTMLPageURL(t *testing.T) {
	testCases := []struct {
		seed     string
		page     int
		expected string
	}{
		{seed: "https://tgstat.ru/crypto", page: 1, expected: "https://tgstat.ru/crypto"},
		{seed: "https://tgstat.ru/crypto", page: 2, expected: "https://tgstat.ru/crypto?page=2"},
		{seed: "https://tgstat.ru/crypto?sort=members", page: 3, expected: "https://tgstat.ru/crypto?sort=members&page=3"},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, htmlPageURL(test.seed, test.page))
	}
}

func TestParseSeed(t *testing.T) {
	seed, parsed, err := parseSeed("  tgstat.ru/ratings/channels/crypto ")
	require.NoError(t, err)
	require.Equal(t, "https://tgstat.ru/ratings/channels/crypto", seed)
	require.Equal(t, "https://tgstat.ru", htmlBase(parsed))

	seed, _, err = parseSeed("http://tgstat.ru/en")
	require.NoError(t, err)
	require.Equal(t, "http://tgstat.ru/en", seed)

	_, _, err = parseSeed("https://")
	require.Error(t, err)
}

func TestAPIEndpoint(t *testing.T) {
	testCases := []struct {
		seed     string
		expected string
		fails    bool
	}{
		{seed: "https://tgstat.ru/ratings/channels/crypto", expected: "https://tgstat.ru/channels/list/crypto"},
		{seed: "https://tgstat.ru/ratings/channels/crypto/", expected: "https://tgstat.ru/channels/list/crypto"},
		{seed: "https://tgstat.ru/crypto?page=4", expected: "https://tgstat.ru/channels/list/crypto"},
		{seed: "https://tgstat.ru/", fails: true},
		{seed: "https://tgstat.ru", fails: true},
	}

	for _, test := range testCases {
		seed, err := url.Parse(test.seed)
		require.NoError(t, err)

		endpoint, err := apiEndpoint(DefaultAPIBaseURL+"/", seed)
		if test.fails {
			require.Error(t, err, test.seed)
			continue
		}
		require.NoError(t, err)
		require.Equal(t, test.expected, endpoint)
	}
}

func TestDecodeAPIItem(t *testing.T) {
	record, err := decodeAPIItem([]byte(`{
		"username": "@news",
		"title": "News",
		"members": "1.2M",
		"description": "daily",
		"category": "media",
		"avg_post_reach": "3400",
		"citations": 12.7
	}`))
	require.NoError(t, err)
	require.Equal(t, channel.Record{
		URL:          "https://t.me/news",
		Text:         "News",
		Members:      channel.ParseMembers("1.2M"),
		Description:  "daily",
		Category:     "media",
		AvgPostReach: 3400,
		Citations:    12,
		Source:       "api",
	}, record)

	record, err = decodeAPIItem([]byte(`{"username": "bare", "members": true, "description": 4}`))
	require.NoError(t, err)
	require.Equal(t, "bare", record.Text)
	require.Equal(t, 0.0, record.Members.Value())
	require.Empty(t, record.Description)

	record, err = decodeAPIItem([]byte(`{"username": "huge", "avg_post_reach": 1e30, "citations": "1e30"}`))
	require.NoError(t, err)
	require.Equal(t, int64(math.MaxInt64), record.AvgPostReach)
	require.Equal(t, int64(math.MaxInt64), record.Citations)

	_, err = decodeAPIItem([]byte(`null`))
	require.ErrorIs(t, err, ErrMalformedRecord)
}

func TestSessionAdd(t *testing.T) {
	session := NewSession()
	require.Equal(t, 2, session.Add([]channel.Record{
		{URL: "https://t.me/a"},
		{URL: "https://t.me/b"},
	}))
	require.Equal(t, 1, session.Add([]channel.Record{
		{URL: "https://t.me/b", Source: "later"},
		{URL: "https://t.me/c"},
	}))
	require.Equal(t, 3, session.Len())
	require.Empty(t, session.Records()[1].Source)
}

func TestClientDump(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<a href="https://t.me/alpha">alpha</a>`))
	}))
	defer server.Close()

	dump := restyutil.MemoryOutput{}
	client := NewClient(ClientOptions{Dump: dump, RequestsPerSecond: 100}, telemetry.NewRecorderAPI())

	res, err := client.Get(context.Background(), Request{URL: server.URL + "/crypto"})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, server.URL+"/crypto", res.URL)

	require.Len(t, dump, 1)
	require.Contains(t, dump["0001.txt"], "Referer: https://tgstat.ru/")
	require.Contains(t, dump["0001.txt"], "https://t.me/alpha")
}
