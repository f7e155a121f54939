package channel

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMembers(t *testing.T) {
	testCases := []struct {
		raw      string
		expected float64
	}{
		{raw: "12.3K", expected: 12_300},
		{raw: "1.5M", expected: 1_500_000},
		{raw: "850k", expected: 850_000},
		{raw: "45 210", expected: 45_210},
		{raw: "  7 ", expected: 7},
		{raw: "Unknown", expected: 0},
		{raw: "", expected: 0},
		{raw: "1.2.3", expected: 0},
		{raw: "2 300 subscribers", expected: 2_300},
	}

	for _, test := range testCases {
		members := ParseMembers(test.raw)
		require.InDelta(t, test.expected, members.Value(), 0.0001, test.raw)
		require.Equal(t, test.raw, members.Raw())
	}
}

func TestMembersUnmarshalJSON(t *testing.T) {
	testCases := []struct {
		json     string
		expected float64
	}{
		{json: `150000`, expected: 150_000},
		{json: `"12.3K"`, expected: 12_300},
		{json: `null`, expected: 0},
		{json: `-5`, expected: 0},
		{json: `1.5e3`, expected: 1500},
	}

	for _, test := range testCases {
		var members Members
		err := json.Unmarshal([]byte(test.json), &members)
		require.NoError(t, err, test.json)
		require.InDelta(t, test.expected, members.Value(), 0.0001, test.json)
	}

	var members Members
	require.Error(t, json.Unmarshal([]byte(`{"n": 1}`), &members))
}

func TestUsernameFromPath(t *testing.T) {
	testCases := []struct {
		href     string
		expected string
	}{
		{href: "/channel/durov", expected: "durov"},
		{href: "https://tgstat.ru/channel/@durov", expected: "durov"},
		{href: "/channel/durov?ref=list#top", expected: "durov"},
		{href: "/channel/", expected: ""},
		{href: "channel", expected: ""},
		{href: "https://t.me/foo_bar", expected: "foo_bar"},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, UsernameFromPath(test.href), test.href)
	}
}
