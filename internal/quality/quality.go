// Package quality scores channels for advertising suitability.
package quality

import (
	"fmt"
	"unicode/utf8"

	"tgscout/internal/channel"
)

const MaxScore = 100

type band struct {
	above  float64
	points int
	reason string
}

// bands are checked top to bottom with a strict > comparison, the first match wins.
var audienceBands = []band{
	{above: 100_000, points: 30, reason: "Large audience (100K+ subscribers)"},
	{above: 50_000, points: 25, reason: "Good size audience (50K+ subscribers)"},
	{above: 10_000, points: 15, reason: "Medium size audience (10K+ subscribers)"},
}

var engagementBands = []band{
	{above: 30, points: 35, reason: "Excellent"},
	{above: 20, points: 25, reason: "Very good"},
	{above: 10, points: 15, reason: "Good"},
}

var citationBands = []band{
	{above: 1000, points: 20, reason: "Highly cited channel (1000+ citations)"},
	{above: 500, points: 15, reason: "Well cited channel (500+ citations)"},
	{above: 100, points: 10, reason: "Moderately cited channel (100+ citations)"},
	{above: 0, points: 5, reason: "Some citations"},
}

var descriptionBands = []band{
	{above: 200, points: 10, reason: "Detailed channel description"},
	{above: 100, points: 7, reason: "Good channel description"},
	{above: 50, points: 5, reason: "Basic channel description"},
}

func match(bands []band, value float64) (band, bool) {
	for _, b := range bands {
		if value > b.above {
			return b, true
		}
	}
	return band{}, false
}

// EngagementRate is the average post reach as a percentage of members, 0 without members.
func EngagementRate(avgPostReach int64, members float64) float64 {
	if members <= 0 {
		return 0
	}
	return float64(avgPostReach) * 100 / members
}

// Score computes the quality score of a record. The rationale lists one line per criterion
// that contributed, in evaluation order.
func Score(record channel.Record) channel.Scored {
	score := 0
	var rationale []string

	members := record.Members.Value()
	if b, ok := match(audienceBands, members); ok {
		score += b.points
		rationale = append(rationale, b.reason)
	} else {
		score += 5
		rationale = append(rationale, "Small audience (less than 10K subscribers)")
	}

	if record.AvgPostReach > 0 {
		rate := EngagementRate(record.AvgPostReach, members)
		label := "Low"
		points := 5
		if b, ok := match(engagementBands, rate); ok {
			label = b.reason
			points = b.points
		}
		score += points
		rationale = append(rationale, fmt.Sprintf("%s engagement rate (%.1f%%)", label, rate))
	}

	if b, ok := match(citationBands, float64(record.Citations)); ok {
		score += b.points
		rationale = append(rationale, b.reason)
	}

	if b, ok := match(descriptionBands, float64(utf8.RuneCountInString(record.Description))); ok {
		score += b.points
		rationale = append(rationale, b.reason)
	} else {
		rationale = append(rationale, "Minimal or no description")
	}

	score = min(score, MaxScore)
	score = max(score, 0)

	return channel.Scored{
		Record:    record,
		Score:     score,
		Rationale: rationale,
	}
}

// ScoreAll scores every record, keeping their order.
func ScoreAll(records []channel.Record) []channel.Scored {
	out := make([]channel.Scored, len(records))
	for i, r := range records {
		out[i] = Score(r)
	}
	return out
}
