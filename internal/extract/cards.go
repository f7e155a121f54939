package extract

import (
	"strings"

	"tgscout/internal/channel"
	"tgscout/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const channelPathSegment = "/channel/"

const (
	cardSelector        = ".channel-card, .channel-item"
	nameSelector        = ".channel-name, .channel-title"
	membersSelector     = ".channel-members, .members"
	descriptionSelector = ".channel-description, .description"
	categorySelector    = ".channel-category, .category"
)

// CardStrategy reads the channel cards of a listing page.
type CardStrategy struct{}

func (CardStrategy) Name() string {
	return "cards"
}

func (CardStrategy) Extract(page Page) []channel.Record {
	if page.Doc == nil {
		return nil
	}

	var records []channel.Record
	page.Doc.Find(cardSelector).Each(func(_ int, card *goquery.Selection) {
		anchor := card.Find("a[href]").First()
		if anchor.Length() == 0 {
			return
		}
		href := anchor.AttrOr("href", "")
		if !strings.Contains(href, channelPathSegment) {
			return
		}
		username := channel.UsernameFromPath(href)
		if username == "" {
			return
		}

		name := htmlutil.Text(card.Find(nameSelector))
		if name == "" {
			name = username
		}
		members := htmlutil.Text(card.Find(membersSelector))
		if members == "" {
			members = "Unknown"
		}

		records = append(records, channel.Record{
			URL:         channel.TelegramURL(username),
			Text:        name,
			Members:     channel.ParseMembers(members),
			Description: htmlutil.Text(card.Find(descriptionSelector)),
			Category:    htmlutil.Text(card.Find(categorySelector)),
			Source:      "cards",
		})
	})
	return records
}
