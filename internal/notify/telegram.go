package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tgscout/internal/components/assert"
	"tgscout/internal/components/telemetry"
	"tgscout/internal/ranking"

	"github.com/go-resty/resty/v2"
)

const DefaultBotAPIBaseURL = "https://api.telegram.org"

type TelegramOptions struct {
	Token  string
	ChatID string
	// APIBaseURL is the Bot API root, empty means DefaultBotAPIBaseURL.
	APIBaseURL string
}

// Telegram sends messages through the Bot API sendMessage method.
type Telegram struct {
	http   *resty.Client
	token  string
	chatId string
	tel    telemetry.API
}

func NewTelegram(opts TelegramOptions, tel telemetry.API) *Telegram {
	assert.NotEmptyStr(opts.Token)
	assert.NotEmptyStr(opts.ChatID)
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("notify", tel)

	if opts.APIBaseURL == "" {
		opts.APIBaseURL = DefaultBotAPIBaseURL
	}

	client := resty.New()
	client.SetBaseURL(strings.TrimRight(opts.APIBaseURL, "/"))
	client.SetTimeout(30 * time.Second)
	telemetry.InstrumentResty(client, tel)

	return &Telegram{
		http:   client,
		token:  opts.Token,
		chatId: opts.ChatID,
		tel:    tel,
	}
}

func (t *Telegram) Notify(ctx context.Context, channel ranking.Flagged) error {
	t.tel.ReportDebug(report_notify_send, "telegram", channel.URL)

	res, err := t.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"chat_id":    t.chatId,
			"text":       Message(channel),
			"parse_mode": "HTML",
		}).
		Post(fmt.Sprintf("/bot%s/sendMessage", t.token))
	if err != nil {
		return fmt.Errorf("telegram: send message: %w", err)
	}
	if res.StatusCode() != http.StatusOK {
		return fmt.Errorf("telegram: send message: status %d: %s", res.StatusCode(), res.String())
	}
	return nil
}
