package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"tgscout/internal/channel"
	"tgscout/internal/components/telemetry"
	"tgscout/internal/ranking"

	"github.com/stretchr/testify/require"
)

var flagged = ranking.Flagged{
	Scored: channel.Scored{
		Record: channel.Record{
			URL:     "https://t.me/foo",
			Text:    "Foo & Bar",
			Members: channel.ParseMembers("150K"),
		},
		Score:     75,
		Rationale: []string{"Large audience (100K+ subscribers)", "Good engagement rate (20.0%)"},
	},
	PercentAboveAverage: 87.5,
}

func TestMessage(t *testing.T) {
	require.Equal(t, `<b>🔥 High-Quality Channel Found!</b>

Channel: <b>Foo &amp; Bar</b>
URL: https://t.me/foo
Subscribers: 150K
Quality Score: 75.0/100 (<b>87.5%</b> above average)

Analysis:
- Large audience (100K+ subscribers)
- Good engagement rate (20.0%)`, Message(flagged))
}

func TestText(t *testing.T) {
	text := Text(flagged)
	require.True(t, strings.HasPrefix(text, "🔥 High-Quality Channel Found!\n\nChannel: Foo & Bar\n"))
	require.NotContains(t, text, "<b>")
}

func TestTelegramNotify(t *testing.T) {
	var mutex sync.Mutex
	var path string
	var form url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mutex.Lock()
		defer mutex.Unlock()

		path = r.URL.Path
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	tel := telemetry.NewRecorderAPI()
	notifier := NewTelegram(TelegramOptions{
		Token:      "123:abc",
		ChatID:     "-10042",
		APIBaseURL: server.URL,
	}, tel)

	require.NoError(t, notifier.Notify(context.Background(), flagged))

	mutex.Lock()
	defer mutex.Unlock()
	require.Equal(t, "/bot123:abc/sendMessage", path)
	require.Equal(t, "-10042", form.Get("chat_id"))
	require.Equal(t, "HTML", form.Get("parse_mode"))
	require.Equal(t, Message(flagged), form.Get("text"))
}

func TestTelegramNotifyRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	}))
	defer server.Close()

	notifier := NewTelegram(TelegramOptions{
		Token:      "t",
		ChatID:     "c",
		APIBaseURL: server.URL,
	}, telemetry.NewRecorderAPI())

	err := notifier.Notify(context.Background(), flagged)
	require.ErrorContains(t, err, "status 400")
	require.ErrorContains(t, err, "chat not found")
}

func TestEmailMail(t *testing.T) {
	notifier := NewEmail(EmailOptions{
		Server:   "smtp.example.com",
		Username: "bot@example.com",
		To:       []string{"me@example.com"},
	}, telemetry.NewRecorderAPI())

	require.Equal(t, 587, notifier.opts.Port)

	mail := notifier.mail(flagged)
	require.Equal(t, "tgscout <bot@example.com>", mail.From)
	require.Equal(t, []string{"me@example.com"}, mail.To)
	require.Equal(t, "High-quality channel: Foo & Bar", mail.Subject)
	require.Equal(t, Text(flagged), string(mail.Text))
	require.Contains(t, string(mail.HTML), "<br>")
}

func TestEmailNotifyCancelled(t *testing.T) {
	notifier := NewEmail(EmailOptions{Server: "smtp.example.com"}, telemetry.NewRecorderAPI())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, notifier.Notify(ctx, flagged), context.Canceled)
}
