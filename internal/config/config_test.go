package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.Equal(t, 50, c.Crawl.MaxPages)
	require.Equal(t, 500*time.Millisecond, c.Crawl.Delay())
	require.Equal(t, 30*time.Second, c.Crawl.Timeout())
	require.Equal(t, 20.0, c.Crawl.ThresholdPercent)
	require.Equal(t, "https://tgstat.ru", c.Crawl.APIBaseURL)
	require.Equal(t, "tgstat_links.csv", c.Output.CSVPath)
	require.Equal(t, 10, c.Output.Top)
	require.NoError(t, c.Validate())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(`{
		crawl: {max_pages: 5, threshold_percent: 35.5},
		store: {dsn: "history.db"},
		telegram: {enabled: true, token: "base-token", chat_id: "1"},
	}`), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tgscout.local.json5"), []byte(`{
		telegram: {token: "local-token"},
		email: {to: ["me@example.com"]},
	}`), 0600))

	c, found, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, path, found)

	require.Equal(t, 5, c.Crawl.MaxPages)
	require.Equal(t, 35.5, c.Crawl.ThresholdPercent)
	require.Equal(t, 500, c.Crawl.DelayMs)
	require.Equal(t, "history.db", c.Store.DSN)
	require.Equal(t, Telegram{Enabled: true, Token: "local-token", ChatID: "1"}, c.Telegram)
	require.Equal(t, []string{"me@example.com"}, c.Email.To)
	require.Equal(t, 587, c.Email.Port)
	require.Equal(t, 10, c.Output.Top)
}

func TestLoadZeroValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`{
		crawl: {delay_ms: 0, threshold_percent: 0},
		output: {csv_path: "", top: 0},
	}`), 0600))

	c, _, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 0, c.Crawl.DelayMs)
	require.Equal(t, 0.0, c.Crawl.ThresholdPercent)
	require.Empty(t, c.Output.CSVPath)
	require.Equal(t, 0, c.Output.Top)
	// untouched keys keep their default
	require.Equal(t, 50, c.Crawl.MaxPages)
	require.Equal(t, 587, c.Email.Port)
}

func TestLoadMissingExplicitPath(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	c := Default()
	c.Crawl.MaxPages = 0
	c.Telegram.Enabled = true
	c.Email.Enabled = true

	err := c.Validate()
	require.ErrorContains(t, err, "crawl.max_pages")
	require.ErrorContains(t, err, "telegram.token")
	require.ErrorContains(t, err, "email.server")
}
