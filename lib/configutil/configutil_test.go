package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Name    string            `json:"name"`
	Port    int               `json:"port"`
	Enabled bool              `json:"enabled"`
	Headers map[string]string `json:"headers"`
}

func write(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
}

func TestLocalPath(t *testing.T) {
	require.Equal(t, filepath.Join("a", "tgscout.local.json5"), LocalPath(filepath.Join("a", "tgscout.json5")))
	require.Equal(t, "config.local", LocalPath("config"))
	require.Equal(t, "x.y.local.json5", LocalPath("x.y.json5"))
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "tgscout.json5")

	_, err := ReadConfig[testConfig](name)
	require.ErrorIs(t, err, os.ErrNotExist)

	write(t, name, `{
		// comments and trailing commas are fine
		name: "base",
		port: 80,
		headers: {a: "1"},
	}`)
	config, err := ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, testConfig{Name: "base", Port: 80, Headers: map[string]string{"a": "1"}}, config)

	write(t, filepath.Join(dir, "tgscout.local.json5"), `{port: 8080, enabled: true, headers: {b: "2"}}`)
	config, err = ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, testConfig{
		Name:    "base",
		Port:    8080,
		Enabled: true,
		Headers: map[string]string{"a": "1", "b": "2"},
	}, config)
}

func TestReadConfigOnlyLocal(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "tgscout.local.json5"), `{name: "local"}`)

	config, err := ReadConfig[testConfig](filepath.Join(dir, "tgscout.json5"))
	require.NoError(t, err)
	require.Equal(t, "local", config.Name)
}

func TestReadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "tgscout.json5")
	write(t, name, `{name: `)

	_, err := ReadConfig[testConfig](name)
	require.Error(t, err)
	require.NotErrorIs(t, err, os.ErrNotExist)
}

func TestReadUpwards(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0700))
	write(t, filepath.Join(root, "a", "tgscout.json5"), `{name: "found"}`)

	config, path, err := readUpwards(nested, "tgscout.json5", ReadConfig[testConfig])
	require.NoError(t, err)
	require.Equal(t, "found", config.Name)
	require.Equal(t, filepath.Join(root, "a", "tgscout.json5"), path)

	_, _, err = readUpwards(nested, "missing.json5", ReadConfig[testConfig])
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadConfigOnto(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "tgscout.json5")
	base := testConfig{Name: "default", Port: 8080, Enabled: true}

	config, err := ReadConfigOnto(name, base)
	require.ErrorIs(t, err, os.ErrNotExist)
	require.Equal(t, base, config)

	write(t, name, `{port: 0, enabled: false}`)
	write(t, filepath.Join(dir, "tgscout.local.json5"), `{name: ""}`)

	config, err = ReadConfigOnto(name, base)
	require.NoError(t, err)
	require.Equal(t, testConfig{Name: "", Port: 0, Enabled: false}, config)

	write(t, filepath.Join(dir, "tgscout.local.json5"), `{}`)
	config, err = ReadConfigOnto(name, base)
	require.NoError(t, err)
	require.Equal(t, testConfig{Name: "default", Port: 0, Enabled: false}, config)
}
