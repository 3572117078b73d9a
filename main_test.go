package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ccollins476ad/passportphoto/passport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vals map[string]string) func(string) string {
	return func(k string) string {
		return vals[k]
	}
}

func parse(args []string, vals map[string]string) (*Config, error) {
	return parseArgs(newFlagSet("passportphoto", io.Discard), args, env(vals))
}

func TestParseArgs(t *testing.T) {
	cfg, err := parse([]string{
		"-url", "https://passport.example.edu/",
		"-private",
		"-q", "w=200",
		"-q", "fit=crop",
		"-j", "4",
		"-o", "/srv/avatars",
		"jdoe", "asmith",
	}, map[string]string{"PASSPORT_TOKEN": "abc123"})
	require.NoError(t, err)

	assert.Equal(t, "https://passport.example.edu/", cfg.BaseURL)
	assert.Equal(t, "abc123", cfg.Token)
	assert.True(t, cfg.Private)
	assert.Equal(t, map[string]string{"w": "200", "fit": "crop"}, cfg.Query)
	assert.Equal(t, 4, cfg.Jobs)
	assert.Equal(t, "/srv/avatars", cfg.OutDir)
	assert.Equal(t, []string{"jdoe", "asmith"}, cfg.Identifiers)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestParseArgs_Env(t *testing.T) {
	cfg, err := parse([]string{"jdoe"}, map[string]string{
		"PASSPORT_URL":   "http://127.0.0.1:8080",
		"PASSPORT_TOKEN": "secret",
	})
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8080", cfg.BaseURL)
	assert.Equal(t, "secret", cfg.Token)
	assert.False(t, cfg.Private)
}

func TestParseArgs_Errors(t *testing.T) {
	tests := map[string][]string{
		"no url":        {"jdoe"},
		"bad url":       {"-url", "passport.example.edu", "jdoe"},
		"bad scheme":    {"-url", "ftp://passport.example.edu", "jdoe"},
		"no identifier": {"-url", "https://passport.example.edu"},
		"token flag":    {"-url", "https://passport.example.edu", "-token", "abc123", "jdoe"},
		"bad query":     {"-url", "https://passport.example.edu", "-q", "w", "jdoe"},
		"bad jobs":      {"-url", "https://passport.example.edu", "-j", "0", "jdoe"},
	}

	for name, args := range tests {
		_, err := parse(args, nil)
		assert.Error(t, err, name)
	}
}

func TestNewFetcher(t *testing.T) {
	cfg := &Config{BaseURL: "https://passport.example.edu", Private: true}

	_, err := newFetcher(cfg)
	assert.ErrorContains(t, err, "PASSPORT_TOKEN")

	cfg.Token = "abc123"
	f, err := newFetcher(cfg)
	require.NoError(t, err)
	assert.True(t, f.HasPrivate())

	f, err = newFetcher(&Config{BaseURL: "https://passport.example.edu"})
	require.NoError(t, err)
	assert.False(t, f.HasPrivate())
}

func TestFetchAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/img/avatar/")
		if id == "missing" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("photo of " + id + " " + r.URL.RawQuery))
	}))
	defer server.Close()

	dir := t.TempDir()
	cfg := &Config{
		BaseURL:     server.URL,
		OutDir:      dir,
		Query:       map[string]string{"w": "32"},
		Identifiers: []string{"jdoe", "missing", "asmith"},
		Timeout:     5 * time.Second,
		Jobs:        2,
	}

	f := passport.NewFetcher(cfg.BaseURL, "", passport.WithHTTPClient(server.Client()))

	results, err := fetchAll(context.Background(), cfg, f)
	require.NoError(t, err)
	require.Len(t, results, 3)

	out := &bytes.Buffer{}
	photos, failed := report(out, cfg.Identifiers, results)

	assert.Equal(t, 1, failed)
	require.Len(t, photos, 2)
	assert.Equal(t, "jdoe", photos[0].Identifier)
	assert.Equal(t, "asmith", photos[1].Identifier)

	b, err := os.ReadFile(filepath.Join(dir, "asmith.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "photo of asmith w=32", string(b))

	want := "jdoe\t" + filepath.Join(dir, "jdoe.jpg") + "\n" +
		"asmith\t" + filepath.Join(dir, "asmith.jpg") + "\n"
	assert.Equal(t, want, out.String())

	gallery := filepath.Join(dir, "index.html")
	require.NoError(t, writeGallery(gallery, photos))

	page, err := os.ReadFile(gallery)
	require.NoError(t, err)
	assert.Contains(t, string(page), `<img src="jdoe.jpg" alt="jdoe">`)
	assert.Contains(t, string(page), `<img src="asmith.jpg" alt="asmith">`)
}

func TestFetchAll_PrivateWithoutToken(t *testing.T) {
	cfg := &Config{
		BaseURL:     "https://passport.example.edu",
		Private:     true,
		OutDir:      t.TempDir(),
		Identifiers: []string{"jdoe"},
		Timeout:     time.Second,
		Jobs:        1,
	}

	f := passport.NewFetcher(cfg.BaseURL, "")

	results, err := fetchAll(context.Background(), cfg, f)
	require.NoError(t, err)

	_, failed := report(io.Discard, cfg.Identifiers, results)
	assert.Equal(t, 1, failed)
}

func TestFetchAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := &Config{
		BaseURL:     "https://passport.example.edu",
		OutDir:      t.TempDir(),
		Identifiers: []string{"jdoe", "asmith"},
		Timeout:     time.Second,
		Jobs:        1,
	}

	f := passport.NewFetcher(cfg.BaseURL, "", passport.WithHTTPClient(&http.Client{}))

	_, err := fetchAll(ctx, cfg, f)
	assert.ErrorIs(t, err, context.Canceled)
}
