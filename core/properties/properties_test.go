package properties_test

import (
	"os"
	"path/filepath"
	"testing"

	"lair-scanner/core/properties"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtractNFO(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    map[string]any
	}{
		{"FirstURL", "Movie\nhttps://www.imdb.com/title/tt0111161/ and http://other.example\n", map[string]any{"url": "https://www.imdb.com/title/tt0111161/"}},
		{"PlainHTTP", "see <http://example.com/x>", map[string]any{"url": "http://example.com/x"}},
		{"NoURL", "just text", map[string]any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := properties.ExtractNFO([]byte(tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestYAMLExtractor(t *testing.T) {
	t.Run("AllFields", func(t *testing.T) {
		got, err := properties.YAMLExtractor(nil)([]byte("title: Foo\nyear: 1999\ntags: [a, b]\n"))
		require.NoError(t, err)
		assert.Equal(t, "Foo", got["title"])
		assert.Equal(t, 1999, got["year"])
		assert.Equal(t, []any{"a", "b"}, got["tags"])
	})

	t.Run("Whitelist", func(t *testing.T) {
		got, err := properties.YAMLExtractor([]string{"title"})([]byte("title: Foo\nyear: 1999\n"))
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"title": "Foo"}, got)
	})

	t.Run("NestedNonStringKeys", func(t *testing.T) {
		got, err := properties.YAMLExtractor(nil)([]byte("episodes:\n  1: Pilot\n"))
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"1": "Pilot"}, got["episodes"])
	})

	t.Run("NotAnObject", func(t *testing.T) {
		_, err := properties.YAMLExtractor(nil)([]byte("- a\n- b\n"))
		assert.ErrorIs(t, err, properties.ErrMalformed)
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := properties.YAMLExtractor(nil)([]byte("title: [unclosed"))
		assert.ErrorIs(t, err, properties.ErrMalformed)
	})
}

func TestRegistry_Extract(t *testing.T) {
	dir := t.TempDir()
	core, logs := observer.New(zap.WarnLevel)
	r := properties.NewRegistry(zap.New(core), nil)

	t.Run("UnsupportedExtension", func(t *testing.T) {
		path := writeFile(t, dir, "a.mkv", "binary")
		assert.False(t, r.Supports(path))

		got, err := r.Extract(path)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("NFO", func(t *testing.T) {
		path := writeFile(t, dir, "a.NFO", "https://example.com/a")
		got, err := r.Extract(path)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"url": "https://example.com/a"}, got)
	})

	t.Run("MalformedYAMLIsNotFatal", func(t *testing.T) {
		path := writeFile(t, dir, "bad.yml", "just a string")
		got, err := r.Extract(path)
		require.NoError(t, err)
		assert.Empty(t, got)
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, path, logs.All()[0].ContextMap()["path"])
	})

	t.Run("ReadFailureIsFatal", func(t *testing.T) {
		_, err := r.Extract(filepath.Join(dir, "missing.yml"))
		assert.Error(t, err)
	})

	t.Run("CustomExtractor", func(t *testing.T) {
		r.Register("txt", func([]byte) (map[string]any, error) {
			return map[string]any{"custom": true}, nil
		})
		path := writeFile(t, dir, "a.txt", "")
		got, err := r.Extract(path)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"custom": true}, got)
	})
}
