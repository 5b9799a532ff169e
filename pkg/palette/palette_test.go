package palette_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/locstat/pkg/palette"
)

const testColorsJSON = `{
  "Go": {"color": "#00ADD8", "url": "https://github.com/trending?l=Go"},
  "C": {"color": "#555"},
  "ABAP": {"color": null},
  "Text": {}
}`

func TestParseTable(t *testing.T) {
	t.Parallel()

	table, err := palette.ParseTable([]byte(testColorsJSON))
	require.NoError(t, err)

	assert.Equal(t, palette.Table{"Go": "#00add8", "C": "#555555"}, table)
}

func TestParseTable_Invalid(t *testing.T) {
	t.Parallel()

	_, err := palette.ParseTable([]byte(`{"Go": {"color": "blue"}}`))
	require.ErrorIs(t, err, palette.ErrInvalidDocument)

	_, err = palette.ParseTable([]byte(`{"Go": "#fff"}`))
	require.ErrorIs(t, err, palette.ErrInvalidDocument)

	_, err = palette.ParseTable([]byte(`{"Go": {"color": 12}}`))
	require.ErrorIs(t, err, palette.ErrInvalidDocument)
}

func TestLoadTable(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "colors.json")
	require.NoError(t, os.WriteFile(path, []byte(testColorsJSON), 0o600))

	table, err := palette.LoadTable(path)
	require.NoError(t, err)
	assert.Len(t, table, 2)

	_, err = palette.LoadTable(filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestHashColor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "#6cc851", palette.HashColor("Go"))
	assert.Equal(t, "#18885f", palette.HashColor("Python"))
	assert.Equal(t, "#e3b0c4", palette.HashColor(""))
	assert.Equal(t, palette.HashColor("Zig"), palette.HashColor("Zig"))
}

func TestAssigner_ColorFor(t *testing.T) {
	t.Parallel()

	table := palette.Table{"Go": "#00add8"}

	hashed := palette.NewAssigner(table, "")
	assert.Equal(t, "#00add8", hashed.ColorFor("Go"))
	assert.Equal(t, "#358a4a", hashed.ColorFor("Zig"))

	gray := palette.NewAssigner(table, palette.FallbackGray)
	assert.Equal(t, "#00add8", gray.ColorFor("Go"))
	assert.Equal(t, palette.Gray, gray.ColorFor("Zig"))

	empty := palette.NewAssigner(nil, palette.FallbackHash)
	assert.Equal(t, palette.HashColor("Go"), empty.ColorFor("Go"))
}

func TestAssigner_Deterministic(t *testing.T) {
	t.Parallel()

	a := palette.NewAssigner(palette.Table{"C": "#555555"}, palette.FallbackHash)
	b := palette.NewAssigner(palette.Table{"C": "#555555"}, palette.FallbackHash)

	for _, name := range []string{"C", "Go", "Plain Text", "日本語", ""} {
		assert.Equal(t, a.ColorFor(name), a.ColorFor(name))
		assert.Equal(t, a.ColorFor(name), b.ColorFor(name))
	}
}

func TestParseFallback(t *testing.T) {
	t.Parallel()

	fb, err := palette.ParseFallback("")
	require.NoError(t, err)
	assert.Equal(t, palette.FallbackHash, fb)

	fb, err = palette.ParseFallback("GRAY")
	require.NoError(t, err)
	assert.Equal(t, palette.FallbackGray, fb)

	_, err = palette.ParseFallback("random")
	require.ErrorIs(t, err, palette.ErrUnknownFallback)
}
