package langmap_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/locstat/pkg/langmap"
)

const testTableJSON = `{
  "languages": {
    "python": {"name": "Python", "extensions": ["py", ".PYW"]},
    "Go": {"extensions": ["go"]},
    "cpp": {"name": "C++", "extensions": ["cpp", "h"]},
    "c": {"name": "C", "extensions": ["c", "h"]},
    "nothing": {}
  }
}`

func loadTestTable(t *testing.T) langmap.Table {
	t.Helper()

	table, err := langmap.ParseTable([]byte(testTableJSON))
	require.NoError(t, err)

	return table
}

func TestParseTable(t *testing.T) {
	t.Parallel()

	table := loadTestTable(t)

	assert.Equal(t, langmap.Table{
		"py":  "Python",
		"pyw": "Python",
		"go":  "Go",
		"cpp": "C++",
		"h":   "C++",
		"c":   "C",
	}, table)
}

func TestParseTable_Invalid(t *testing.T) {
	t.Parallel()

	for name, doc := range map[string]string{
		"missing languages": `{"langs": {}}`,
		"extensions type":   `{"languages": {"Go": {"extensions": "go"}}}`,
		"not an object":     `[1, 2]`,
		"syntax":            `{"languages": `,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := langmap.ParseTable([]byte(doc))
			require.ErrorIs(t, err, langmap.ErrInvalidDocument)
		})
	}
}

func TestLoadTable_YAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "languages.yaml")
	content := "languages:\n  Rust:\n    extensions: [rs]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	table, err := langmap.LoadTable(path)
	require.NoError(t, err)
	assert.Equal(t, langmap.Table{"rs": "Rust"}, table)
}

func TestLoadTable_Missing(t *testing.T) {
	t.Parallel()

	_, err := langmap.LoadTable(filepath.Join(t.TempDir(), "languages.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestExtension(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"main.go":               "go",
		"dir/archive.tar.GZ":    "gz",
		".gitignore":            "",
		"src/.env":              "",
		"src/.eslintrc.json":    "json",
		"Makefile":              "",
		"trailing.":             "",
		"a.b/c":                 "",
		`win\path\file.PY`:      "py",
		"":                      "",
		"deep/nested/x.test.ts": "ts",
	}

	for path, want := range cases {
		assert.Equal(t, want, langmap.Extension(path), path)
	}
}

func TestClassify_SkipMode(t *testing.T) {
	t.Parallel()

	c := langmap.NewClassifier(loadTestTable(t), langmap.UnmappedSkip)

	lang, ok := c.Classify("pkg/a.py")
	assert.True(t, ok)
	assert.Equal(t, "Python", lang)

	lang, ok = c.Classify("notes.TXT")
	assert.False(t, ok)
	assert.Empty(t, lang)

	_, ok = c.Classify(".bashrc")
	assert.False(t, ok)
}

func TestClassify_OtherMode(t *testing.T) {
	t.Parallel()

	c := langmap.NewClassifier(loadTestTable(t), langmap.UnmappedOther)

	lang, ok := c.Classify("README")
	assert.True(t, ok)
	assert.Equal(t, langmap.Other, lang)

	lang, ok = c.Classify("x.GO")
	assert.True(t, ok)
	assert.Equal(t, "Go", lang)
}

func TestClassify_DetectMode(t *testing.T) {
	t.Parallel()

	c := langmap.NewClassifier(langmap.Table{}, langmap.UnmappedDetect)

	lang, ok := c.Classify("lib/thing.go")
	assert.True(t, ok)
	assert.Equal(t, "Go", lang)

	lang, ok = c.Classify("data.zzzunknown")
	assert.True(t, ok)
	assert.Equal(t, langmap.Other, lang)
}

func TestClassify_NoExtensionNeverPanics(t *testing.T) {
	t.Parallel()

	for _, mode := range []langmap.UnmappedMode{langmap.UnmappedSkip, langmap.UnmappedOther, langmap.UnmappedDetect} {
		c := langmap.NewClassifier(nil, mode)

		for _, path := range []string{"", ".", "..", "/", "a/", ".hidden", "no_ext"} {
			assert.NotPanics(t, func() { c.Classify(path) })
		}
	}
}

func TestParseUnmappedMode(t *testing.T) {
	t.Parallel()

	mode, err := langmap.ParseUnmappedMode("")
	require.NoError(t, err)
	assert.Equal(t, langmap.UnmappedSkip, mode)

	mode, err = langmap.ParseUnmappedMode(" Other ")
	require.NoError(t, err)
	assert.Equal(t, langmap.UnmappedOther, mode)

	_, err = langmap.ParseUnmappedMode("drop")
	require.ErrorIs(t, err, langmap.ErrUnknownMode)
}
