package report_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/locstat/pkg/loc"
	"github.com/Sumatoshi-tech/locstat/pkg/report"
)

var since = time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)

func TestWriter_WriteAndRead(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "recent")
	totals := loc.FromPairs([]string{"Python", "Go"}, []int{12, 40})

	w := report.NewWriter(dir, "ada")

	path, err := w.Write(report.NewRecord("my-repo", since, totals))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ada_my-repo.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	want := `{
  "repo": "my-repo",
  "since": "2024-06-01T08:30:00Z",
  "loc_changed_per_language": {
    "Python": 12,
    "Go": 40
  }
}
`
	assert.Equal(t, want, string(data))

	rec, err := report.ReadRecord(path)
	require.NoError(t, err)

	assert.Equal(t, "my-repo", rec.Repo)
	assert.Equal(t, "2024-06-01T08:30:00Z", rec.Since)
	assert.Equal(t, totals.Map(), rec.LOCChangedPerLanguage.Map())
	assert.Equal(t, totals.Names(), rec.LOCChangedPerLanguage.Names())
}

func TestWriter_SkipsEmpty(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "recent")
	w := report.NewWriter(dir, "ada")

	path, err := w.Write(report.NewRecord("empty", since, loc.New()))
	require.NoError(t, err)
	assert.Empty(t, path)

	path, err = w.Write(report.NewRecord("nil", since, nil))
	require.NoError(t, err)
	assert.Empty(t, path)

	_, err = os.Stat(dir)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriter_LastWriterWins(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := report.NewWriter(dir, "")

	first, err := w.Write(report.NewRecord("a/b", since, loc.FromPairs([]string{"Go"}, []int{1})))
	require.NoError(t, err)

	second, err := w.Write(report.NewRecord("a:b", since, loc.FromPairs([]string{"Go"}, []int{2})))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, filepath.Join(dir, "locstat_a_b.json"), second)

	rec, err := report.ReadRecord(second)
	require.NoError(t, err)

	n, ok := rec.LOCChangedPerLanguage.Get("Go")
	require.True(t, ok)
	assert.Equal(t, 2, n)
}

func TestSanitize(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"plain-repo_1.0": "plain-repo_1.0",
		"with space":     "with_space",
		"a/b\\c":         "a_b_c",
		"héllo":          "h_llo",
	}

	for input, want := range tests {
		assert.Equal(t, want, report.Sanitize(input), input)
	}
}

func TestReadRecord_Invalid(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"repo": "x", "loc_changed_per_language": {"Go": -1}}`), 0o644))

	_, err := report.ReadRecord(bad)
	require.ErrorIs(t, err, report.ErrInvalidRecord)
	require.ErrorIs(t, err, loc.ErrNegativeCount)

	missingTotals := filepath.Join(dir, "missing.json")
	require.NoError(t, os.WriteFile(missingTotals, []byte(`{"repo": "x", "since": "s"}`), 0o644))

	rec, err := report.ReadRecord(missingTotals)
	require.NoError(t, err)
	assert.True(t, rec.LOCChangedPerLanguage.Empty())
}

func TestLoadDir_MergesInNameOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := report.NewWriter(dir, "ada")

	_, err := w.Write(report.NewRecord("beta", since, loc.FromPairs([]string{"Rust", "Go"}, []int{5, 10})))
	require.NoError(t, err)

	_, err = w.Write(report.NewRecord("alpha", since, loc.FromPairs([]string{"Go", "C"}, []int{1, 2})))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.json"), 0o755))

	totals, records, err := report.LoadDir(dir)
	require.NoError(t, err)

	assert.Equal(t, 2, records)
	assert.Equal(t, []string{"Go", "C", "Rust"}, totals.Names())
	assert.Equal(t, map[string]int{"Go": 11, "C": 2, "Rust": 5}, totals.Map())
}

func TestLoadDirs(t *testing.T) {
	t.Parallel()

	recent := t.TempDir()
	assistant := t.TempDir()

	_, err := report.NewWriter(recent, "ada").Write(report.NewRecord("r", since, loc.FromPairs([]string{"Go"}, []int{3})))
	require.NoError(t, err)

	_, err = report.NewWriter(assistant, "ada").Write(report.NewRecord("r", since, loc.FromPairs([]string{"Go", "Zig"}, []int{4, 1})))
	require.NoError(t, err)

	totals, records, err := report.LoadDirs([]string{recent, assistant})
	require.NoError(t, err)

	assert.Equal(t, 2, records)
	assert.Equal(t, map[string]int{"Go": 7, "Zig": 1}, totals.Map())
}

func TestLoadDir_Errors(t *testing.T) {
	t.Parallel()

	_, _, err := report.LoadDir(filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, os.ErrNotExist)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o644))

	_, _, err = report.LoadDir(dir)
	require.ErrorIs(t, err, report.ErrInvalidRecord)
}

func TestReadTokei(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "stats.json")
	doc := `{
  "Rust": {"blanks": 10, "code": 900, "comments": 100, "reports": [], "children": {}, "inaccurate": false},
  "Markdown": {"blanks": 1, "code": 0, "comments": 40, "reports": [], "children": {}, "inaccurate": false},
  "JSON": {"blanks": 0, "code": 0, "comments": 0, "reports": [], "children": {}, "inaccurate": false},
  "Total": {"blanks": 11, "code": 900, "comments": 140, "reports": [], "children": {}, "inaccurate": false}
}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	totals, err := report.ReadTokei(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Rust", "Markdown"}, totals.Names())
	assert.Equal(t, map[string]int{"Rust": 1000, "Markdown": 40}, totals.Map())
}

func TestReadTokei_Invalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "stats.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Rust": {"code": "lots"}}`), 0o644))

	_, err := report.ReadTokei(path)
	require.ErrorIs(t, err, report.ErrInvalidTokei)

	_, err = report.ReadTokei(filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(t, err, report.ErrInvalidTokei)
}
