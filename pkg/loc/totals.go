// Package loc provides the per-language line accumulator shared by scanning and charting.
package loc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
)

// ErrNegativeCount is returned when a decoded document carries a negative line count.
var ErrNegativeCount = errors.New("negative line count")

// ErrNotObject is returned when a decoded document is not a JSON object.
var ErrNotObject = errors.New("language totals must be a JSON object")

// Totals maps a canonical language name to a non-negative line count.
// Names are iterated in first-insertion order, which callers rely on as a stable
// tie-break when sorting by count.
type Totals struct {
	order  []string
	counts map[string]int
}

// New creates an empty Totals.
func New() *Totals {
	return &Totals{counts: make(map[string]int)}
}

// FromPairs builds Totals from alternating name/count pairs given in order.
// It is mostly useful in tests and fixtures.
func FromPairs(names []string, counts []int) *Totals {
	t := New()

	for i, name := range names {
		if i < len(counts) {
			t.Add(name, counts[i])
		}
	}

	return t
}

// Add adds n lines to name. Non-positive n is ignored so a language is never present
// with a zero count.
func (t *Totals) Add(name string, n int) {
	if n <= 0 {
		return
	}

	if t.counts == nil {
		t.counts = make(map[string]int)
	}

	if _, ok := t.counts[name]; !ok {
		t.order = append(t.order, name)
	}

	t.counts[name] += n
}

// Merge folds every entry of other into t, keeping t's order for known names and
// appending new names in other's order.
func (t *Totals) Merge(other *Totals) {
	if other == nil {
		return
	}

	for name, n := range other.All() {
		t.Add(name, n)
	}
}

// Get returns the count for name and whether it is present.
func (t *Totals) Get(name string) (int, bool) {
	if t == nil {
		return 0, false
	}

	n, ok := t.counts[name]

	return n, ok
}

// Len returns the number of languages.
func (t *Totals) Len() int {
	if t == nil {
		return 0
	}

	return len(t.order)
}

// Empty reports whether no language has been recorded.
func (t *Totals) Empty() bool {
	return t.Len() == 0
}

// Sum returns the total line count across all languages.
func (t *Totals) Sum() int {
	if t == nil {
		return 0
	}

	sum := 0
	for _, n := range t.counts {
		sum += n
	}

	return sum
}

// Names returns the language names in insertion order.
func (t *Totals) Names() []string {
	if t == nil {
		return nil
	}

	return append([]string(nil), t.order...)
}

// All iterates over name/count pairs in insertion order.
func (t *Totals) All() iter.Seq2[string, int] {
	return func(yield func(string, int) bool) {
		if t == nil {
			return
		}

		for _, name := range t.order {
			if !yield(name, t.counts[name]) {
				return
			}
		}
	}
}

// Map returns a copy of the counts as a plain map.
func (t *Totals) Map() map[string]int {
	out := make(map[string]int, t.Len())

	for name, n := range t.All() {
		out[name] = n
	}

	return out
}

// Clone returns an independent copy.
func (t *Totals) Clone() *Totals {
	c := New()
	c.Merge(t)

	return c
}

// MarshalJSON encodes the totals as a JSON object in insertion order.
func (t *Totals) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	first := true

	for name, n := range t.All() {
		if !first {
			buf.WriteByte(',')
		}

		first = false

		key, err := json.Marshal(name)
		if err != nil {
			return nil, fmt.Errorf("marshal language name: %w", err)
		}

		buf.Write(key)
		fmt.Fprintf(&buf, ":%d", n)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object of name to integer, keeping document order.
// Zero counts are accepted and dropped.
func (t *Totals) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode totals: %w", err)
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return ErrNotObject
	}

	*t = Totals{counts: make(map[string]int)}

	for dec.More() {
		keyTok, keyErr := dec.Token()
		if keyErr != nil {
			return fmt.Errorf("decode totals key: %w", keyErr)
		}

		name, _ := keyTok.(string)

		var num json.Number

		valErr := dec.Decode(&num)
		if valErr != nil {
			return fmt.Errorf("decode count for %q: %w", name, valErr)
		}

		n, convErr := num.Int64()
		if convErr != nil {
			return fmt.Errorf("decode count for %q: %w", name, convErr)
		}

		if n < 0 {
			return fmt.Errorf("%w: %q=%d", ErrNegativeCount, name, n)
		}

		t.Add(name, int(n))
	}

	_, err = dec.Token()
	if err != nil {
		return fmt.Errorf("decode totals: %w", err)
	}

	return nil
}
