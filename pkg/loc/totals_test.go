package loc_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/locstat/pkg/loc"
)

func TestTotals_AddKeepsInsertionOrder(t *testing.T) {
	t.Parallel()

	totals := loc.New()
	totals.Add("Rust", 5)
	totals.Add("Go", 3)
	totals.Add("Rust", 2)

	assert.Equal(t, []string{"Rust", "Go"}, totals.Names())

	n, ok := totals.Get("Rust")
	require.True(t, ok)
	assert.Equal(t, 7, n)
	assert.Equal(t, 10, totals.Sum())
}

func TestTotals_AddIgnoresNonPositive(t *testing.T) {
	t.Parallel()

	totals := loc.New()
	totals.Add("Go", 0)
	totals.Add("C", -4)

	assert.True(t, totals.Empty())

	_, ok := totals.Get("Go")
	assert.False(t, ok)
}

func TestTotals_Merge(t *testing.T) {
	t.Parallel()

	a := loc.FromPairs([]string{"Go", "C"}, []int{1, 2})
	b := loc.FromPairs([]string{"Zig", "Go"}, []int{4, 10})

	a.Merge(b)

	assert.Equal(t, []string{"Go", "C", "Zig"}, a.Names())
	assert.Equal(t, map[string]int{"Go": 11, "C": 2, "Zig": 4}, a.Map())
}

func TestTotals_JSONRoundTripKeepsOrder(t *testing.T) {
	t.Parallel()

	totals := loc.FromPairs([]string{"Python", "Go", "C++"}, []int{12, 40, 3})

	data, err := json.Marshal(totals)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Python":12,"Go":40,"C++":3}`, string(data))
	assert.Equal(t, `{"Python":12,"Go":40,"C++":3}`, string(data))

	var decoded loc.Totals

	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, totals.Names(), decoded.Names())
	assert.Equal(t, totals.Map(), decoded.Map())
}

func TestTotals_UnmarshalRejectsBadInput(t *testing.T) {
	t.Parallel()

	var totals loc.Totals

	require.ErrorIs(t, json.Unmarshal([]byte(`[1,2]`), &totals), loc.ErrNotObject)
	require.ErrorIs(t, json.Unmarshal([]byte(`{"Go":-1}`), &totals), loc.ErrNegativeCount)
	require.Error(t, json.Unmarshal([]byte(`{"Go":"many"}`), &totals))
}

func TestTotals_NilSafe(t *testing.T) {
	t.Parallel()

	var totals *loc.Totals

	assert.Equal(t, 0, totals.Len())
	assert.True(t, totals.Empty())
	assert.Equal(t, 0, totals.Sum())
	assert.Nil(t, totals.Names())
}
