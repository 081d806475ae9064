package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBagLimitAndSort(t *testing.T) {
	bag := NewBag(2)
	require.True(t, bag.Add(Diagnostic{Range: LineRange(4, 0), Severity: SevHint, Message: "b"}))
	require.True(t, bag.Add(Diagnostic{Range: LineRange(1, 3), Severity: SevWarning, Message: "a"}))
	assert.False(t, bag.Add(Diagnostic{Range: LineRange(0, 0), Message: "dropped"}))

	bag.Sort()
	items := bag.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].Message)
	assert.Equal(t, "b", items[1].Message)
}

func TestBagSortSeverityWithinPosition(t *testing.T) {
	bag := NewBag(0)
	bag.Add(Diagnostic{Range: PointRange(2, 2), Severity: SevHint, Message: "hint"})
	bag.Add(Diagnostic{Range: PointRange(2, 2), Severity: SevError, Message: "error"})
	bag.Sort()
	assert.Equal(t, "error", bag.Items()[0].Message)
}

func TestBagKeepsMostSevereWhenFull(t *testing.T) {
	bag := NewBag(3)
	for i := range 5 {
		bag.Add(Diagnostic{Range: LineRange(i, 0), Severity: SevHint, Message: "hint"})
	}
	require.Equal(t, 3, bag.Len())

	assert.True(t, bag.Add(Diagnostic{Range: LineRange(9, 0), Severity: SevError, Message: "syntax"}))
	assert.True(t, bag.Add(Diagnostic{Range: LineRange(8, 0), Severity: SevWarning, Message: "warn"}))
	assert.False(t, bag.Add(Diagnostic{Range: LineRange(7, 0), Severity: SevHint, Message: "late hint"}))

	bag.Sort()
	var got []string
	for _, d := range bag.Items() {
		got = append(got, d.Message)
	}
	assert.Equal(t, []string{"hint", "warn", "syntax"}, got)
	assert.Equal(t, 0, bag.Items()[0].Range.Start.Line, "earlier diagnostics of equal severity are kept")
}

func TestRangeString(t *testing.T) {
	assert.Equal(t, "10:5-eol", LineRange(9, 4).String())
	assert.Equal(t, "1:1-1:1", PointRange(0, 0).String())
}
