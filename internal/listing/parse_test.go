package listing

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Delimited(t *testing.T) {
	spec := ListingContract().Spec

	tests := []struct {
		name string
		raw  string
		want map[string]string
	}{
		{
			name: "all labels in order",
			raw: `CAPTION: 🔥 Fresh kicks! ₹1500 only, DM now
TITLE: Nike Air Max 90 Size 9
PRICE: ₹1,500
DESC: Worn twice, 9/10 condition.
TIP: Post on Sunday evenings.`,
			want: map[string]string{
				FieldCaption:     "🔥 Fresh kicks! ₹1500 only, DM now",
				FieldTitle:       "Nike Air Max 90 Size 9",
				FieldPrice:       "₹1,500",
				FieldDescription: "Worn twice, 9/10 condition.",
				FieldTip:         "Post on Sunday evenings.",
			},
		},
		{
			name: "surrounding text is ignored",
			raw:  "Sure! Here is your listing.\n\nCAPTION: Hot\nTITLE: Watch\nPRICE: 900\nDESC: Nice\nTIP: Clean it\n\nGood luck!",
			want: map[string]string{
				FieldCaption:     "Hot",
				FieldTitle:       "Watch",
				FieldPrice:       "900",
				FieldDescription: "Nice",
				FieldTip:         "Clean it\n\nGood luck!",
			},
		},
		{
			name: "missing middle label extends previous field until its successor",
			raw:  "CAPTION: c\nTITLE: t\nDESC: d\nTIP: x",
			want: map[string]string{
				FieldCaption:     "c",
				FieldTitle:       "t\nDESC: d\nTIP: x",
				FieldDescription: "d",
				FieldTip:         "x",
			},
		},
		{
			name: "first occurrence wins",
			raw:  "TITLE: one\nPRICE: 10\nTITLE: two\nPRICE: 20",
			want: map[string]string{
				FieldTitle: "one",
				FieldPrice: "10\nTITLE: two\nPRICE: 20",
			},
		},
		{
			name: "labels are case sensitive",
			raw:  "title: shoe\nprice: 100",
			want: map[string]string{},
		},
		{
			name: "empty value is absent",
			raw:  "TITLE:   \nPRICE: 100",
			want: map[string]string{FieldPrice: "100"},
		},
		{
			name: "windows line endings become newlines",
			raw:  "CAPTION: Hot\r\nTITLE: Watch\r\nPRICE: 900\r\nDESC: Ticks fine\r\nStrap worn\rBox included\r\nTIP: Polish it\r\n",
			want: map[string]string{
				FieldCaption:     "Hot",
				FieldTitle:       "Watch",
				FieldPrice:       "900",
				FieldDescription: "Ticks fine\nStrap worn\nBox included",
				FieldTip:         "Polish it",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Parse(tt.raw, spec)
			assert.Equal(t, tt.want, rec.Fields)
		})
	}
}

func TestParse_NoLabelsYieldsEmptyRecord(t *testing.T) {
	spec := ListingContract().Spec
	inputs := []string{
		"",
		"I cannot help with that.",
		"**Title**: Shoe\n**Price**: 100",
		strings.Repeat("x", 10_000),
		"\x00\xff broken utf8",
	}
	for _, raw := range inputs {
		rec := Parse(raw, spec)
		assert.True(t, rec.IsEmpty(), "raw=%q", raw)
		assert.False(t, rec.Price.Valid)
		assert.Equal(t, 0, rec.CanonicalCount())
	}
}

func TestParse_DelimitedExtractsExactSubstrings(t *testing.T) {
	spec := NewDelimitedSpec(
		Field{Name: "a", Label: "A:"},
		Field{Name: "b", Label: "B:"},
		Field{Name: "c", Label: "C:"},
	)
	values := []string{"alpha", "  beta with spaces ", "γάμμα\nline two"}

	for i := 0; i < 20; i++ {
		raw := fmt.Sprintf("prefix %d A:%s B:%s C:%s", i, values[0], values[1], values[2])
		rec := Parse(raw, spec)
		assert.Equal(t, strings.TrimSpace(values[0]), rec.Value("a"))
		assert.Equal(t, strings.TrimSpace(values[1]), rec.Value("b"))
		assert.Equal(t, strings.TrimSpace(values[2]), rec.Value("c"))
	}
}

func TestParse_Pipe(t *testing.T) {
	spec := BatchContract().Spec

	t.Run("all segments", func(t *testing.T) {
		rec := Parse(" Shoe | ₹1,500 | Good | Sell fast | 🔥 kicks ", spec)
		assert.Equal(t, map[string]string{
			FieldTitle:       "Shoe",
			FieldPrice:       "₹1,500",
			FieldDescription: "Good",
			FieldTip:         "Sell fast",
			FieldCaption:     "🔥 kicks",
		}, rec.Fields)
		assert.Equal(t, Some(1500), rec.Price)
		assert.True(t, rec.Qualifies(MinCanonicalFields))
	})

	t.Run("extra segments are discarded", func(t *testing.T) {
		rec := Parse("a|1|c|d|e|f|g", spec)
		assert.Len(t, rec.Fields, 5)
		assert.Equal(t, "e", rec.Value(FieldCaption))
	})

	t.Run("fewer segments leave trailing fields absent", func(t *testing.T) {
		rec := Parse("Lamp | 300", spec)
		assert.Equal(t, "Lamp", rec.Value(FieldTitle))
		assert.Equal(t, Some(300), rec.Price)
		assert.False(t, rec.Has(FieldDescription))
		assert.False(t, rec.Has(FieldTip))
		assert.False(t, rec.Has(FieldCaption))
		assert.Equal(t, 2, rec.CanonicalCount())
		assert.False(t, rec.Qualifies(MinCanonicalFields))
		assert.Equal(t, []string{FieldDescription, FieldTip}, rec.Missing())
	})

	t.Run("custom separator", func(t *testing.T) {
		s := NewPipeSpec(Field{Name: FieldTitle}, Field{Name: FieldPrice})
		s.Separator = ";"
		rec := Parse("Chair; 45", s)
		assert.Equal(t, "Chair", rec.Value(FieldTitle))
		assert.Equal(t, Some(45), rec.Price)
	})
}

func TestParse_UnparseablePriceKeepsTextField(t *testing.T) {
	rec := Parse("TITLE: Bag\nPRICE: ₹1,200 - ₹1,800\nDESC: ok\nTIP: go", ListingContract().Spec)
	v, ok := rec.Get(FieldPrice)
	require.True(t, ok)
	assert.Equal(t, "₹1,200 - ₹1,800", v)
	assert.False(t, rec.Price.Valid)
	assert.True(t, rec.Qualifies(MinCanonicalFields))
}

func TestSplitSegments(t *testing.T) {
	assert.Equal(t, []string{"a", "b", ""}, SplitSegments(" a |b | ", "|"))
	assert.Equal(t, []string{"no separator"}, SplitSegments("no separator", "|"))
}
