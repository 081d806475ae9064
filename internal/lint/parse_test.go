package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perltoolbox/internal/config"
	"perltoolbox/internal/diag"
	"perltoolbox/internal/source"
)

func TestParseOutputSingleViolation(t *testing.T) {
	out := "3~|~10~|~5~|~Missing semicolon~|~explanation~|~SomePolicy~||~\n"
	got := ParseOutput(out, nil, config.Defaults().Lint)

	require.Len(t, got, 1)
	d := got[0]
	assert.Equal(t, diag.LineRange(9, 4), d.Range)
	assert.Equal(t, diag.SevWarning, d.Severity)
	assert.Equal(t, "Lint: HARSH: Missing semicolon", d.Message)
	assert.Equal(t, "SomePolicy", d.Code)
	assert.Equal(t, Source, d.Source)
}

func TestParseOutputSkipsMalformedLines(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"newline only", "\n"},
		{"source ok", "source OK\n"},
		{"five fields", "3~|~10~|~5~|~msg~|~Policy~||~\n"},
		{"seven fields", "3~|~10~|~5~|~msg~|~expl~|~Policy~|~extra~||~\n"},
		{"line not a number", "3~|~ten~|~5~|~msg~|~expl~|~Policy~||~\n"},
		{"column not a number", "3~|~10~|~x~|~msg~|~expl~|~Policy~||~\n"},
		{"line zero", "3~|~0~|~5~|~msg~|~expl~|~Policy~||~\n"},
		{"negative column", "3~|~1~|~-2~|~msg~|~expl~|~Policy~||~\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Empty(t, ParseOutput(tc.in, nil, config.Defaults().Lint))
		})
	}
}

func TestParseOutputInterleaved(t *testing.T) {
	out := "perlcritic warning: profile not found\n" +
		"5~|~1~|~1~|~Code before strictures~|~See page 429~|~TestingAndDebugging::RequireUseStrict~||~\n" +
		"garbage\n" +
		"2~|~3~|~7~|~Return value ignored~|~See page 208~|~InputOutput::RequireCheckedOpen~||~\r\n" +
		"1~|~4~|~1~|~~|~~|~Bad~||~\n" +
		"\n"
	got := ParseOutput(out, nil, config.Defaults().Lint)

	require.Len(t, got, 3)
	assert.Equal(t, "Lint: GENTLE: Code before strictures", got[0].Message)
	assert.Equal(t, diag.SevHint, got[0].Severity)
	assert.Equal(t, "Lint: CRUEL: Return value ignored", got[1].Message)
	assert.Equal(t, "InputOutput::RequireCheckedOpen", got[1].Code)
	assert.Equal(t, 2, got[1].Range.Start.Line)
	assert.Equal(t, "Lint: BRUTAL: ", got[2].Message)
	assert.Equal(t, diag.SevError, got[2].Severity)
}

func TestParseOutputUnmappedTierIsError(t *testing.T) {
	cfg := config.Defaults().Lint
	cfg.Gentle = ""
	cfg.Stern = "loud"

	got := ParseOutput("5~|~1~|~1~|~a~|~e~|~P~||~\n4~|~2~|~1~|~b~|~e~|~P~||~\n", nil, cfg)
	require.Len(t, got, 2)
	assert.Equal(t, diag.SevError, got[0].Severity)
	assert.Equal(t, diag.SevError, got[1].Severity)
}

func TestParseOutputWordMode(t *testing.T) {
	doc := source.NewDocument("file:///tmp/a.pl", source.LanguagePerl, "use strict;\nmy $x = foo(  1 );\n", 1)
	cfg := config.Defaults().Lint
	cfg.HighlightMode = config.HighlightWord

	got := ParseOutput("4~|~2~|~4~|~msg~|~e~|~P~||~\n", doc, cfg)
	require.Len(t, got, 1)
	assert.Equal(t, diag.Range{
		Start: diag.Position{Line: 1, Character: 3},
		End:   diag.Position{Line: 1, Character: 5},
	}, got[0].Range)

	// Column past the end of the line falls back to a point.
	got = ParseOutput("4~|~1~|~40~|~msg~|~e~|~P~||~\n", doc, cfg)
	require.Len(t, got, 1)
	assert.Equal(t, diag.PointRange(0, 39), got[0].Range)

	// No document text at all.
	got = ParseOutput("4~|~1~|~1~|~msg~|~e~|~P~||~\n", nil, cfg)
	require.Len(t, got, 1)
	assert.Equal(t, diag.PointRange(0, 0), got[0].Range)
}

func TestParseViolationKeepsExplanation(t *testing.T) {
	v, ok := ParseViolation("4~|~12~|~3~|~Loop iterator is not lexical~|~See page 108 of PBP~|~Variables::RequireLexicalLoopIterators~||~")
	require.True(t, ok)
	assert.Equal(t, Violation{
		Tier:        TierStern,
		Line:        12,
		Column:      3,
		Message:     "Loop iterator is not lexical",
		Explanation: "See page 108 of PBP",
		Policy:      "Variables::RequireLexicalLoopIterators",
	}, v)
}

func TestTierFromCode(t *testing.T) {
	cases := map[string]Tier{
		"5":   TierGentle,
		"4":   TierStern,
		"3":   TierHarsh,
		"2":   TierCruel,
		"1":   TierBrutal,
		"0":   TierBrutal,
		"9":   TierBrutal,
		"abc": TierBrutal,
		"":    TierBrutal,
		" 5 ": TierGentle,
	}
	for code, want := range cases {
		assert.Equal(t, want, TierFromCode(code), "code %q", code)
	}
}
