package config

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	s := Defaults()
	require.NoError(t, s.Validate())
	assert.Equal(t, "perlcritic", s.Lint.Exec)
	assert.Equal(t, "perl", s.Syntax.Exec)
	assert.Equal(t, "error", s.Lint.TierSeverity("brutal"))
	assert.Equal(t, "", s.Lint.TierSeverity("mellow"))
	assert.NotEmpty(t, s.TempDir())
}

func TestValidateReportsEveryProblem(t *testing.T) {
	s := Defaults()
	s.Lint.Severity = "ruthless"
	s.Lint.HighlightMode = "token"
	s.Syntax.Exec = " "

	err := s.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSeverity)
	assert.ErrorIs(t, err, ErrInvalidHighlightMode)
	assert.ErrorIs(t, err, ErrMissingExecutable)

	fixed := s.Sanitize()
	require.NoError(t, fixed.Validate())
	assert.Equal(t, "gentle", fixed.Lint.Severity)
	assert.Equal(t, HighlightLine, fixed.Lint.HighlightMode)
	assert.Equal(t, "perl", fixed.Syntax.Exec)
}

func TestValidSeverityThreshold(t *testing.T) {
	for _, v := range []string{"gentle", "brutal", "1", "5"} {
		assert.True(t, ValidSeverityThreshold(v), v)
	}
	for _, v := range []string{"", "0", "6", "Gentle", "harsher"} {
		assert.False(t, ValidSeverityThreshold(v), v)
	}
}

func TestOverlayFromEditorJSON(t *testing.T) {
	raw := `{
		"temporaryPath": null,
		"timeout": "5s",
		"lint": {"severity": "harsh", "excludedPolicies": ["Subroutines::ProhibitSubroutinePrototypes"], "gentle": "info"},
		"syntax": {"enabled": false, "includePaths": ["/opt/lib"]}
	}`
	var o Overlay
	require.NoError(t, json.Unmarshal([]byte(raw), &o))

	s := o.Apply(Defaults())
	assert.Equal(t, "", s.TemporaryPath)
	assert.Equal(t, 5*time.Second, s.Timeout)
	assert.Equal(t, "harsh", s.Lint.Severity)
	assert.Equal(t, []string{"Subroutines::ProhibitSubroutinePrototypes"}, s.Lint.ExcludedPolicies)
	assert.Equal(t, "info", s.Lint.Gentle)
	assert.Equal(t, "warning", s.Lint.Harsh, "unset tiers keep their default")
	assert.False(t, s.Syntax.Enabled)
	assert.Equal(t, []string{"/opt/lib"}, s.Syntax.IncludePaths)
}

func TestOverlayApplyDoesNotAlias(t *testing.T) {
	paths := []string{"a"}
	o := &Overlay{Syntax: &SyntaxOverlay{IncludePaths: &paths}}
	s := o.Apply(Defaults())
	paths[0] = "changed"
	assert.Equal(t, []string{"a"}, s.Syntax.IncludePaths)

	var nilOverlay *Overlay
	assert.Equal(t, Defaults(), nilOverlay.Apply(Defaults()))
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvLintExec:      "/usr/local/bin/perlcritic",
		EnvLintProfile:   "true",
		EnvSyntaxInclude: "lib, local/lib/perl5",
		EnvTimeout:       "not-a-duration",
	}
	s := ApplyEnv(Defaults(), func(k string) string { return env[k] })
	assert.Equal(t, "/usr/local/bin/perlcritic", s.Lint.Exec)
	assert.True(t, s.Lint.UseProfile)
	assert.Equal(t, []string{"lib", "local/lib/perl5"}, s.Syntax.IncludePaths)
	assert.Equal(t, DefaultTimeout, s.Timeout)
}

func TestOverlayOfRoundTrip(t *testing.T) {
	s := Defaults()
	s.Lint.ExcludedPolicies = []string{"Subroutines::ProhibitExplicitReturnUndef"}
	s.Syntax.IncludePaths = []string{"lib"}
	s.Timeout = 5 * time.Second

	got := OverlayOf(s).Apply(Settings{})
	assert.Equal(t, s, got)

	got.Lint.ExcludedPolicies[0] = "changed"
	assert.Equal(t, "Subroutines::ProhibitExplicitReturnUndef", s.Lint.ExcludedPolicies[0])
}
