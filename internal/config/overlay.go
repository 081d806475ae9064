package config

import (
	"fmt"
	"strings"
	"time"
)

// Overlay is a partial configuration. Nil fields leave the underlying value
// untouched. The same shape is read from perltoolbox.toml and from the
// "perl-toolbox" section of editor settings.
type Overlay struct {
	TemporaryPath *string        `toml:"temporaryPath" json:"temporaryPath,omitempty"`
	Timeout       *Duration      `toml:"timeout" json:"timeout,omitempty"`
	Lint          *LintOverlay   `toml:"lint" json:"lint,omitempty"`
	Syntax        *SyntaxOverlay `toml:"syntax" json:"syntax,omitempty"`
}

type LintOverlay struct {
	Enabled          *bool     `toml:"enabled" json:"enabled,omitempty"`
	Exec             *string   `toml:"exec" json:"exec,omitempty"`
	Path             *string   `toml:"path" json:"path,omitempty"`
	Severity         *string   `toml:"severity" json:"severity,omitempty"`
	UseProfile       *bool     `toml:"useProfile" json:"useProfile,omitempty"`
	ExcludedPolicies *[]string `toml:"excludedPolicies" json:"excludedPolicies,omitempty"`
	HighlightMode    *string   `toml:"highlightMode" json:"highlightMode,omitempty"`
	Gentle           *string   `toml:"gentle" json:"gentle,omitempty"`
	Stern            *string   `toml:"stern" json:"stern,omitempty"`
	Harsh            *string   `toml:"harsh" json:"harsh,omitempty"`
	Cruel            *string   `toml:"cruel" json:"cruel,omitempty"`
	Brutal           *string   `toml:"brutal" json:"brutal,omitempty"`
}

type SyntaxOverlay struct {
	Enabled      *bool     `toml:"enabled" json:"enabled,omitempty"`
	Exec         *string   `toml:"exec" json:"exec,omitempty"`
	Path         *string   `toml:"path" json:"path,omitempty"`
	IncludePaths *[]string `toml:"includePaths" json:"includePaths,omitempty"`
}

// Duration decodes "30s" style strings from TOML and JSON.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTimeout, err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Apply writes every non-nil field of o onto s and returns the result.
func (o *Overlay) Apply(s Settings) Settings {
	if o == nil {
		return s
	}
	out := s.Clone()
	setString(&out.TemporaryPath, o.TemporaryPath)
	if o.Timeout != nil {
		out.Timeout = o.Timeout.Duration
	}
	if l := o.Lint; l != nil {
		setBool(&out.Lint.Enabled, l.Enabled)
		setString(&out.Lint.Exec, l.Exec)
		setString(&out.Lint.Path, l.Path)
		setString(&out.Lint.Severity, l.Severity)
		setBool(&out.Lint.UseProfile, l.UseProfile)
		setList(&out.Lint.ExcludedPolicies, l.ExcludedPolicies)
		setString(&out.Lint.HighlightMode, l.HighlightMode)
		setString(&out.Lint.Gentle, l.Gentle)
		setString(&out.Lint.Stern, l.Stern)
		setString(&out.Lint.Harsh, l.Harsh)
		setString(&out.Lint.Cruel, l.Cruel)
		setString(&out.Lint.Brutal, l.Brutal)
	}
	if sx := o.Syntax; sx != nil {
		setBool(&out.Syntax.Enabled, sx.Enabled)
		setString(&out.Syntax.Exec, sx.Exec)
		setString(&out.Syntax.Path, sx.Path)
		setList(&out.Syntax.IncludePaths, sx.IncludePaths)
	}
	return out
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setList(dst *[]string, v *[]string) {
	if v != nil {
		*dst = append([]string(nil), (*v)...)
	}
}

// OverlayOf returns an overlay that sets every field of s. Encoding it
// yields a complete perltoolbox.toml.
func OverlayOf(s Settings) *Overlay {
	s = s.Clone()
	if s.Lint.ExcludedPolicies == nil {
		s.Lint.ExcludedPolicies = []string{}
	}
	if s.Syntax.IncludePaths == nil {
		s.Syntax.IncludePaths = []string{}
	}
	return &Overlay{
		TemporaryPath: &s.TemporaryPath,
		Timeout:       &Duration{Duration: s.Timeout},
		Lint: &LintOverlay{
			Enabled:          &s.Lint.Enabled,
			Exec:             &s.Lint.Exec,
			Path:             &s.Lint.Path,
			Severity:         &s.Lint.Severity,
			UseProfile:       &s.Lint.UseProfile,
			ExcludedPolicies: &s.Lint.ExcludedPolicies,
			HighlightMode:    &s.Lint.HighlightMode,
			Gentle:           &s.Lint.Gentle,
			Stern:            &s.Lint.Stern,
			Harsh:            &s.Lint.Harsh,
			Cruel:            &s.Lint.Cruel,
			Brutal:           &s.Lint.Brutal,
		},
		Syntax: &SyntaxOverlay{
			Enabled:      &s.Syntax.Enabled,
			Exec:         &s.Syntax.Exec,
			Path:         &s.Syntax.Path,
			IncludePaths: &s.Syntax.IncludePaths,
		},
	}
}
