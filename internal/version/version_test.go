package version

import (
	"strings"
	"testing"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
	// GitCommit and BuildDate can be empty (optional)
	_ = GitCommit
	_ = BuildDate
}

func TestColoredPlain(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "1.2.3-rc.1"
	if got := Colored(false); got != "1.2.3-rc.1" {
		t.Errorf("Colored(false) = %q", got)
	}
}

func TestColoredHighlightsParts(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "1.2.3-dev"
	got := Colored(true)
	if got == Version {
		t.Fatalf("expected escape sequences, got %q", got)
	}
	for _, part := range []string{"1", "2", "3", "-dev", "\x1b["} {
		if !strings.Contains(got, part) {
			t.Errorf("Colored(true) = %q, missing %q", got, part)
		}
	}
}

func TestColoredNonSemver(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "nightly"
	if got := Colored(true); got != "nightly" {
		t.Errorf("Colored(true) = %q, want %q", got, "nightly")
	}
}
