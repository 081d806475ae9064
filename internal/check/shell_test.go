package check

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"perltoolbox/internal/lint"
)

func TestShellCommandPosix(t *testing.T) {
	got := shellCommand("linux", "carton exec perlcritic", []string{"--gentle", "--verbose", lint.OutputTemplate, "/tmp/My File.pl.lint"})
	assert.Equal(t,
		`carton exec perlcritic --gentle --verbose '%s~|~%l~|~%c~|~%m~|~%e~|~%p~||~%n' '/tmp/My File.pl.lint'`,
		got)
}

func TestShellCommandPosixQuotes(t *testing.T) {
	cases := map[string]string{
		"":             "''",
		"plain":        "plain",
		"-I":           "-I",
		"/opt/lib":     "/opt/lib",
		"it's":         `'it'\''s'`,
		"$HOME":        `'$HOME'`,
		"a;rm -rf /":   `'a;rm -rf /'`,
		"Policy::Name": "Policy::Name",
	}
	for in, want := range cases {
		assert.Equal(t, want, posixQuote(in), "input %q", in)
	}
}

func TestShellCommandWindows(t *testing.T) {
	got := shellCommand("windows", "perl", []string{"-I", `C:\My Libs`, "-c", `C:\tmp\a.pl.syntax`})
	assert.Equal(t, `perl -I "C:\My Libs" -c C:\tmp\a.pl.syntax`, got)

	assert.Equal(t, `"%s~|~%l~|~%c~|~%m~|~%e~|~%p~||~%n"`, windowsQuote(lint.OutputTemplate))
	assert.Equal(t, `"say ""hi"""`, windowsQuote(`say "hi"`))
	assert.Equal(t, `""`, windowsQuote(""))
}
