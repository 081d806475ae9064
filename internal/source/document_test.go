package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentCheckable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.pl")
	uri := PathToURI(path)

	assert.True(t, NewDocument(uri, "perl", "", 1).Checkable())
	assert.False(t, NewDocument(uri, "python", "", 1).Checkable())
	assert.False(t, NewDocument("git:/repo/script.pl?ref=HEAD", "perl", "", 1).Checkable())

	var nilDoc *Document
	assert.False(t, nilDoc.Checkable())
}

func TestURIRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dir with space", "Mod.pm")
	uri := PathToURI(path)
	assert.Equal(t, "file", Scheme(uri))
	assert.Equal(t, path, URIToPath(uri))
	assert.Equal(t, "", URIToPath("untitled:Untitled-1"))
	assert.Equal(t, "untitled", Scheme("untitled:Untitled-1"))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.pm")
	require.NoError(t, os.WriteFile(path, []byte("package Lib;\n1;\n"), 0o644))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, LanguagePerl, doc.LanguageID)
	assert.Equal(t, "lib.pm", doc.Basename())
	assert.Equal(t, "package Lib;\n1;\n", doc.Text)
	assert.True(t, doc.Checkable())
}

func TestLanguageFromPath(t *testing.T) {
	assert.Equal(t, LanguagePerl, LanguageFromPath("t/basic.t"))
	assert.Equal(t, LanguagePerl, LanguageFromPath("App.PM"))
	assert.Equal(t, "", LanguageFromPath("README.md"))
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path, text, want string
	}{
		{"lib/A.pm", "package A;\n", LanguagePerl},
		{"bin/tool", "#!/usr/bin/env perl\nuse strict;\n", LanguagePerl},
		{"bin/tool", "#!/usr/bin/perl -w\n", LanguagePerl},
		{"bin/tool", "#!/opt/perl/bin/perl5.36.0\n", LanguagePerl},
		{"bin/tool", "#!/bin/sh\nexec perl x.pl\n", ""},
		{"bin/tool", "use strict;\n", ""},
		{"notes.txt", "#!/usr/bin/perl\n", LanguagePerl},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectLanguage(tt.path, tt.text), "%s %q", tt.path, tt.text)
	}
}

func TestLoadDetectsShebang(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tool")
	require.NoError(t, os.WriteFile(path, []byte("#!/usr/bin/env perl\n1;\n"), 0o600))
	doc, err := Load(path)
	require.NoError(t, err)
	assert.True(t, doc.Checkable())
}
