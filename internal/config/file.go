package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the project configuration file looked up next to documents.
const FileName = "perltoolbox.toml"

// FindFile walks up from startDir looking for perltoolbox.toml.
func FindFile(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadFile decodes a perltoolbox.toml. Relative directories in the file are
// resolved against the file's directory.
func LoadFile(path string) (*Overlay, error) {
	var o Overlay
	meta, err := toml.DecodeFile(path, &o)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return nil, fmt.Errorf("%s: %w: %s", path, ErrUnknownKey, strings.Join(keys, ", "))
	}
	base := filepath.Dir(path)
	resolveDir(base, o.TemporaryPath)
	if o.Lint != nil {
		resolveDir(base, o.Lint.Path)
	}
	if o.Syntax != nil {
		resolveDir(base, o.Syntax.Path)
		if o.Syntax.IncludePaths != nil {
			paths := make([]string, len(*o.Syntax.IncludePaths))
			for i, p := range *o.Syntax.IncludePaths {
				paths[i] = p
				resolveDir(base, &paths[i])
			}
			o.Syntax.IncludePaths = &paths
		}
	}
	return &o, nil
}

func resolveDir(base string, p *string) {
	if p == nil || *p == "" || filepath.IsAbs(*p) {
		return
	}
	*p = filepath.Join(base, filepath.FromSlash(*p))
}

// Load resolves settings for a document in dir without editor overrides:
// defaults, the nearest perltoolbox.toml, then the environment.
func Load(dir string) (Settings, string, error) {
	settings := Defaults()
	path, ok, err := FindFile(dir)
	if err != nil {
		return settings, "", err
	}
	if ok {
		overlay, err := LoadFile(path)
		if err != nil {
			return settings, path, err
		}
		settings = overlay.Apply(settings)
	}
	settings = ApplyEnv(settings, os.Getenv)
	return settings, path, nil
}
