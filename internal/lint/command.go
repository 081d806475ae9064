package lint

import (
	"perltoolbox/internal/config"
)

// OutputTemplate is the perlcritic --verbose format: severity, line, column,
// message, explanation and policy, then the end marker and a newline.
const OutputTemplate = "%s~|~%l~|~%c~|~%m~|~%e~|~%p~||~%n"

// Args builds the perlcritic arguments for checking tempPath.
func Args(cfg config.Lint, tempPath string) []string {
	args := make([]string, 0, 5+2*len(cfg.ExcludedPolicies))
	args = append(args, "--"+cfg.Severity)
	if !cfg.UseProfile {
		args = append(args, "--noprofile")
	}
	for _, policy := range cfg.ExcludedPolicies {
		if policy == "" {
			continue
		}
		args = append(args, "--exclude", policy)
	}
	args = append(args, "--verbose", OutputTemplate, tempPath)
	return args
}
