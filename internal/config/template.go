package config

// Template is the perltoolbox.toml written by "perltoolbox init".
const Template = `# perltoolbox configuration.
# Relative paths are resolved against this file's directory.

# Directory for temporary copies of checked buffers (default: system temp dir).
# temporaryPath = ".tmp"

# Kill a checker that runs longer than this.
timeout = "30s"

[lint]
enabled = true
exec = "perlcritic"
# Working directory for perlcritic.
# path = "."
# Threshold: gentle|stern|harsh|cruel|brutal or 1-5.
severity = "gentle"
# Honour ~/.perlcriticrc and .perlcriticrc.
useProfile = false
excludedPolicies = []
# "word" highlights the offending token, "line" the rest of the line.
highlightMode = "line"

# Editor severity per perlcritic tier: hint|info|warning|error.
gentle = "hint"
stern = "info"
harsh = "warning"
cruel = "warning"
brutal = "error"

[syntax]
enabled = true
exec = "perl"
# path = "."
includePaths = ["lib"]
`
