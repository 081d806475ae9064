package lint

import (
	"strconv"
	"strings"

	"perltoolbox/internal/config"
	"perltoolbox/internal/diag"
)

// Tier is a perlcritic severity name.
type Tier string

const (
	TierGentle Tier = "gentle"
	TierStern  Tier = "stern"
	TierHarsh  Tier = "harsh"
	TierCruel  Tier = "cruel"
	TierBrutal Tier = "brutal"
)

// TierFromCode maps perlcritic's numeric severity to a tier.
// 1 and anything unexpected are brutal.
func TierFromCode(code string) Tier {
	n, err := strconv.Atoi(strings.TrimSpace(code))
	if err != nil {
		return TierBrutal
	}
	switch n {
	case 5:
		return TierGentle
	case 4:
		return TierStern
	case 3:
		return TierHarsh
	case 2:
		return TierCruel
	default:
		return TierBrutal
	}
}

// Label is the upper-case form used in messages.
func (t Tier) Label() string {
	return strings.ToUpper(string(t))
}

// Severity resolves the editor severity configured for the tier.
func (t Tier) Severity(cfg config.Lint) diag.Severity {
	return diag.ParseSeverity(cfg.TierSeverity(string(t)))
}
