package diagfmt

import (
	"encoding/json"
	"io"
	"sort"

	"fortio.org/safecast"

	"perltoolbox/internal/diag"
	"perltoolbox/internal/source"
)

const (
	sarifVersion = "2.1.0"
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
)

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations,omitempty"`
	Results     []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version,omitempty"`
	Rules   []sarifRule `json:"rules,omitempty"`
}

type sarifRule struct {
	ID   string       `json:"id"`
	Help *sarifText   `json:"help,omitempty"`
	Meta *sarifSource `json:"properties,omitempty"`
}

type sarifSource struct {
	Source string `json:"source"`
}

type sarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type sarifText struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId,omitempty"`
	Level     string          `json:"level"`
	Message   sarifText       `json:"message"`
	Locations []sarifLocation `json:"locations"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysical `json:"physicalLocation"`
}

type sarifPhysical struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
	Region           sarifRegion   `json:"region"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   uint32 `json:"startLine"`
	StartColumn uint32 `json:"startColumn"`
	EndLine     uint32 `json:"endLine,omitempty"`
	EndColumn   uint32 `json:"endColumn,omitempty"`
}

func sarifLevel(s diag.Severity) string {
	switch s {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	default:
		return "note"
	}
}

// Sarif writes a SARIF v2.1.0 log with a single run.
func Sarif(w io.Writer, reports []Report, meta SarifRunMeta) error {
	run := sarifRun{
		Tool: sarifTool{Driver: sarifDriver{
			Name:    meta.ToolName,
			Version: meta.ToolVersion,
		}},
		Invocations: []sarifInvocation{{
			Arguments:           meta.InvocationArgs,
			ExecutionSuccessful: true,
		}},
		Results: []sarifResult{},
	}
	rules := make(map[string]sarifRule)

	for _, r := range reports {
		uri := source.PathToURI(r.Path)
		for _, d := range r.Diagnostics {
			region, err := sarifRegionFor(d.Range)
			if err != nil {
				return err
			}
			run.Results = append(run.Results, sarifResult{
				RuleID:  d.Code,
				Level:   sarifLevel(d.Severity),
				Message: sarifText{Text: d.Message},
				Locations: []sarifLocation{{
					PhysicalLocation: sarifPhysical{
						ArtifactLocation: sarifArtifact{URI: uri},
						Region:           region,
					},
				}},
			})
			if d.Code == "" {
				continue
			}
			if _, ok := rules[d.Code]; !ok {
				rule := sarifRule{ID: d.Code, Meta: &sarifSource{Source: d.Source}}
				if d.Detail != "" {
					rule.Help = &sarifText{Text: d.Detail}
				}
				rules[d.Code] = rule
			}
		}
	}

	ids := make([]string, 0, len(rules))
	for id := range rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, rules[id])
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(sarifLog{
		Version: sarifVersion,
		Schema:  sarifSchema,
		Runs:    []sarifRun{run},
	})
}

func sarifRegionFor(r diag.Range) (sarifRegion, error) {
	var (
		reg sarifRegion
		err error
	)
	if reg.StartLine, err = oneBased(r.Start.Line); err != nil {
		return reg, err
	}
	if reg.StartColumn, err = oneBased(r.Start.Character); err != nil {
		return reg, err
	}
	if r.ToEndOfLine() {
		return reg, nil
	}
	if reg.EndLine, err = oneBased(r.End.Line); err != nil {
		return reg, err
	}
	// SARIF end columns are exclusive, like ours, so only the base shifts.
	if reg.EndColumn, err = safecast.Conv[uint32](r.End.Character + 1); err != nil {
		return reg, err
	}
	return reg, nil
}
