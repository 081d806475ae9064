package cache

import (
	"fortio.org/safecast"

	"perltoolbox/internal/diag"
)

// Payload is the on-disk form of one pipeline result.
type Payload struct {
	Schema      uint16
	Pipeline    string
	Diagnostics []Entry
}

// Entry is a diagnostic with fixed-width positions.
type Entry struct {
	StartLine uint32
	StartChar uint32
	EndLine   uint32
	EndChar   uint32
	Severity  uint8
	Source    string
	Code      string
	Message   string
	Detail    string
}

// NewPayload converts diagnostics for storage. It fails when a position does
// not fit the stored width.
func NewPayload(pipeline string, list []diag.Diagnostic) (*Payload, error) {
	p := &Payload{
		Pipeline:    pipeline,
		Diagnostics: make([]Entry, 0, len(list)),
	}
	for _, d := range list {
		e, err := entryFor(d)
		if err != nil {
			return nil, err
		}
		p.Diagnostics = append(p.Diagnostics, e)
	}
	return p, nil
}

func entryFor(d diag.Diagnostic) (Entry, error) {
	var (
		e   Entry
		err error
	)
	if e.StartLine, err = safecast.Conv[uint32](d.Range.Start.Line); err != nil {
		return Entry{}, err
	}
	if e.StartChar, err = safecast.Conv[uint32](d.Range.Start.Character); err != nil {
		return Entry{}, err
	}
	if e.EndLine, err = safecast.Conv[uint32](d.Range.End.Line); err != nil {
		return Entry{}, err
	}
	if e.EndChar, err = safecast.Conv[uint32](d.Range.End.Character); err != nil {
		return Entry{}, err
	}
	e.Severity = uint8(d.Severity)
	e.Source = d.Source
	e.Code = d.Code
	e.Message = d.Message
	e.Detail = d.Detail
	return e, nil
}

// List converts the payload back into diagnostics.
func (p *Payload) List() []diag.Diagnostic {
	if p == nil || len(p.Diagnostics) == 0 {
		return nil
	}
	out := make([]diag.Diagnostic, 0, len(p.Diagnostics))
	for _, e := range p.Diagnostics {
		out = append(out, diag.Diagnostic{
			Range: diag.Range{
				Start: diag.Position{Line: int(e.StartLine), Character: int(e.StartChar)},
				End:   diag.Position{Line: int(e.EndLine), Character: int(e.EndChar)},
			},
			Severity: diag.Severity(e.Severity),
			Source:   e.Source,
			Code:     e.Code,
			Message:  e.Message,
			Detail:   e.Detail,
		})
	}
	return out
}
