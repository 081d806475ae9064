package diag

import "sort"

// Bag collects diagnostics up to a limit. A zero limit means unbounded.
// Once full, a more severe diagnostic evicts the least severe one, so a
// flood of hints never crowds out errors.
type Bag struct {
	items []Diagnostic
	max   int
}

func NewBag(max int) *Bag {
	if max < 0 {
		max = 0
	}
	return &Bag{max: max}
}

// Add appends d, evicting a less severe diagnostic when the bag is full.
// It returns false when d itself was dropped.
func (b *Bag) Add(d Diagnostic) bool {
	if b.max == 0 || len(b.items) < b.max {
		b.items = append(b.items, d)
		return true
	}
	// Among equally severe candidates the most recent one goes.
	worst := len(b.items) - 1
	for i := worst - 1; i >= 0; i-- {
		if b.items[worst].Severity.MoreSevere(b.items[i].Severity) {
			worst = i
		}
	}
	if !d.Severity.MoreSevere(b.items[worst].Severity) {
		return false
	}
	b.items = append(b.items[:worst], b.items[worst+1:]...)
	b.items = append(b.items, d)
	return true
}

// AddAll adds every diagnostic in list.
func (b *Bag) AddAll(list []Diagnostic) {
	for _, d := range list {
		b.Add(d)
	}
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns the backing slice. Callers must not modify it.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Sort orders diagnostics by start, end, severity (most severe first) and code
// so output is deterministic.
func (b *Bag) Sort() {
	Sort(b.items)
}

// Sort sorts list in place using the Bag ordering.
func Sort(list []Diagnostic) {
	sort.SliceStable(list, func(i, j int) bool {
		di, dj := list[i], list[j]
		if di.Range.Start.Line != dj.Range.Start.Line {
			return di.Range.Start.Line < dj.Range.Start.Line
		}
		if di.Range.Start.Character != dj.Range.Start.Character {
			return di.Range.Start.Character < dj.Range.Start.Character
		}
		if di.Severity != dj.Severity {
			return di.Severity.MoreSevere(dj.Severity)
		}
		return di.Code < dj.Code
	})
}
