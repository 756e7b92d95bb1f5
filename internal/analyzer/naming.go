package analyzer

import (
	"sort"

	"github.com/funvibe/tlcheck/internal/diagnostics"
	"github.com/funvibe/tlcheck/internal/symbols"
	"github.com/funvibe/tlcheck/internal/token"
)

// undefinedName reports a reference to a name no scope declares, with a
// spelling hint when a visible name is close.
func (w *walker) undefinedName(name string, span token.Span) {
	if similar := findSimilarNames(name, w.symbolTable, 2); len(similar) > 0 {
		w.addError(diagnostics.ErrUndefinedSymbol, span, "undefined variable", name, "(did you mean: "+similar[0]+"?)")
		return
	}
	w.addError(diagnostics.ErrUndefinedSymbol, span, "undefined variable", name)
}

// findSimilarNames returns the visible names at most maxDist edits away from
// name, closest first. Ties keep scope order, innermost first.
func findSimilarNames(name string, table *symbols.SymbolTable, maxDist int) []string {
	type candidate struct {
		name string
		dist int
	}
	var found []candidate
	for _, n := range table.GetAllNames() {
		if n == name {
			continue
		}
		if d := editDistance(name, n); d <= maxDist && d < len(name) {
			found = append(found, candidate{n, d})
		}
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].dist < found[j].dist })
	out := make([]string, len(found))
	for i, c := range found {
		out[i] = c.name
	}
	return out
}

func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
