// Package prefilter builds an Aho-Corasick literal scan over the
// string constants a batch of compiled queries depend on, so that
// pkg/query.Set can skip full tree evaluation for queries that have
// no chance of matching a given event.
package prefilter

import (
	ac "github.com/petar-dambovaliev/aho-corasick"
)

// Index is a compiled prefilter over N queries' literal requirements.
type Index struct {
	automaton   *ac.AhoCorasick
	patterns    []string
	patternToQ  map[int][]int // pattern index -> query indices that use it
	alwaysCands []int         // queries with no literal requirements
	queryCount  int
}

// Build constructs an Index from one literal set per query (in query
// order). A query with an empty literal set has no literal the
// prefilter can key on and is always a candidate.
func Build(literalSets [][]string) *Index {
	idx := &Index{
		patternToQ: map[int][]int{},
		queryCount: len(literalSets),
	}
	dedupe := map[string]int{}
	for qi, lits := range literalSets {
		if len(lits) == 0 {
			idx.alwaysCands = append(idx.alwaysCands, qi)
			continue
		}
		for _, lit := range lits {
			if lit == "" {
				continue
			}
			pi, ok := dedupe[lit]
			if !ok {
				pi = len(idx.patterns)
				idx.patterns = append(idx.patterns, lit)
				dedupe[lit] = pi
			}
			idx.patternToQ[pi] = append(idx.patternToQ[pi], qi)
		}
	}
	if len(idx.patterns) > 0 {
		builder := ac.NewAhoCorasickBuilder(ac.Opts{
			AsciiCaseInsensitive: false,
			MatchKind:            ac.LeftMostLongestMatch,
		})
		built := builder.Build(idx.patterns)
		idx.automaton = &built
	}
	return idx
}

// Candidates returns the set of query indices that might match text:
// every literal-free query, plus every query whose literal scan hit.
func (idx *Index) Candidates(text string) map[int]struct{} {
	cands := make(map[int]struct{}, len(idx.alwaysCands))
	for _, qi := range idx.alwaysCands {
		cands[qi] = struct{}{}
	}
	if idx.automaton == nil {
		return cands
	}
	for _, m := range idx.automaton.FindAll(text) {
		for _, qi := range idx.patternToQ[m.Pattern()] {
			cands[qi] = struct{}{}
		}
	}
	return cands
}

// QueryCount reports how many queries this index was built over.
func (idx *Index) QueryCount() int { return idx.queryCount }
