package query

import (
	"strings"

	"github.com/vastlabs/telemetry-query/internal/prefilter"
	"github.com/vastlabs/telemetry-query/pkg/event"
)

// Set batches N compiled expressions behind a shared Aho-Corasick
// literal prefilter: the prefilter is built once over every member's
// literal requirements, then used per event to skip full tree
// evaluation for expressions that cannot possibly match.
type Set struct {
	members []*Expression
	index   *prefilter.Index
}

// NewSet builds a Set from already-compiled expressions.
func NewSet(members []*Expression) *Set {
	literalSets := make([][]string, len(members))
	for i, m := range members {
		literalSets[i] = m.Literals()
	}
	return &Set{members: members, index: prefilter.Build(literalSets)}
}

// CompileSet parses and lowers every text in texts with the same
// LowerConfig, aborting on the first error.
func CompileSet(texts []string, cfg LowerConfig) (*Set, error) {
	members := make([]*Expression, 0, len(texts))
	for _, text := range texts {
		x, err := Compile(text, cfg)
		if err != nil {
			return nil, err
		}
		members = append(members, x)
	}
	return NewSet(members), nil
}

// Len reports how many expressions this set holds.
func (s *Set) Len() int { return len(s.members) }

// Evaluate returns the indices, in member order, of every expression
// that matches e. The literal prefilter narrows the candidate set
// before any tree is evaluated; a member is never skipped if its
// literal set is empty — it carries no literal the scan can key on,
// so it is always a candidate.
func (s *Set) Evaluate(e *event.Event) []int {
	text := searchText(e)
	cands := s.index.Candidates(text)
	matches := make([]int, 0, len(cands))
	for i := range s.members {
		if _, ok := cands[i]; !ok {
			continue
		}
		if s.members[i].Eval(e) {
			matches = append(matches, i)
		}
	}
	return matches
}

// searchText renders every string-tagged leaf of an event's flattened
// record, plus its name, into one scan target for the prefilter.
func searchText(e *event.Event) string {
	var b strings.Builder
	if s, ok := e.Name().StringValue(); ok {
		b.WriteString(s)
		b.WriteByte(' ')
	}
	for i := 0; i < e.FlatSize(); i++ {
		if s, ok := e.FlatAt(i).StringValue(); ok {
			b.WriteString(s)
			b.WriteByte(' ')
		}
	}
	return b.String()
}
