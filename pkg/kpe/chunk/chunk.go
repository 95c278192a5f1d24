// Package chunk defines the shallow-parsing contract used by the noun-phrase
// generator and ships a cascaded tag-pattern chunker that satisfies it.
//
// Grammars are written as a sequence of stages:
//
//	NBAR:
//	    {<NN.*|JJ.*>*<NN.*>}
//	NP:
//	    {<NBAR>}
//	    {<NBAR><IN><NBAR>}
//
// Each stage labels the spans matched by its chunk rules. Inside <...> a
// pattern is a regular expression over a single tag where "." never crosses
// the tag boundary; outside, the usual quantifiers and grouping apply to
// whole tags. Constituents built by one stage are matched by later stages
// using their label as the tag.
package chunk

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Parser turns a tag sequence into a labeled tree. The grammar is bound
// when the parser is built so alternative engines can be swapped in.
type Parser interface {
	Parse(tokens []Token) (*Tree, error)
}

// RootLabel labels the tree returned by RegexpParser.
const RootLabel = "S"

// DefaultGrammar chunks base nominal groups (NBAR) and noun phrases (NP): an
// NBAR alone, or two NBARs joined by a preposition.
const DefaultGrammar = `
NBAR:
    {<NN.*|JJ.*>*<NN.*>}

NP:
    {<NBAR>}
    {<NBAR><IN><NBAR>}
`

// ErrGrammar reports a grammar that could not be compiled.
var ErrGrammar = errors.New("invalid chunk grammar")

var labelLine = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_\-]*)\s*:(.*)$`)

type rule struct {
	pattern string
	re      *regexp.Regexp
}

type stage struct {
	label string
	rules []rule
}

// RegexpParser is a cascade of chunking stages compiled from a grammar.
type RegexpParser struct {
	stages []stage
}

// Compile parses a grammar into a RegexpParser.
func Compile(grammar string) (*RegexpParser, error) {
	p := &RegexpParser{}
	for n, raw := range strings.Split(grammar, "\n") {
		line := raw
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := labelLine.FindStringSubmatch(line); m != nil {
			p.stages = append(p.stages, stage{label: m[1]})
			line = strings.TrimSpace(m[2])
			if line == "" {
				continue
			}
		}
		if len(p.stages) == 0 {
			return nil, fmt.Errorf("%w: line %d: rule before any label", ErrGrammar, n+1)
		}

		rules, err := parseRules(line)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrGrammar, n+1, err)
		}
		last := &p.stages[len(p.stages)-1]
		last.rules = append(last.rules, rules...)
	}

	if len(p.stages) == 0 {
		return nil, fmt.Errorf("%w: no stages", ErrGrammar)
	}
	for _, s := range p.stages {
		if len(s.rules) == 0 {
			return nil, fmt.Errorf("%w: stage %s has no rules", ErrGrammar, s.label)
		}
	}
	return p, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(grammar string) *RegexpParser {
	p, err := Compile(grammar)
	if err != nil {
		panic(err)
	}
	return p
}

// Labels returns the stage labels in application order.
func (p *RegexpParser) Labels() []string {
	out := make([]string, len(p.stages))
	for i, s := range p.stages {
		out[i] = s.label
	}
	return out
}

// Parse applies every stage in order and returns a tree rooted at RootLabel.
func (p *RegexpParser) Parse(tokens []Token) (*Tree, error) {
	items := make([]*Tree, len(tokens))
	for i := range tokens {
		tok := tokens[i]
		items[i] = &Tree{Leaf: &tok}
	}
	for _, s := range p.stages {
		items = s.apply(items)
	}
	return &Tree{Label: RootLabel, Children: items}, nil
}

// apply runs the stage's rules in order. A rule only sees maximal runs of
// items that no earlier rule of this stage has chunked.
func (s stage) apply(items []*Tree) []*Tree {
	groups := make([]int, len(items))
	next := 1
	for _, r := range s.rules {
		for i := 0; i < len(items); {
			if groups[i] != 0 {
				i++
				continue
			}
			j := i
			for j < len(items) && groups[j] == 0 {
				j++
			}
			next = r.mark(items[i:j], groups[i:j], next)
			i = j
		}
	}

	out := make([]*Tree, 0, len(items))
	for i := 0; i < len(items); {
		if groups[i] == 0 {
			out = append(out, items[i])
			i++
			continue
		}
		j := i
		for j < len(items) && groups[j] == groups[i] {
			j++
		}
		children := make([]*Tree, j-i)
		copy(children, items[i:j])
		out = append(out, &Tree{Label: s.label, Children: children})
		i = j
	}
	return out
}

// mark assigns a fresh group id to every non-empty match of the rule over
// the run and returns the next unused id.
func (r rule) mark(run []*Tree, groups []int, next int) int {
	var b strings.Builder
	starts := make(map[int]int, len(run))
	ends := make(map[int]int, len(run))
	for i, it := range run {
		starts[b.Len()] = i
		b.WriteByte('<')
		b.WriteString(it.tag())
		b.WriteByte('>')
		ends[b.Len()] = i
	}

	for _, m := range r.re.FindAllStringIndex(b.String(), -1) {
		if m[0] == m[1] {
			continue
		}
		first, ok1 := starts[m[0]]
		last, ok2 := ends[m[1]]
		if !ok1 || !ok2 {
			continue
		}
		for k := first; k <= last; k++ {
			groups[k] = next
		}
		next++
	}
	return next
}

// parseRules reads one or more {...} chunk rules from a line.
func parseRules(line string) ([]rule, error) {
	var rules []rule
	for line != "" {
		if line[0] != '{' {
			return nil, fmt.Errorf("unsupported rule %q (only {...} chunk rules)", line)
		}
		end := strings.IndexByte(line, '}')
		if end < 0 {
			return nil, fmt.Errorf("unterminated rule %q", line)
		}
		pattern := line[1:end]
		expr, err := tagPatternToRegexp(pattern)
		if err != nil {
			return nil, err
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %v", pattern, err)
		}
		rules = append(rules, rule{pattern: pattern, re: re})
		line = strings.TrimSpace(line[end+1:])
	}
	return rules, nil
}

// tagPatternToRegexp converts a tag pattern such as "<NN.*|JJ>*<NN.*>" into
// a regular expression over a "<tag><tag>..." string.
func tagPatternToRegexp(pattern string) (string, error) {
	pattern = strings.Join(strings.Fields(pattern), "")
	if pattern == "" {
		return "", errors.New("empty tag pattern")
	}

	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch c {
		case '<':
			end := strings.IndexByte(pattern[i:], '>')
			if end < 0 {
				return "", fmt.Errorf("unbalanced '<' in %q", pattern)
			}
			inner := pattern[i+1 : i+end]
			if inner == "" || strings.ContainsAny(inner, "<{}") {
				return "", fmt.Errorf("bad tag %q in %q", inner, pattern)
			}
			b.WriteString("(?:<(?:")
			b.WriteString(strings.ReplaceAll(inner, ".", `[^{}<>]`))
			b.WriteString(")>)")
			i += end
		case '>', '{', '}':
			return "", fmt.Errorf("unexpected %q in %q", c, pattern)
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}
