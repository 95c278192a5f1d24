package ingest

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// PreprocessedReader reads already tokenized and tagged text: one sentence
// per line, tokens separated by whitespace, each token written word/TAG.
type PreprocessedReader struct {
	// Sep separates word and tag. Defaults to "/". Tokens are split on the
	// last occurrence, so words may contain the separator.
	Sep string
}

// Read parses every non-blank line into a sentence.
func (p PreprocessedReader) Read(r io.Reader) ([]RawSentence, error) {
	sep := p.Sep
	if sep == "" {
		sep = "/"
	}

	var out []RawSentence
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		rs := RawSentence{
			Words: make([]string, len(fields)),
			POS:   make([]string, len(fields)),
		}
		for i, tok := range fields {
			cut := strings.LastIndex(tok, sep)
			if cut <= 0 || cut+len(sep) == len(tok) {
				return nil, fmt.Errorf("%w: line %d: token %q is not word%stag", ErrFormat, line, tok, sep)
			}
			rs.Words[i] = tok[:cut]
			rs.POS[i] = tok[cut+len(sep):]
		}
		out = append(out, rs)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read preprocessed text: %w", err)
	}
	return out, nil
}
