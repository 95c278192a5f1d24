package ingest

import (
	"fmt"
	"io"

	"github.com/tidwall/gjson"
)

// PipelineJSONReader reads the JSON output of an external annotation
// pipeline in the CoreNLP layout:
//
//	{"sentences": [{"tokens": [{"word", "pos", "lemma", ...}], ...}]}
//
// Lemmas are kept only when every token of a sentence has one. Token
// character offsets are stored in Meta["char_offsets"] and every other
// sentence-level key is copied into Meta.
type PipelineJSONReader struct{}

// Read parses a complete pipeline document.
func (PipelineJSONReader) Read(r io.Reader) ([]RawSentence, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pipeline output: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid json", ErrFormat)
	}
	sentences := gjson.GetBytes(data, "sentences")
	if !sentences.IsArray() {
		return nil, fmt.Errorf("%w: no sentences array", ErrFormat)
	}

	var out []RawSentence
	for i, sent := range sentences.Array() {
		rs, err := pipelineSentence(sent)
		if err != nil {
			return nil, fmt.Errorf("sentence %d: %w", i, err)
		}
		out = append(out, rs)
	}
	return out, nil
}

func pipelineSentence(sent gjson.Result) (RawSentence, error) {
	tokens := sent.Get("tokens").Array()
	rs := RawSentence{
		Words: make([]string, len(tokens)),
		POS:   make([]string, len(tokens)),
		Meta:  make(map[string]any),
	}
	lemmas := make([]string, len(tokens))
	haveLemmas := len(tokens) > 0
	offsets := make([][2]int64, len(tokens))

	for i, tok := range tokens {
		word, pos := tok.Get("word"), tok.Get("pos")
		if !word.Exists() || !pos.Exists() {
			return RawSentence{}, fmt.Errorf("%w: token %d lacks word or pos", ErrFormat, i)
		}
		rs.Words[i] = word.String()
		rs.POS[i] = pos.String()
		if lemma := tok.Get("lemma"); lemma.Exists() {
			lemmas[i] = lemma.String()
		} else {
			haveLemmas = false
		}
		offsets[i] = [2]int64{
			tok.Get("characterOffsetBegin").Int(),
			tok.Get("characterOffsetEnd").Int(),
		}
	}
	if haveLemmas {
		rs.Lemmas = lemmas
	}
	rs.Meta["char_offsets"] = offsets

	sent.ForEach(func(key, value gjson.Result) bool {
		if k := key.String(); k != "tokens" {
			rs.Meta[k] = value.Value()
		}
		return true
	})
	return rs, nil
}
