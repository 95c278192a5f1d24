package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/jdkato/prose/v2"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"
)

// RawTextReader segments, tokenizes and POS tags plain English text. Tags
// follow the Penn Treebank tag set. It produces no lemmas.
type RawTextReader struct{}

// Read parses the whole input.
func (RawTextReader) Read(r io.Reader) ([]RawSentence, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	return ParseText(string(data))
}

// ParseText segments and tags text after NFC normalization.
func ParseText(text string) ([]RawSentence, error) {
	text = strings.TrimSpace(norm.NFC.String(text))
	if text == "" {
		return nil, nil
	}

	seg, err := prose.NewDocument(text,
		prose.WithTokenization(false),
		prose.WithTagging(false),
		prose.WithExtraction(false))
	if err != nil {
		return nil, fmt.Errorf("segment text: %w", err)
	}

	var out []RawSentence
	for _, sent := range seg.Sentences() {
		doc, err := prose.NewDocument(sent.Text,
			prose.WithSegmentation(false),
			prose.WithExtraction(false))
		if err != nil {
			return nil, fmt.Errorf("tag sentence: %w", err)
		}
		tokens := doc.Tokens()
		if len(tokens) == 0 {
			continue
		}
		rs := RawSentence{
			Words: make([]string, len(tokens)),
			POS:   make([]string, len(tokens)),
		}
		for i, tok := range tokens {
			rs.Words[i] = tok.Text
			rs.POS[i] = tok.Tag
		}
		out = append(out, rs)
	}
	return out, nil
}

// HTMLReader extracts the visible text of an HTML page and reads it as raw
// text.
type HTMLReader struct{}

// Read parses the whole page.
func (HTMLReader) Read(r io.Reader) ([]RawSentence, error) {
	text, err := HTMLText(r)
	if err != nil {
		return nil, err
	}
	return ParseText(text)
}

// HTMLText returns the text content of an HTML document, skipping scripts,
// styles and other non-rendered elements. Block elements end with a newline.
func HTMLText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var buf strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		if n.Type == html.ElementNode && hidden[n.DataAtom] {
			return
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
		if n.Type == html.ElementNode && block[n.DataAtom] {
			buf.WriteString("\n")
		}
	}
	extractText(doc)

	lines := strings.Split(buf.String(), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n"), nil
}

var hidden = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
}

var block = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Tr: true, atom.Td: true, atom.Th: true, atom.Title: true,
	atom.Section: true, atom.Article: true, atom.Blockquote: true, atom.Pre: true,
}
