package ingest

import (
	"fmt"
	"io"
	"strings"
)

// Format names an input layout.
type Format string

const (
	FormatRaw          Format = "raw"
	FormatHTML         Format = "html"
	FormatPreprocessed Format = "preprocessed"
	FormatPipeline     Format = "pipeline"
)

// Formats lists the supported input formats.
var Formats = []Format{FormatRaw, FormatHTML, FormatPreprocessed, FormatPipeline}

// Reader produces raw sentences from an input stream.
type Reader interface {
	Read(r io.Reader) ([]RawSentence, error)
}

// Options tunes the readers built by NewReader.
type Options struct {
	// Sep is the word/tag separator of the preprocessed format.
	Sep string
}

// ParseFormat resolves a format name, ignoring case.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown input format %q", name)
}

// NewReader returns the reader for format.
func NewReader(format Format, opts Options) (Reader, error) {
	switch format {
	case FormatRaw:
		return RawTextReader{}, nil
	case FormatHTML:
		return HTMLReader{}, nil
	case FormatPreprocessed:
		return PreprocessedReader{Sep: opts.Sep}, nil
	case FormatPipeline:
		return PipelineJSONReader{}, nil
	}
	return nil, fmt.Errorf("unknown input format %q", format)
}

// Read parses input with the reader for format.
func Read(format Format, input io.Reader, opts Options) ([]RawSentence, error) {
	rd, err := NewReader(format, opts)
	if err != nil {
		return nil, err
	}
	return rd.Read(input)
}
