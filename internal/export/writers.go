package export

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"
)

// Writer renders a bundle in one format.
type Writer interface {
	// Format identifies the writer.
	Format() Format

	// Write renders b to w.
	Write(w io.Writer, b Bundle) error
}

// WriterFor returns the writer for f.
func WriterFor(f Format) (Writer, error) {
	switch f {
	case FormatJSON:
		return jsonWriter{}, nil
	case FormatYAML:
		return yamlWriter{}, nil
	case FormatCSV:
		return csvWriter{}, nil
	case FormatMarkdown:
		return markdownWriter{}, nil
	case FormatHTML:
		return NewHTMLWriter(), nil
	}
	parsed, err := ParseFormat(string(f))
	if err != nil {
		return nil, err
	}
	return WriterFor(parsed)
}

type jsonWriter struct{}

func (jsonWriter) Format() Format { return FormatJSON }

func (jsonWriter) Write(w io.Writer, b Bundle) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(b)
}

type yamlWriter struct{}

func (yamlWriter) Format() Format { return FormatYAML }

func (yamlWriter) Write(w io.Writer, b Bundle) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(b); err != nil {
		return err
	}
	return enc.Close()
}
