package export

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/systrix/internal/errors"
	"github.com/rileyhilliard/systrix/internal/util"
)

// Format is an export file format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
)

// Formats lists every supported format in display order.
var Formats = []Format{FormatJSON, FormatYAML, FormatCSV, FormatMarkdown, FormatHTML}

// ParseFormat accepts a format name or common alias, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	}
	return "", errors.New(errors.ErrExport,
		fmt.Sprintf("Unknown export format %q", s),
		util.DidYouMean(s, formatNames()))
}

// Extension is the file extension without the dot.
func (f Format) Extension() string {
	return string(f)
}

func formatNames() []string {
	names := make([]string, 0, len(Formats))
	for _, f := range Formats {
		names = append(names, string(f))
	}
	return names
}
