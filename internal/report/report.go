// Package report renders count tables.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"
)

// Supported output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

const (
	typeHeader  = "Resource Type"
	countHeader = "Count"
)

// Options controls rendering.
type Options struct {
	Format  string
	NoColor bool
}

// Entry is one row of the count table.
type Entry struct {
	Type  string `json:"type" yaml:"type"`
	Count int    `json:"count" yaml:"count"`
}

// Entries flattens counts into rows, keeping their order.
func Entries(counts *orderedmap.OrderedMap[string, int]) []Entry {
	entries := make([]Entry, 0, counts.Len())
	for el := counts.Front(); el != nil; el = el.Next() {
		entries = append(entries, Entry{Type: el.Key, Count: el.Value})
	}
	return entries
}

// Render writes counts to w in the requested format. Row order is preserved.
func Render(w io.Writer, counts *orderedmap.OrderedMap[string, int], opts Options) error {
	entries := Entries(counts)
	switch opts.Format {
	case "", FormatTable:
		return renderTable(w, entries, opts.NoColor)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", opts.Format)
	}
}

func renderTable(w io.Writer, entries []Entry, noColor bool) error {
	typeWidth := runewidth.StringWidth(typeHeader)
	countWidth := runewidth.StringWidth(countHeader)
	for _, e := range entries {
		if n := runewidth.StringWidth(e.Type); n > typeWidth {
			typeWidth = n
		}
		if n := len(strconv.Itoa(e.Count)); n > countWidth {
			countWidth = n
		}
	}

	header := runewidth.FillRight(typeHeader, typeWidth) + "  " + runewidth.FillLeft(countHeader, countWidth)
	rule := strings.Repeat("-", typeWidth) + "  " + strings.Repeat("-", countWidth)
	if !noColor {
		header = color.Bold.Sprint(header)
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteByte('\n')
	b.WriteString(rule)
	b.WriteByte('\n')
	for _, e := range entries {
		count := runewidth.FillLeft(strconv.Itoa(e.Count), countWidth)
		if !noColor && e.Count == 0 {
			count = color.Gray.Sprint(count)
		}
		b.WriteString(runewidth.FillRight(e.Type, typeWidth))
		b.WriteString("  ")
		b.WriteString(count)
		b.WriteByte('\n')
	}

	_, err := io.WriteString(w, b.String())
	return err
}
