package render

import (
	"regexp"
	"strings"

	"github.com/cmlabs-hris/hris-notification-go/internal/pkg/render/richtext"
)

var (
	tableStart = regexp.MustCompile(`(?i)<table`)

	headBlock   = regexp.MustCompile(`(?is)<head(?:\s[^>]*)?>.*?</head\s*>`)
	wrapperTags = regexp.MustCompile(`(?i)</?(?:html|body)(?:\s[^>]*)?>`)

	tablePattern = regexp.MustCompile(`(?is)<table(?:\s[^>]*)?>(.*?)</table\s*>`)
	rowPattern   = regexp.MustCompile(`(?is)<tr(?:\s[^>]*)?>(.*?)</tr\s*>`)
	cellPattern  = regexp.MustCompile(`(?is)<(th|td)(?:\s[^>]*)?>(.*?)</t[hd]\s*>`)
)

// Split is a sanitized message divided at its first <table tag
type Split struct {
	// Preamble is the markup before the table with html/head/body wrappers removed
	Preamble string
	// Table runs from the <table tag to the end of the message
	Table    string
	HasTable bool
}

// SplitTable locates the first case-insensitive "<table" in a sanitized message
func SplitTable(sanitized string) Split {
	loc := tableStart.FindStringIndex(sanitized)
	if loc == nil {
		return Split{}
	}

	split := Split{Table: sanitized[loc[0]:], HasTable: true}
	if loc[0] > 0 {
		split.Preamble = stripWrappers(Sanitize(sanitized[:loc[0]]))
	}
	return split
}

func stripWrappers(s string) string {
	s = headBlock.ReplaceAllString(s, "")
	return wrapperTags.ReplaceAllString(s, "")
}

// ParseTable extracts rows and cells from a table region. Only the first
// complete <table>...</table> span is read; rows and cells that never close
// are skipped. A nested table inside a cell ends the outer table at its own
// closing tag.
func ParseTable(region string) []Row {
	m := tablePattern.FindStringSubmatch(region)
	if m == nil {
		return nil
	}

	var rows []Row
	for _, rm := range rowPattern.FindAllStringSubmatch(m[1], -1) {
		cells := parseCells(rm[1])
		if len(cells) == 0 {
			continue
		}
		rows = append(rows, Row{Cells: cells})
	}
	return rows
}

func parseCells(row string) []Cell {
	var cells []Cell
	for _, cm := range cellPattern.FindAllStringSubmatch(row, -1) {
		cells = append(cells, Cell{
			Header: strings.EqualFold(cm[1], "th"),
			Text:   richtext.FromHTML(Sanitize(cm[2])).TrimRight(),
		})
	}
	return cells
}
