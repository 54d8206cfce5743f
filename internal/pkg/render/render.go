// Package render turns raw notification records into display blocks.
//
// The pipeline runs in a fixed order: event templating, markup sanitizing,
// table splitting, table parsing, cell date normalization and block assembly.
// Every stage is a pure function; nothing here performs I/O or keeps state
// between calls, so Render may be called concurrently with a shared snapshot.
package render

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-notification-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-notification-go/internal/pkg/render/richtext"
)

// Options configures a pipeline run
type Options struct {
	// Location localizes zone-naive timestamps and templated times. nil means time.Local.
	Location *time.Location
	// Aliases overrides DefaultAliases when non-nil
	Aliases Aliases
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.Local
	}
	return o.Location
}

func (o Options) aliases() Aliases {
	if o.Aliases == nil {
		return DefaultAliases
	}
	return o.Aliases
}

// Input is the part of a notification record the pipeline reads
type Input struct {
	Message  *string
	AppData  *string
	Snapshot *schedule.Snapshot
}

// Render runs the whole pipeline. It never fails: unexpected panics are
// recovered and reported as a single empty text block.
func Render(in Input, opts Options) (blocks []Block) {
	defer func() {
		if r := recover(); r != nil {
			blocks = []Block{TextBlock{}}
		}
	}()

	message := ApplyEventTemplate(deref(in.Message), deref(in.AppData), in.Snapshot, opts)
	sanitized := Sanitize(message)

	split := SplitTable(sanitized)
	var rows []Row
	if split.HasTable {
		rows = NormalizeRows(ParseTable(split.Table), opts.location())
	}
	return Assemble(sanitized, split, rows)
}

// NormalizeRows rewrites date-like cells in place and returns rows
func NormalizeRows(rows []Row, loc *time.Location) []Row {
	for i := range rows {
		for j := range rows[i].Cells {
			cell := &rows[i].Cells[j]
			if formatted, ok := NormalizeCellDate(strings.TrimSpace(cell.Text.Text), loc); ok {
				cell.Text = richtext.Plain(formatted)
				cell.DateLike = true
			}
		}
	}
	return rows
}

// Assemble orders the output blocks: a non-blank preamble, then the table.
// Without a table, or when no row matched, the whole sanitized message becomes
// one text block.
func Assemble(sanitized string, split Split, rows []Row) []Block {
	if !split.HasTable || len(rows) == 0 {
		return []Block{TextBlock{Text: richtext.FromHTML(sanitized).TrimRight()}}
	}

	var blocks []Block
	if split.Preamble != "" {
		if pre := richtext.FromHTML(split.Preamble).TrimRight(); !pre.IsBlank() {
			blocks = append(blocks, TextBlock{Text: pre})
		}
	}
	return append(blocks, TableBlock{Rows: rows})
}

// PlainText flattens blocks into a single string, one line per block or table
// row with cells separated by tabs
func PlainText(blocks []Block) string {
	var sb strings.Builder
	for i, b := range blocks {
		if i > 0 {
			sb.WriteByte('\n')
		}
		switch v := b.(type) {
		case TextBlock:
			sb.WriteString(v.Text.Text)
		case TableBlock:
			for r, row := range v.Rows {
				if r > 0 {
					sb.WriteByte('\n')
				}
				for c, cell := range row.Cells {
					if c > 0 {
						sb.WriteByte('\t')
					}
					sb.WriteString(cell.Text.Text)
				}
			}
		}
	}
	return sb.String()
}
