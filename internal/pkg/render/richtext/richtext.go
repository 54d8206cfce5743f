package richtext

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Style is an inline style applied to a range of StyledText
type Style int

const (
	StyleBold Style = iota + 1
	StyleItalic
	StyleUnderline
	StyleStrike
	StyleLink
)

var styleNames = map[Style]string{
	StyleBold:      "bold",
	StyleItalic:    "italic",
	StyleUnderline: "underline",
	StyleStrike:    "strike",
	StyleLink:      "link",
}

func (s Style) String() string {
	if name, ok := styleNames[s]; ok {
		return name
	}
	return fmt.Sprintf("style(%d)", int(s))
}

// MarshalJSON encodes the style by name
func (s Style) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a style name
func (s *Style) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for style, n := range styleNames {
		if n == name {
			*s = style
			return nil
		}
	}
	return fmt.Errorf("unknown style %q", name)
}

// Span marks Text[Start:End] with a style. Offsets are byte offsets.
type Span struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Style Style  `json:"style"`
	Href  string `json:"href,omitempty"`
}

// StyledText is plain text plus inline style spans
type StyledText struct {
	Text  string `json:"text"`
	Spans []Span `json:"spans,omitempty"`
}

// Plain wraps s without any styling
func Plain(s string) StyledText {
	return StyledText{Text: s}
}

func (t StyledText) String() string {
	return t.Text
}

// IsBlank reports whether the text is empty or whitespace only
func (t StyledText) IsBlank() bool {
	return strings.TrimSpace(t.Text) == ""
}

// TrimRight drops trailing whitespace and clamps spans to the new length
func (t StyledText) TrimRight() StyledText {
	text := strings.TrimRightFunc(t.Text, unicode.IsSpace)
	if len(text) == len(t.Text) {
		return t
	}

	var spans []Span
	for _, sp := range t.Spans {
		if sp.Start >= len(text) {
			continue
		}
		if sp.End > len(text) {
			sp.End = len(text)
		}
		spans = append(spans, sp)
	}
	return StyledText{Text: text, Spans: spans}
}

var inlineStyles = map[atom.Atom]Style{
	atom.B:      StyleBold,
	atom.Strong: StyleBold,
	atom.I:      StyleItalic,
	atom.Em:     StyleItalic,
	atom.Cite:   StyleItalic,
	atom.Dfn:    StyleItalic,
	atom.U:      StyleUnderline,
	atom.Ins:    StyleUnderline,
	atom.S:      StyleStrike,
	atom.Strike: StyleStrike,
	atom.Del:    StyleStrike,
	atom.A:      StyleLink,
}

// paragraph blocks end with a blank line, line blocks with a single newline
var blockBreaks = map[atom.Atom]int{
	atom.P:          2,
	atom.Div:        2,
	atom.Ul:         2,
	atom.Ol:         2,
	atom.Blockquote: 2,
	atom.Table:      2,
	atom.H1:         2,
	atom.H2:         2,
	atom.H3:         2,
	atom.H4:         2,
	atom.H5:         2,
	atom.H6:         2,
	atom.Li:         1,
	atom.Tr:         1,
}

var dropContent = map[atom.Atom]bool{
	atom.Head:   true,
	atom.Title:  true,
	atom.Script: true,
	atom.Style:  true,
}

type openSpan struct {
	tag   atom.Atom
	start int
	style Style
	href  string
}

type builder struct {
	buf          strings.Builder
	spans        []Span
	open         []openSpan
	skip         int
	pendingSpace bool
	trailingNL   int
}

// FromHTML converts an HTML fragment into StyledText. It understands a small
// set of inline styles, line breaks and block boundaries; every other tag is
// ignored and its text kept.
func FromHTML(src string) StyledText {
	if src == "" {
		return StyledText{}
	}

	b := &builder{}
	z := html.NewTokenizer(strings.NewReader(src))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}

		tok := z.Token()
		switch tt {
		case html.TextToken:
			if b.skip == 0 {
				b.writeText(tok.Data)
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			b.startTag(tok, tt == html.SelfClosingTagToken)
		case html.EndTagToken:
			b.endTag(tok)
		}
	}

	for len(b.open) > 0 {
		b.closeSpan(len(b.open) - 1)
	}

	slices.SortStableFunc(b.spans, func(x, y Span) int {
		return x.Start - y.Start
	})

	return StyledText{Text: b.buf.String(), Spans: b.spans}
}

func (b *builder) startTag(tok html.Token, selfClosing bool) {
	if dropContent[tok.DataAtom] {
		if !selfClosing {
			b.skip++
		}
		return
	}
	if b.skip > 0 {
		return
	}

	if tok.DataAtom == atom.Br {
		b.newline()
		return
	}
	if n, ok := blockBreaks[tok.DataAtom]; ok {
		b.ensureBreak(n)
		return
	}
	if style, ok := inlineStyles[tok.DataAtom]; ok && !selfClosing {
		span := openSpan{tag: tok.DataAtom, start: -1, style: style}
		if style == StyleLink {
			for _, attr := range tok.Attr {
				if attr.Key == "href" {
					span.href = attr.Val
				}
			}
		}
		b.open = append(b.open, span)
	}
}

func (b *builder) endTag(tok html.Token) {
	if dropContent[tok.DataAtom] {
		if b.skip > 0 {
			b.skip--
		}
		return
	}
	if b.skip > 0 {
		return
	}

	if tok.DataAtom == atom.Br {
		b.newline()
		return
	}
	if n, ok := blockBreaks[tok.DataAtom]; ok {
		b.ensureBreak(n)
		return
	}
	for i := len(b.open) - 1; i >= 0; i-- {
		if b.open[i].tag == tok.DataAtom {
			b.closeSpan(i)
			return
		}
	}
}

func (b *builder) closeSpan(i int) {
	sp := b.open[i]
	b.open = append(b.open[:i], b.open[i+1:]...)
	end := b.buf.Len()
	if sp.start < 0 || end <= sp.start {
		return
	}
	b.spans = append(b.spans, Span{Start: sp.start, End: end, Style: sp.style, Href: sp.href})
}

func isCollapsible(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

func (b *builder) writeText(s string) {
	for _, r := range s {
		if isCollapsible(r) {
			b.pendingSpace = true
			continue
		}
		if b.pendingSpace && b.buf.Len() > 0 && b.trailingNL == 0 {
			b.buf.WriteByte(' ')
		}
		b.pendingSpace = false
		// spans start at their first visible character
		for i := range b.open {
			if b.open[i].start < 0 {
				b.open[i].start = b.buf.Len()
			}
		}
		b.buf.WriteRune(r)
		b.trailingNL = 0
	}
}

func (b *builder) newline() {
	b.buf.WriteByte('\n')
	b.trailingNL++
	b.pendingSpace = false
}

func (b *builder) ensureBreak(n int) {
	b.pendingSpace = false
	if b.buf.Len() == 0 {
		return
	}
	for b.trailingNL < n {
		b.newline()
	}
}
