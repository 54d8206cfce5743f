package richtext

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromHTML_PlainText(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"intro", "intro"},
		{"a   b\n\tc", "a b c"},
		{"Tom &amp; Jerry", "Tom & Jerry"},
		{"line one<br>line two", "line one\nline two"},
		{"line one<br/>line two", "line one\nline two"},
		{"<p>first</p><p>second</p>", "first\n\nsecond\n\n"},
		{"<ul><li>a</li><li>b</li></ul>", "a\nb\n\n"},
		{"<span class=\"x\">kept</span>", "kept"},
	}
	for _, c := range cases {
		got := FromHTML(c.input)
		assert.Equal(t, c.want, got.Text, "FromHTML(%q)", c.input)
	}
}

func TestFromHTML_DropsHeadAndScripts(t *testing.T) {
	got := FromHTML("<html><head><title>Ignored</title></head><body>Shown<script>var x = 1;</script></body></html>")
	assert.Equal(t, "Shown", got.Text)
}

func TestFromHTML_Spans(t *testing.T) {
	got := FromHTML(`Hi <b>bold</b> and <a href="https://example.com">link</a>`)
	require.Equal(t, "Hi bold and link", got.Text)
	require.Len(t, got.Spans, 2)

	assert.Equal(t, StyleBold, got.Spans[0].Style)
	assert.Equal(t, "bold", got.Text[got.Spans[0].Start:got.Spans[0].End])

	assert.Equal(t, StyleLink, got.Spans[1].Style)
	assert.Equal(t, "https://example.com", got.Spans[1].Href)
	assert.Equal(t, "link", got.Text[got.Spans[1].Start:got.Spans[1].End])
}

func TestFromHTML_UnclosedSpanRunsToEnd(t *testing.T) {
	got := FromHTML("<i>open ended")
	require.Len(t, got.Spans, 1)
	assert.Equal(t, StyleItalic, got.Spans[0].Style)
	assert.Equal(t, len(got.Text), got.Spans[0].End)
}

func TestFromHTML_KeepsNonBreakingSpaceCharacter(t *testing.T) {
	got := FromHTML("a\u00a0b")
	assert.Equal(t, "a\u00a0b", got.Text)
}

func TestStyledText_TrimRight(t *testing.T) {
	st := StyledText{
		Text: "bold\n\n",
		Spans: []Span{
			{Start: 0, End: 6, Style: StyleBold},
			{Start: 5, End: 6, Style: StyleItalic},
		},
	}
	got := st.TrimRight()
	assert.Equal(t, "bold", got.Text)
	require.Len(t, got.Spans, 1)
	assert.Equal(t, 4, got.Spans[0].End)

	unchanged := Plain("x")
	assert.Equal(t, unchanged, unchanged.TrimRight())
}

func TestStyledText_IsBlank(t *testing.T) {
	assert.True(t, Plain("").IsBlank())
	assert.True(t, Plain(" \n ").IsBlank())
	assert.False(t, Plain(" x ").IsBlank())
}

func TestStyle_JSON(t *testing.T) {
	data, err := json.Marshal(Span{Start: 1, End: 2, Style: StyleUnderline})
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":1,"end":2,"style":"underline"}`, string(data))

	var sp Span
	require.NoError(t, json.Unmarshal(data, &sp))
	assert.Equal(t, StyleUnderline, sp.Style)

	var bad Style
	assert.Error(t, json.Unmarshal([]byte(`"sparkle"`), &bad))
}
