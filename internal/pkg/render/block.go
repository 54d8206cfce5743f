package render

import (
	"encoding/json"

	"github.com/cmlabs-hris/hris-notification-go/internal/pkg/render/richtext"
)

// BlockType tags a render block in its JSON form
type BlockType string

const (
	BlockText  BlockType = "text"
	BlockTable BlockType = "table"
)

// Block is one unit of rendered output: a TextBlock or a TableBlock
type Block interface {
	Type() BlockType
	isBlock()
}

// TextBlock is a paragraph of styled text
type TextBlock struct {
	Text richtext.StyledText
}

// TableBlock is a grid of styled cells in document order
type TableBlock struct {
	Rows []Row
}

type Row struct {
	Cells []Cell `json:"cells"`
}

type Cell struct {
	Header   bool                `json:"header"`
	Text     richtext.StyledText `json:"text"`
	DateLike bool                `json:"date_like"`
}

func (TextBlock) Type() BlockType  { return BlockText }
func (TableBlock) Type() BlockType { return BlockTable }

func (TextBlock) isBlock()  {}
func (TableBlock) isBlock() {}

func (b TextBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type BlockType           `json:"type"`
		Text richtext.StyledText `json:"text"`
	}{BlockText, b.Text})
}

func (b TableBlock) MarshalJSON() ([]byte, error) {
	rows := b.Rows
	if rows == nil {
		rows = []Row{}
	}
	return json.Marshal(struct {
		Type BlockType `json:"type"`
		Rows []Row     `json:"rows"`
	}{BlockTable, rows})
}
