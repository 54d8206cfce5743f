package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAliases_Lookup(t *testing.T) {
	aliases := Aliases{
		"WS-1": "Station One",
		"C-2":  "Station Two",
	}

	cases := []struct {
		name             string
		id, code, wsName string
		want             string
	}{
		{"id match wins", "WS-1", "C-2", "Raw", "Station One"},
		{"code when id unmapped", "WS-9", "C-2", "Raw", "Station Two"},
		{"literal name", "WS-9", "C-9", "Custom Station", "Custom Station"},
		{"name is trimmed", "", "", "  Dock  ", "Dock"},
		{"default when name empty", "WS-9", "C-9", "", "Shift"},
		{"default when name blank", "", "", "   ", "Shift"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, aliases.Lookup(c.id, c.code, c.wsName))
		})
	}
}

func TestDefaultAliases_CodeAndIDAgree(t *testing.T) {
	assert.Equal(t, DefaultAliases["PACK"], DefaultAliases["WS-PACK"])
	assert.Equal(t, "Packing", DefaultAliases.Lookup("", "PACK", ""))
}
