package render

import "strings"

// DefaultWorkstationName is shown when nothing better identifies a workstation
const DefaultWorkstationName = "Shift"

// Aliases maps raw workstation ids and codes to display names
type Aliases map[string]string

// DefaultAliases is the shared workstation alias table
var DefaultAliases = Aliases{
	"WS-FD":        "Front Desk",
	"FD":           "Front Desk",
	"FRONT_DESK":   "Front Desk",
	"WS-HK":        "Housekeeping",
	"HK":           "Housekeeping",
	"WS-KIT":       "Kitchen",
	"KIT":          "Kitchen",
	"WS-DOCK":      "Loading Dock",
	"DOCK":         "Loading Dock",
	"WS-PACK":      "Packing",
	"PACK":         "Packing",
	"WS-RECV":      "Receiving",
	"RECV":         "Receiving",
	"WS-SHIP":      "Shipping",
	"SHIP":         "Shipping",
	"WS-QA":        "Quality Assurance",
	"QA":           "Quality Assurance",
	"CASH":         "Cashier",
	"CUST_SERVICE": "Customer Service",
}

// Lookup resolves a display name by exact id match, then exact code match,
// then the literal name, then DefaultWorkstationName.
func (a Aliases) Lookup(id, code, name string) string {
	if id != "" {
		if alias, ok := a[id]; ok {
			return alias
		}
	}
	if code != "" {
		if alias, ok := a[code]; ok {
			return alias
		}
	}
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return DefaultWorkstationName
}
