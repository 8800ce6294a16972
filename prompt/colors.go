package prompt

import (
	"regexp"
	"strconv"
	"strings"
)

type namedColor struct {
	name    string
	r, g, b int
}

// Small palette of tag-friendly color names. Hex inputs snap to the
// nearest entry so downstream prompts stay within known vocabulary.
var palette = []namedColor{
	{"black", 0, 0, 0},
	{"white", 255, 255, 255},
	{"red", 220, 20, 60},
	{"orange", 255, 140, 0},
	{"yellow", 255, 215, 0},
	{"green", 34, 139, 34},
	{"blue", 30, 100, 220},
	{"purple", 135, 60, 190},
	{"pink", 255, 105, 180},
	{"light pink", 255, 182, 193},
	{"brown", 139, 90, 43},
	{"grey", 128, 128, 128},
	{"blonde", 250, 240, 190},
}

var hexColorRe = regexp.MustCompile(`^#?([0-9a-fA-F]{6})$`)

// QuantizeColor maps a #RRGGBB hex string onto the nearest palette name.
// Anything that is not a hex color passes through unchanged.
func QuantizeColor(value string) string {
	m := hexColorRe.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return value
	}
	n, err := strconv.ParseInt(m[1], 16, 32)
	if err != nil {
		return value
	}
	r := int(n >> 16 & 0xff)
	g := int(n >> 8 & 0xff)
	b := int(n & 0xff)

	best := palette[0]
	bestDist := 1 << 30
	for _, c := range palette {
		dr, dg, db := r-c.r, g-c.g, b-c.b
		dist := dr*dr + dg*dg + db*db
		if dist < bestDist {
			bestDist = dist
			best = c
		}
	}
	return best.name
}
