package welcome

import (
	"strconv"
	"strings"

	"rubybot/internal/shared/constants"
)

// Placeholders is the per-member data substituted into welcome templates.
type Placeholders struct {
	Mention     string
	Username    string
	ServerName  string
	MemberCount int
}

// Render substitutes {user}, {username}, {server} and {membercount} in a
// template. Unknown braces are left untouched.
func Render(template string, p Placeholders) string {
	r := strings.NewReplacer(
		"{user}", p.Mention,
		"{username}", p.Username,
		"{server}", p.ServerName,
		"{membercount}", strconv.Itoa(p.MemberCount),
	)
	return r.Replace(template)
}

var namedColors = map[string]int{
	"red":    0xe74c3c,
	"green":  0x2ecc71,
	"blue":   0x3498db,
	"yellow": 0xf1c40f,
	"orange": 0xe67e22,
	"purple": 0x9b59b6,
	"pink":   0xff69b4,
	"gold":   0xf5c518,
	"teal":   0x1abc9c,
	"white":  0xffffff,
	"black":  0x000000,
}

// ParseColor turns a configured color ("#ff0000", "0xff0000", "ff0000" or a
// name like "blue") into an embed color. Anything unparseable falls back to
// the default green.
func ParseColor(s string) int {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return constants.ColorWelcomeDefault
	}

	if c, ok := namedColors[s]; ok {
		return c
	}

	s = strings.TrimPrefix(s, "#")
	s = strings.TrimPrefix(s, "0x")
	if len(s) == 6 {
		if c, err := strconv.ParseInt(s, 16, 32); err == nil {
			return int(c)
		}
	}

	return constants.ColorWelcomeDefault
}
