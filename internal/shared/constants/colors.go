package constants

// Embed color values (0xRRGGBB).
const (
	ColorGreen  = 0x2ecc71
	ColorRed    = 0xe74c3c
	ColorBlue   = 0x3498db
	ColorGold   = 0xf1c40f
	ColorGrey   = 0x95a5a6
	ColorOrange = 0xe67e22
	ColorPurple = 0x9b59b6

	// ColorWelcomeDefault is the fallback when a guild's configured color
	// string cannot be parsed.
	ColorWelcomeDefault = 0x00ff00
)
