package welcome

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rubybot/internal/shared/constants"
)

func TestRender(t *testing.T) {
	p := Placeholders{
		Mention:     "<@123>",
		Username:    "ruby",
		ServerName:  "Ruby Lounge",
		MemberCount: 50,
	}

	tests := []struct {
		name     string
		template string
		expected string
	}{
		{
			name:     "all placeholders",
			template: "Hi {user}, you are #{membercount}",
			expected: "Hi <@123>, you are #50",
		},
		{
			name:     "username and server",
			template: "{username} joined {server}",
			expected: "ruby joined Ruby Lounge",
		},
		{
			name:     "unknown braces left untouched",
			template: "Hello {user}, see {rules}",
			expected: "Hello <@123>, see {rules}",
		},
		{
			name:     "repeated placeholder",
			template: "{user} {user}",
			expected: "<@123> <@123>",
		},
		{
			name:     "no placeholders",
			template: "plain text",
			expected: "plain text",
		},
		{
			name:     "empty template",
			template: "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Render(tt.template, p))
		})
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{"named color", "blue", 0x3498db},
		{"named color uppercase", "RED", 0xe74c3c},
		{"hash hex", "#ff0000", 0xff0000},
		{"0x hex", "0x00ff00", 0x00ff00},
		{"bare hex", "0000ff", 0x0000ff},
		{"whitespace trimmed", "  teal  ", 0x1abc9c},
		{"empty falls back", "", constants.ColorWelcomeDefault},
		{"garbage falls back", "not-a-color", constants.ColorWelcomeDefault},
		{"short hex falls back", "#fff", constants.ColorWelcomeDefault},
		{"invalid hex digits fall back", "#zzzzzz", constants.ColorWelcomeDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseColor(tt.input))
		})
	}
}
