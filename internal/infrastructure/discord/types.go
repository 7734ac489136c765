package discord

import "encoding/json"

// User represents a Discord user.
type User struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator,omitempty"`
	GlobalName    string `json:"global_name,omitempty"`
	Bot           bool   `json:"bot,omitempty"`
	Avatar        string `json:"avatar,omitempty"`
}

// Member represents a guild member. User is absent in some gateway payloads.
type Member struct {
	User     *User    `json:"user,omitempty"`
	Nick     string   `json:"nick,omitempty"`
	Roles    []string `json:"roles,omitempty"`
	JoinedAt string   `json:"joined_at,omitempty"`
}

// Guild represents a Discord guild as delivered by GUILD_CREATE. The REST
// endpoint fills ApproximateMemberCount instead of MemberCount when queried
// with counts.
type Guild struct {
	ID                     string `json:"id"`
	Name                   string `json:"name"`
	OwnerID                string `json:"owner_id,omitempty"`
	MemberCount            int    `json:"member_count,omitempty"`
	ApproximateMemberCount int    `json:"approximate_member_count,omitempty"`
}

// Channel types used by the bot.
const (
	ChannelTypeGuildText     = 0
	ChannelTypeGuildVoice    = 2
	ChannelTypeGuildCategory = 4
)

// Channel represents a guild channel.
type Channel struct {
	ID       string `json:"id"`
	Type     int    `json:"type"`
	GuildID  string `json:"guild_id,omitempty"`
	Name     string `json:"name,omitempty"`
	ParentID string `json:"parent_id,omitempty"`
	Topic    string `json:"topic,omitempty"`
}

// Permission bits the bot sets on ticket channels.
const (
	PermissionViewChannel    = 1 << 10
	PermissionSendMessages   = 1 << 11
	PermissionReadHistory    = 1 << 16
	PermissionAttachFiles    = 1 << 15
	PermissionManageChannels = 1 << 4
	PermissionManageMessages = 1 << 13
)

// Overwrite target types.
const (
	OverwriteTypeRole   = 0
	OverwriteTypeMember = 1
)

// PermissionOverwrite scopes channel permissions to a role or member.
// Allow/Deny are stringified bitfields per the Discord API.
type PermissionOverwrite struct {
	ID    string `json:"id"`
	Type  int    `json:"type"`
	Allow string `json:"allow,omitempty"`
	Deny  string `json:"deny,omitempty"`
}

// Role represents a guild role.
type Role struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Color       int    `json:"color,omitempty"`
	Mentionable bool   `json:"mentionable,omitempty"`
}

// Embed is a rich message embed.
type Embed struct {
	Title       string          `json:"title,omitempty"`
	Description string          `json:"description,omitempty"`
	Color       int             `json:"color,omitempty"`
	Footer      *EmbedFooter    `json:"footer,omitempty"`
	Image       *EmbedImage     `json:"image,omitempty"`
	Thumbnail   *EmbedThumbnail `json:"thumbnail,omitempty"`
	Fields      []EmbedField    `json:"fields,omitempty"`
	Timestamp   string          `json:"timestamp,omitempty"`
}

type EmbedFooter struct {
	Text    string `json:"text"`
	IconURL string `json:"icon_url,omitempty"`
}

type EmbedImage struct {
	URL string `json:"url"`
}

type EmbedThumbnail struct {
	URL string `json:"url"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// Component types and button styles.
const (
	ComponentTypeActionRow = 1
	ComponentTypeButton    = 2

	ButtonStylePrimary   = 1
	ButtonStyleSecondary = 2
	ButtonStyleSuccess   = 3
	ButtonStyleDanger    = 4
)

// Component is an action row or button. Rows carry Components; buttons carry
// Style/Label/CustomID.
type Component struct {
	Type       int         `json:"type"`
	Style      int         `json:"style,omitempty"`
	Label      string      `json:"label,omitempty"`
	Emoji      *Emoji      `json:"emoji,omitempty"`
	CustomID   string      `json:"custom_id,omitempty"`
	Disabled   bool        `json:"disabled,omitempty"`
	Components []Component `json:"components,omitempty"`
}

type Emoji struct {
	Name string `json:"name,omitempty"`
	ID   string `json:"id,omitempty"`
}

// NewButtonRow wraps buttons in a single action row.
func NewButtonRow(buttons ...Component) Component {
	return Component{
		Type:       ComponentTypeActionRow,
		Components: buttons,
	}
}

// NewButton creates a button component with a custom_id.
func NewButton(style int, label, customID string) Component {
	return Component{
		Type:     ComponentTypeButton,
		Style:    style,
		Label:    label,
		CustomID: customID,
	}
}

// Message represents a channel message.
type Message struct {
	ID          string      `json:"id"`
	ChannelID   string      `json:"channel_id"`
	GuildID     string      `json:"guild_id,omitempty"`
	Author      *User       `json:"author,omitempty"`
	Content     string      `json:"content,omitempty"`
	Timestamp   string      `json:"timestamp,omitempty"`
	Embeds      []Embed     `json:"embeds,omitempty"`
	Components  []Component `json:"components,omitempty"`
	Attachments []struct {
		URL      string `json:"url"`
		Filename string `json:"filename"`
	} `json:"attachments,omitempty"`
}

// MessageCreate is the payload for creating a channel message.
type MessageCreate struct {
	Content    string      `json:"content,omitempty"`
	Embeds     []Embed     `json:"embeds,omitempty"`
	Components []Component `json:"components,omitempty"`
}

// Interaction types.
const (
	InteractionTypePing               = 1
	InteractionTypeApplicationCommand = 2
	InteractionTypeMessageComponent   = 3
)

// Interaction is an incoming slash command or component press.
type Interaction struct {
	ID        string           `json:"id"`
	Type      int              `json:"type"`
	Token     string           `json:"token"`
	GuildID   string           `json:"guild_id,omitempty"`
	ChannelID string           `json:"channel_id,omitempty"`
	Member    *Member          `json:"member,omitempty"`
	User      *User            `json:"user,omitempty"`
	Message   *Message         `json:"message,omitempty"`
	Data      *InteractionData `json:"data,omitempty"`
}

// InteractionData carries the command name and options, or the component
// custom_id.
type InteractionData struct {
	Name     string              `json:"name,omitempty"`
	CustomID string              `json:"custom_id,omitempty"`
	Options  []InteractionOption `json:"options,omitempty"`
}

type InteractionOption struct {
	Name    string              `json:"name"`
	Type    int                 `json:"type"`
	Value   json.RawMessage     `json:"value,omitempty"`
	Options []InteractionOption `json:"options,omitempty"`
}

// StringValue decodes the option value as a string, or returns "".
func (o *InteractionOption) StringValue() string {
	var s string
	if err := json.Unmarshal(o.Value, &s); err != nil {
		return ""
	}
	return s
}

// IntValue decodes the option value as an integer, or returns 0.
func (o *InteractionOption) IntValue() int64 {
	var n int64
	if err := json.Unmarshal(o.Value, &n); err != nil {
		return 0
	}
	return n
}

// Option returns the named option, searching one level of subcommands.
func (d *InteractionData) Option(name string) *InteractionOption {
	for i := range d.Options {
		if d.Options[i].Name == name {
			return &d.Options[i]
		}
		for j := range d.Options[i].Options {
			if d.Options[i].Options[j].Name == name {
				return &d.Options[i].Options[j]
			}
		}
	}
	return nil
}

// Subcommand returns the first subcommand-typed option name, or "".
func (d *InteractionData) Subcommand() string {
	for i := range d.Options {
		if d.Options[i].Type == OptionTypeSubcommand {
			return d.Options[i].Name
		}
	}
	return ""
}

// Interaction callback types.
const (
	CallbackTypePong                   = 1
	CallbackTypeChannelMessage         = 4
	CallbackTypeDeferredChannelMessage = 5
	CallbackTypeDeferredUpdateMessage  = 6
	CallbackTypeUpdateMessage          = 7
)

// MessageFlagEphemeral marks an interaction response visible only to the
// invoking user.
const MessageFlagEphemeral = 1 << 6

// InteractionResponse is the callback payload.
type InteractionResponse struct {
	Type int                      `json:"type"`
	Data *InteractionResponseData `json:"data,omitempty"`
}

type InteractionResponseData struct {
	Content    string      `json:"content,omitempty"`
	Embeds     []Embed     `json:"embeds,omitempty"`
	Components []Component `json:"components,omitempty"`
	Flags      int         `json:"flags,omitempty"`
}

// Application command option types.
const (
	OptionTypeSubcommand = 1
	OptionTypeString     = 3
	OptionTypeInteger    = 4
	OptionTypeBoolean    = 5
	OptionTypeUser       = 6
	OptionTypeChannel    = 7
	OptionTypeRole       = 8
)

// ApplicationCommand describes a slash command for registration.
type ApplicationCommand struct {
	Name        string                     `json:"name"`
	Description string                     `json:"description"`
	Options     []ApplicationCommandOption `json:"options,omitempty"`
}

type ApplicationCommandOption struct {
	Type        int                        `json:"type"`
	Name        string                     `json:"name"`
	Description string                     `json:"description"`
	Required    bool                       `json:"required,omitempty"`
	Options     []ApplicationCommandOption `json:"options,omitempty"`
}

// VoiceState is the subset of the voice state the music service needs.
type VoiceState struct {
	GuildID   string `json:"guild_id,omitempty"`
	ChannelID string `json:"channel_id,omitempty"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

// VoiceServerUpdate carries the voice server token for Lavalink.
type VoiceServerUpdate struct {
	Token    string `json:"token"`
	GuildID  string `json:"guild_id"`
	Endpoint string `json:"endpoint"`
}
