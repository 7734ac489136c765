package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const apiBaseURL = "https://discord.com/api/v10"

// APIError is a non-2xx response from the Discord REST API.
type APIError struct {
	Status  int
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("discord API error: status=%d code=%d message=%s", e.Status, e.Code, e.Message)
}

// IsPermissionError reports whether the API rejected the call for missing
// permissions. Handlers log these instead of failing the event.
func IsPermissionError(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == http.StatusForbidden
}

// Client provides Discord REST API operations.
type Client struct {
	token         string
	applicationID string
	httpClient    *http.Client
	baseURL       string
}

// NewClient creates a new Discord REST client.
func NewClient(token, applicationID string) *Client {
	return &Client{
		token:         token,
		applicationID: applicationID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: apiBaseURL,
	}
}

// ChannelCreate is the payload for creating a guild channel.
type ChannelCreate struct {
	Name                 string                `json:"name"`
	Type                 int                   `json:"type"`
	ParentID             string                `json:"parent_id,omitempty"`
	Topic                string                `json:"topic,omitempty"`
	PermissionOverwrites []PermissionOverwrite `json:"permission_overwrites,omitempty"`
}

// CreateGuildChannel creates a channel in the guild.
func (c *Client) CreateGuildChannel(ctx context.Context, guildID string, create ChannelCreate) (*Channel, error) {
	var channel Channel
	path := fmt.Sprintf("/guilds/%s/channels", guildID)
	if err := c.makeRequest(ctx, http.MethodPost, path, create, &channel); err != nil {
		return nil, err
	}
	return &channel, nil
}

// ModifyChannelName renames a channel.
func (c *Client) ModifyChannelName(ctx context.Context, channelID, name string) error {
	path := fmt.Sprintf("/channels/%s", channelID)
	body := map[string]any{"name": name}
	return c.makeRequest(ctx, http.MethodPatch, path, body, nil)
}

// DeleteChannel deletes a channel permanently.
func (c *Client) DeleteChannel(ctx context.Context, channelID string) error {
	path := fmt.Sprintf("/channels/%s", channelID)
	return c.makeRequest(ctx, http.MethodDelete, path, nil, nil)
}

// GetGuildChannels lists all channels in the guild.
func (c *Client) GetGuildChannels(ctx context.Context, guildID string) ([]Channel, error) {
	var channels []Channel
	path := fmt.Sprintf("/guilds/%s/channels", guildID)
	if err := c.makeRequest(ctx, http.MethodGet, path, nil, &channels); err != nil {
		return nil, err
	}
	return channels, nil
}

// CreateMessage posts a message to a channel.
func (c *Client) CreateMessage(ctx context.Context, channelID string, create MessageCreate) (*Message, error) {
	var message Message
	path := fmt.Sprintf("/channels/%s/messages", channelID)
	if err := c.makeRequest(ctx, http.MethodPost, path, create, &message); err != nil {
		return nil, err
	}
	return &message, nil
}

// DeleteMessage deletes a single message.
func (c *Client) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	path := fmt.Sprintf("/channels/%s/messages/%s", channelID, messageID)
	return c.makeRequest(ctx, http.MethodDelete, path, nil, nil)
}

// GetChannelMessages returns up to limit messages before the given message ID
// (newest first, matching the API). Pass before="" for the latest page.
func (c *Client) GetChannelMessages(ctx context.Context, channelID string, limit int, before string) ([]Message, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if before != "" {
		q.Set("before", before)
	}

	var messages []Message
	path := fmt.Sprintf("/channels/%s/messages?%s", channelID, q.Encode())
	if err := c.makeRequest(ctx, http.MethodGet, path, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// CreateGuildRole creates a role in the guild.
func (c *Client) CreateGuildRole(ctx context.Context, guildID, name string, color int) (*Role, error) {
	var role Role
	path := fmt.Sprintf("/guilds/%s/roles", guildID)
	body := map[string]any{
		"name":        name,
		"color":       color,
		"mentionable": true,
	}
	if err := c.makeRequest(ctx, http.MethodPost, path, body, &role); err != nil {
		return nil, err
	}
	return &role, nil
}

// GetGuildRoles lists all roles in the guild.
func (c *Client) GetGuildRoles(ctx context.Context, guildID string) ([]Role, error) {
	var roles []Role
	path := fmt.Sprintf("/guilds/%s/roles", guildID)
	if err := c.makeRequest(ctx, http.MethodGet, path, nil, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// GetGuild fetches the guild, with approximate member count included.
func (c *Client) GetGuild(ctx context.Context, guildID string) (*Guild, error) {
	var guild Guild
	path := fmt.Sprintf("/guilds/%s?with_counts=true", guildID)
	if err := c.makeRequest(ctx, http.MethodGet, path, nil, &guild); err != nil {
		return nil, err
	}
	return &guild, nil
}

// RespondToInteraction sends the initial interaction callback. It must be
// sent within 3 seconds of receiving the interaction.
func (c *Client) RespondToInteraction(ctx context.Context, interactionID, token string, response InteractionResponse) error {
	path := fmt.Sprintf("/interactions/%s/%s/callback", interactionID, token)
	return c.makeRequest(ctx, http.MethodPost, path, response, nil)
}

// RespondWithMessage replies to an interaction with plain content.
func (c *Client) RespondWithMessage(ctx context.Context, interactionID, token, content string, ephemeral bool) error {
	data := &InteractionResponseData{Content: content}
	if ephemeral {
		data.Flags = MessageFlagEphemeral
	}
	return c.RespondToInteraction(ctx, interactionID, token, InteractionResponse{
		Type: CallbackTypeChannelMessage,
		Data: data,
	})
}

// DeferInteraction acknowledges an interaction so the 3-second window does
// not lapse while slower work runs; follow up with CreateFollowupMessage.
func (c *Client) DeferInteraction(ctx context.Context, interactionID, token string, ephemeral bool) error {
	response := InteractionResponse{Type: CallbackTypeDeferredChannelMessage}
	if ephemeral {
		response.Data = &InteractionResponseData{Flags: MessageFlagEphemeral}
	}
	return c.RespondToInteraction(ctx, interactionID, token, response)
}

// CreateFollowupMessage sends a followup for a previously acknowledged
// interaction.
func (c *Client) CreateFollowupMessage(ctx context.Context, token string, data InteractionResponseData) error {
	path := fmt.Sprintf("/webhooks/%s/%s", c.applicationID, token)
	return c.makeRequest(ctx, http.MethodPost, path, data, nil)
}

// RegisterGuildCommands bulk-overwrites the guild's slash commands.
func (c *Client) RegisterGuildCommands(ctx context.Context, guildID string, commands []ApplicationCommand) error {
	path := fmt.Sprintf("/applications/%s/guilds/%s/commands", c.applicationID, guildID)
	return c.makeRequest(ctx, http.MethodPut, path, commands, nil)
}

// RegisterGlobalCommands bulk-overwrites the application's global slash
// commands.
func (c *Client) RegisterGlobalCommands(ctx context.Context, commands []ApplicationCommand) error {
	path := fmt.Sprintf("/applications/%s/commands", c.applicationID)
	return c.makeRequest(ctx, http.MethodPut, path, commands, nil)
}

func (c *Client) makeRequest(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
