package bot

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	ticketusecases "rubybot/internal/application/ticket/usecases"
	"rubybot/internal/domain/ticket"
	"rubybot/internal/infrastructure/discord"
	"rubybot/internal/shared/constants"
	"rubybot/internal/shared/goroutine"
	"rubybot/internal/shared/logger"
)

// Component custom IDs owned by the ticket flow.
const (
	customIDTicketOpen         = "ticket_open"
	customIDTicketClaim        = "ticket_claim"
	customIDTicketClose        = "ticket_close"
	customIDTicketCloseConfirm = "ticket_close_confirm"
	customIDTicketCloseCancel  = "ticket_close_cancel"
	customIDTicketTranscript   = "ticket_transcript"
	customIDTicketDelete       = "ticket_delete"
)

// transcriptPreviewLimit keeps the transcript followup under the message
// size cap.
const transcriptPreviewLimit = 1800

// TicketHandler answers the /ticket command and the ticket panel buttons.
type TicketHandler struct {
	client         *discord.Client
	openTicket     ticketusecases.OpenTicketExecutor
	claimTicket    ticketusecases.ClaimTicketExecutor
	requestClose   ticketusecases.RequestCloseExecutor
	confirmClose   ticketusecases.ConfirmCloseExecutor
	cancelClose    ticketusecases.CancelCloseExecutor
	transcript     ticketusecases.TranscriptExecutor
	deleteChannel  ticketusecases.DeleteChannelExecutor
	stats          ticketusecases.TicketStatsExecutor
	updateSettings ticketusecases.UpdateSettingsExecutor
	logger         logger.Interface
}

func NewTicketHandler(
	client *discord.Client,
	openTicket ticketusecases.OpenTicketExecutor,
	claimTicket ticketusecases.ClaimTicketExecutor,
	requestClose ticketusecases.RequestCloseExecutor,
	confirmClose ticketusecases.ConfirmCloseExecutor,
	cancelClose ticketusecases.CancelCloseExecutor,
	transcript ticketusecases.TranscriptExecutor,
	deleteChannel ticketusecases.DeleteChannelExecutor,
	stats ticketusecases.TicketStatsExecutor,
	updateSettings ticketusecases.UpdateSettingsExecutor,
	logger logger.Interface,
) *TicketHandler {
	return &TicketHandler{
		client:         client,
		openTicket:     openTicket,
		claimTicket:    claimTicket,
		requestClose:   requestClose,
		confirmClose:   confirmClose,
		cancelClose:    cancelClose,
		transcript:     transcript,
		deleteChannel:  deleteChannel,
		stats:          stats,
		updateSettings: updateSettings,
		logger:         logger,
	}
}

// HandleCommand dispatches /ticket subcommands.
func (h *TicketHandler) HandleCommand(ctx context.Context, i *discord.Interaction) error {
	switch i.Data.Subcommand() {
	case "open":
		return h.handleOpen(ctx, i)
	case "close":
		return h.handleCloseRequest(ctx, i)
	case "claim":
		return h.handleClaim(ctx, i)
	case "transcript":
		return h.handleTranscript(ctx, i)
	case "delete":
		return h.handleDelete(ctx, i)
	case "stats":
		return h.handleStats(ctx, i)
	case "setup":
		return h.handleSetup(ctx, i)
	default:
		return h.client.RespondWithMessage(ctx, i.ID, i.Token, constants.EmoteError+" Unknown ticket subcommand.", true)
	}
}

// HandleComponent dispatches ticket button presses.
func (h *TicketHandler) HandleComponent(ctx context.Context, i *discord.Interaction) error {
	switch i.Data.CustomID {
	case customIDTicketOpen:
		return h.handleOpen(ctx, i)
	case customIDTicketClaim:
		return h.handleClaim(ctx, i)
	case customIDTicketClose:
		return h.handleCloseRequest(ctx, i)
	case customIDTicketCloseConfirm:
		return h.handleCloseConfirm(ctx, i)
	case customIDTicketCloseCancel:
		return h.handleCloseCancel(ctx, i)
	case customIDTicketTranscript:
		return h.handleTranscript(ctx, i)
	case customIDTicketDelete:
		return h.handleDelete(ctx, i)
	default:
		return nil
	}
}

func (h *TicketHandler) handleOpen(ctx context.Context, i *discord.Interaction) error {
	if err := h.client.DeferInteraction(ctx, i.ID, i.Token, true); err != nil {
		return err
	}

	category := ""
	if i.Data != nil {
		if opt := i.Data.Option("category"); opt != nil {
			category = opt.StringValue()
		}
	}

	result, err := h.openTicket.Execute(ctx, ticketusecases.OpenTicketCommand{
		GuildID:  i.GuildID,
		UserID:   interactionUserID(i),
		Category: category,
	})
	if err != nil {
		return h.client.CreateFollowupMessage(ctx, i.Token, discord.InteractionResponseData{
			Content: userErrorMessage(err),
			Flags:   discord.MessageFlagEphemeral,
		})
	}

	if result.Existing {
		return h.client.CreateFollowupMessage(ctx, i.Token, discord.InteractionResponseData{
			Content: fmt.Sprintf("%s You already have an open ticket: <#%s>", constants.EmoteInfo, result.ChannelID),
			Flags:   discord.MessageFlagEphemeral,
		})
	}

	h.postControlMessage(ctx, result.ChannelID, interactionUserID(i), result.Number)

	return h.client.CreateFollowupMessage(ctx, i.Token, discord.InteractionResponseData{
		Content: fmt.Sprintf("%s Ticket #%d created: <#%s>", constants.EmoteTicket, result.Number, result.ChannelID),
		Flags:   discord.MessageFlagEphemeral,
	})
}

// postControlMessage drops the claim/close controls into a fresh ticket
// channel. Failing to post it doesn't fail the open; staff can still act via
// slash commands.
func (h *TicketHandler) postControlMessage(ctx context.Context, channelID, openerID string, number int) {
	_, err := h.client.CreateMessage(ctx, channelID, discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title:       fmt.Sprintf("%s Ticket #%d", constants.EmoteTicket, number),
			Description: fmt.Sprintf("Hello <@%s>, describe your issue and the team will be with you shortly.", openerID),
			Color:       constants.ColorBlue,
		}},
		Components: []discord.Component{
			discord.NewButtonRow(
				discord.NewButton(discord.ButtonStyleSecondary, "Claim", customIDTicketClaim),
				discord.NewButton(discord.ButtonStyleDanger, "Close", customIDTicketClose),
			),
		},
	})
	if err != nil {
		h.logger.Warnw("failed to post ticket control message", "channel_id", channelID, "error", err)
	}
}

func (h *TicketHandler) handleClaim(ctx context.Context, i *discord.Interaction) error {
	result, err := h.claimTicket.Execute(ctx, ticketusecases.ClaimTicketCommand{
		ChannelID: i.ChannelID,
		UserID:    interactionUserID(i),
	})
	if err != nil {
		return h.client.RespondWithMessage(ctx, i.ID, i.Token, userErrorMessage(err), true)
	}

	content := fmt.Sprintf("%s Ticket #%d is now handled by <@%s>.", constants.EmoteClaim, result.Number, result.ClaimedBy)
	return h.client.RespondWithMessage(ctx, i.ID, i.Token, content, false)
}

func (h *TicketHandler) handleCloseRequest(ctx context.Context, i *discord.Interaction) error {
	result, err := h.requestClose.Execute(ctx, ticketusecases.RequestCloseCommand{
		ChannelID:   i.ChannelID,
		RequestedBy: interactionUserID(i),
	})
	if err != nil {
		return h.client.RespondWithMessage(ctx, i.ID, i.Token, userErrorMessage(err), true)
	}

	return h.client.RespondToInteraction(ctx, i.ID, i.Token, discord.InteractionResponse{
		Type: discord.CallbackTypeChannelMessage,
		Data: &discord.InteractionResponseData{
			Content: fmt.Sprintf("%s Close ticket #%d? Confirm within 30 seconds.", constants.EmoteWarning, result.Number),
			Components: []discord.Component{
				discord.NewButtonRow(
					discord.NewButton(discord.ButtonStyleDanger, "Confirm close", customIDTicketCloseConfirm),
					discord.NewButton(discord.ButtonStyleSecondary, "Cancel", customIDTicketCloseCancel),
				),
			},
		},
	})
}

func (h *TicketHandler) handleCloseConfirm(ctx context.Context, i *discord.Interaction) error {
	result, err := h.confirmClose.Execute(ctx, ticketusecases.ConfirmCloseCommand{
		ChannelID:   i.ChannelID,
		ConfirmedBy: interactionUserID(i),
	})
	if err != nil {
		return h.client.RespondWithMessage(ctx, i.ID, i.Token, userErrorMessage(err), true)
	}

	return h.client.RespondToInteraction(ctx, i.ID, i.Token, discord.InteractionResponse{
		Type: discord.CallbackTypeChannelMessage,
		Data: &discord.InteractionResponseData{
			Content: fmt.Sprintf("%s Ticket #%d closed by <@%s>.", constants.EmoteClosed, result.Number, result.ClosedBy),
			Components: []discord.Component{
				discord.NewButtonRow(
					discord.NewButton(discord.ButtonStyleSecondary, "Transcript", customIDTicketTranscript),
					discord.NewButton(discord.ButtonStyleDanger, "Delete channel", customIDTicketDelete),
				),
			},
		},
	})
}

func (h *TicketHandler) handleCloseCancel(ctx context.Context, i *discord.Interaction) error {
	if err := h.cancelClose.Execute(ctx, ticketusecases.CancelCloseCommand{ChannelID: i.ChannelID}); err != nil {
		return h.client.RespondWithMessage(ctx, i.ID, i.Token, userErrorMessage(err), true)
	}
	return h.client.RespondWithMessage(ctx, i.ID, i.Token, constants.EmoteSuccess+" Close cancelled, the ticket stays open.", false)
}

func (h *TicketHandler) handleTranscript(ctx context.Context, i *discord.Interaction) error {
	if err := h.client.DeferInteraction(ctx, i.ID, i.Token, false); err != nil {
		return err
	}

	result, err := h.transcript.Execute(ctx, ticketusecases.TranscriptCommand{ChannelID: i.ChannelID})
	if err != nil {
		return h.client.CreateFollowupMessage(ctx, i.Token, discord.InteractionResponseData{
			Content: userErrorMessage(err),
			Flags:   discord.MessageFlagEphemeral,
		})
	}

	preview := result.Content
	truncated := false
	if len(preview) > transcriptPreviewLimit {
		preview = truncateUTF8(preview, transcriptPreviewLimit)
		truncated = true
	}
	content := fmt.Sprintf("%s `%s` (%d messages)\n```\n%s\n```",
		constants.EmoteScroll, result.FileName, result.MessageCount, preview)
	if truncated {
		content += "\n" + constants.EmoteInfo + " Transcript truncated."
	}

	return h.client.CreateFollowupMessage(ctx, i.Token, discord.InteractionResponseData{Content: content})
}

// truncateUTF8 cuts s to at most limit bytes without splitting a rune.
func truncateUTF8(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

func (h *TicketHandler) handleDelete(ctx context.Context, i *discord.Interaction) error {
	if err := h.client.RespondWithMessage(ctx, i.ID, i.Token,
		constants.EmoteTrash+" Deleting this channel in 5 seconds.", false); err != nil {
		return err
	}

	channelID := i.ChannelID
	goroutine.SafeGo(h.logger, "ticket-delete-channel", func() {
		deleteCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := h.deleteChannel.Execute(deleteCtx, ticketusecases.DeleteChannelCommand{ChannelID: channelID}); err != nil {
			h.logger.Errorw("failed to delete ticket channel", "channel_id", channelID, "error", err)
		}
	})

	return nil
}

func (h *TicketHandler) handleStats(ctx context.Context, i *discord.Interaction) error {
	result, err := h.stats.Execute(ctx, ticketusecases.TicketStatsQuery{GuildID: i.GuildID})
	if err != nil {
		return h.client.RespondWithMessage(ctx, i.ID, i.Token, userErrorMessage(err), true)
	}

	return h.client.RespondToInteraction(ctx, i.ID, i.Token, discord.InteractionResponse{
		Type: discord.CallbackTypeChannelMessage,
		Data: &discord.InteractionResponseData{
			Embeds: []discord.Embed{{
				Title: constants.EmoteStats + " Ticket statistics",
				Color: constants.ColorBlue,
				Fields: []discord.EmbedField{
					{Name: "Total", Value: fmt.Sprintf("%d", result.Total), Inline: true},
					{Name: "Open", Value: fmt.Sprintf("%d", result.Open), Inline: true},
					{Name: "Closed", Value: fmt.Sprintf("%d", result.Closed), Inline: true},
				},
			}},
		},
	})
}

// handleSetup persists the ticket settings named in the options and posts
// the panel message members open tickets from.
func (h *TicketHandler) handleSetup(ctx context.Context, i *discord.Interaction) error {
	patch := ticket.SettingsPatch{}
	panelChannelID := i.ChannelID
	if opt := i.Data.Option("channel"); opt != nil {
		panelChannelID = opt.StringValue()
	}
	patch.PanelChannelID = &panelChannelID
	if opt := i.Data.Option("role"); opt != nil {
		v := opt.StringValue()
		patch.ManagerRoleID = &v
	}
	if opt := i.Data.Option("logs"); opt != nil {
		v := opt.StringValue()
		patch.LogChannelID = &v
	}

	if err := h.updateSettings.Execute(ctx, ticketusecases.UpdateSettingsCommand{
		GuildID: i.GuildID,
		Patch:   patch,
	}); err != nil {
		return h.client.RespondWithMessage(ctx, i.ID, i.Token, userErrorMessage(err), true)
	}

	_, err := h.client.CreateMessage(ctx, panelChannelID, discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title:       constants.EmoteTicket + " Support",
			Description: "Need help? Press the button below to open a private ticket with the team.",
			Color:       constants.ColorBlue,
		}},
		Components: []discord.Component{
			discord.NewButtonRow(
				discord.NewButton(discord.ButtonStylePrimary, "Open a ticket", customIDTicketOpen),
			),
		},
	})
	if err != nil {
		h.logger.Errorw("failed to post ticket panel", "channel_id", panelChannelID, "error", err)
		return h.client.RespondWithMessage(ctx, i.ID, i.Token,
			constants.EmoteWarning+" Settings saved, but posting the panel failed.", true)
	}

	return h.client.RespondWithMessage(ctx, i.ID, i.Token,
		constants.EmoteSuccess+" Ticket panel posted and settings saved.", true)
}
