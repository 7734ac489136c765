package bot

import (
	"rubybot/internal/infrastructure/discord"
	"rubybot/internal/shared/constants"
	apperrors "rubybot/internal/shared/errors"
)

// userErrorMessage turns an application error into the short line shown to
// the member who triggered the interaction. Internal details never leak.
func userErrorMessage(err error) string {
	appErr := apperrors.GetAppError(err)
	if appErr == nil {
		return constants.EmoteError + " Something went wrong, please try again."
	}

	switch appErr.Type {
	case apperrors.ErrorTypeValidation,
		apperrors.ErrorTypeNotFound,
		apperrors.ErrorTypeConflict:
		return constants.EmoteError + " " + appErr.Message
	case apperrors.ErrorTypeForbidden:
		return constants.EmoteError + " You are not allowed to do that."
	case apperrors.ErrorTypeUnavailable:
		return constants.EmoteWarning + " " + appErr.Message
	default:
		return constants.EmoteError + " Something went wrong, please try again."
	}
}

// interactionUser resolves the acting user from either the guild member or
// the DM shape of the interaction.
func interactionUser(i *discord.Interaction) *discord.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

func interactionUserID(i *discord.Interaction) string {
	if u := interactionUser(i); u != nil {
		return u.ID
	}
	return ""
}
