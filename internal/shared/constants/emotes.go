package constants

// Emote strings used in user-facing bot messages.
const (
	EmoteSuccess = "✅"
	EmoteError   = "❌"
	EmoteWarning = "⚠️"
	EmoteInfo    = "ℹ️"
	EmoteLoading = "⏳"
	EmoteTicket  = "🎫"
	EmoteClosed  = "🔒"
	EmoteClaim   = "✋"
	EmoteStats   = "📊"
	EmoteScroll  = "📜"
	EmoteTrash   = "🗑️"
	EmoteWave    = "👋"
	EmoteMusic   = "🎵"
)
