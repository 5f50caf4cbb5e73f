package bot

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"kinobot/internal/catalog"
	"kinobot/internal/models"
	"kinobot/internal/wizard"
)

const (
	textJoinPrompt    = "Botdan foydalanish uchun kanallarga obuna bo‘ling:"
	textJoinStill     = "❌ Hali barcha kanallarga obuna bo‘lmadingiz."
	textJoinOK        = "✅ Obuna tasdiqlandi."
	textWelcome       = "🎬 Kino botga xush kelibsiz!\nFilm kodini yuboring:"
	textSendCode      = "🔢 Film kodini raqam bilan yuboring."
	textMovieNotFound = "❌ Bunday ID bo‘yicha film topilmadi."
	textAdminPanel    = "👮 Admin panel:"
	textNotAdmin      = "⛔ Bu bo‘lim faqat adminlar uchun."
	textCancelled     = "❌ Bekor qilindi."
	textNothingToStop = "ℹ️ Faol amal yo‘q."
	textUseMenu       = "ℹ️ Admin panel tugmalaridan foydalaning."
	textSaveFailed    = "⚠️ Saqlashda xatolik yuz berdi, qayta urinib ko‘ring."

	textPromptMovieCode     = "📌 Kino raqamini yuboring:"
	textPromptMovieTitle    = "🎬 Kino nomini yuboring:"
	textPromptMovieMedia    = "🎥 Kino videosini yuboring:"
	textPromptDeleteMovie   = "🗑 O‘chiriladigan kino raqamini yuboring:"
	textPromptNewChannel    = "➕ Kanal username yoki ID yuboring:"
	textPromptRemoveChannel = "🗑 Qaysi kanalni o‘chirmoqchisiz?\n\n"
	textPromptBroadcast     = "📨 Yuboriladigan xabarni kiriting:"

	textNeedDigits  = "❌ Raqam yozing."
	textNeedText    = "❌ Matn yuboring."
	textNeedVideo   = "❌ Video yuboring."
	textBadChannel  = "❌ Kanal @username yoki -100 bilan boshlanadigan ID bo‘lishi kerak."
	textNoMovies    = "📭 Hali kino qo‘shilmagan."
	textNoChannels  = "❌ Hali kanal qo‘shilmagan."
	textChannelDup  = "❌ Bu kanal allaqachon mavjud."
	textChannelGone = "❌ Kanal topilmadi."
	textBroadcastGo = "⏳ Xabar yuborilmoqda..."
)

func movieAddedText(m *models.Movie) string {
	return fmt.Sprintf("✅ Kino qo‘shildi:\nID: %s\nNomi: %s", m.Code, m.Title)
}

func movieDeletedText(code string, found bool) string {
	if !found {
		return fmt.Sprintf("❌ %s raqamli kino topilmadi.", code)
	}
	return fmt.Sprintf("🗑 Kino o‘chirildi: %s", code)
}

func channelAddedText(id string) string {
	return "✅ Kanal qo‘shildi: " + id
}

func channelRemovedText(id string) string {
	return "🗑 Kanal o‘chirildi: " + id
}

func broadcastDoneText(delivered int) string {
	return fmt.Sprintf("✅ Xabar %d ta foydalanuvchiga yuborildi.", delivered)
}

func movieListText(entries []catalog.Entry) string {
	if len(entries) == 0 {
		return textNoMovies
	}
	var sb strings.Builder
	sb.WriteString("🎞 Kinolar ro‘yxati:\n\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "ID: %s | %s\n", e.Code, e.Title)
	}
	return sb.String()
}

func channelListText(channels []models.Channel) string {
	if len(channels) == 0 {
		return textNoChannels
	}
	var sb strings.Builder
	sb.WriteString("📡 Kanallar:\n\n")
	for i, ch := range channels {
		fmt.Fprintf(&sb, "%d. %s (%s)\n", i+1, ch.ID, ch.Kind)
	}
	return sb.String()
}

func removeChannelPromptText(channels []models.Channel) string {
	ids := make([]string, 0, len(channels))
	for _, ch := range channels {
		ids = append(ids, ch.ID)
	}
	return textPromptRemoveChannel + strings.Join(ids, "\n")
}

// maxMessageRunes is Telegram's limit on the text of one message.
const maxMessageRunes = 4096

// splitMessage cuts text into pieces of at most limit runes, breaking on
// line boundaries. A single line longer than limit is cut mid-line.
func splitMessage(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var (
		chunks []string
		cur    strings.Builder
		n      int
	)
	flush := func() {
		if chunk := strings.TrimRight(cur.String(), "\n"); chunk != "" {
			chunks = append(chunks, chunk)
		}
		cur.Reset()
		n = 0
	}
	for _, line := range strings.SplitAfter(text, "\n") {
		for utf8.RuneCountInString(line) > limit {
			flush()
			runes := []rune(line)
			chunks = append(chunks, string(runes[:limit]))
			line = string(runes[limit:])
		}
		size := utf8.RuneCountInString(line)
		if n+size > limit {
			flush()
		}
		cur.WriteString(line)
		n += size
	}
	flush()
	return chunks
}

// StatsText renders the counters shown by the stats button and the daily report.
func StatsText(users, movies, channels int) string {
	return fmt.Sprintf("📊 Statistika\n\n👥 Foydalanuvchilar: %d\n🎬 Kinolar: %d\n📡 Kanallar: %d", users, movies, channels)
}

func promptText(step wizard.Step) string {
	switch step {
	case wizard.StepMovieCode:
		return textPromptMovieCode
	case wizard.StepMovieTitle:
		return textPromptMovieTitle
	case wizard.StepMovieMedia:
		return textPromptMovieMedia
	case wizard.StepDeleteMovie:
		return textPromptDeleteMovie
	case wizard.StepNewChannel:
		return textPromptNewChannel
	case wizard.StepChannelRemoval:
		return textPromptRemoveChannel
	case wizard.StepBroadcastMessage:
		return textPromptBroadcast
	default:
		return textUseMenu
	}
}

func problemText(p wizard.Problem) string {
	switch p {
	case wizard.ProblemNeedDigits:
		return textNeedDigits
	case wizard.ProblemNeedText:
		return textNeedText
	case wizard.ProblemNeedVideo:
		return textNeedVideo
	case wizard.ProblemBadChannel:
		return textBadChannel
	default:
		return textUseMenu
	}
}
