package telegram

import (
	"strings"

	"github.com/djokobozinov/email-ai-agent/internal/gmail"
	"github.com/djokobozinov/email-ai-agent/internal/summarizer"
)

// Gmail category labels that earn a glyph prefix in the notification.
const (
	labelSocial     = "CATEGORY_SOCIAL"
	labelPromotions = "CATEGORY_PROMOTIONS"
)

const (
	glyphSocial     = "👥 "
	glyphPromotions = "🏷️ "
	bulletMarker    = "– "
)

// categoryGlyph returns the prefix for the message's category. Social wins
// over promotions when both labels are present; no category means no prefix.
func categoryGlyph(msg *gmail.Message) string {
	if msg.HasLabel(labelSocial) {
		return glyphSocial
	}
	if msg.HasLabel(labelPromotions) {
		return glyphPromotions
	}
	return ""
}

// FormatMessage renders a message and its summary into the notification
// text: category glyph, sender and subject on their own lines, then either
// the receipt title or the bullets one per line.
func FormatMessage(msg *gmail.Message, summary *summarizer.Summary) string {
	var b strings.Builder

	b.WriteString(categoryGlyph(msg))
	b.WriteString(msg.From)
	b.WriteString("\n")
	b.WriteString(msg.Subject)
	b.WriteString("\n\n")

	if summary.IsReceipt {
		b.WriteString(summary.Title)
	} else {
		for i, bullet := range summary.Bullets {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(bulletMarker)
			b.WriteString(bullet)
		}
	}

	return strings.TrimSpace(b.String())
}
