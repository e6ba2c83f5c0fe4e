package summarizer

import (
	"fmt"

	"github.com/djokobozinov/email-ai-agent/internal/gmail"
)

// MaxBodyChars bounds how much of the message body is submitted to the
// model. Bodies are never truncated at rest, only in the prompt.
const MaxBodyChars = 8000

// systemPrompt is the output contract sent with every summarization call.
// Classification between the two response modes is the model's
// responsibility, not the pipeline's.
const systemPrompt = `You summarize emails factually and concisely. Output valid JSON only.

For REGULAR emails, use:
{"title": "Short title", "bullets": ["Bullet 1", "Bullet 2", "Bullet 3"], "isReceipt": false}

For RECEIPTS or INVOICES (payment confirmation, purchase receipt, subscription bill, etc.), use:
{"title": "🧾 [Summary: vendor, amount, due date if any. Important – need to pay/action.]", "bullets": [], "isReceipt": true}

Rules:
- Regular: 1 title, 2-3 bullets maximum. Preserve key facts: who, what, when, numbers. No advice, opinions, or suggestions.
- Receipts/invoices: No bullets. Put a concise summary in title. Include 🧾 emoji. Add "Important – need to pay" (or similar) if action is needed. Preserve: vendor, amount, due date, reference numbers.
- If email is empty, promotional, or has no meaningful content, return:
  {"title": "No meaningful content to summarize", "bullets": [], "isReceipt": false}`

// userContent renders the message headers plus the bounded body prefix into
// the user turn of the summarization call.
func userContent(msg *gmail.Message) string {
	body := msg.Body
	if len(body) > MaxBodyChars {
		body = body[:MaxBodyChars]
	}
	return fmt.Sprintf("From: %s\nSubject: %s\n\n%s", msg.From, msg.Subject, body)
}
