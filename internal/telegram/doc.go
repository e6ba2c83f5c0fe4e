// Package telegram delivers message summaries to a Telegram chat.
//
// Notifications are formatted as plain text: an optional category glyph
// derived from the message's Gmail labels, the sender and subject on their
// own lines, then either the receipt title or the summary bullets. A raw
// delivery mode bypasses formatting for diagnostics.
//
// Delivery is a single HTTPS POST to the bot sendMessage endpoint with a
// JSON body {chat_id, text}. Missing credentials and transport failures
// both surface as a false return, never as an error.
package telegram
