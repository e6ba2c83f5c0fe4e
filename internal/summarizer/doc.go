// Package summarizer produces short factual summaries of mail messages via
// an OpenAI-compatible chat-completion endpoint.
//
// The model is instructed to answer in one of two modes under a strict JSON
// contract with exactly three fields (title, bullets, isReceipt): a bulleted
// factual summary for regular mail, or a single-line receipt summary with no
// bullets for receipts and invoices. Degenerate input yields a fixed
// sentinel title.
//
// Output is defensively normalized regardless of model correctness: a
// missing title falls back to a literal, a non-array bullets field becomes
// empty, and isReceipt is accepted only as the exact JSON boolean true.
//
// The summarizer fails closed: a missing credential, transport error, bad
// status, or unparseable output all yield an absent summary, never an error
// to the caller.
package summarizer
