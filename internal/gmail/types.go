package gmail

// Message is the pipeline's normalized representation of a fetched mail
// message, independent of the Gmail wire format. It is constructed fresh per
// fetch, never mutated, and discarded once the pipeline step completes.
type Message struct {
	// ID is the source-assigned message identifier, unique within an
	// account and stable across fetches.
	ID string

	// From and Subject are display strings and may be empty.
	From    string
	Subject string

	// Body is the decoded plain-text content. It is never truncated here;
	// the summarizer bounds what it submits to the model.
	Body string

	// LabelIDs are the category tags the source attached to the message.
	// Order is irrelevant; they are only used for notification annotation.
	LabelIDs []string
}

// HasLabel reports whether the message carries the given label ID.
func (m *Message) HasLabel(label string) bool {
	for _, l := range m.LabelIDs {
		if l == label {
			return true
		}
	}
	return false
}
