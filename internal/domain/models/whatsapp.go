package models

// WebhookPayload is the subset of a WhatsApp Cloud API callback the command
// channel reads.
type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

type WebhookChange struct {
	Value WebhookValue `json:"value"`
	Field string       `json:"field"`
}

// WebhookValue carries either inbound messages or delivery receipts.
type WebhookValue struct {
	Messages []InboundMessage `json:"messages"`
	Statuses []MessageStatus  `json:"statuses"`
}

// Messages flattens every inbound message in the payload, in delivery order.
func (p WebhookPayload) Messages() []InboundMessage {
	var out []InboundMessage
	for _, entry := range p.Entry {
		for _, change := range entry.Changes {
			out = append(out, change.Value.Messages...)
		}
	}
	return out
}

// InboundMessage is a message sent by a farmer to the business number.
type InboundMessage struct {
	From        string              `json:"from"`
	ID          string              `json:"id"`
	Timestamp   string              `json:"timestamp"`
	Type        string              `json:"type"`
	Text        *TextContent        `json:"text,omitempty"`
	Interactive *InteractiveContent `json:"interactive,omitempty"`
	Image       *MediaContent       `json:"image,omitempty"`
	Audio       *MediaContent       `json:"audio,omitempty"`
	Document    *MediaContent       `json:"document,omitempty"`
}

// CommandText returns the text a command is parsed from: the typed body, or
// the id of a tapped button or list row. Media messages yield "".
func (m InboundMessage) CommandText() string {
	switch {
	case m.Text != nil:
		return m.Text.Body
	case m.Interactive == nil:
		return ""
	case m.Interactive.ButtonReply != nil:
		return m.Interactive.ButtonReply.ID
	case m.Interactive.ListReply != nil:
		return m.Interactive.ListReply.ID
	}
	return ""
}

type TextContent struct {
	Body string `json:"body"`
}

// InteractiveContent is a reply to a button or list prompt.
type InteractiveContent struct {
	Type        string       `json:"type"`
	ButtonReply *ButtonReply `json:"button_reply,omitempty"`
	ListReply   *ListReply   `json:"list_reply,omitempty"`
}

type ButtonReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type ListReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// MediaContent identifies an attachment. Attachments are never downloaded.
type MediaContent struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
}

// MessageStatus is a delivery or read receipt for an outbound alert.
type MessageStatus struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	RecipientID string `json:"recipient_id"`
}
