package models

import "time"

// Message represents one ingested sent-mail item
type Message struct {
	ID            string       `db:"id" json:"id"`
	ThreadID      string       `db:"thread_id" json:"thread_id"`
	Date          string       `db:"date" json:"date"` // RFC3339, or the verbatim Date header when parsing failed
	Sender        string       `db:"sender" json:"sender"`
	RecipientsTo  []string     `json:"recipients_to"`
	RecipientsCc  []string     `json:"recipients_cc"`
	RecipientsBcc []string     `json:"recipients_bcc"`
	Subject       string       `db:"subject" json:"subject"`
	BodyText      string       `db:"body_text" json:"body_text"`
	BodyHTML      string       `db:"body_html" json:"body_html"`
	Attachments   []Attachment `json:"attachments"`
	Snippet       string       `db:"snippet" json:"snippet"`
	IsJobRelated  *bool        `db:"is_job_related" json:"is_job_related"` // nil until classified
	LastSynced    time.Time    `db:"last_synced" json:"last_synced"`
}

// Attachment is an attachment reference embedded in a Message. The bytes
// stay with the mail provider and are fetched on demand via AttachmentID.
type Attachment struct {
	Filename     string `json:"filename"`
	MimeType     string `json:"mime_type"`
	AttachmentID string `json:"attachment_id"`
	Size         int64  `json:"size"`
}

// MessageSummary is the compact projection used for free-text filtering
type MessageSummary struct {
	ID      string `db:"id" json:"id"`
	Sender  string `db:"sender" json:"sender"`
	Subject string `db:"subject" json:"subject"`
	Date    string `db:"date" json:"date"`
}
