package gmail

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/jobtrail/jobtrail/internal/htmltext"
	"github.com/jobtrail/jobtrail/pkg/models"
)

const snippetLength = 160

// GetMessage fetches one message in full and maps it onto the typed
// Message model: headers, recipients, date, reconstructed bodies, and the
// attachment manifest.
func (c *Client) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	var raw *gmailapi.Message
	err := c.withRetry(ctx, func(callCtx context.Context) error {
		var err error
		raw, err = c.svc.Users.Messages.
			Get(user, id).
			Format("full").
			Context(callCtx).
			Do()
		return err
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch message %s: %w", id, err)
	}

	msg := &models.Message{
		ID:       raw.Id,
		ThreadID: raw.ThreadId,
		Snippet:  raw.Snippet,
	}

	if raw.Payload != nil {
		headers := raw.Payload.Headers
		msg.Subject = headerValue(headers, "Subject")
		msg.Sender = headerValue(headers, "From")
		msg.RecipientsTo = splitRecipients(headerValue(headers, "To"))
		msg.RecipientsCc = splitRecipients(headerValue(headers, "Cc"))
		msg.RecipientsBcc = splitRecipients(headerValue(headers, "Bcc"))
		msg.Date = normalizeDate(headerValue(headers, "Date"))

		msg.BodyText, msg.BodyHTML = ReconstructBodies(raw.Payload)
		msg.Attachments = CollectAttachments(raw.Payload)
	}

	if msg.RecipientsTo == nil {
		msg.RecipientsTo = []string{}
	}
	if msg.RecipientsCc == nil {
		msg.RecipientsCc = []string{}
	}
	if msg.RecipientsBcc == nil {
		msg.RecipientsBcc = []string{}
	}
	if msg.Attachments == nil {
		msg.Attachments = []models.Attachment{}
	}

	if msg.Snippet == "" {
		msg.Snippet = fallbackSnippet(msg.BodyText, msg.BodyHTML)
	}

	return msg, nil
}

// headerValue does a case-insensitive lookup by header name. First match
// wins; an absent header yields the empty string.
func headerValue(headers []*gmailapi.MessagePartHeader, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// splitRecipients breaks a recipient header into address strings: split on
// commas, trim whitespace, drop empties. Display names are deliberately
// not separated from addresses.
func splitRecipients(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	recipients := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			recipients = append(recipients, p)
		}
	}
	return recipients
}

// normalizeDate parses an RFC-2822-ish Date header to RFC3339. When
// parsing fails the verbatim header text is kept, so downstream consumers
// must tolerate both forms.
func normalizeDate(raw string) string {
	if raw == "" {
		return ""
	}
	t, err := mail.ParseDate(raw)
	if err != nil {
		return raw
	}
	return t.UTC().Format(time.RFC3339)
}

func fallbackSnippet(bodyText, bodyHTML string) string {
	if bodyText != "" {
		text := strings.Join(strings.Fields(bodyText), " ")
		runes := []rune(text)
		if len(runes) > snippetLength {
			return string(runes[:snippetLength])
		}
		return text
	}
	return htmltext.Snippet(bodyHTML, snippetLength)
}
