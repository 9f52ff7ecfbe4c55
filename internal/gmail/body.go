package gmail

import (
	"encoding/base64"
	"strings"

	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/jobtrail/jobtrail/pkg/models"
)

// ReconstructBodies walks the MIME part tree depth first and accumulates
// the plain-text and HTML bodies. Multiple text parts at different nesting
// depths are concatenated in traversal order. A part that fails to decode
// contributes nothing rather than failing the whole message.
func ReconstructBodies(payload *gmailapi.MessagePart) (bodyText, bodyHTML string) {
	if payload == nil {
		return "", ""
	}

	if len(payload.Parts) == 0 {
		// Leaf message: the root is the single part
		return decodeByType(payload)
	}

	for _, part := range payload.Parts {
		switch {
		case part.MimeType == "text/plain" || part.MimeType == "text/html":
			text, html := decodeByType(part)
			bodyText += text
			bodyHTML += html
		case strings.HasPrefix(part.MimeType, "multipart/"):
			text, html := ReconstructBodies(part)
			bodyText += text
			bodyHTML += html
		}
	}
	return bodyText, bodyHTML
}

func decodeByType(part *gmailapi.MessagePart) (bodyText, bodyHTML string) {
	if part.Body == nil {
		return "", ""
	}
	switch part.MimeType {
	case "text/plain":
		return decodeBody(part.Body.Data), ""
	case "text/html":
		return "", decodeBody(part.Body.Data)
	}
	return "", ""
}

// decodeBody decodes the base64url body data Gmail returns, which usually
// arrives without padding. An undecodable body yields the empty string.
func decodeBody(data string) string {
	if data == "" {
		return ""
	}
	if b, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return string(b)
	}
	if b, err := base64.URLEncoding.DecodeString(data); err == nil {
		return string(b)
	}
	return ""
}

// CollectAttachments walks the part tree depth first and collects every
// part carrying both a filename and an attachment reference, preserving
// traversal order. Size defaults to 0 when the provider omits it.
func CollectAttachments(payload *gmailapi.MessagePart) []models.Attachment {
	if payload == nil {
		return nil
	}

	var attachments []models.Attachment
	for _, part := range payload.Parts {
		if part.Filename != "" && part.Body != nil && part.Body.AttachmentId != "" {
			attachments = append(attachments, models.Attachment{
				Filename:     part.Filename,
				MimeType:     part.MimeType,
				AttachmentID: part.Body.AttachmentId,
				Size:         part.Body.Size,
			})
		}
		if len(part.Parts) > 0 {
			attachments = append(attachments, CollectAttachments(part)...)
		}
	}
	return attachments
}
