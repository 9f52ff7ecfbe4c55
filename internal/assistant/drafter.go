package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/jobtrail/jobtrail/internal/htmltext"
	"github.com/jobtrail/jobtrail/internal/llm"
	"github.com/jobtrail/jobtrail/pkg/models"
)

// bodyContextLimit bounds how much thread content goes into a prompt
const bodyContextLimit = 2000

// Drafter generates outgoing email drafts with the model backend
type Drafter struct {
	completer llm.Completer
}

// NewDrafter creates a new drafter
func NewDrafter(completer llm.Completer) *Drafter {
	return &Drafter{completer: completer}
}

// FollowUp drafts a follow-up to a previously sent message. userContext is
// free-form guidance from the user ("I haven't heard back yet", etc.).
func (d *Drafter) FollowUp(ctx context.Context, msg *models.Message, userContext string) (string, error) {
	if userContext == "" {
		userContext = "I haven't heard back yet. Keep it short."
	}

	body := msg.BodyText
	if body == "" && msg.BodyHTML != "" {
		if text, err := htmltext.Convert(msg.BodyHTML); err == nil {
			body = text
		}
	}
	if len(body) > bodyContextLimit {
		body = body[:bodyContextLimit]
	}

	threadContent := fmt.Sprintf("Subject: %s\nFrom: %s\nBody:\n%s", msg.Subject, msg.Sender, body)
	recipient := strings.Join(msg.RecipientsTo, ", ")

	prompt := fmt.Sprintf(followUpTemplate, recipient, msg.Subject, msg.Date, threadContent, userContext)

	draft, err := d.completer.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("follow-up draft failed: %w", err)
	}
	return draft, nil
}

// ColdEmail drafts a cold outreach email
func (d *Drafter) ColdEmail(ctx context.Context, recipient, topic, background, goal string) (string, error) {
	prompt := fmt.Sprintf(coldEmailTemplate, recipient, topic, background, goal)

	draft, err := d.completer.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("cold email draft failed: %w", err)
	}
	return draft, nil
}
