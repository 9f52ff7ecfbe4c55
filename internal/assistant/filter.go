package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jobtrail/jobtrail/pkg/models"
)

// FilterEmails matches a batch of message summaries against a free-text
// prompt in one model call. The contract is lossy but never fails: a
// backend error or unparsable response yields an empty result set.
func (c *Classifier) FilterEmails(ctx context.Context, msgs []models.MessageSummary, prompt string) []string {
	if len(msgs) == 0 {
		return []string{}
	}

	var lines strings.Builder
	for _, m := range msgs {
		fmt.Fprintf(&lines, "%s | %s | %s | %s\n", m.ID, m.Sender, m.Subject, m.Date)
	}

	response, err := c.completer.Complete(ctx, fmt.Sprintf(filterTemplate, lines.String(), prompt))
	if err != nil {
		c.logger.Warn("filter call failed, returning no matches", "error", err)
		return []string{}
	}

	return extractIDArray(response)
}

// extractIDArray pulls a JSON string array out of free-form model output by
// slicing between the first '[' and the last ']'. Surrounding commentary is
// tolerated; anything unparsable becomes an empty set.
func extractIDArray(response string) []string {
	start := strings.Index(response, "[")
	end := strings.LastIndex(response, "]")
	if start == -1 || end == -1 || end < start {
		return []string{}
	}

	var ids []string
	if err := json.Unmarshal([]byte(response[start:end+1]), &ids); err != nil {
		return []string{}
	}
	if ids == nil {
		ids = []string{}
	}
	return ids
}
