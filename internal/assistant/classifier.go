package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jobtrail/jobtrail/internal/llm"
)

// jobKeywords marks job/career vocabulary. Matching is by substring over
// the lower-cased subject+snippet, so keep entries lower-case.
var jobKeywords = []string{
	"job", "career", "position", "opportunity", "application", "applying",
	"interview", "recruiter", "recruiting", "hiring", "resume", "cv",
	"internship", "candidate", "offer letter", "referral",
}

// trashKeywords marks newsletter/marketing/billing/OTP vocabulary
var trashKeywords = []string{
	"unsubscribe", "newsletter", "sale", "% off", "discount", "promo",
	"invoice", "receipt", "billing", "payment due", "verification code",
	"one-time password", "otp", "webinar", "limited time",
}

// Classifier decides whether a message is job related. Obvious cases are
// settled by keyword scoring alone; only ambiguous input reaches the model.
type Classifier struct {
	completer llm.Completer
	logger    *slog.Logger
}

// NewClassifier creates a new relevance classifier
func NewClassifier(completer llm.Completer, logger *slog.Logger) *Classifier {
	return &Classifier{
		completer: completer,
		logger:    logger.With("component", "classifier"),
	}
}

// Classify returns whether the message is job related. The keyword gate is
// deterministic; the model fallback is a single call with no retry, and its
// failure is the caller's to handle.
func (c *Classifier) Classify(ctx context.Context, subject, snippet string) (bool, error) {
	blob := strings.ToLower(subject + " " + snippet)

	jobScore := scoreKeywords(blob, jobKeywords)
	trashScore := scoreKeywords(blob, trashKeywords)

	if jobScore >= 2 && trashScore == 0 {
		return true, nil
	}
	if trashScore >= 2 && jobScore == 0 {
		return false, nil
	}

	c.logger.Debug("keyword gate inconclusive, asking model",
		"job_score", jobScore, "trash_score", trashScore)

	prompt := fmt.Sprintf(classifyTemplate, subject, snippet)
	response, err := c.completer.Complete(ctx, prompt)
	if err != nil {
		return false, fmt.Errorf("classification fallback failed: %w", err)
	}

	return strings.Contains(strings.ToUpper(response), "YES"), nil
}

// scoreKeywords sums substring occurrences of every keyword in the blob
func scoreKeywords(blob string, keywords []string) int {
	score := 0
	for _, kw := range keywords {
		score += strings.Count(blob, kw)
	}
	return score
}
