package gmail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
)

const (
	user = "me"
	// Gmail caps a single listing page at 500 ids
	maxPageSize = 500
)

// ErrNotFound is returned when the provider has no such message or attachment
var ErrNotFound = errors.New("gmail: not found")

// Client reads a user's mail through the Gmail API
type Client struct {
	svc     *gmailapi.Service
	label   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewClient creates a new Gmail client scoped to one label
func NewClient(svc *gmailapi.Service, label string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		svc:     svc,
		label:   label,
		timeout: timeout,
		logger:  logger.With("component", "gmail"),
	}
}

// ListMessageIDs pages through the configured label and returns up to max
// message ids in listing order. A failed page aborts further paging but the
// ids accumulated so far are still returned; an error surfaces only when
// the very first page fails and there is nothing to return.
func (c *Client) ListMessageIDs(ctx context.Context, max int64) ([]string, error) {
	var ids []string
	pageToken := ""

	for int64(len(ids)) < max {
		pageSize := max - int64(len(ids))
		if pageSize > maxPageSize {
			pageSize = maxPageSize
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		call := c.svc.Users.Messages.List(user).
			LabelIds(c.label).
			MaxResults(pageSize).
			Context(callCtx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		cancel()
		if err != nil {
			if len(ids) == 0 {
				return nil, fmt.Errorf("failed to list messages: %w", err)
			}
			c.logger.Warn("message listing degraded, keeping partial results",
				"collected", len(ids), "error", err)
			break
		}

		for _, m := range resp.Messages {
			ids = append(ids, m.Id)
			if int64(len(ids)) >= max {
				break
			}
		}

		pageToken = resp.NextPageToken
		if pageToken == "" || len(resp.Messages) == 0 {
			break
		}
	}

	return ids, nil
}

// GetAttachment fetches and decodes attachment bytes by message and
// attachment id.
func (c *Client) GetAttachment(ctx context.Context, messageID, attachmentID string) ([]byte, error) {
	var att *gmailapi.MessagePartBody
	err := c.withRetry(ctx, func(callCtx context.Context) error {
		var err error
		att, err = c.svc.Users.Messages.Attachments.
			Get(user, messageID, attachmentID).
			Context(callCtx).
			Do()
		return err
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch attachment %s of %s: %w", attachmentID, messageID, err)
	}

	data := decodeBody(att.Data)
	if data == "" {
		return nil, ErrNotFound
	}
	return []byte(data), nil
}

// withRetry runs one remote call with a per-call deadline and a single
// retry after backoff on transient failures.
func (c *Client) withRetry(ctx context.Context, call func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err = call(callCtx)
		cancel()

		if err == nil || !isTransient(err) {
			return err
		}
		c.logger.Debug("transient Gmail error, retrying", "attempt", attempt+1, "error", err)
	}
	return err
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}

func isTransient(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500
	}
	// Plain transport errors (timeouts, resets) are worth one retry too.
	// Parent-context cancellation is checked separately in withRetry.
	return !errors.Is(err, context.Canceled)
}
