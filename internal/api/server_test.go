package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobtrail/jobtrail/internal/assistant"
	"github.com/jobtrail/jobtrail/internal/database"
	"github.com/jobtrail/jobtrail/pkg/models"
)

type fakeCompleter struct {
	response string
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return f.response, nil
}

func newTestApp(t *testing.T, completer *fakeCompleter) (*fiber.App, *database.DB) {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(context.Background()))

	logger := slog.New(slog.DiscardHandler)
	handler := NewHandler(Deps{
		DB:          db,
		Classifier:  assistant.NewClassifier(completer, logger),
		Drafter:     assistant.NewDrafter(completer),
		CORSOrigins: "http://localhost:5173",
		Logger:      logger,
	})
	return handler.App(), db
}

func seedMessage(t *testing.T, db *database.DB, id, threadID, date string, isJob bool) {
	t.Helper()
	msg := &models.Message{
		ID:           id,
		ThreadID:     threadID,
		Date:         date,
		Sender:       "me@example.com",
		RecipientsTo: []string{"jane@corp.com"},
		Subject:      "Subject " + id,
		BodyText:     "Body " + id,
		IsJobRelated: &isJob,
	}
	require.NoError(t, db.UpsertMessage(context.Background(), msg))
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, v))
}

func TestListEmails_FiltersJobRelated(t *testing.T) {
	app, db := newTestApp(t, &fakeCompleter{})
	seedMessage(t, db, "m1", "t1", "2025-06-01T10:00:00Z", true)
	seedMessage(t, db, "m2", "t2", "2025-06-02T10:00:00Z", false)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/emails", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var msgs []models.Message
	decodeBody(t, resp, &msgs)
	require.Len(t, msgs, 1)
	assert.Equal(t, "m1", msgs[0].ID)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/emails?is_job=false", nil))
	require.NoError(t, err)
	decodeBody(t, resp, &msgs)
	require.Len(t, msgs, 1)
	assert.Equal(t, "m2", msgs[0].ID)
}

func TestGetEmail_ReturnsThread(t *testing.T) {
	app, db := newTestApp(t, &fakeCompleter{})
	seedMessage(t, db, "m2", "t1", "2025-06-02T10:00:00Z", true)
	seedMessage(t, db, "m1", "t1", "2025-06-01T10:00:00Z", true)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/emails/m2", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var detail struct {
		Email  models.Message   `json:"email"`
		Thread []models.Message `json:"thread"`
	}
	decodeBody(t, resp, &detail)

	assert.Equal(t, "m2", detail.Email.ID)
	require.Len(t, detail.Thread, 2)
	assert.Equal(t, "m1", detail.Thread[0].ID, "thread is ordered by date ascending")
	assert.Equal(t, "m2", detail.Thread[1].ID)
}

func TestGetEmail_NotFound(t *testing.T) {
	app, _ := newTestApp(t, &fakeCompleter{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/emails/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFilterEmails_Endpoint(t *testing.T) {
	app, db := newTestApp(t, &fakeCompleter{response: `Here you go: ["m1"]`})
	seedMessage(t, db, "m1", "t1", "2025-06-01T10:00:00Z", true)

	req := httptest.NewRequest(http.MethodPost, "/api/filter",
		strings.NewReader(`{"prompt":"emails about the backend role"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		MatchingIDs []string `json:"matching_ids"`
	}
	decodeBody(t, resp, &out)
	assert.Equal(t, []string{"m1"}, out.MatchingIDs)
}

func TestGenerateFollowUp_Endpoint(t *testing.T) {
	app, db := newTestApp(t, &fakeCompleter{response: "Dear Jane, just following up."})
	seedMessage(t, db, "m1", "t1", "2025-06-01T10:00:00Z", true)

	req := httptest.NewRequest(http.MethodPost, "/api/generate",
		strings.NewReader(`{"email_id":"m1","context":"no reply after a week"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Draft string `json:"draft"`
	}
	decodeBody(t, resp, &out)
	assert.Equal(t, "Dear Jane, just following up.", out.Draft)
}

func TestGenerateFollowUp_UnknownEmail(t *testing.T) {
	app, _ := newTestApp(t, &fakeCompleter{})

	req := httptest.NewRequest(http.MethodPost, "/api/generate",
		strings.NewReader(`{"email_id":"missing"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStats(t *testing.T) {
	app, db := newTestApp(t, &fakeCompleter{})
	seedMessage(t, db, "m1", "t1", "2025-06-01T10:00:00Z", true)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		TotalEmails int  `json:"total_emails"`
		SyncRunning bool `json:"sync_running"`
	}
	decodeBody(t, resp, &out)
	assert.Equal(t, 1, out.TotalEmails)
	assert.False(t, out.SyncRunning)
}
