package api

import (
	"context"
	"errors"
	"log/slog"
	stdsync "sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/jobtrail/jobtrail/internal/assistant"
	"github.com/jobtrail/jobtrail/internal/database"
	"github.com/jobtrail/jobtrail/internal/gmail"
	"github.com/jobtrail/jobtrail/internal/sync"
)

// Deps wires the handler's collaborators
type Deps struct {
	DB          *database.DB
	Gmail       *gmail.Client
	Classifier  *assistant.Classifier
	Drafter     *assistant.Drafter
	Pipeline    *sync.Pipeline
	SyncMax     int64
	CORSOrigins string
	Logger      *slog.Logger
}

// Handler serves the REST surface over the store, the classifier, and the
// drafting component.
type Handler struct {
	deps Deps

	mu          stdsync.Mutex
	syncRunning bool
	lastRun     *sync.Summary
}

// NewHandler creates a new API handler
func NewHandler(deps Deps) *Handler {
	return &Handler{deps: deps}
}

// App builds the fiber application with all routes registered
func (h *Handler) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "jobtrail",
		DisableStartupMessage: true,
	})
	app.Use(cors.New(cors.Config{
		AllowOrigins: h.deps.CORSOrigins,
	}))

	api := app.Group("/api")
	api.Get("/emails", h.listEmails)
	api.Get("/emails/:id", h.getEmail)
	api.Get("/attachments/:messageID/:attachmentID", h.getAttachment)
	api.Get("/stats", h.getStats)
	api.Post("/sync", h.triggerSync)
	api.Post("/generate", h.generateFollowUp)
	api.Post("/cold", h.generateColdEmail)
	api.Post("/filter", h.filterEmails)

	return app
}

func (h *Handler) listEmails(c *fiber.Ctx) error {
	isJob := c.QueryBool("is_job", true)
	msgs, err := h.deps.DB.ListMessages(c.Context(), database.ListOptions{
		JobRelated: &isJob,
		Limit:      c.QueryInt("limit", 50),
		Offset:     c.QueryInt("offset", 0),
	})
	if err != nil {
		h.deps.Logger.Error("failed to list messages", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list messages"})
	}
	return c.JSON(msgs)
}

func (h *Handler) getEmail(c *fiber.Ctx) error {
	msg, err := h.deps.DB.GetMessageByID(c.Context(), c.Params("id"))
	if errors.Is(err, database.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "email not found"})
	}
	if err != nil {
		h.deps.Logger.Error("failed to get message", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to get email"})
	}

	thread, err := h.deps.DB.GetThread(c.Context(), msg.ThreadID)
	if err != nil {
		h.deps.Logger.Error("failed to get thread", "thread_id", msg.ThreadID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to get thread"})
	}

	return c.JSON(fiber.Map{
		"email":  msg,
		"thread": thread,
	})
}

func (h *Handler) getAttachment(c *fiber.Ctx) error {
	messageID := c.Params("messageID")
	attachmentID := c.Params("attachmentID")

	data, err := h.deps.Gmail.GetAttachment(c.Context(), messageID, attachmentID)
	if errors.Is(err, gmail.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "attachment not found"})
	}
	if err != nil {
		h.deps.Logger.Error("failed to fetch attachment", "message_id", messageID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch attachment"})
	}

	// Content type comes from the stored manifest when we have it
	if msg, err := h.deps.DB.GetMessageByID(c.Context(), messageID); err == nil {
		for _, att := range msg.Attachments {
			if att.AttachmentID == attachmentID && att.MimeType != "" {
				c.Set(fiber.HeaderContentType, att.MimeType)
				break
			}
		}
	}
	return c.Send(data)
}

func (h *Handler) getStats(c *fiber.Ctx) error {
	count, err := h.deps.DB.CountMessages(c.Context())
	if err != nil {
		h.deps.Logger.Error("failed to count messages", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to count messages"})
	}

	h.mu.Lock()
	lastRun := h.lastRun
	running := h.syncRunning
	h.mu.Unlock()

	return c.JSON(fiber.Map{
		"total_emails": count,
		"sync_running": running,
		"last_run":     lastRun,
	})
}

// triggerSync kicks off a background ingestion run. Only one run may be in
// flight at a time.
func (h *Handler) triggerSync(c *fiber.Ctx) error {
	h.mu.Lock()
	if h.syncRunning {
		h.mu.Unlock()
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "sync already running"})
	}
	h.syncRunning = true
	h.mu.Unlock()

	go func() {
		summary, err := h.deps.Pipeline.Run(context.Background(), h.deps.SyncMax)
		if err != nil {
			h.deps.Logger.Error("background sync failed", "error", err)
		}

		h.mu.Lock()
		h.syncRunning = false
		if err == nil {
			h.lastRun = &summary
		}
		h.mu.Unlock()
	}()

	return c.JSON(fiber.Map{"status": "sync started in background"})
}

type generateRequest struct {
	EmailID string `json:"email_id"`
	Context string `json:"context"`
}

func (h *Handler) generateFollowUp(c *fiber.Ctx) error {
	var req generateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	msg, err := h.deps.DB.GetMessageByID(c.Context(), req.EmailID)
	if errors.Is(err, database.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "email not found"})
	}
	if err != nil {
		h.deps.Logger.Error("failed to get message", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to get email"})
	}

	draft, err := h.deps.Drafter.FollowUp(c.Context(), msg, req.Context)
	if err != nil {
		h.deps.Logger.Error("failed to draft follow-up", "email_id", req.EmailID, "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "draft generation failed"})
	}

	return c.JSON(fiber.Map{"draft": draft})
}

type coldEmailRequest struct {
	Recipient  string `json:"recipient"`
	Topic      string `json:"topic"`
	Background string `json:"background"`
	Goal       string `json:"goal"`
}

func (h *Handler) generateColdEmail(c *fiber.Ctx) error {
	var req coldEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	draft, err := h.deps.Drafter.ColdEmail(c.Context(), req.Recipient, req.Topic, req.Background, req.Goal)
	if err != nil {
		h.deps.Logger.Error("failed to draft cold email", "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "draft generation failed"})
	}

	return c.JSON(fiber.Map{"draft": draft})
}

type filterRequest struct {
	Prompt string `json:"prompt"`
}

func (h *Handler) filterEmails(c *fiber.Ctx) error {
	var req filterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	summaries, err := h.deps.DB.ListSummaries(c.Context(), 100)
	if err != nil {
		h.deps.Logger.Error("failed to list summaries", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list emails"})
	}

	ids := h.deps.Classifier.FilterEmails(c.Context(), summaries, req.Prompt)
	return c.JSON(fiber.Map{"matching_ids": ids})
}
