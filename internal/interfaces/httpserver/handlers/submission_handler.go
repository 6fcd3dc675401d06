package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"marketplace-server/services/moderation-api/internal/config"
	domain "marketplace-server/services/moderation-api/internal/domain/submission"
	"marketplace-server/services/moderation-api/internal/infrastructure/metrics"
	"marketplace-server/services/moderation-api/internal/interfaces/httpserver/responses"
)

// SubmissionHandler exposes the submission endpoints.
type SubmissionHandler struct {
	cfg     *config.Config
	service *domain.Service
	log     zerolog.Logger
}

func NewSubmissionHandler(cfg *config.Config, service *domain.Service, log zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		cfg:     cfg,
		service: service,
		log:     log.With().Str("component", "submission-handler").Logger(),
	}
}

// Submit godoc
// @Summary      Submit a listing image
// @Description  Stores the image, creates a pending record, and queues it for moderation.
// @Tags         submissions
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Image to submit"
// @Success      202   {object}  responses.SubmissionResponse
// @Failure      400   {object}  map[string]string
// @Router       /v1/submissions [post]
func (h *SubmissionHandler) Submit(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.cfg.MaxUploadBytes+1))
	if err != nil {
		h.log.Error().Err(err).Msg("failed to read upload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return
	}

	rec, err := h.service.Submit(c.Request.Context(), data, header.Filename)
	if err != nil {
		h.log.Error().Err(err).Msg("submit failed")
		metrics.RecordSubmission(header.Header.Get("Content-Type"), "error")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	metrics.RecordSubmission(rec.ContentType, "accepted")
	c.JSON(http.StatusAccepted, responses.FromRecord(*rec))
}

// Get godoc
// @Summary      Get a submission record
// @Tags         submissions
// @Produce      json
// @Param        id   path      string  true  "Submission ID (itm_xxx)"
// @Success      200  {object}  responses.SubmissionResponse
// @Failure      404  {object}  map[string]string
// @Router       /v1/submissions/{id} [get]
func (h *SubmissionHandler) Get(c *gin.Context) {
	id := c.Param("id")

	rec, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "submission not found"})
		return
	}
	c.JSON(http.StatusOK, responses.FromRecord(*rec))
}

// Events godoc
// @Summary      Stream submission changes
// @Description  Server-sent events; emits the current record state, then every committed change.
// @Tags         submissions
// @Produce      text/event-stream
// @Param        id  path  string  true  "Submission ID (itm_xxx)"
// @Success      200  "event stream"
// @Failure      404  {object}  map[string]string
// @Router       /v1/submissions/{id}/events [get]
func (h *SubmissionHandler) Events(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	// Subscribe before the initial read so no committed change between
	// the two can be missed.
	changes, err := h.service.Watch(ctx, id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.service.Get(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "submission not found"})
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.SSEvent("submission", responses.FromRecord(*rec))
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case change, ok := <-changes:
			if !ok {
				return false
			}
			c.SSEvent("submission", responses.FromRecord(change))
			// Terminal states are absorbing; nothing further will come.
			return !change.Status.IsTerminal()
		}
	})
}
