package handler

import (
	"encoding/json"
	stdErrors "errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Michael-Yan-wun/meeting-tools/errors"
	meetingdto "github.com/Michael-Yan-wun/meeting-tools/internal/adapter/dto/meeting"
	"github.com/Michael-Yan-wun/meeting-tools/internal/domain/repositories"
	"github.com/Michael-Yan-wun/meeting-tools/internal/infrastructure/cache"
	"github.com/Michael-Yan-wun/meeting-tools/internal/infrastructure/storage"
	"github.com/Michael-Yan-wun/meeting-tools/internal/usecase/minutes"
	"github.com/Michael-Yan-wun/meeting-tools/pkg/config"
)

// Meeting handles the meeting endpoints: list, detail, upload and document
// download.
type Meeting struct {
	pipeline *minutes.Service
	repo     repositories.MeetingRepository
	docs     storage.DocumentStore
	cache    cache.Cache
	cfg      *config.Config
	logger   *zap.Logger
}

// NewMeeting constructs the meeting handler.
func NewMeeting(
	pipeline *minutes.Service,
	repo repositories.MeetingRepository,
	docs storage.DocumentStore,
	cache cache.Cache,
	cfg *config.Config,
	logger *zap.Logger,
) *Meeting {
	return &Meeting{
		pipeline: pipeline,
		repo:     repo,
		docs:     docs,
		cache:    cache,
		cfg:      cfg,
		logger:   logger,
	}
}

// List returns all stored meetings as summary rows, newest first.
func (h *Meeting) List(c echo.Context) error {
	var req meetingdto.ListMeetingsRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidInput("invalid query parameters"))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidInput(err.Error()))
	}

	summaries, err := h.repo.ListSummaries(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if req.Limit > 0 && len(summaries) > req.Limit {
		summaries = summaries[:req.Limit]
	}

	resp := meetingdto.ListResponse{Meetings: make([]meetingdto.SummaryResponse, 0, len(summaries))}
	for _, s := range summaries {
		resp.Meetings = append(resp.Meetings, meetingdto.NewSummaryResponse(s))
	}
	return HandleSuccess(h.logger, c, resp)
}

// Get returns the full record for one meeting. Records are immutable, so
// detail responses are served from the cache when present.
func (h *Meeting) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidInput("meeting id must be a positive integer"))
	}

	ctx := c.Request().Context()
	cacheKey := "meeting:" + c.Param("id")

	if cached, ok := h.cache.Get(ctx, cacheKey); ok {
		var resp meetingdto.DetailResponse
		if err := json.Unmarshal([]byte(cached), &resp); err == nil {
			return HandleSuccess(h.logger, c, resp)
		}
	}

	m, err := h.repo.GetByID(ctx, uint(id))
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	resp := meetingdto.NewDetailResponse(m)
	if encoded, err := json.Marshal(resp); err == nil {
		h.cache.Set(ctx, cacheKey, string(encoded), h.cfg.Cache.TTL)
	}
	return HandleSuccess(h.logger, c, resp)
}

// Upload accepts a multipart audio file and runs the full pipeline on it.
func (h *Meeting) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidInput("multipart field \"file\" is required"))
	}

	req := meetingdto.UploadRequest{Filename: fileHeader.Filename}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidInput("unsupported file type (want mp3, wav, m4a or mp4)"))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return HandleError(h.logger, c, errors.ErrUnreadableAudio(fileHeader.Filename, err))
	}
	defer src.Close()

	result, err := h.pipeline.Process(c.Request().Context(), fileHeader.Filename, src)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	resp := meetingdto.UploadResponse{
		ID:              result.ID,
		Filename:        result.Filename,
		StructuredNotes: result.Notes,
		DocumentName:    result.DocumentName,
		DocURL:          "/download/" + result.DocumentName,
	}
	return HandleSuccess(h.logger, c, resp)
}

// Download streams a generated document. The name is reduced to its base so
// the store is never asked to walk outside its directory.
func (h *Meeting) Download(c echo.Context) error {
	name := filepath.Base(c.Param("name"))
	if name == "." || name == "/" {
		return HandleError(h.logger, c, errors.ErrInvalidInput("document name is required"))
	}

	rc, err := h.docs.Open(c.Request().Context(), name)
	if err != nil {
		if stdErrors.Is(err, os.ErrNotExist) {
			return HandleError(h.logger, c, errors.ErrNotFound("document").WithDetail("name", name))
		}
		return HandleError(h.logger, c, err)
	}
	defer rc.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Stream(http.StatusOK, storage.DocxContentType, rc)
}
