package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/repurpose/internal/extract"
	"github.com/suteetoe/repurpose/internal/middleware"
	"github.com/suteetoe/repurpose/internal/model"
	"github.com/suteetoe/repurpose/internal/store"
	"github.com/suteetoe/repurpose/pkg/logger"
	"github.com/suteetoe/repurpose/prometheus"
	"go.uber.org/zap"
)

const (
	defaultContentLimit = 20
	maxTitleLen         = 255
	maxSourceURLLen     = 500
)

var errTitleTooLong = errors.New("title must be at most 255 characters")

// UploadContentRequest is the body of POST /api/content/upload.
// For content_type "url", original_content holds the address to fetch.
type UploadContentRequest struct {
	Title           *string           `json:"title"`
	OriginalContent string            `json:"original_content"`
	ContentType     model.ContentType `json:"content_type"`
}

// UpdateContentRequest is the body of PUT /api/content/:id
type UpdateContentRequest struct {
	Title *string `json:"title"`
}

// extractionStatus maps an extraction failure to its HTTP status
func extractionStatus(err error) int {
	if errors.Is(err, extract.ErrTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// requestedTitle trims a caller supplied title. Blank means none.
func requestedTitle(title *string) (*string, error) {
	if title == nil {
		return nil, nil
	}
	t := strings.TrimSpace(*title)
	if t == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(t) > maxTitleLen {
		return nil, errTitleTooLong
	}
	return &t, nil
}

// derivedTitle turns a page title or file name into a title, cut to fit
func derivedTitle(fallback string) *string {
	fallback = strings.TrimSpace(fallback)
	if fallback == "" {
		return nil
	}
	if r := []rune(fallback); len(r) > maxTitleLen {
		fallback = strings.TrimSpace(string(r[:maxTitleLen]))
	}
	return &fallback
}

// UploadContent stores pasted text or the text of a fetched web page
func (h *Handler) UploadContent(c echo.Context) error {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()

	var req UploadContentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	if strings.TrimSpace(req.OriginalContent) == "" {
		return badRequest(c, "original_content is required")
	}
	title, err := requestedTitle(req.Title)
	if err != nil {
		return badRequest(c, err.Error())
	}

	content := &model.Content{
		UserID:      middleware.CurrentUserID(c),
		ContentType: req.ContentType,
	}

	switch req.ContentType {
	case model.ContentTypeText:
		content.OriginalContent = extract.Clean(req.OriginalContent)
		content.Title = title

	case model.ContentTypeURL:
		sourceURL := strings.TrimSpace(req.OriginalContent)
		if len(sourceURL) > maxSourceURLLen {
			return badRequest(c, "url must be at most 500 characters")
		}
		doc, err := h.extractor.FromURL(ctx, sourceURL)
		if err != nil {
			prometheus.RecordContentIngest(string(req.ContentType), err)
			log.Info("URL extraction failed", zap.String("url", sourceURL), zap.Error(err))
			return c.JSON(extractionStatus(err), echo.Map{"error": "failed to extract content from URL: " + err.Error()})
		}
		content.OriginalContent = doc.Text
		content.SourceURL = &sourceURL
		content.Title = title
		if content.Title == nil {
			content.Title = derivedTitle(doc.Title)
		}

	case model.ContentTypeFile:
		return badRequest(c, "use /api/content/upload-file for file uploads")

	default:
		return badRequest(c, "content_type must be one of: text, url")
	}

	content.WordCount = extract.CountWords(content.OriginalContent)

	if err := h.store.CreateContent(ctx, content); err != nil {
		prometheus.RecordContentIngest(string(req.ContentType), err)
		log.Error("Failed to create content", zap.Error(err))
		return internalError(c, "failed to store content")
	}
	prometheus.RecordContentIngest(string(req.ContentType), nil)

	log.Info("Content uploaded",
		zap.Uint("content_id", content.ID),
		zap.String("content_type", string(content.ContentType)),
		zap.Int("word_count", content.WordCount))
	return c.JSON(http.StatusCreated, content)
}

// UploadFile extracts text from a multipart file upload
func (h *Handler) UploadFile(c echo.Context) error {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file is required")
	}
	if !h.extractor.Allowed(fileHeader.Filename) {
		return badRequest(c, "unsupported file type. Allowed: "+strings.Join(h.cfg.Upload.AllowedExtensions, ", "))
	}
	if fileHeader.Size > h.cfg.Upload.MaxSize {
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "file too large"})
	}

	rawTitle := c.FormValue("title")
	if rawTitle == "" {
		rawTitle = c.QueryParam("title")
	}
	title, err := requestedTitle(&rawTitle)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if title == nil {
		title = derivedTitle(fileHeader.Filename)
	}

	src, err := fileHeader.Open()
	if err != nil {
		log.Error("Failed to open uploaded file", zap.Error(err))
		return badRequest(c, "could not read uploaded file")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, h.cfg.Upload.MaxSize+1))
	if err != nil {
		log.Error("Failed to read uploaded file", zap.Error(err))
		return badRequest(c, "could not read uploaded file")
	}

	doc, err := h.extractor.FromFile(fileHeader.Filename, data)
	if err != nil {
		prometheus.RecordContentIngest(string(model.ContentTypeFile), err)
		log.Info("File extraction failed", zap.String("filename", fileHeader.Filename), zap.Error(err))
		return c.JSON(extractionStatus(err), echo.Map{"error": "error processing file: " + err.Error()})
	}

	content := &model.Content{
		UserID:          middleware.CurrentUserID(c),
		Title:           title,
		OriginalContent: doc.Text,
		ContentType:     model.ContentTypeFile,
		WordCount:       extract.CountWords(doc.Text),
	}
	if err := h.store.CreateContent(ctx, content); err != nil {
		prometheus.RecordContentIngest(string(model.ContentTypeFile), err)
		log.Error("Failed to create content", zap.Error(err))
		return internalError(c, "failed to store content")
	}
	prometheus.RecordContentIngest(string(model.ContentTypeFile), nil)

	log.Info("File uploaded",
		zap.Uint("content_id", content.ID),
		zap.String("filename", fileHeader.Filename),
		zap.Int("word_count", content.WordCount))
	return c.JSON(http.StatusCreated, content)
}

// ListContent returns the user's content, newest first
func (h *Handler) ListContent(c echo.Context) error {
	log := logger.FromEcho(c)

	contents, err := h.store.ListContent(c.Request().Context(), middleware.CurrentUserID(c), pageFromQuery(c, defaultContentLimit))
	if err != nil {
		log.Error("Failed to list content", zap.Error(err))
		return internalError(c, "failed to retrieve content")
	}

	return c.JSON(http.StatusOK, contents)
}

// GetContent returns a single content item
func (h *Handler) GetContent(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid content id")
	}

	content, err := h.store.GetContent(c.Request().Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound(c, "content")
		}
		logger.FromEcho(c).Error("Failed to load content", zap.Error(err))
		return internalError(c, "failed to retrieve content")
	}

	return c.JSON(http.StatusOK, content)
}

// UpdateContent renames a content item. An empty title leaves it unchanged.
func (h *Handler) UpdateContent(c echo.Context) error {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()
	userID := middleware.CurrentUserID(c)

	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid content id")
	}

	var req UpdateContentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	title, err := requestedTitle(req.Title)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var content *model.Content
	if title != nil {
		content, err = h.store.UpdateContentTitle(ctx, userID, id, title)
	} else {
		content, err = h.store.GetContent(ctx, userID, id)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound(c, "content")
		}
		log.Error("Failed to update content", zap.Error(err))
		return internalError(c, "failed to update content")
	}

	return c.JSON(http.StatusOK, content)
}

// DeleteContent removes a content item and every generation made from it
func (h *Handler) DeleteContent(c echo.Context) error {
	log := logger.FromEcho(c)

	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid content id")
	}

	if err := h.store.DeleteContent(c.Request().Context(), middleware.CurrentUserID(c), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound(c, "content")
		}
		log.Error("Failed to delete content", zap.Error(err))
		return internalError(c, "failed to delete content")
	}

	log.Info("Content deleted", zap.Uint("content_id", id))
	return c.NoContent(http.StatusNoContent)
}

// ListContentGenerations returns the generations made from one content item
func (h *Handler) ListContentGenerations(c echo.Context) error {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()
	userID := middleware.CurrentUserID(c)

	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid content id")
	}

	if _, err := h.store.GetContent(ctx, userID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound(c, "content")
		}
		log.Error("Failed to load content", zap.Error(err))
		return internalError(c, "failed to retrieve generations")
	}

	generations, err := h.store.ListGenerations(ctx, userID, store.GenerationFilter{
		ContentID: id,
		Platform:  strings.TrimSpace(c.QueryParam("platform")),
	}, pageFromQuery(c, defaultHistoryLimit))
	if err != nil {
		log.Error("Failed to list generations", zap.Error(err))
		return internalError(c, "failed to retrieve generations")
	}

	return c.JSON(http.StatusOK, generations)
}
