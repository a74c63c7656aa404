package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
	"github.com/suteetoe/repurpose/pkg/config"
	"github.com/suteetoe/repurpose/pkg/logger"
	"go.uber.org/zap"
)

const (
	userAgent      = "Mozilla/5.0 (compatible; ContentRepurposer/1.0; +https://example.com/bot)"
	fetchTimeout   = 10 * time.Second
	maxPageBytes   = 10 << 20
	defaultMaxFile = 50 << 20
)

var (
	ErrExtraction      = errors.New("could not extract text")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = errors.New("file too large")
	ErrInvalidURL      = errors.New("invalid url")
)

// Document is the text pulled out of a page or file
type Document struct {
	Title string
	Text  string
}

// Extractor turns URLs and uploaded files into clean plain text
type Extractor struct {
	HTTPClient *http.Client

	htmlPolicy        *bluemonday.Policy
	stripTagsPolicy   *bluemonday.Policy
	allowedExtensions map[string]bool
	maxFileSize       int64
}

// NewExtractor creates an extractor honouring the upload limits
func NewExtractor(cfg config.UploadConfig) *Extractor {
	allowed := make(map[string]bool, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		allowed[strings.ToLower(ext)] = true
	}
	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		maxSize = defaultMaxFile
	}

	return &Extractor{
		HTTPClient:        newFetchClient(cfg.AllowPrivateHosts),
		htmlPolicy:        bluemonday.UGCPolicy(),
		stripTagsPolicy:   bluemonday.StripTagsPolicy(),
		allowedExtensions: allowed,
		maxFileSize:       maxSize,
	}
}

// Clean collapses every run of whitespace into a single space and trims the ends
func Clean(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// CountWords counts whitespace-separated words
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// FromURL downloads a web page and extracts its main article text
func (e *Extractor) FromURL(ctx context.Context, rawURL string) (*Document, error) {
	pageURL, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (pageURL.Scheme != "http" && pageURL.Scheme != "https") || pageURL.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	log := logger.FromContext(ctx).With(zap.String("url", pageURL.String()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		if errors.Is(err, ErrBlockedHost) {
			log.Warn("Refused to fetch non-public address", zap.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrInvalidURL, ErrBlockedHost)
		}
		log.Warn("Failed to fetch URL", zap.Error(err))
		return nil, fmt.Errorf("%w: fetch failed: %v", ErrExtraction, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		log.Warn("URL returned error status", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: fetch failed with status %d", ErrExtraction, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	doc := e.fromHTML(string(body), pageURL, log)
	if doc.Text == "" {
		return nil, fmt.Errorf("%w: page has no readable text", ErrExtraction)
	}
	return doc, nil
}

// fromHTML prefers readability's main article and falls back to the whole
// sanitized page with tags stripped
func (e *Extractor) fromHTML(rawHTML string, pageURL *url.URL, log *zap.Logger) *Document {
	cleanedHTML := e.htmlPolicy.Sanitize(rawHTML)

	article, err := readability.FromReader(strings.NewReader(cleanedHTML), pageURL)
	if err == nil {
		if text := Clean(article.TextContent); text != "" {
			return &Document{Title: strings.TrimSpace(article.Title), Text: text}
		}
	}

	if err != nil {
		log.Debug("Readability extraction failed, using stripped HTML", zap.Error(err))
	}
	return &Document{Text: Clean(e.stripTagsPolicy.Sanitize(cleanedHTML))}
}

// Allowed reports whether filename carries an accepted extension
func (e *Extractor) Allowed(filename string) bool {
	return e.allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// FromFile extracts text from an uploaded file. The extension selects the
// parser and the sniffed content type must agree with it.
func (e *Extractor) FromFile(filename string, data []byte) (*Document, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !e.allowedExtensions[ext] {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	if int64(len(data)) > e.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, len(data), e.maxFileSize)
	}
	if err := checkContentType(ext, data); err != nil {
		return nil, err
	}

	var (
		text string
		err  error
	)
	switch ext {
	case ".pdf":
		text, err = pdfText(data)
	case ".docx":
		text, err = docxText(data)
	default:
		text = string(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	text = Clean(text)
	if text == "" {
		return nil, fmt.Errorf("%w: file has no readable text", ErrExtraction)
	}

	return &Document{
		Title: strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)),
		Text:  text,
	}, nil
}
