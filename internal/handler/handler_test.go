package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/repurpose/internal/extract"
	"github.com/suteetoe/repurpose/internal/repurpose"
	"github.com/suteetoe/repurpose/internal/store"
	"github.com/suteetoe/repurpose/internal/testutil"
	"github.com/suteetoe/repurpose/pkg/config"
	"github.com/suteetoe/repurpose/pkg/jwtutil"
)

type testServer struct {
	e     *echo.Echo
	store *store.Store
}

func newTestServer(t *testing.T, client repurpose.Client) *testServer {
	t.Helper()

	cfg := &config.Config{
		ServiceName: "repurpose-test",
		JWT: config.JWTConfig{
			SigningKey:      "test-key",
			AccessTokenTTL:  time.Minute,
			RefreshTokenTTL: time.Hour,
		},
		Upload: config.UploadConfig{
			MaxSize:           1 << 20,
			AllowedExtensions: []string{".txt", ".md", ".pdf", ".docx"},
			AllowPrivateHosts: true,
		},
	}

	st := store.New(testutil.NewTestDB(t))
	h := New(cfg, st, repurpose.NewOrchestrator(client, 4), extract.NewExtractor(cfg.Upload), jwtutil.NewJWTUtil(&cfg.JWT))

	e := echo.New()
	h.RegisterRoutes(e)
	return &testServer{e: e, store: st}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// signup registers and logs in a user, returning its token pair
func (s *testServer) signup(t *testing.T, name string) jwtutil.TokenPair {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Email: name + "@example.com", Username: name, Password: "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: name + "@example.com", Password: "password123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[jwtutil.TokenPair](t, rec)
}

func (s *testServer) uploadText(t *testing.T, token, text string) uint {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/content/upload", token, map[string]any{
		"original_content": text,
		"content_type":     "text",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[struct {
		ID uint `json:"id"`
	}](t, rec).ID
}

func (s *testServer) uploadFile(t *testing.T, token, filename string, data []byte, title string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, _ = fw.Write(data)
	if title != "" {
		require.NoError(t, mw.WriteField("title", title))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/content/upload-file", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func TestRegisterValidationAndConflict(t *testing.T) {
	s := newTestServer(t, repurpose.MockClient{})

	tests := []struct {
		name string
		req  RegisterRequest
		code int
	}{
		{"bad email", RegisterRequest{Email: "nope", Username: "alice", Password: "password123"}, http.StatusBadRequest},
		{"short username", RegisterRequest{Email: "a@example.com", Username: "al", Password: "password123"}, http.StatusBadRequest},
		{"short password", RegisterRequest{Email: "a@example.com", Username: "alice", Password: "short"}, http.StatusBadRequest},
		{"long email", RegisterRequest{Email: strings.Repeat("a", 250) + "@example.com", Username: "alice", Password: "password123"}, http.StatusBadRequest},
		{"ok", RegisterRequest{Email: "a@example.com", Username: "alice", Password: "password123"}, http.StatusCreated},
		{"duplicate email", RegisterRequest{Email: "A@example.com", Username: "alice2", Password: "password123"}, http.StatusConflict},
		{"duplicate username", RegisterRequest{Email: "b@example.com", Username: "alice", Password: "password123"}, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/auth/register", "", tt.req)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
		})
	}
}

func TestRegisterDoesNotLeakPasswordHash(t *testing.T) {
	s := newTestServer(t, repurpose.MockClient{})

	rec := s.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{Email: "x@example.com", Username: "xavier", Password: "password123"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "free", body["plan"])
	assert.Equal(t, true, body["is_active"])
}

func TestLoginRefreshAndDeactivate(t *testing.T) {
	s := newTestServer(t, repurpose.MockClient{})
	tokens := s.signup(t, "bob")

	rec := s.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "bob@example.com", Password: "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/refresh", "", RefreshRequest{RefreshToken: tokens.AccessToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "access token must not refresh")

	rec = s.do(t, http.MethodPost, "/api/auth/refresh", "", RefreshRequest{RefreshToken: tokens.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code)
	refreshed := decode[jwtutil.TokenPair](t, rec)
	assert.Equal(t, tokens.RefreshToken, refreshed.RefreshToken)

	rec = s.do(t, http.MethodGet, "/api/user/profile", refreshed.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/user/deactivate", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "bob@example.com", Password: "password123"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/user/profile", tokens.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, repurpose.MockClient{})

	for _, path := range []string{"/api/user/profile", "/api/content", "/api/generate/history"} {
		rec := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestProfileUpdateAndPasswordChange(t *testing.T) {
	s := newTestServer(t, repurpose.MockClient{})
	tokens := s.signup(t, "carol")
	s.signup(t, "dave")

	rec := s.do(t, http.MethodPut, "/api/user/profile", tokens.AccessToken, map[string]any{"username": "dave"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/user/profile", tokens.AccessToken, map[string]any{"plan": "platinum"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/user/profile", tokens.AccessToken, map[string]any{"username": "caroline", "plan": "pro"})
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode[map[string]any](t, rec)
	assert.Equal(t, "caroline", profile["username"])
	assert.Equal(t, "pro", profile["plan"])

	rec = s.do(t, http.MethodPost, "/api/user/change-password", tokens.AccessToken, ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "newpassword1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/user/change-password", tokens.AccessToken, ChangePasswordRequest{CurrentPassword: "password123", NewPassword: "newpassword1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "carol@example.com", Password: "newpassword1"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUploadCleansTextAndCountsWords(t *testing.T) {
	s := newTestServer(t, repurpose.MockClient{})
	tokens := s.signup(t, "erin")

	rec := s.do(t, http.MethodPost, "/api/content/upload", tokens.AccessToken, map[string]any{
		"title":            "Notes",
		"original_content": "  hello \n\n  world\t again ",
		"content_type":     "text",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "hello world again", body["original_content"])
	assert.Equal(t, float64(3), body["word_count"])
	assert.Equal(t, "Notes", body["title"])

	rec = s.do(t, http.MethodPost, "/api/content/upload", tokens.AccessToken, map[string]any{
		"original_content": "x", "content_type": "video",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadRejectsOversizedFields(t *testing.T) {
	var hits atomic.Int32
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("<p>page</p>"))
	}))
	defer page.Close()

	s := newTestServer(t, repurpose.MockClient{})
	tokens := s.signup(t, "ezra")
	longTitle := strings.Repeat("a", 256)

	rec := s.do(t, http.MethodPost, "/api/content/upload", tokens.AccessToken, map[string]any{
		"title": longTitle, "original_content": "body", "content_type": "text",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/content/upload", tokens.AccessToken, map[string]any{
		"title": longTitle, "original_content": page.URL, "content_type": "url",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/content/upload", tokens.AccessToken, map[string]any{
		"original_content": page.URL + "/?q=" + strings.Repeat("x", 500), "content_type": "url",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, hits.Load(), "oversized input must be rejected before fetching")

	rec = s.uploadFile(t, tokens.AccessToken, "notes.txt", []byte("some text"), longTitle)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	list := s.do(t, http.MethodGet, "/api/content", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, list.Code)
	assert.Empty(t, decode[[]map[string]any](t, list))

	contentID := s.uploadText(t, tokens.AccessToken, "body")
	path := fmt.Sprintf("/api/content/%d", contentID)

	rec = s.do(t, http.MethodPut, path, tokens.AccessToken, map[string]any{"title": longTitle})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, path, tokens.AccessToken, map[string]any{"title": longTitle[:255]})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, longTitle[:255], decode[map[string]any](t, rec)["title"])
}

func TestDerivedTitle(t *testing.T) {
	assert.Nil(t, derivedTitle("  "))
	assert.Equal(t, "report.pdf", *derivedTitle(" report.pdf "))

	long := derivedTitle(strings.Repeat("é", 300))
	require.NotNil(t, long)
	assert.Equal(t, maxTitleLen, utf8.RuneCountInString(*long))
}

func TestUploadURL(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>Post</title></head><body><article>
<p>Repurposing turns a single long article into many short posts for each network.</p>
</article></body></html>`))
	}))
	defer page.Close()

	s := newTestServer(t, repurpose.MockClient{})
	tokens := s.signup(t, "fay")

	rec := s.do(t, http.MethodPost, "/api/content/upload", tokens.AccessToken, map[string]any{
		"original_content": page.URL,
		"content_type":     "url",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode[map[string]any](t, rec)
	assert.Equal(t, page.URL, body["source_url"])
	assert.Contains(t, body["original_content"], "Repurposing turns a single long article")

	rec = s.do(t, http.MethodPost, "/api/content/upload", tokens.AccessToken, map[string]any{
		"original_content": "ftp://example.com",
		"content_type":     "url",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	list := s.do(t, http.MethodGet, "/api/content", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, list.Code)
	assert.Len(t, decode[[]map[string]any](t, list), 1, "failed extraction must not persist anything")
}

func TestUploadFile(t *testing.T) {
	s := newTestServer(t, repurpose.MockClient{})
	tokens := s.signup(t, "gus")

	send := func(filename string, data []byte) *httptest.ResponseRecorder {
		return s.uploadFile(t, tokens.AccessToken, filename, data, "")
	}

	rec := send("draft.md", []byte("# Draft\n\nFirst   paragraph.\n"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "file", body["content_type"])
	assert.Equal(t, "draft.md", body["title"])
	assert.Equal(t, "# Draft First paragraph.", body["original_content"])

	rec = send("run.exe", []byte("MZ"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = send("fake.pdf", []byte("just text"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRepurposeMockTwitter(t *testing.T) {
	s := newTestServer(t, repurpose.MockClient{})
	tokens := s.signup(t, "hana")
	contentID := s.uploadText(t, tokens.AccessToken, "hello world")

	rec := s.do(t, http.MethodPost, "/api/generate/repurpose", tokens.AccessToken, RepurposeRequest{
		ContentID: contentID,
		Platforms: []string{"twitter"},
		Tone:      "professional",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[map[string]any](t, rec)
	results := body["platform_results"].(map[string]any)
	twitter := results["twitter"].(map[string]any)
	assert.Equal(t, "[MOCK TWITTER] hello world", twitter["content"])

	generations := body["generations"].([]any)
	require.Len(t, generations, 1)
	assert.Contains(t, generations[0].(map[string]any)["generated_text"], "[MOCK TWITTER] hello world")
}

type flakyClient struct {
	failing string
}

func (f flakyClient) Complete(ctx context.Context, req repurpose.CompletionRequest) (string, error) {
	if string(req.Platform) == f.failing {
		return "", errors.New("model unavailable")
	}
	return repurpose.MockClient{}.Complete(ctx, req)
}

func TestRepurposePartialFailureStoresOnlySuccesses(t *testing.T) {
	s := newTestServer(t, flakyClient{failing: "linkedin"})
	tokens := s.signup(t, "ivan")
	contentID := s.uploadText(t, tokens.AccessToken, "quarterly update")

	rec := s.do(t, http.MethodPost, "/api/generate/repurpose", tokens.AccessToken, RepurposeRequest{
		ContentID: contentID,
		Platforms: []string{"twitter", "linkedin", "twitter"},
		Tone:      "casual",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[map[string]any](t, rec)
	results := body["platform_results"].(map[string]any)
	assert.Len(t, results, 2)
	assert.Equal(t, "model unavailable", results["linkedin"].(map[string]any)["error"])
	assert.Len(t, body["generations"].([]any), 1)

	history := s.do(t, http.MethodGet, "/api/generate/history", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, history.Code)
	assert.Len(t, decode[[]map[string]any](t, history), 1)
}

type countingClient struct {
	calls atomic.Int32
}

func (c *countingClient) Complete(ctx context.Context, req repurpose.CompletionRequest) (string, error) {
	c.calls.Add(1)
	return repurpose.MockClient{}.Complete(ctx, req)
}

func TestRepurposeValidation(t *testing.T) {
	client := &countingClient{}
	s := newTestServer(t, client)
	tokens := s.signup(t, "jade")
	contentID := s.uploadText(t, tokens.AccessToken, "text")

	tests := []struct {
		name string
		req  RepurposeRequest
		code int
	}{
		{"short tone", RepurposeRequest{ContentID: contentID, Platforms: []string{"twitter"}, Tone: "ok"}, http.StatusBadRequest},
		{"long tone", RepurposeRequest{ContentID: contentID, Platforms: []string{"twitter"}, Tone: strings.Repeat("t", 51)}, http.StatusBadRequest},
		{"no platforms", RepurposeRequest{ContentID: contentID, Platforms: []string{" "}, Tone: "casual"}, http.StatusBadRequest},
		{"long platform", RepurposeRequest{ContentID: contentID, Platforms: []string{"twitter", strings.Repeat("p", 51)}, Tone: "casual"}, http.StatusBadRequest},
		{"missing content", RepurposeRequest{ContentID: 9999, Platforms: []string{"twitter"}, Tone: "casual"}, http.StatusNotFound},
		{"missing brand voice", RepurposeRequest{ContentID: contentID, Platforms: []string{"twitter"}, Tone: "casual", BrandVoiceID: ptr(uint(9999))}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/generate/repurpose", tokens.AccessToken, tt.req)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
		})
	}
	assert.Zero(t, client.calls.Load(), "rejected requests must not reach the model")

	// limits are inclusive
	rec := s.do(t, http.MethodPost, "/api/generate/repurpose", tokens.AccessToken, RepurposeRequest{
		ContentID: contentID, Platforms: []string{strings.Repeat("p", 50)}, Tone: strings.Repeat("t", 50),
	})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int32(1), client.calls.Load())
}

func TestRegenerateRejectsLongTone(t *testing.T) {
	client := &countingClient{}
	s := newTestServer(t, client)
	tokens := s.signup(t, "jules")
	contentID := s.uploadText(t, tokens.AccessToken, "text")

	rec := s.do(t, http.MethodPost, "/api/generate/repurpose", tokens.AccessToken, RepurposeRequest{
		ContentID: contentID, Platforms: []string{"twitter"}, Tone: "casual",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	genID := uint(decode[map[string]any](t, rec)["generations"].([]any)[0].(map[string]any)["id"].(float64))

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/api/generate/regenerate/%d", genID), tokens.AccessToken, map[string]any{"tone": strings.Repeat("t", 51)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int32(1), client.calls.Load())
}

func ptr[T any](v T) *T { return &v }

func TestDefaultBrandVoiceIsApplied(t *testing.T) {
	s := newTestServer(t, repurpose.MockClient{})
	tokens := s.signup(t, "kim")
	contentID := s.uploadText(t, tokens.AccessToken, "launch day")

	rec := s.do(t, http.MethodPost, "/api/user/brand-voice", tokens.AccessToken, map[string]any{
		"name": "Warm", "instructions": "Friendly, warm and concise.", "is_default": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	voiceID := uint(decode[map[string]any](t, rec)["id"].(float64))

	rec = s.do(t, http.MethodPost, "/api/user/brand-voice", tokens.AccessToken, map[string]any{"name": "ab", "instructions": "short"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/generate/repurpose", tokens.AccessToken, RepurposeRequest{
		ContentID: contentID, Platforms: []string{"summary"}, Tone: "upbeat",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	gen := decode[map[string]any](t, rec)["generations"].([]any)[0].(map[string]any)
	assert.Equal(t, float64(voiceID), gen["brand_voice_id"])

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/user/brand-voice/%d", voiceID), tokens.AccessToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/generate/%d", uint(gen["id"].(float64))), tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[map[string]any](t, rec)["brand_voice_id"])
}

func TestRegenerate(t *testing.T) {
	s := newTestServer(t, repurpose.MockClient{})
	tokens := s.signup(t, "leo")
	contentID := s.uploadText(t, tokens.AccessToken, "original text")

	rec := s.do(t, http.MethodPost, "/api/generate/repurpose", tokens.AccessToken, RepurposeRequest{
		ContentID: contentID, Platforms: []string{"email"}, Tone: "formal",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	genID := uint(decode[map[string]any](t, rec)["generations"].([]any)[0].(map[string]any)["id"].(float64))

	path := fmt.Sprintf("/api/generate/regenerate/%d", genID)

	rec = s.do(t, http.MethodPost, path, tokens.AccessToken, map[string]any{"tone": "no"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, path, tokens.AccessToken, map[string]any{"tone": "playful"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "playful", body["tone"])
	assert.Equal(t, float64(genID), body["id"])
	assert.Equal(t, "[MOCK EMAIL] original text", body["generated_text"])

	rec = s.do(t, http.MethodPost, path, tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "playful", decode[map[string]any](t, rec)["tone"])
}

func TestCrossUserAccessIsNotFound(t *testing.T) {
	s := newTestServer(t, repurpose.MockClient{})
	owner := s.signup(t, "mia")
	intruder := s.signup(t, "nick")

	contentID := s.uploadText(t, owner.AccessToken, "private draft")
	rec := s.do(t, http.MethodPost, "/api/generate/repurpose", owner.AccessToken, RepurposeRequest{
		ContentID: contentID, Platforms: []string{"twitter"}, Tone: "casual",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	genID := uint(decode[map[string]any](t, rec)["generations"].([]any)[0].(map[string]any)["id"].(float64))

	rec = s.do(t, http.MethodPost, "/api/user/brand-voice", owner.AccessToken, map[string]any{"name": "Mine", "instructions": "Only for the owner."})
	require.Equal(t, http.StatusCreated, rec.Code)
	voiceID := uint(decode[map[string]any](t, rec)["id"].(float64))

	checks := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, fmt.Sprintf("/api/content/%d", contentID), nil},
		{http.MethodPut, fmt.Sprintf("/api/content/%d", contentID), map[string]any{"title": "mine now"}},
		{http.MethodDelete, fmt.Sprintf("/api/content/%d", contentID), nil},
		{http.MethodGet, fmt.Sprintf("/api/content/%d/generations", contentID), nil},
		{http.MethodGet, fmt.Sprintf("/api/generate/%d", genID), nil},
		{http.MethodDelete, fmt.Sprintf("/api/generate/%d", genID), nil},
		{http.MethodPost, fmt.Sprintf("/api/generate/regenerate/%d", genID), nil},
		{http.MethodPost, "/api/generate/repurpose", RepurposeRequest{ContentID: contentID, Platforms: []string{"twitter"}, Tone: "casual"}},
		{http.MethodGet, fmt.Sprintf("/api/user/brand-voice/%d", voiceID), nil},
		{http.MethodDelete, fmt.Sprintf("/api/user/brand-voice/%d", voiceID), nil},
	}
	for _, chk := range checks {
		rec := s.do(t, chk.method, chk.path, intruder.AccessToken, chk.body)
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", chk.method, chk.path)
	}

	// nothing changed for the owner
	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/content/%d", contentID), owner.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[map[string]any](t, rec)["title"])

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/generate/%d", genID), owner.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeleteContentCascades(t *testing.T) {
	s := newTestServer(t, repurpose.MockClient{})
	tokens := s.signup(t, "olga")
	contentID := s.uploadText(t, tokens.AccessToken, "to be removed")

	rec := s.do(t, http.MethodPost, "/api/generate/repurpose", tokens.AccessToken, RepurposeRequest{
		ContentID: contentID, Platforms: []string{"twitter", "tiktok"}, Tone: "casual",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/content/%d/generations", contentID), tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 2)

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/content/%d", contentID), tokens.AccessToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/generate/history", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]map[string]any](t, rec))
}

func TestHistoryFilterAndPaging(t *testing.T) {
	s := newTestServer(t, repurpose.MockClient{})
	tokens := s.signup(t, "pia")
	contentID := s.uploadText(t, tokens.AccessToken, "stats")

	rec := s.do(t, http.MethodPost, "/api/generate/repurpose", tokens.AccessToken, RepurposeRequest{
		ContentID: contentID, Platforms: []string{"twitter", "linkedin", "facebook"}, Tone: "casual",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/generate/history?platform=linkedin", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[[]map[string]any](t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, "linkedin", items[0]["platform"])

	rec = s.do(t, http.MethodGet, "/api/generate/history?limit=2", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 2)
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t, repurpose.MockClient{})

	rec := s.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, true, body["mock_model"])
}
