package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"jobprep_backend/internal/config"
	"jobprep_backend/internal/service"
	"jobprep_backend/pkg/database"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubProvider struct {
	mu        sync.Mutex
	responses map[string]string
}

func (p *stubProvider) Complete(ctx context.Context, req service.Completion) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out, ok := p.responses[req.Operation]
	if !ok {
		return "", fmt.Errorf("no response for %s", req.Operation)
	}
	return out, nil
}

const parsedCV = `{"personalInfo":{"name":"Ada Lovelace","email":"ada@example.com"},"experience":[],"education":[{"institution":"Home","degree":"Private","field":"Mathematics"}],"skills":["Mathematics"],"certifications":[]}`

func newStubProvider() *stubProvider {
	var testQs []string
	for i := 1; i <= 5; i++ {
		testQs = append(testQs, fmt.Sprintf(`{"question":"q%d","optionA":"a","optionB":"b","optionC":"c","optionD":"d","correctAnswer":"A","explanation":"because"}`, i))
	}
	return &stubProvider{responses: map[string]string{
		service.OpParseCV:     "```json\n" + parsedCV + "\n```",
		service.OpReviewCV:    `{"isValid":true,"structureIssues":[],"styleIssues":[],"recommendations":["Add metrics"]}`,
		service.OpImproveCV:   parsedCV,
		service.OpTailorCV:    parsedCV,
		service.OpCVQuestions: `["Why Go?","Tell me about the engine."]`,
		service.OpMockTest:    `{"title":"Go Basics","description":"d","questions":[` + strings.Join(testQs, ",") + `]}`,
		service.OpInterview:   `{"questions":[{"question":"Explain goroutines","questionType":"technical","sampleAnswer":"s","tips":"t"},{"question":"A conflict you solved","questionType":"behavioral","sampleAnswer":"s","tips":"t"}]}`,
	}}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := database.OpenMemory()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	cfg := &config.Config{
		Server:   config.ServerConfig{Mode: "test"},
		JWT:      config.JWTConfig{Secret: "app-test-secret", ExpireTime: time.Hour},
		Security: config.SecurityConfig{BcryptCost: 4},
		Storage:  config.StorageConfig{Type: "local", LocalPath: t.TempDir()},
		AI:       config.AIConfig{Model: "stub", TimeoutSeconds: 5},
		Cache:    config.CacheConfig{CVDraftTTLMinutes: 5, CVDraftMaxEntries: 10},
	}
	a, err := New(cfg, db, nil, newStubProvider())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &testServer{t: t, router: a.Router}
}

func (s *testServer) do(method, path string, body any, token string) (int, envelope) {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.serve(req)
}

func (s *testServer) serve(req *http.Request) (int, envelope) {
	s.t.Helper()
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			s.t.Fatalf("%s %s: bad json %q", req.Method, req.URL.Path, w.Body.String())
		}
	}
	return w.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return out
}

type authData struct {
	Token string `json:"token"`
	User  struct {
		ID    uint   `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

func (s *testServer) signup(email string) authData {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/users", map[string]string{"email": email, "password": "password123"}, "")
	if code != http.StatusCreated {
		s.t.Fatalf("signup: got=%d body=%+v", code, env)
	}
	return decode[authData](s.t, env.Data)
}

func TestUserEndpoints(t *testing.T) {
	s := newTestServer(t)
	ada := s.signup("ada@example.com")

	if code, env := s.do(http.MethodPost, "/users", map[string]string{"email": "ada@example.com", "password": "password123"}, ""); code != http.StatusConflict || env.Error != "CONFLICT" {
		t.Fatalf("duplicate signup: got=%d %+v", code, env)
	}

	code, env := s.do(http.MethodPost, "/users/login", map[string]string{"email": "ada@example.com", "password": "password123"}, "")
	if code != http.StatusOK || decode[authData](t, env.Data).Token == "" {
		t.Fatalf("login: got=%d %+v", code, env)
	}
	if code, env := s.do(http.MethodPost, "/users/login", map[string]string{"email": "ada@example.com", "password": "wrong-password"}, ""); code != http.StatusUnauthorized || env.Error != "INVALID_CREDENTIALS" {
		t.Fatalf("bad login: got=%d %+v", code, env)
	}
	if code, env := s.do(http.MethodPost, "/users/login", map[string]string{"email": "ada@example.com"}, ""); code != http.StatusBadRequest {
		t.Fatalf("missing password: got=%d %+v", code, env)
	}

	code, env = s.do(http.MethodGet, "/users/me", nil, ada.Token)
	if code != http.StatusOK || !strings.Contains(string(env.Data), "ada@example.com") {
		t.Fatalf("me: got=%d %+v", code, env)
	}
	if code, _ := s.do(http.MethodGet, "/users/me", nil, ""); code != http.StatusUnauthorized {
		t.Fatalf("me without token: got=%d", code)
	}

	code, env = s.do(http.MethodGet, "/users", nil, ada.Token)
	if code != http.StatusOK || strings.Contains(string(env.Data), "password") {
		t.Fatalf("list users: got=%d %s", code, env.Data)
	}
	code, env = s.do(http.MethodGet, "/users/emails", nil, ada.Token)
	if code != http.StatusOK || string(env.Data) != `["ada@example.com"]` {
		t.Fatalf("emails: got=%d %s", code, env.Data)
	}
}

func (s *testServer) upload(userID uint, filename, contentType string, content []byte) (int, envelope) {
	s.t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	w.WriteField("userId", fmt.Sprint(userID))
	h := make(map[string][]string)
	h["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
	h["Content-Type"] = []string{contentType}
	part, _ := w.CreatePart(h)
	part.Write(content)
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return s.serve(req)
}

func TestUploadAndParseFlow(t *testing.T) {
	s := newTestServer(t)
	ada := s.signup("ada@example.com")

	code, env := s.upload(ada.User.ID, "cv.txt", "text/plain", []byte("Ada Lovelace\nMathematics"))
	if code != http.StatusOK {
		t.Fatalf("upload: got=%d %+v", code, env)
	}
	file := decode[struct {
		FileID   uint   `json:"fileId"`
		FileName string `json:"fileName"`
		FilePath string `json:"filePath"`
	}](t, env.Data)
	if !strings.HasPrefix(file.FilePath, "/uploads/") {
		t.Fatalf("filePath: %q", file.FilePath)
	}

	pdfOfSize := func(n int) []byte {
		b := bytes.Repeat([]byte("0"), n)
		copy(b, "%PDF-1.4\n")
		return b
	}
	sizes := []struct {
		name  string
		size  int
		code  int
		error string
	}{
		{"9 MiB", 9 << 20, http.StatusOK, ""},
		{"exactly the limit", 10 << 20, http.StatusOK, ""},
		{"one byte over", 10<<20 + 1, http.StatusBadRequest, "FILE_TOO_LARGE"},
	}
	for _, tc := range sizes {
		code, env := s.upload(ada.User.ID, "big.pdf", "application/pdf", pdfOfSize(tc.size))
		if code != tc.code || env.Error != tc.error {
			t.Fatalf("%s: got=%d %+v", tc.name, code, env)
		}
		if code == http.StatusOK {
			big := decode[struct {
				FilePath string `json:"filePath"`
				FileSize int64  `json:"fileSize"`
			}](t, env.Data)
			if !strings.HasPrefix(big.FilePath, "/uploads/") || big.FileSize != int64(tc.size) {
				t.Fatalf("%s: got=%+v", tc.name, big)
			}
		}
	}

	if code, env := s.upload(ada.User.ID, "cv.exe", "application/x-msdownload", []byte("MZ")); code != http.StatusBadRequest || env.Error != "UNSUPPORTED_FILE_TYPE" {
		t.Fatalf("bad type: got=%d %+v", code, env)
	}

	code, env = s.do(http.MethodGet, fmt.Sprintf("/uploads/%d", ada.User.ID), nil, "")
	if code != http.StatusOK || !strings.Contains(string(env.Data), file.FileName) {
		t.Fatalf("list uploads: got=%d %s", code, env.Data)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/"+file.FileName, nil))
	if w.Code != http.StatusOK || w.Body.String() != "Ada Lovelace\nMathematics" {
		t.Fatalf("stream: got=%d %q", w.Code, w.Body.String())
	}

	code, env = s.do(http.MethodPost, fmt.Sprintf("/api/cv/parse-upload/%d", file.FileID), nil, ada.Token)
	if code != http.StatusOK {
		t.Fatalf("parse-upload: got=%d %+v", code, env)
	}
	parsed := decode[service.ParseResult](t, env.Data)
	if parsed.CacheKey == "" || parsed.ParsedCV.PersonalInfo.Name != "Ada Lovelace" || parsed.OriginalContent == "" {
		t.Fatalf("parse result: %+v", parsed)
	}

	if code, env := s.do(http.MethodPost, "/api/cv/review", map[string]string{"cacheKey": parsed.CacheKey}, ""); code != http.StatusOK {
		t.Fatalf("review: got=%d %+v", code, env)
	}
	if code, env := s.do(http.MethodPost, "/api/cv/improve", map[string]string{"cacheKey": parsed.CacheKey}, ""); code != http.StatusOK {
		t.Fatalf("improve: got=%d %+v", code, env)
	}
	// improve 之后草稿已被取走
	if code, env := s.do(http.MethodPost, "/api/cv/improve", map[string]string{"cacheKey": parsed.CacheKey}, ""); code != http.StatusBadRequest {
		t.Fatalf("improve after take: got=%d %+v", code, env)
	}
}

func TestCVLifecycle(t *testing.T) {
	s := newTestServer(t)
	ada := s.signup("ada@example.com")
	eve := s.signup("eve@example.com")

	if code, _ := s.do(http.MethodPost, "/api/cv/parse", map[string]string{"cvText": "  "}, ""); code != http.StatusBadRequest {
		t.Fatalf("empty parse: got=%d", code)
	}

	save := map[string]any{"cvJson": json.RawMessage(parsedCV), "originalContent": "Ada Lovelace"}
	if code, _ := s.do(http.MethodPost, "/api/cv/save", save, ""); code != http.StatusUnauthorized {
		t.Fatalf("save without token: got=%d", code)
	}
	code, env := s.do(http.MethodPost, "/api/cv/save", save, ada.Token)
	if code != http.StatusCreated {
		t.Fatalf("save: got=%d %+v", code, env)
	}
	saved := decode[struct {
		ID       uint   `json:"id"`
		FullName string `json:"fullName"`
	}](t, env.Data)
	if saved.FullName != "Ada Lovelace" {
		t.Fatalf("saved: %+v", saved)
	}

	path := fmt.Sprintf("/api/cv/%d", saved.ID)
	if code, _ := s.do(http.MethodGet, path, nil, ada.Token); code != http.StatusOK {
		t.Fatalf("get own: got=%d", code)
	}
	if code, _ := s.do(http.MethodGet, path, nil, eve.Token); code != http.StatusNotFound {
		t.Fatalf("get foreign: got=%d", code)
	}
	if code, env := s.do(http.MethodDelete, path, nil, eve.Token); code != http.StatusForbidden || env.Message != "Unauthorized" {
		t.Fatalf("foreign delete: got=%d %+v", code, env)
	}
	if code, _ := s.do(http.MethodGet, "/api/cv/abc", nil, ada.Token); code != http.StatusBadRequest {
		t.Fatalf("bad id: got=%d", code)
	}

	code, env = s.do(http.MethodPost, "/api/cv/generate-questions", map[string]any{"cvJson": json.RawMessage(parsedCV), "jobBrief": "Go engineer"}, "")
	if code != http.StatusOK || !strings.Contains(string(env.Data), `"count":2`) {
		t.Fatalf("questions: got=%d %s", code, env.Data)
	}

	code, env = s.do(http.MethodPost, "/api/cv/process", map[string]string{"cvText": "Ada", "jobBrief": "Go engineer"}, "")
	if code != http.StatusOK || !strings.Contains(string(env.Data), "tailoredCV") {
		t.Fatalf("process: got=%d %s", code, env.Data)
	}

	if code, _ := s.do(http.MethodDelete, path, nil, ada.Token); code != http.StatusOK {
		t.Fatalf("delete: got=%d", code)
	}
	code, env = s.do(http.MethodGet, "/api/cv", nil, ada.Token)
	if code != http.StatusOK || string(env.Data) != "[]" {
		t.Fatalf("list after delete: got=%d %s", code, env.Data)
	}
}

func TestMockTestFlow(t *testing.T) {
	s := newTestServer(t)
	ada := s.signup("ada@example.com")

	if code, _ := s.do(http.MethodGet, "/api/tests", nil, ""); code != http.StatusUnauthorized {
		t.Fatalf("tests without token: got=%d", code)
	}
	if code, _ := s.do(http.MethodPost, "/api/tests/generate", map[string]any{"topic": "Go", "difficulty": "medium", "questionCount": 4}, ada.Token); code != http.StatusBadRequest {
		t.Fatalf("count below minimum: got=%d", code)
	}

	code, env := s.do(http.MethodPost, "/api/tests/generate", map[string]any{"topic": "Go", "difficulty": "medium", "questionCount": 5}, ada.Token)
	if code != http.StatusCreated {
		t.Fatalf("generate: got=%d %+v", code, env)
	}
	gen := decode[service.GenerateTestResult](t, env.Data)
	if gen.QuestionCount != 5 || gen.Duration != 8 {
		t.Fatalf("generated: %+v", gen)
	}

	code, env = s.do(http.MethodGet, fmt.Sprintf("/api/tests/%d", gen.TestID), nil, ada.Token)
	if code != http.StatusOK || strings.Contains(string(env.Data), "correctAnswer") {
		t.Fatalf("get test: got=%d %s", code, env.Data)
	}
	detail := decode[service.TestDetail](t, env.Data)

	answers := map[string]string{}
	for i, q := range detail.Questions {
		if i < 4 {
			answers[fmt.Sprint(q.ID)] = "a"
		}
	}
	code, env = s.do(http.MethodPost, fmt.Sprintf("/api/tests/%d/submit", gen.TestID), map[string]any{"answers": answers, "timeTaken": 300}, ada.Token)
	if code != http.StatusOK {
		t.Fatalf("submit: got=%d %+v", code, env)
	}
	result := decode[service.SubmitTestResult](t, env.Data)
	if result.Score != 4 || result.Percentage != 80 {
		t.Fatalf("score: %+v", result)
	}

	code, env = s.do(http.MethodGet, "/api/tests/results", nil, ada.Token)
	if code != http.StatusOK || decode[service.ResultHistory](t, env.Data).Stats.BestScore != 80 {
		t.Fatalf("results: got=%d %s", code, env.Data)
	}
	if code, _ := s.do(http.MethodGet, fmt.Sprintf("/api/tests/results/%d", result.ResultID), nil, ada.Token); code != http.StatusOK {
		t.Fatalf("result detail: got=%d", code)
	}
	if code, _ := s.do(http.MethodPost, "/api/tests/999/submit", map[string]any{"answers": answers, "timeTaken": 1}, ada.Token); code != http.StatusNotFound {
		t.Fatalf("unknown test: got=%d", code)
	}
}

func TestInterviewFlow(t *testing.T) {
	s := newTestServer(t)
	ada := s.signup("ada@example.com")
	eve := s.signup("eve@example.com")

	code, env := s.do(http.MethodPost, "/api/interviews/generate", map[string]any{"jobRole": "Go Engineer", "experienceLevel": "mid"}, ada.Token)
	if code != http.StatusCreated {
		t.Fatalf("generate: got=%d %+v", code, env)
	}
	gen := decode[service.GenerateInterviewResult](t, env.Data)

	code, env = s.do(http.MethodGet, fmt.Sprintf("/api/interviews/%d", gen.SessionID), nil, ada.Token)
	if code != http.StatusOK || strings.Contains(string(env.Data), "sampleAnswer") {
		t.Fatalf("get: got=%d %s", code, env.Data)
	}
	detail := decode[service.SessionDetail](t, env.Data)
	first := detail.Questions[0].ID

	answer := map[string]any{"sessionId": gen.SessionID, "questionId": first, "userAnswer": "They are cheap threads"}
	if code, _ := s.do(http.MethodPost, "/api/interviews/submit-answer", answer, eve.Token); code != http.StatusForbidden {
		t.Fatalf("foreign submit: got=%d", code)
	}
	if code, env := s.do(http.MethodPost, "/api/interviews/submit-answer", answer, ada.Token); code != http.StatusOK {
		t.Fatalf("submit: got=%d %+v", code, env)
	}

	code, env = s.do(http.MethodGet, fmt.Sprintf("/api/interviews/questions/%d", first), nil, ada.Token)
	if code != http.StatusOK || !strings.Contains(string(env.Data), "They are cheap threads") {
		t.Fatalf("question: got=%d %s", code, env.Data)
	}

	code, env = s.do(http.MethodGet, fmt.Sprintf("/api/interviews/%d/responses", gen.SessionID), nil, ada.Token)
	if code != http.StatusOK || len(decode[[]map[string]any](t, env.Data)) != 2 {
		t.Fatalf("responses: got=%d %s", code, env.Data)
	}

	code, env = s.do(http.MethodGet, "/api/interviews", nil, ada.Token)
	if code != http.StatusOK || !strings.Contains(string(env.Data), `"answeredCount":1`) {
		t.Fatalf("list: got=%d %s", code, env.Data)
	}
}

func TestHealthAndRequestID(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "health-1")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Header().Get("X-Request-Id") != "health-1" {
		t.Fatalf("health: got=%d id=%q body=%s", w.Code, w.Header().Get("X-Request-Id"), w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"redis":"disabled"`) {
		t.Fatalf("health body: %s", w.Body.String())
	}
}
