package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"jobprep_backend/internal/config"
	"jobprep_backend/internal/model"
	"jobprep_backend/internal/repository"
	"jobprep_backend/pkg/database"

	"gorm.io/gorm"
)

// fakeProvider 按操作返回预设输出，并记录每次调用
type fakeProvider struct {
	mu        sync.Mutex
	responses map[string]string
	err       error
	calls     []Completion
	deadlines []bool
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{responses: map[string]string{}}
}

func (f *fakeProvider) Complete(ctx context.Context, req Completion) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, hasDeadline := ctx.Deadline()
	f.calls = append(f.calls, req)
	f.deadlines = append(f.deadlines, hasDeadline)
	if f.err != nil {
		return "", f.err
	}
	out, ok := f.responses[req.Operation]
	if !ok {
		return "", fmt.Errorf("no canned response for %s", req.Operation)
	}
	return out, nil
}

func (f *fakeProvider) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Operation == op {
			n++
		}
	}
	return n
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory()
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWT:      config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour},
		Security: config.SecurityConfig{BcryptCost: 4},
		AI:       config.AIConfig{Model: "test-model", TimeoutSeconds: 5},
		Upload:   config.UploadConfig{MaxBytes: DefaultMaxUploadBytes},
	}
}

func newTestAI(fp *fakeProvider) *AIService {
	return NewAIService(testConfig().AI, fp)
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	u := &model.User{Email: email, Password: "$2a$04$hash", Username: strings.Split(email, "@")[0]}
	if err := repository.NewUserRepository(db).Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// generatedTestJSON 生成 n 道题的测试 JSON，正确答案依次为 A B C D
func generatedTestJSON(n int) string {
	letters := []string{"A", "B", "C", "D"}
	var qs []string
	for i := 0; i < n; i++ {
		qs = append(qs, fmt.Sprintf(`{"question":"q%d","optionA":"a","optionB":"b","optionC":"c","optionD":"d","correctAnswer":"%s","explanation":"e%d"}`,
			i+1, letters[i%4], i+1))
	}
	return fmt.Sprintf("```json\n{\"title\":\"Generated\",\"description\":\"desc\",\"questions\":[%s]}\n```", strings.Join(qs, ","))
}

func generatedInterviewJSON(n int) string {
	types := []string{"technical", "behavioral", "Situational", "role-specific"}
	var qs []string
	for i := 0; i < n; i++ {
		qs = append(qs, fmt.Sprintf(`{"question":"iq%d","questionType":"%s","sampleAnswer":"sample%d","tips":"tip%d"}`,
			i+1, types[i%4], i+1, i+1))
	}
	return fmt.Sprintf(`{"jobRole":"Go Engineer","experienceLevel":"mid","questions":[%s]}`, strings.Join(qs, ","))
}

const sampleCVJSON = `{
  "personalInfo": {"name": "Ada Lovelace", "email": "ada@example.com", "phone": "+44 1", "location": "London"},
  "summary": "Analyst",
  "experience": [{"company": "Engine Co", "position": "Programmer", "achievements": ["First program"]}],
  "education": [{"institution": "Home", "degree": "Private", "field": "Mathematics"}],
  "skills": ["Mathematics", "Programming"],
  "certifications": []
}`
