package service

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"jobprep_backend/internal/util"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

// 模板在包初始化时解析一次，之后每次调用复用
var promptTemplates = template.Must(template.ParseFS(promptFS, "prompts/*.tmpl"))

const (
	OpParseCV       = "parse_cv"
	OpReviewCV      = "review_cv"
	OpImproveCV     = "improve_cv"
	OpTailorCV      = "tailor_cv"
	OpCVQuestions   = "cv_questions"
	OpMockTest      = "mock_test"
	OpRoleTest      = "role_test"
	OpInterview     = "interview"
	defaultMaxToken = 4096
	shortMaxToken   = 2048
)

// operationMaxTokens 各操作的输出上限，未列出的使用 defaultMaxToken
var operationMaxTokens = map[string]int{
	OpReviewCV:    shortMaxToken,
	OpCVQuestions: shortMaxToken,
}

var difficultyHints = map[string]string{
	util.DifficultyEasy:   "straightforward questions suitable for beginners",
	util.DifficultyMedium: "intermediate level questions requiring solid understanding",
	util.DifficultyHard:   "advanced questions requiring deep knowledge and experience",
}

func renderPrompt(op string, data any) (string, error) {
	var b strings.Builder
	if err := promptTemplates.ExecuteTemplate(&b, op+".tmpl", data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", op, err)
	}
	return b.String(), nil
}

func prettyJSON(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
