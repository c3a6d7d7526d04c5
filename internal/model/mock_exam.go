package model

import (
	"time"

	"gorm.io/datatypes"
)

type MockTest struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Difficulty  string         `gorm:"size:16;not null" json:"difficulty"`
	Duration    int            `gorm:"not null" json:"duration"`
	Topic       string         `gorm:"size:255;not null" json:"topic"`
	CreatedBy   uint           `gorm:"index;not null" json:"createdBy"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	Questions   []TestQuestion `gorm:"foreignKey:TestID" json:"questions,omitempty"`
}

func (MockTest) TableName() string {
	return "mock_tests"
}

type TestQuestion struct {
	ID            uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	TestID        uint   `gorm:"index;not null" json:"testId"`
	Question      string `gorm:"type:text;not null" json:"question"`
	OptionA       string `gorm:"type:text;not null" json:"optionA"`
	OptionB       string `gorm:"type:text;not null" json:"optionB"`
	OptionC       string `gorm:"type:text;not null" json:"optionC"`
	OptionD       string `gorm:"type:text;not null" json:"optionD"`
	CorrectAnswer string `gorm:"size:1;not null" json:"correctAnswer"`
	Explanation   string `gorm:"type:text" json:"explanation"`
	Order         int    `gorm:"column:order_index;not null" json:"order"`
}

func (TestQuestion) TableName() string {
	return "test_questions"
}

// TestResult 每次提交追加一条记录，Answers 为 questionId -> 选项 的 JSON
type TestResult struct {
	ID             uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	TestID         uint           `gorm:"index;not null" json:"testId"`
	UserID         uint           `gorm:"index;not null" json:"userId"`
	Score          int            `gorm:"not null" json:"score"`
	TotalQuestions int            `gorm:"not null" json:"totalQuestions"`
	TimeTaken      int            `gorm:"not null" json:"timeTaken"`
	Answers        datatypes.JSON `json:"answers"`
	CompletedAt    time.Time      `gorm:"autoCreateTime" json:"completedAt"`
}

func (TestResult) TableName() string {
	return "test_results"
}

// Percentage 按 round(score/total*100) 计算，没有题目时为 0
func (r *TestResult) Percentage() int {
	return Percentage(r.Score, r.TotalQuestions)
}

func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(float64(score)/float64(total)*100 + 0.5)
}

// MockTestSummary 测试列表行
type MockTestSummary struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Difficulty    string    `json:"difficulty"`
	Duration      int       `json:"duration"`
	Topic         string    `json:"topic"`
	CreatedAt     time.Time `json:"createdAt"`
	QuestionCount int       `json:"questionCount"`
	AttemptCount  int       `json:"attemptCount"`
}

// TestResultRow 结果列表行，附带测试标题
type TestResultRow struct {
	ID             uint      `json:"id"`
	TestID         uint      `json:"testId"`
	Title          string    `json:"title"`
	Topic          string    `json:"topic"`
	Difficulty     string    `json:"difficulty"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	Percentage     int       `gorm:"-" json:"percentage"`
	TimeTaken      int       `json:"timeTaken"`
	CompletedAt    time.Time `json:"completedAt"`
}
