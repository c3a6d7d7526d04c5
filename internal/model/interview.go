package model

import "time"

type QuestionType string

const (
	QuestionTechnical    QuestionType = "technical"
	QuestionBehavioral   QuestionType = "behavioral"
	QuestionSituational  QuestionType = "situational"
	QuestionRoleSpecific QuestionType = "role-specific"
)

type InterviewSession struct {
	ID              uint                `gorm:"primaryKey;autoIncrement" json:"id"`
	JobRole         string              `gorm:"size:255;not null" json:"jobRole"`
	ExperienceLevel string              `gorm:"size:100;not null" json:"experienceLevel"`
	QuestionCount   int                 `gorm:"not null" json:"questionCount"`
	CreatedBy       uint                `gorm:"index;not null" json:"createdBy"`
	CreatedAt       time.Time           `gorm:"autoCreateTime" json:"createdAt"`
	Questions       []InterviewQuestion `gorm:"foreignKey:SessionID" json:"questions,omitempty"`
}

func (InterviewSession) TableName() string {
	return "interview_sessions"
}

// InterviewQuestion 创建后不可修改，Order 在同一场面试内从 1 连续编号
type InterviewQuestion struct {
	ID           uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID    uint         `gorm:"index;not null" json:"sessionId"`
	Question     string       `gorm:"type:text;not null" json:"question"`
	QuestionType QuestionType `gorm:"size:32;not null" json:"questionType"`
	SampleAnswer string       `gorm:"type:text" json:"sampleAnswer"`
	Tips         string       `gorm:"type:text" json:"tips"`
	Order        int          `gorm:"column:order_index;not null" json:"order"`
}

func (InterviewQuestion) TableName() string {
	return "interview_questions"
}

// InterviewResponse 同一用户对同一问题只保留一条回答
type InterviewResponse struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID   uint      `gorm:"index;not null" json:"sessionId"`
	UserID      uint      `gorm:"uniqueIndex:uk_response_question_user;not null" json:"userId"`
	QuestionID  uint      `gorm:"uniqueIndex:uk_response_question_user;not null" json:"questionId"`
	UserAnswer  string    `gorm:"type:text;not null" json:"userAnswer"`
	CompletedAt time.Time `gorm:"not null" json:"completedAt"`
}

func (InterviewResponse) TableName() string {
	return "interview_responses"
}

// InterviewSessionSummary 面试列表行
type InterviewSessionSummary struct {
	ID              uint      `json:"id"`
	JobRole         string    `json:"jobRole"`
	ExperienceLevel string    `json:"experienceLevel"`
	QuestionCount   int       `json:"questionCount"`
	AnsweredCount   int       `json:"answeredCount"`
	CreatedAt       time.Time `json:"createdAt"`
}

// QuestionWithResponse 问题与当前用户回答的左连接结果
type QuestionWithResponse struct {
	QuestionID   uint         `json:"questionId"`
	Question     string       `json:"question"`
	QuestionType QuestionType `json:"questionType"`
	SampleAnswer string       `json:"sampleAnswer"`
	Tips         string       `json:"tips"`
	Order        int          `gorm:"column:order_index" json:"order"`
	UserAnswer   *string      `json:"userAnswer"`
	CompletedAt  *time.Time   `json:"completedAt"`
}
