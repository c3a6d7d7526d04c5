package service

import "jobprep_backend/internal/model"

type GeneratedTestQuestion struct {
	Question      string `json:"question"`
	OptionA       string `json:"optionA"`
	OptionB       string `json:"optionB"`
	OptionC       string `json:"optionC"`
	OptionD       string `json:"optionD"`
	CorrectAnswer string `json:"correctAnswer"`
	Explanation   string `json:"explanation"`
}

type GeneratedTest struct {
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	Questions   []GeneratedTestQuestion `json:"questions"`
}

type GeneratedInterviewQuestion struct {
	Question     string             `json:"question"`
	QuestionType model.QuestionType `json:"questionType"`
	SampleAnswer string             `json:"sampleAnswer"`
	Tips         string             `json:"tips"`
}

type GeneratedInterview struct {
	JobRole         string                       `json:"jobRole"`
	ExperienceLevel string                       `json:"experienceLevel"`
	Questions       []GeneratedInterviewQuestion `json:"questions"`
}
