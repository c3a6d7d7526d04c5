package model

import (
	"gorm.io/datatypes"
)

// CV 保存的简历。摘要字段单独成列，完整结构存放在 Document 中
type CV struct {
	BaseModel
	OriginalContent string         `gorm:"type:longtext;not null" json:"originalContent"`
	FullName        string         `gorm:"size:255;not null" json:"fullName"`
	Email           string         `gorm:"size:255;not null" json:"email"`
	Phone           string         `gorm:"size:64" json:"phone,omitempty"`
	Location        string         `gorm:"size:255" json:"location,omitempty"`
	Summary         string         `gorm:"type:text" json:"summary,omitempty"`
	Document        datatypes.JSON `json:"cvJson,omitempty"`
	CreatedBy       uint           `gorm:"index;not null" json:"createdBy"`
}

func (CV) TableName() string {
	return "cvs"
}

type PersonalInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
}

type Experience struct {
	Company      string   `json:"company"`
	Position     string   `json:"position"`
	Duration     string   `json:"duration,omitempty"`
	Description  string   `json:"description,omitempty"`
	Achievements []string `json:"achievements,omitempty"`
}

type Education struct {
	Institution    string `json:"institution"`
	Degree         string `json:"degree"`
	Field          string `json:"field"`
	GraduationYear string `json:"graduationYear,omitempty"`
}

type Certification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Date   string `json:"date,omitempty"`
}

// CVDocument 生成服务解析出的结构化简历，Improvements 只在优化结果中出现
type CVDocument struct {
	PersonalInfo   PersonalInfo    `json:"personalInfo"`
	Summary        string          `json:"summary,omitempty"`
	Experience     []Experience    `json:"experience"`
	Education      []Education     `json:"education"`
	Skills         []string        `json:"skills"`
	Certifications []Certification `json:"certifications"`
	Improvements   []string        `json:"improvements,omitempty"`
}

type ReviewResult struct {
	IsValid         bool     `json:"isValid"`
	StructureIssues []string `json:"structureIssues"`
	StyleIssues     []string `json:"styleIssues"`
	Recommendations []string `json:"recommendations"`
	Summary         string   `json:"summary,omitempty"`
}

// Normalize 把缺失的数组补成空数组，保证输出的 JSON 结构稳定
func (d *CVDocument) Normalize() {
	if d.Experience == nil {
		d.Experience = []Experience{}
	}
	if d.Education == nil {
		d.Education = []Education{}
	}
	if d.Skills == nil {
		d.Skills = []string{}
	}
	if d.Certifications == nil {
		d.Certifications = []Certification{}
	}
}

func (r *ReviewResult) Normalize() {
	if r.StructureIssues == nil {
		r.StructureIssues = []string{}
	}
	if r.StyleIssues == nil {
		r.StyleIssues = []string{}
	}
	if r.Recommendations == nil {
		r.Recommendations = []string{}
	}
}
