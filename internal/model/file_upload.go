package model

import "time"

// FileUpload 记录每个上传文件的元数据
type FileUpload struct {
	ID               uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FileName         string    `gorm:"size:255;uniqueIndex;not null" json:"fileName"`
	OriginalFileName string    `gorm:"size:255;not null" json:"originalFileName"`
	FileSize         int64     `gorm:"not null" json:"fileSize"`
	MimeType         string    `gorm:"size:127;not null" json:"mimeType"`
	FilePath         string    `gorm:"size:512;not null" json:"filePath"`
	CreatedBy        uint      `gorm:"index;not null" json:"createdBy"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (FileUpload) TableName() string {
	return "file_uploads"
}
