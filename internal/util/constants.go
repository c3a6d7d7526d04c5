package util

const (
	UserContextKey  = "user"
	RequestIDKey    = "request_id"
	RequestIDHeader = "X-Request-Id"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const UploadURLPrefix = "/uploads/"

// 允许上传的 CV 文件类型
const (
	MimePDF  = "application/pdf"
	MimeDOC  = "application/msword"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeTXT  = "text/plain"
)

var AllowedDocumentTypes = []string{MimePDF, MimeDOC, MimeDOCX, MimeTXT}

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

const (
	MinTestQuestions          = 5
	MaxTestQuestions          = 50
	DefaultInterviewQuestions = 10
	MaxInterviewQuestions     = 50
)
