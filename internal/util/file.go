package util

import (
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// NormalizeMimeType 去掉参数部分，例如 "text/plain; charset=utf-8" -> "text/plain"
func NormalizeMimeType(declared string) string {
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(declared))
	}
	return mediaType
}

func IsAllowedDocumentType(mimeType string) bool {
	mimeType = NormalizeMimeType(mimeType)
	for _, allowed := range AllowedDocumentTypes {
		if mimeType == allowed {
			return true
		}
	}
	return false
}

// ValidateMimeType 深度校验文件内容与声明的 MIME 类型是否一致
func ValidateMimeType(reader io.Reader, declared string) (string, error) {
	detected, err := mimetype.DetectReader(reader)
	if err != nil {
		return "", err
	}

	declared = NormalizeMimeType(declared)
	for m := detected; m != nil; m = m.Parent() {
		if m.Is(declared) {
			return detected.String(), nil
		}
	}

	// 老版 doc 与 docx 只能识别到容器格式
	switch {
	case declared == MimeDOC && detected.Is("application/x-ole-storage"):
		return detected.String(), nil
	case declared == MimeDOCX && detected.Is("application/zip"):
		return detected.String(), nil
	}

	return detected.String(), fmt.Errorf("content type %s does not match declared %s", detected.String(), declared)
}

// StoredFileName 生成 "<原文件名>-<毫秒时间戳>-<随机数><扩展名>" 格式的文件名
func StoredFileName(original string, unixMillis int64, random int) string {
	ext := strings.ToLower(filepath.Ext(original))
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
		if b.Len() >= 100 {
			break
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		name = "file"
	}

	return fmt.Sprintf("%s-%d-%09d%s", name, unixMillis, random, ext)
}
