package service

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"jobprep_backend/internal/util"

	"github.com/ledongthuc/pdf"
)

// ExtractDocumentText 提取上传文件的纯文本，目前支持 PDF 和 TXT
func ExtractDocumentText(data []byte, mimeType string) (string, error) {
	var (
		text string
		err  error
	)
	switch util.NormalizeMimeType(mimeType) {
	case util.MimePDF:
		text, err = extractPDF(data)
	case util.MimeTXT:
		text = string(data)
	default:
		return "", util.ErrUnsupportedDocument
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func extractPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf reader: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf plaintext: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("pdf read: %w", err)
	}
	return collapseWhitespace(string(b)), nil
}

// collapseWhitespace 合并连续空白，保留换行
func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
