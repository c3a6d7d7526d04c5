package service

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"strings"
	"testing"

	"jobprep_backend/internal/model"
	"jobprep_backend/internal/repository"
	"jobprep_backend/internal/util"

	"gorm.io/gorm"
)

func newUploadService(t *testing.T, db *gorm.DB) (*UploadService, string) {
	t.Helper()
	dir := t.TempDir()
	storage := &StorageService{Provider: &LocalStorageProvider{Root: dir}}
	svc := NewUploadService(repository.NewFileUploadRepository(db), repository.NewUserRepository(db), storage, testConfig())
	return svc, dir
}

// multipartFile 通过真实的 multipart 解析构造 FileHeader
func multipartFile(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	part.Write(content)
	w.Close()

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(32 << 20)
	if err != nil {
		t.Fatalf("read form: %v", err)
	}
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["file"][0]
}

func TestUploadTextFile(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "up@example.com")
	svc, dir := newUploadService(t, db)
	ctx := context.Background()

	content := []byte("  Ada Lovelace\nProgrammer  \n")
	upload, err := svc.Upload(ctx, user.ID, multipartFile(t, "my cv.txt", "text/plain", content))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !strings.HasPrefix(upload.FilePath, "/uploads/") || !strings.HasSuffix(upload.FileName, ".txt") {
		t.Fatalf("unexpected paths: %+v", upload)
	}
	if upload.OriginalFileName != "my cv.txt" || upload.FileSize != int64(len(content)) || upload.MimeType != util.MimeTXT {
		t.Fatalf("metadata: %+v", upload)
	}
	if _, err := os.Stat(dir + "/" + upload.FileName); err != nil {
		t.Fatalf("stored file missing: %v", err)
	}

	files, err := svc.ListByUser(ctx, user.ID)
	if err != nil || len(files) != 1 {
		t.Fatalf("ListByUser: got=%v err=%v", files, err)
	}

	_, rc, err := svc.Open(ctx, upload.FileName)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, _ := io.ReadAll(rc)
	rc.Close()
	if !bytes.Equal(got, content) {
		t.Fatalf("stored content: got=%q", got)
	}
	if _, _, err := svc.Open(ctx, "missing.txt"); !util.IsCode(err, util.CodeNotFound) {
		t.Fatalf("Open unknown: got=%v", err)
	}

	_, text, err := svc.ExtractText(ctx, upload.ID, user.ID)
	if err != nil || text != "Ada Lovelace\nProgrammer" {
		t.Fatalf("ExtractText: got=%q err=%v", text, err)
	}
	other := createTestUser(t, db, "other@example.com")
	if _, _, err := svc.ExtractText(ctx, upload.ID, other.ID); !util.IsCode(err, util.CodeNotFound) {
		t.Fatalf("foreign ExtractText: got=%v", err)
	}
}

func TestUploadRejectsLargeFiles(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "big@example.com")
	svc, _ := newUploadService(t, db)

	header := &multipart.FileHeader{
		Filename: "big.pdf",
		Size:     DefaultMaxUploadBytes + 1,
		Header:   textproto.MIMEHeader{"Content-Type": {util.MimePDF}},
	}
	if _, err := svc.Upload(context.Background(), user.ID, header); !util.IsCode(err, util.CodeFileTooLarge) {
		t.Fatalf("got=%v want FILE_TOO_LARGE", err)
	}
}

func TestUploadRejectsUnsupportedTypes(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "type@example.com")
	svc, _ := newUploadService(t, db)
	ctx := context.Background()

	if _, err := svc.Upload(ctx, user.ID, multipartFile(t, "photo.png", "image/png", []byte("\x89PNG\r\n\x1a\n"))); !util.IsCode(err, util.CodeUnsupportedFileType) {
		t.Fatalf("png: got=%v", err)
	}
	// 声明为 PDF 但内容是纯文本
	if _, err := svc.Upload(ctx, user.ID, multipartFile(t, "fake.pdf", util.MimePDF, []byte("just text"))); !util.IsCode(err, util.CodeUnsupportedFileType) {
		t.Fatalf("mismatched content: got=%v", err)
	}
}

func TestUploadUnknownUser(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newUploadService(t, db)
	_, err := svc.Upload(context.Background(), 42, multipartFile(t, "cv.txt", "text/plain", []byte("hello")))
	if !util.IsCode(err, util.CodeNotFound) {
		t.Fatalf("got=%v want NOT_FOUND", err)
	}
}

func TestUploadRemovesFileWhenMetadataFails(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "orphan@example.com")
	svc, dir := newUploadService(t, db)
	if err := db.Migrator().DropTable(&model.FileUpload{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	_, err := svc.Upload(context.Background(), user.ID, multipartFile(t, "cv.txt", "text/plain", []byte("hello")))
	if !util.IsCode(err, util.CodeInternal) {
		t.Fatalf("got=%v want INTERNAL", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("orphaned files left behind: %d", len(entries))
	}
}
