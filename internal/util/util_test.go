package util

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"jobprep_backend/internal/model"
)

func TestStoredFileNameKeepsExtensionAndSanitizes(t *testing.T) {
	got := StoredFileName("../My CV (final).PDF", 1700000000000, 42)
	want := "My_CV__final-1700000000000-000000042.pdf"
	if got != want {
		t.Fatalf("got=%q want=%q", got, want)
	}

	if got := StoredFileName("???.txt", 1, 1); !strings.HasPrefix(got, "file-1-") {
		t.Fatalf("empty base: got=%q", got)
	}
}

func TestValidateMimeType(t *testing.T) {
	pdf := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("0"), 2048)...)
	if _, err := ValidateMimeType(bytes.NewReader(pdf), MimePDF); err != nil {
		t.Fatalf("pdf rejected: %v", err)
	}
	if _, err := ValidateMimeType(strings.NewReader("plain words\n"), "text/plain; charset=utf-8"); err != nil {
		t.Fatalf("txt rejected: %v", err)
	}
	if _, err := ValidateMimeType(strings.NewReader("plain words\n"), MimePDF); err == nil {
		t.Fatalf("text declared as pdf accepted")
	}
}

func TestIsAllowedDocumentType(t *testing.T) {
	for _, m := range []string{MimePDF, MimeDOC, MimeDOCX, "text/plain; charset=utf-8"} {
		if !IsAllowedDocumentType(m) {
			t.Fatalf("%s should be allowed", m)
		}
	}
	if IsAllowedDocumentType("image/png") {
		t.Fatalf("image/png should be rejected")
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[Code]int{
		CodeInvalidInput:       http.StatusBadRequest,
		CodeInvalidCredentials: http.StatusUnauthorized,
		CodeForbidden:          http.StatusForbidden,
		CodeNotFound:           http.StatusNotFound,
		CodeConflict:           http.StatusConflict,
		CodeGenerationParse:    http.StatusInternalServerError,
	}
	for code, want := range cases {
		if got := HTTPStatus(code); got != want {
			t.Fatalf("%s: got=%d want=%d", code, got, want)
		}
	}
}

func TestAppErrorUnwrapsSentinel(t *testing.T) {
	err := E(CodeGenerationParse, "AIService.ParseCV", "could not parse", ErrGenerationParse)
	if !errors.Is(err, ErrGenerationParse) {
		t.Fatalf("sentinel not reachable through AppError")
	}
	if !IsCode(err, CodeGenerationParse) {
		t.Fatalf("code not detected")
	}
}

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{Email: "a@b.co"}
	user.ID = 7

	token, err := GenerateJWT(user, "secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	claims, err := ParseJWT(token, "secret")
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.UserID != 7 || claims.Email != "a@b.co" {
		t.Fatalf("claims: got=%+v", claims)
	}
	if _, err := ParseJWT(token, "other"); err == nil {
		t.Fatalf("token accepted with wrong secret")
	}

	expired, _ := GenerateJWT(user, "secret", -time.Minute)
	if _, err := ParseJWT(expired, "secret"); err == nil {
		t.Fatalf("expired token accepted")
	}
}

func TestParseID(t *testing.T) {
	if id, err := ParseID("12"); err != nil || id != 12 {
		t.Fatalf("got=%d err=%v", id, err)
	}
	for _, bad := range []string{"", "0", "-1", "abc"} {
		if _, err := ParseID(bad); !IsCode(err, CodeInvalidID) {
			t.Fatalf("%q: got=%v", bad, err)
		}
	}
}
