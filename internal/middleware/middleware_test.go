package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jobprep_backend/internal/model"
	"jobprep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

const testSecret = "middleware-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter() *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), AuthMiddleware(testSecret))
	r.GET("/me", func(c *gin.Context) {
		util.Success(c, gin.H{"userId": util.GetUserFromContext(c).UserID})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	r := newAuthRouter()
	valid, err := util.GenerateJWT(&model.User{BaseModel: model.BaseModel{ID: 7}, Email: "a@b.co"}, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	expired, _ := util.GenerateJWT(&model.User{BaseModel: model.BaseModel{ID: 7}}, testSecret, -time.Minute)
	foreign, _ := util.GenerateJWT(&model.User{BaseModel: model.BaseModel{ID: 7}}, "other-secret", time.Hour)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{name: "valid", header: "Bearer " + valid, want: http.StatusOK},
		{name: "missing", header: "", want: http.StatusUnauthorized},
		{name: "no bearer prefix", header: valid, want: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + expired, want: http.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer " + foreign, want: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer not.a.jwt", want: http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("status: got=%d want=%d body=%s", w.Code, tc.want, w.Body.String())
			}
			if tc.want == http.StatusUnauthorized {
				var resp util.Response
				json.Unmarshal(w.Body.Bytes(), &resp)
				if resp.Success || resp.Error != string(util.CodeUnauthorized) {
					t.Fatalf("envelope: %+v", resp)
				}
			}
		})
	}
}

func TestRequestIDPropagation(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), AccessLog())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(util.RequestIDKey))
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(util.RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get(util.RequestIDHeader) != "abc-123" || w.Body.String() != "abc-123" {
		t.Fatalf("request id not propagated: header=%q body=%q", w.Header().Get(util.RequestIDHeader), w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if len(w.Header().Get(util.RequestIDHeader)) != 36 {
		t.Fatalf("generated id: %q", w.Header().Get(util.RequestIDHeader))
	}
}

func TestRecoveryReturnsEnvelope(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status: got=%d", w.Code)
	}
	var resp util.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Error != string(util.CodeInternal) {
		t.Fatalf("body: %s", w.Body.String())
	}
}
