package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/gamebox/internal/model"
)

// stubSessionFinder はテスト用のSessionFinder。
type stubSessionFinder struct {
	sessions map[string]*model.Session
	err      error
}

func (s *stubSessionFinder) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.sessions[id], nil
}

func newAuthedFinder(sessionID string, userID int64) *stubSessionFinder {
	return &stubSessionFinder{sessions: map[string]*model.Session{
		sessionID: {ID: sessionID, UserID: userID, ExpiresAt: time.Now().Add(time.Hour)},
	}}
}

// assertUnauthorizedJSON は401のJSONレスポンス形を検証する。
func assertUnauthorizedJSON(t *testing.T, rr *httptest.ResponseRecorder) {
	t.Helper()
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if body["success"] != false || body["message"] != "unauthorized" {
		t.Errorf("body = %v, want success=false message=unauthorized", body)
	}
}

// 有効なセッションCookieでユーザーIDがコンテキストに注入されることを検証
func TestSessionMiddleware_ValidSession(t *testing.T) {
	mw := NewSessionMiddleware(newAuthedFinder("sess-1", 7))

	var gotUserID int64
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := UserIDFromContext(r.Context())
		if err != nil {
			t.Errorf("UserIDFromContext returned error: %v", err)
		}
		gotUserID = userID
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/biblioteca", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "sess-1"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if gotUserID != 7 {
		t.Errorf("user ID in context = %d, want 7", gotUserID)
	}
}

// Cookie無しで401の統一JSONが返ることを検証
func TestSessionMiddleware_NoCookie(t *testing.T) {
	mw := NewSessionMiddleware(&stubSessionFinder{})
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/biblioteca", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assertUnauthorizedJSON(t, rr)
}

// 未知のセッションIDで401が返ることを検証
func TestSessionMiddleware_UnknownSession(t *testing.T) {
	mw := NewSessionMiddleware(&stubSessionFinder{})
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/user_profile", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "forged"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assertUnauthorizedJSON(t, rr)
}

// セッション検索エラーでも401が返り、詳細が漏れないことを検証
func TestSessionMiddleware_FinderError(t *testing.T) {
	mw := NewSessionMiddleware(&stubSessionFinder{err: fmt.Errorf("db down")})
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/biblioteca", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "sess-1"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assertUnauthorizedJSON(t, rr)
}

// UserIDFromContextがミドルウェア外のコンテキストでエラーになることを検証
func TestUserIDFromContext_Missing(t *testing.T) {
	if _, err := UserIDFromContext(context.Background()); err == nil {
		t.Error("expected error for context without user ID")
	}

	ctx := ContextWithUserID(context.Background(), 42)
	userID, err := UserIDFromContext(ctx)
	if err != nil || userID != 42 {
		t.Errorf("UserIDFromContext = (%d, %v), want (42, nil)", userID, err)
	}
}
