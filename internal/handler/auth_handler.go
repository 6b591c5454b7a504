package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/gamebox/internal/model"
)

const sessionCookieName = "session_id"

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, username, email, senha string) (*model.User, error)
	Login(ctx context.Context, email, senha string) (*model.Session, *model.User, error)
	Logout(ctx context.Context, sessionID string) error
	GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler は登録・ログイン関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
	}
}

// Registro は新規ユーザーを登録する。
// POST /api/registro {"username", "email", "senha"}
func (h *AuthHandler) Registro(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Senha    string `json:"senha"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Preencha todos os campos")
		return
	}
	if req.Username == "" || req.Email == "" || req.Senha == "" {
		writeMessage(w, http.StatusBadRequest, false, "Preencha todos os campos")
		return
	}

	if _, err := h.service.Register(r.Context(), req.Username, req.Email, req.Senha); err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.Code {
			case model.ErrCodeDuplicateEmail, model.ErrCodeDuplicateUsername:
				writeMessage(w, http.StatusConflict, false, apiErr.Message)
				return
			}
		}
		slog.Error("registration failed", slog.String("error", err.Error()))
		writeMessage(w, http.StatusInternalServerError, false, "Erro interno no servidor")
		return
	}

	writeMessage(w, http.StatusCreated, true, "Usuário registrado com sucesso!")
}

// Login は(email, senha)で認証し、セッションCookieを発行する。
// POST /api/login {"email", "senha"}
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Senha string `json:"senha"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusUnauthorized, false, "Email ou senha incorretos")
		return
	}

	session, user, err := h.service.Login(r.Context(), req.Email, req.Senha)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeInvalidCredentials {
			writeMessage(w, http.StatusUnauthorized, false, apiErr.Message)
			return
		}
		slog.Error("login failed", slog.String("error", err.Error()))
		writeMessage(w, http.StatusInternalServerError, false, "Erro interno no servidor")
		return
	}

	// セッションCookieを設定（HTTP Only）
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.ID,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Login bem-sucedido!",
		"user": map[string]any{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

// Logout はセッションを破棄し、Cookieをクリアする。
// POST /api/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil && cookie.Value != "" {
		if logoutErr := h.service.Logout(r.Context(), cookie.Value); logoutErr != nil {
			slog.Error("failed to logout", slog.String("error", logoutErr.Error()))
			// ログアウト失敗してもCookieはクリアする
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// UserProfile は現在のログインユーザー情報を返す。
// GET /api/user_profile
func (h *AuthHandler) UserProfile(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		writeMessage(w, http.StatusUnauthorized, false, "unauthorized")
		return
	}

	user, err := h.service.GetCurrentUser(r.Context(), cookie.Value)
	if err != nil {
		slog.Error("failed to get current user", slog.String("error", err.Error()))
		writeMessage(w, http.StatusUnauthorized, false, "unauthorized")
		return
	}
	if user == nil {
		writeMessage(w, http.StatusUnauthorized, false, "unauthorized")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":       user.ID,
		"email":    user.Email,
		"username": user.Username,
	})
}

// Home は認証不要のウェルカムレスポンスを返す。
// GET /api/home
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"message": "Bem-vindo à home!"})
}
