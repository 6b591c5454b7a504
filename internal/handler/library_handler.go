package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/gamebox/internal/library"
	"github.com/hitoshi/gamebox/internal/middleware"
	"github.com/hitoshi/gamebox/internal/model"
)

// LibraryServiceInterface はビブリオテカハンドラーが必要とするサービスインターフェース。
type LibraryServiceInterface interface {
	List(ctx context.Context, userID int64) ([]model.LibraryEntryWithGame, error)
	Add(ctx context.Context, userID, gameID int64, status string) (*library.AddResult, error)
	UpdateStatus(ctx context.Context, userID, gameID int64, status string) error
	Remove(ctx context.Context, userID, gameID int64) error
}

// LibraryHandler はユーザーのゲームライブラリ関連のHTTPハンドラー。
// すべてのルートはセッションミドルウェアの内側に置かれ、行動主体の
// ユーザーIDはリクエストコンテキストから取得する。
type LibraryHandler struct {
	service LibraryServiceInterface
}

// NewLibraryHandler はLibraryHandlerを生成する。
func NewLibraryHandler(service LibraryServiceInterface) *LibraryHandler {
	return &LibraryHandler{service: service}
}

// Listar はログインユーザーのライブラリ一覧を返す。
// 各要素のidはゲームのID（台帳エントリのIDではない）。
// GET /api/biblioteca
func (h *LibraryHandler) Listar(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, false, "unauthorized")
		return
	}

	entries, err := h.service.List(r.Context(), userID)
	if err != nil {
		slog.Error("failed to list library", slog.String("error", err.Error()))
		writeErro(w, http.StatusInternalServerError, "Erro ao buscar biblioteca")
		return
	}

	list := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		list = append(list, map[string]any{
			"id":             e.GameID,
			"nome_jogo":      e.NomeJogo,
			"status":         e.Status,
			"data_adicao":    e.DataAdicao,
			"ano_lancamento": e.AnoLancamento,
			"plataforma":     e.Plataforma,
			"image_url":      e.ImageURL,
		})
	}
	writeJSON(w, http.StatusOK, list)
}

// Adicionar はゲームをライブラリに追加する。
// 既に存在する場合は200で既存エントリをそのまま残す（statusは変更しない）。
// POST /api/biblioteca/adicionar {"jogo_id", "status"?}
func (h *LibraryHandler) Adicionar(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, false, "unauthorized")
		return
	}

	var req struct {
		JogoID int64  `json:"jogo_id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.JogoID == 0 {
		writeErro(w, http.StatusBadRequest, "ID do jogo é obrigatório")
		return
	}

	result, err := h.service.Add(r.Context(), userID, req.JogoID, req.Status)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.Code {
			case model.ErrCodeGameNotFound:
				writeErro(w, http.StatusNotFound, "Jogo não encontrado")
				return
			case model.ErrCodePersistence:
				writeErro(w, http.StatusInternalServerError, apiErr.Message)
				return
			}
		}
		slog.Error("failed to add to library", slog.String("error", err.Error()))
		writeErro(w, http.StatusInternalServerError, "Erro ao adicionar jogo à biblioteca")
		return
	}

	if !result.Created {
		writeMensagem(w, http.StatusOK, "Jogo já está na sua biblioteca")
		return
	}
	writeMensagem(w, http.StatusCreated,
		fmt.Sprintf("Jogo %q adicionado com status %q", result.NomeJogo, result.Status))
}

// AtualizarStatus はライブラリ内のゲームのstatusを更新する。
// PUT /api/biblioteca/status/{jogo_id} {"status"}
func (h *LibraryHandler) AtualizarStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, false, "unauthorized")
		return
	}

	jogoID, err := strconv.ParseInt(chi.URLParam(r, "jogo_id"), 10, 64)
	if err != nil {
		writeErro(w, http.StatusNotFound, "Jogo não encontrado na sua biblioteca")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		writeErro(w, http.StatusBadRequest, "Novo status é obrigatório")
		return
	}

	if err := h.service.UpdateStatus(r.Context(), userID, jogoID, req.Status); err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.Code {
			case model.ErrCodeEntryNotFound:
				writeErro(w, http.StatusNotFound, apiErr.Message)
				return
			case model.ErrCodePersistence:
				writeErro(w, http.StatusInternalServerError, apiErr.Message)
				return
			}
		}
		slog.Error("failed to update library status", slog.String("error", err.Error()))
		writeErro(w, http.StatusInternalServerError, "Erro ao atualizar status")
		return
	}

	writeMensagem(w, http.StatusOK,
		fmt.Sprintf("Status do jogo (ID: %d) atualizado para %q", jogoID, req.Status))
}

// Remover はライブラリからゲームを削除する。
// DELETE /api/biblioteca/remover/{jogo_id}
func (h *LibraryHandler) Remover(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, false, "unauthorized")
		return
	}

	jogoID, err := strconv.ParseInt(chi.URLParam(r, "jogo_id"), 10, 64)
	if err != nil {
		writeErro(w, http.StatusNotFound, "Jogo não encontrado na sua biblioteca")
		return
	}

	if err := h.service.Remove(r.Context(), userID, jogoID); err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.Code {
			case model.ErrCodeEntryNotFound:
				writeErro(w, http.StatusNotFound, apiErr.Message)
				return
			case model.ErrCodePersistence:
				writeErro(w, http.StatusInternalServerError, apiErr.Message)
				return
			}
		}
		slog.Error("failed to remove from library", slog.String("error", err.Error()))
		writeErro(w, http.StatusInternalServerError, "Erro ao remover jogo da biblioteca")
		return
	}

	writeMensagem(w, http.StatusOK, fmt.Sprintf("Jogo (ID: %d) removido da biblioteca", jogoID))
}
