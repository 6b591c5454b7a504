package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/gamebox/internal/catalog"
	"github.com/hitoshi/gamebox/internal/model"
)

// GameServiceInterface はゲームハンドラーが必要とするサービスインターフェース。
type GameServiceInterface interface {
	Create(ctx context.Context, input catalog.CreateGameInput) (*model.Game, error)
	List(ctx context.Context) ([]*model.Game, error)
	Search(ctx context.Context, term string) ([]*model.Game, error)
	Get(ctx context.Context, id int64) (*model.Game, error)
	ListRecent(ctx context.Context) ([]*model.Game, error)
	Cover(ctx context.Context, id int64) (*model.GameCover, error)
}

// GameHandler はゲームカタログ関連のHTTPハンドラー。
type GameHandler struct {
	service GameServiceInterface
}

// NewGameHandler はGameHandlerを生成する。
func NewGameHandler(service GameServiceInterface) *GameHandler {
	return &GameHandler{service: service}
}

// gameJSON は一覧用のゲームJSON射影を返す。
func gameJSON(g *model.Game) map[string]any {
	return map[string]any{
		"id":              g.ID,
		"nome_jogo":       g.NomeJogo,
		"ano_lancamento":  g.AnoLancamento,
		"plataforma":      g.Plataforma,
		"avaliacao_media": g.AvaliacaoMedia,
		"image_url":       g.ImageURL,
	}
}

// gamesJSON はゲーム一覧をJSON射影の配列に変換する。常に非nilを返す
// （空一覧はJSONのnullではなく[]にする）。
func gamesJSON(games []*model.Game) []map[string]any {
	list := make([]map[string]any, 0, len(games))
	for _, g := range games {
		list = append(list, gameJSON(g))
	}
	return list
}

// Criar はゲームをカタログに登録する。
// POST /api/jogos {"nome_jogo", "ano_lancamento"?, "plataforma"?, "avaliacao_media"?, "image_url"?, "descricao"?}
func (h *GameHandler) Criar(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NomeJogo       string   `json:"nome_jogo"`
		AnoLancamento  *int     `json:"ano_lancamento"`
		Plataforma     *string  `json:"plataforma"`
		AvaliacaoMedia *float64 `json:"avaliacao_media"`
		ImageURL       *string  `json:"image_url"`
		Descricao      *string  `json:"descricao"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.NomeJogo == "" {
		writeMessage(w, http.StatusBadRequest, false, "Nome do jogo é obrigatório")
		return
	}

	_, err := h.service.Create(r.Context(), catalog.CreateGameInput{
		NomeJogo:       req.NomeJogo,
		AnoLancamento:  req.AnoLancamento,
		Plataforma:     req.Plataforma,
		AvaliacaoMedia: req.AvaliacaoMedia,
		ImageURL:       req.ImageURL,
		Descricao:      req.Descricao,
	})
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeDuplicateGame {
			writeMessage(w, http.StatusBadRequest, false, apiErr.Message)
			return
		}
		slog.Error("failed to create game", slog.String("error", err.Error()))
		writeMessage(w, http.StatusInternalServerError, false, "Erro interno no servidor")
		return
	}

	writeMessage(w, http.StatusCreated, true, "Jogo adicionado com sucesso!")
}

// Listar は全ゲームを返す。
// GET /api/jogos
func (h *GameHandler) Listar(w http.ResponseWriter, r *http.Request) {
	games, err := h.service.List(r.Context())
	if err != nil {
		slog.Error("failed to list games", slog.String("error", err.Error()))
		writeMessage(w, http.StatusInternalServerError, false, "Erro interno do servidor ao buscar jogos")
		return
	}
	writeJSON(w, http.StatusOK, gamesJSON(games))
}

// Pesquisar はタイトルの部分一致でゲームを検索する。
// GET /api/jogos/pesquisa?q=termo
func (h *GameHandler) Pesquisar(w http.ResponseWriter, r *http.Request) {
	termo := r.URL.Query().Get("q")
	games, err := h.service.Search(r.Context(), termo)
	if err != nil {
		slog.Error("failed to search games", slog.String("error", err.Error()))
		writeMessage(w, http.StatusInternalServerError, false, "Erro interno do servidor ao buscar jogos")
		return
	}
	writeJSON(w, http.StatusOK, gamesJSON(games))
}

// Recentes はID降順で最新4件のゲームを返す。
// GET /api/jogos/recentes
func (h *GameHandler) Recentes(w http.ResponseWriter, r *http.Request) {
	games, err := h.service.ListRecent(r.Context())
	if err != nil {
		slog.Error("failed to list recent games", slog.String("error", err.Error()))
		writeMessage(w, http.StatusInternalServerError, false, "Erro interno do servidor ao buscar jogos")
		return
	}
	writeJSON(w, http.StatusOK, gamesJSON(games))
}

// Obter は指定IDのゲーム詳細を返す。詳細にはdescricaoを含む。
// GET /api/jogos/{id}
func (h *GameHandler) Obter(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeNotFound(w)
		return
	}

	game, err := h.service.Get(r.Context(), id)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeGameNotFound {
			writeNotFound(w)
			return
		}
		slog.Error("failed to get game", slog.String("error", err.Error()))
		writeMessage(w, http.StatusInternalServerError, false, "Erro interno no servidor")
		return
	}

	body := gameJSON(game)
	body["descricao"] = game.Descricao
	writeJSON(w, http.StatusOK, body)
}

// Capa はキャッシュ済みのカバー画像を返す。
// GET /api/jogos/{id}/capa
func (h *GameHandler) Capa(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeNotFound(w)
		return
	}

	cover, err := h.service.Cover(r.Context(), id)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeGameNotFound {
			writeNotFound(w)
			return
		}
		slog.Error("failed to get cover", slog.String("error", err.Error()))
		writeMessage(w, http.StatusInternalServerError, false, "Erro interno no servidor")
		return
	}

	w.Header().Set("Content-Type", cover.Mime)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(cover.Data)
}
