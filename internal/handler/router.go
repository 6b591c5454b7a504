package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/gamebox/internal/metrics"
	"github.com/hitoshi/gamebox/internal/middleware"
)

// DBPinger はヘルスチェックに必要なデータベース接続確認インターフェース。
// *sql.DBの部分集合として定義する。
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	HTTPMetrics       middleware.HTTPMetricsRecorder
	Logger            *slog.Logger

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// ゲームカタログ
	GameService GameServiceInterface

	// ライブラリ
	LibraryService LibraryServiceInterface

	// 運用系
	DB       DBPinger
	Gatherer prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RecoveryMiddleware → LoggingMiddleware → MetricsMiddleware → SecurityHeadersMiddleware → CORSMiddleware
//
// カタログの参照系・認証ルートは公開、ビブリオテカ系とlogout/user_profileは
// セッションミドルウェアの内側に置く。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	if deps.HTTPMetrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.HTTPMetrics))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware(deps.AuthConfig.CookieSecure))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	gameHandler := NewGameHandler(deps.GameService)
	libraryHandler := NewLibraryHandler(deps.LibraryService)

	// /api/* の未定義ルートはJSONの404を返す
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		if strings.HasPrefix(req.URL.Path, "/api/") {
			writeNotFound(w)
			return
		}
		http.NotFound(w, req)
	})

	// --- 運用系ルート ---

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if deps.DB != nil {
			if err := deps.DB.PingContext(req.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unhealthy"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	// --- 認証不要のルート ---

	r.Route("/api", func(r chi.Router) {
		r.Post("/registro", authHandler.Registro)
		r.Post("/login", authHandler.Login)
		r.Get("/home", authHandler.Home)

		r.Route("/jogos", func(r chi.Router) {
			r.Get("/", gameHandler.Listar)
			r.Post("/", gameHandler.Criar)
			r.Get("/pesquisa", gameHandler.Pesquisar)
			r.Get("/recentes", gameHandler.Recentes)
			r.Get("/{id}", gameHandler.Obter)
			r.Get("/{id}/capa", gameHandler.Capa)
		})

		// --- 認証が必要なルート ---
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))

			r.Post("/logout", authHandler.Logout)
			r.Get("/user_profile", authHandler.UserProfile)

			r.Route("/biblioteca", func(r chi.Router) {
				r.Get("/", libraryHandler.Listar)
				r.Post("/adicionar", libraryHandler.Adicionar)
				r.Put("/status/{jogo_id}", libraryHandler.AtualizarStatus)
				r.Delete("/remover/{jogo_id}", libraryHandler.Remover)
			})
		})
	})

	return r
}
