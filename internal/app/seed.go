package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hitoshi/gamebox/internal/auth"
	"github.com/hitoshi/gamebox/internal/catalog"
	"github.com/hitoshi/gamebox/internal/config"
	"github.com/hitoshi/gamebox/internal/database"
	"github.com/hitoshi/gamebox/internal/model"
	"github.com/hitoshi/gamebox/internal/repository"
	"github.com/hitoshi/gamebox/internal/security"
)

// seedGames は開発用の初期カタログデータ。
var seedGames = []catalog.CreateGameInput{
	{
		NomeJogo:       "The Legend of Zelda: Breath of the Wild",
		AnoLancamento:  seedInt(2017),
		Plataforma:     seedStr("Nintendo Switch"),
		AvaliacaoMedia: seedFloat(9.5),
	},
	{
		NomeJogo:       "Hollow Knight",
		AnoLancamento:  seedInt(2017),
		Plataforma:     seedStr("PC"),
		AvaliacaoMedia: seedFloat(9.0),
	},
	{
		NomeJogo:       "Elden Ring",
		AnoLancamento:  seedInt(2022),
		Plataforma:     seedStr("PC"),
		AvaliacaoMedia: seedFloat(9.6),
	},
	{
		NomeJogo:       "Stardew Valley",
		AnoLancamento:  seedInt(2016),
		Plataforma:     seedStr("PC"),
		AvaliacaoMedia: seedFloat(8.9),
	},
}

func seedInt(v int) *int           { return &v }
func seedStr(v string) *string     { return &v }
func seedFloat(v float64) *float64 { return &v }

// runSeed は開発用の初期データを投入する。
// デフォルトユーザーと初期カタログを作成する。既存データはスキップするため
// 何度実行しても安全。カバー画像の取得は行わない。
func runSeed(cfg *config.Config) error {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	ctx := context.Background()

	userRepo := repository.NewPostgresUserRepo(db)
	sessionRepo := repository.NewPostgresSessionRepo(db)
	gameRepo := repository.NewPostgresGameRepo(db)

	authService := auth.NewService(
		userRepo, sessionRepo, nil,
		auth.ServiceConfig{SessionMaxAge: cfg.SessionMaxAge},
	)
	gameService := catalog.NewService(gameRepo, security.NewDescriptionSanitizer(), nil)

	// デフォルトユーザー
	if _, err := authService.Register(ctx, "teste", "user@example.com", "senha123"); err != nil {
		var apiErr *model.APIError
		if !errors.As(err, &apiErr) ||
			(apiErr.Code != model.ErrCodeDuplicateEmail && apiErr.Code != model.ErrCodeDuplicateUsername) {
			return fmt.Errorf("failed to seed default user: %w", err)
		}
		slog.Info("default user already exists, skipping")
	} else {
		slog.Info("default user created", slog.String("username", "teste"))
	}

	// 初期カタログ
	created := 0
	for _, input := range seedGames {
		if _, err := gameService.Create(ctx, input); err != nil {
			var apiErr *model.APIError
			if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeDuplicateGame {
				continue
			}
			return fmt.Errorf("failed to seed game %q: %w", input.NomeJogo, err)
		}
		created++
	}

	slog.Info("seed completed", slog.Int("games_created", created))
	return nil
}
