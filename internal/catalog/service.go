// Package catalog はゲームカタログのドメインロジックを提供する。
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/gamebox/internal/model"
	"github.com/hitoshi/gamebox/internal/repository"
)

// recentLimit は/api/jogos/recentesで返す件数。ID降順の最新4件。
const recentLimit = 4

// Sanitizer は説明文サニタイズのインターフェース。
// security.DescriptionSanitizerの部分集合として定義する。
type Sanitizer interface {
	Sanitize(rawHTML string) string
}

// CoverFetcher はカバー画像の非同期取得インターフェース。
// cover.Fetcherの部分集合として定義する。nilの場合は取得しない。
type CoverFetcher interface {
	// FetchAndStore はimage_urlからカバー画像を取得してキャッシュに保存する。
	// 失敗してもゲーム登録自体には影響させない。
	FetchAndStore(gameID int64, imageURL string)
}

// CreateGameInput はゲーム登録の入力。NomeJogo以外は任意。
type CreateGameInput struct {
	NomeJogo       string
	AnoLancamento  *int
	Plataforma     *string
	AvaliacaoMedia *float64
	ImageURL       *string
	Descricao      *string
}

// Service はカタログのサービス層。
type Service struct {
	gameRepo  repository.GameRepository
	sanitizer Sanitizer
	covers    CoverFetcher
}

// NewService はServiceの新しいインスタンスを生成する。coversはnil可。
func NewService(gameRepo repository.GameRepository, sanitizer Sanitizer, covers CoverFetcher) *Service {
	return &Service{
		gameRepo:  gameRepo,
		sanitizer: sanitizer,
		covers:    covers,
	}
}

// Create はゲームをカタログに登録する。
// タイトル重複は事前チェックに加え、同時登録に備えてコミット時の
// ユニーク制約違反も同じ重複エラーに翻訳する。
// descricaoは保存前にサニタイズする（scriptタグ等の除去）。
// 登録後、image_urlが設定されていればカバー画像を非同期に取得する。
func (s *Service) Create(ctx context.Context, input CreateGameInput) (*model.Game, error) {
	existing, err := s.gameRepo.FindByNomeJogo(ctx, input.NomeJogo)
	if err != nil {
		return nil, fmt.Errorf("failed to check game title: %w", err)
	}
	if existing != nil {
		return nil, model.NewDuplicateGameError()
	}

	game := &model.Game{
		NomeJogo:       input.NomeJogo,
		AnoLancamento:  input.AnoLancamento,
		Plataforma:     input.Plataforma,
		AvaliacaoMedia: input.AvaliacaoMedia,
		ImageURL:       input.ImageURL,
	}
	if input.Descricao != nil {
		clean := s.sanitizer.Sanitize(*input.Descricao)
		game.Descricao = &clean
	}

	if err := s.gameRepo.Create(ctx, game); err != nil {
		if repository.IsUniqueViolation(err, repository.ConstraintJogosNome) {
			return nil, model.NewDuplicateGameError()
		}
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	slog.Info("game created",
		slog.Int64("game_id", game.ID),
		slog.String("nome_jogo", game.NomeJogo),
	)

	if s.covers != nil && game.ImageURL != nil && *game.ImageURL != "" {
		s.covers.FetchAndStore(game.ID, *game.ImageURL)
	}

	return game, nil
}

// List は全ゲームを返す。
func (s *Service) List(ctx context.Context) ([]*model.Game, error) {
	games, err := s.gameRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return games, nil
}

// Search はタイトルの部分一致（大文字小文字を区別しない）でゲームを検索する。
func (s *Service) Search(ctx context.Context, term string) ([]*model.Game, error) {
	games, err := s.gameRepo.Search(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("failed to search games: %w", err)
	}
	return games, nil
}

// Get は指定IDのゲームを返す。存在しない場合はGAME_NOT_FOUND。
func (s *Service) Get(ctx context.Context, id int64) (*model.Game, error) {
	game, err := s.gameRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find game: %w", err)
	}
	if game == nil {
		return nil, model.NewGameNotFoundError()
	}
	return game, nil
}

// ListRecent はID降順で最新4件のゲームを返す。
func (s *Service) ListRecent(ctx context.Context) ([]*model.Game, error) {
	games, err := s.gameRepo.ListRecent(ctx, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent games: %w", err)
	}
	return games, nil
}

// Cover は指定ゲームのカバー画像キャッシュを返す。
// ゲームが存在しない、またはキャッシュ未保存の場合はGAME_NOT_FOUND。
func (s *Service) Cover(ctx context.Context, id int64) (*model.GameCover, error) {
	cover, err := s.gameRepo.FindCover(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find cover: %w", err)
	}
	if cover == nil {
		return nil, model.NewGameNotFoundError()
	}
	return cover, nil
}
