// Package library はユーザーごとのゲームライブラリ（台帳）のドメインロジックを提供する。
//
// すべての操作は行動主体となるユーザーIDを必須に取り、台帳の読み書きは常に
// usuario_idで絞り込まれる。あるユーザーが他ユーザーのエントリを参照・変更・
// 削除する経路は存在しない。
package library

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/gamebox/internal/model"
	"github.com/hitoshi/gamebox/internal/repository"
)

// MetricsRecorder はライブラリ操作メトリクスの記録インターフェース。
// metrics.Collectorの部分集合として定義する。nilの場合は記録しない。
type MetricsRecorder interface {
	RecordLibraryOp(op string)
}

// AddResult はAddの結果を表す。
// Createdがfalseの場合、エントリは既に存在し、既存のstatusは変更されていない。
type AddResult struct {
	Created  bool
	NomeJogo string
	Status   string
}

// Service はライブラリ台帳のサービス層。
type Service struct {
	libRepo  repository.LibraryRepository
	gameRepo repository.GameRepository
	metrics  MetricsRecorder
}

// NewService はServiceの新しいインスタンスを生成する。metricsはnil可。
func NewService(libRepo repository.LibraryRepository, gameRepo repository.GameRepository, metrics MetricsRecorder) *Service {
	return &Service{
		libRepo:  libRepo,
		gameRepo: gameRepo,
		metrics:  metrics,
	}
}

// List はユーザーの台帳一覧をゲーム情報付きで返す。
// 参照先のゲームが削除済みのエントリはJOINの時点で除外され、
// 壊れた参照として表面化することはない。
func (s *Service) List(ctx context.Context, userID int64) ([]model.LibraryEntryWithGame, error) {
	entries, err := s.libRepo.ListByUserWithGame(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list library: %w", err)
	}
	return entries, nil
}

// Add はゲームをユーザーのライブラリに追加する。
// statusが空の場合は既定値（na fila）を使う。
//   - ゲームが存在しない場合: GAME_NOT_FOUND
//   - エントリが既に存在する場合: エラーではなくCreated=falseの結果を返し、
//     既存のstatusは変更しない（Addはupsertではない）
//   - 同時リクエストによる重複INSERTはコミット時のユニーク制約違反で検出し、
//     同じくCreated=falseの結果に翻訳する
//   - それ以外のコミット失敗: PERSISTENCE_ERROR（INSERTは単一コミットのため
//     部分的な書き込みは残らない）
func (s *Service) Add(ctx context.Context, userID, gameID int64, status string) (*AddResult, error) {
	if status == "" {
		status = model.DefaultLibraryStatus
	}

	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		slog.Error("failed to look up game for library add", slog.String("error", err.Error()))
		return nil, model.NewPersistenceError("Erro ao adicionar jogo à biblioteca")
	}
	if game == nil {
		return nil, model.NewGameNotFoundError()
	}

	existing, err := s.libRepo.FindByUserAndGame(ctx, userID, gameID)
	if err != nil {
		slog.Error("failed to look up library entry", slog.String("error", err.Error()))
		return nil, model.NewPersistenceError("Erro ao adicionar jogo à biblioteca")
	}
	if existing != nil {
		return &AddResult{Created: false, NomeJogo: game.NomeJogo, Status: existing.Status}, nil
	}

	entry := &model.LibraryEntry{
		UserID: userID,
		GameID: gameID,
		Status: status,
	}
	if err := s.libRepo.Create(ctx, entry); err != nil {
		if repository.IsUniqueViolation(err, repository.ConstraintBibliotecaPar) {
			// 同時Addとの競合。もう一方の書き込みが勝ったので既存扱いにする。
			current, findErr := s.libRepo.FindByUserAndGame(ctx, userID, gameID)
			if findErr == nil && current != nil {
				return &AddResult{Created: false, NomeJogo: game.NomeJogo, Status: current.Status}, nil
			}
			return &AddResult{Created: false, NomeJogo: game.NomeJogo, Status: status}, nil
		}
		slog.Error("failed to insert library entry", slog.String("error", err.Error()))
		return nil, model.NewPersistenceError("Erro ao adicionar jogo à biblioteca")
	}

	if s.metrics != nil {
		s.metrics.RecordLibraryOp("add")
	}
	slog.Info("game added to library",
		slog.Int64("user_id", userID),
		slog.Int64("game_id", gameID),
		slog.String("status", status),
	)
	return &AddResult{Created: true, NomeJogo: game.NomeJogo, Status: status}, nil
}

// UpdateStatus は台帳エントリのstatusを上書きする。data_adicaoは変更しない。
// (userID, gameID)のエントリが存在しない場合はENTRY_NOT_FOUNDを返す。
// 認識されるstatus値の集合は固定せず、非空であること以外は検証しない。
func (s *Service) UpdateStatus(ctx context.Context, userID, gameID int64, status string) error {
	updated, err := s.libRepo.UpdateStatus(ctx, userID, gameID, status)
	if err != nil {
		slog.Error("failed to update library status", slog.String("error", err.Error()))
		return model.NewPersistenceError("Erro ao atualizar status")
	}
	if !updated {
		return model.NewEntryNotFoundError()
	}

	if s.metrics != nil {
		s.metrics.RecordLibraryOp("update_status")
	}
	slog.Info("library status updated",
		slog.Int64("user_id", userID),
		slog.Int64("game_id", gameID),
		slog.String("status", status),
	)
	return nil
}

// Remove は台帳エントリを削除する。
// (userID, gameID)のエントリが存在しない場合はENTRY_NOT_FOUNDを返す。
func (s *Service) Remove(ctx context.Context, userID, gameID int64) error {
	deleted, err := s.libRepo.Delete(ctx, userID, gameID)
	if err != nil {
		slog.Error("failed to delete library entry", slog.String("error", err.Error()))
		return model.NewPersistenceError("Erro ao remover jogo da biblioteca")
	}
	if !deleted {
		return model.NewEntryNotFoundError()
	}

	if s.metrics != nil {
		s.metrics.RecordLibraryOp("remove")
	}
	slog.Info("game removed from library",
		slog.Int64("user_id", userID),
		slog.Int64("game_id", gameID),
	)
	return nil
}
