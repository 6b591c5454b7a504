package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/gamebox/internal/model"
)

// PostgresLibraryRepo はPostgreSQLを使用したライブラリ台帳リポジトリ。
// 全クエリがusuario_idを絞り込み条件に含む。他ユーザーのエントリには
// どの操作でも到達できない。
type PostgresLibraryRepo struct {
	db *sql.DB
}

// NewPostgresLibraryRepo はPostgresLibraryRepoを生成する。
func NewPostgresLibraryRepo(db *sql.DB) *PostgresLibraryRepo {
	return &PostgresLibraryRepo{db: db}
}

// FindByUserAndGame はユーザーIDとゲームIDで台帳エントリを検索する。
// 見つからない場合はnilを返す。
func (r *PostgresLibraryRepo) FindByUserAndGame(ctx context.Context, userID, gameID int64) (*model.LibraryEntry, error) {
	entry := &model.LibraryEntry{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, usuario_id, jogo_id, status, data_adicao
		 FROM biblioteca WHERE usuario_id = $1 AND jogo_id = $2`,
		userID, gameID,
	).Scan(&entry.ID, &entry.UserID, &entry.GameID, &entry.Status, &entry.DataAdicao)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find library entry: %w", err)
	}

	return entry, nil
}

// Create は台帳エントリを作成し、採番されたIDをentry.IDに書き戻す。
// (usuario_id, jogo_id)のユニーク制約違反はそのまま返す。INSERTは単一の
// アトミックなコミットであり、失敗時に部分的な書き込みは残らない。
func (r *PostgresLibraryRepo) Create(ctx context.Context, entry *model.LibraryEntry) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO biblioteca (usuario_id, jogo_id, status)
		 VALUES ($1, $2, $3)
		 RETURNING id, data_adicao`,
		entry.UserID, entry.GameID, entry.Status,
	).Scan(&entry.ID, &entry.DataAdicao)
	if err != nil {
		return fmt.Errorf("failed to insert library entry: %w", err)
	}
	return nil
}

// ListByUserWithGame はユーザーの台帳一覧をゲーム情報とJOINして返す。
// INNER JOINのため、参照先のゲームが削除済みのエントリは黙ってスキップされる
// （壊れた参照としてエラーにはしない）。
func (r *PostgresLibraryRepo) ListByUserWithGame(ctx context.Context, userID int64) ([]model.LibraryEntryWithGame, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT
			b.id, b.usuario_id, b.jogo_id, b.status, b.data_adicao,
			j.nome_jogo, j.ano_lancamento, j.plataforma, j.image_url
		 FROM biblioteca b
		 JOIN jogos j ON j.id = b.jogo_id
		 WHERE b.usuario_id = $1
		 ORDER BY b.data_adicao ASC, b.id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list library entries: %w", err)
	}
	defer rows.Close()

	var entries []model.LibraryEntryWithGame
	for rows.Next() {
		var e model.LibraryEntryWithGame
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.GameID, &e.Status, &e.DataAdicao,
			&e.NomeJogo, &e.AnoLancamento, &e.Plataforma, &e.ImageURL,
		); err != nil {
			return nil, fmt.Errorf("failed to scan library row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate library rows: %w", err)
	}
	return entries, nil
}

// UpdateStatus は台帳エントリのstatusのみを上書きする。data_adicaoは変更しない。
// 該当エントリが存在しない場合はfalseを返す。
func (r *PostgresLibraryRepo) UpdateStatus(ctx context.Context, userID, gameID int64, status string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE biblioteca SET status = $3 WHERE usuario_id = $1 AND jogo_id = $2`,
		userID, gameID, status,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update library status: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// Delete は台帳エントリを削除する。該当エントリが存在しない場合はfalseを返す。
func (r *PostgresLibraryRepo) Delete(ctx context.Context, userID, gameID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM biblioteca WHERE usuario_id = $1 AND jogo_id = $2`,
		userID, gameID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete library entry: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// compile-time interface check
var _ LibraryRepository = (*PostgresLibraryRepo)(nil)
