package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/gamebox/internal/model"
)

// PostgresGameRepo はPostgreSQLを使用したカタログリポジトリ。
type PostgresGameRepo struct {
	db *sql.DB
}

// NewPostgresGameRepo はPostgresGameRepoを生成する。
func NewPostgresGameRepo(db *sql.DB) *PostgresGameRepo {
	return &PostgresGameRepo{db: db}
}

const gameColumns = `id, nome_jogo, ano_lancamento, plataforma, avaliacao_media, image_url, descricao, created_at`

// FindByID は指定IDのゲームを取得する。見つからない場合はnilを返す。
func (r *PostgresGameRepo) FindByID(ctx context.Context, id int64) (*model.Game, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+gameColumns+` FROM jogos WHERE id = $1`,
		id,
	)
	return scanGame(row)
}

// FindByNomeJogo はタイトルでゲームを検索する。見つからない場合はnilを返す。
func (r *PostgresGameRepo) FindByNomeJogo(ctx context.Context, nome string) (*model.Game, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+gameColumns+` FROM jogos WHERE nome_jogo = $1`,
		nome,
	)
	return scanGame(row)
}

// Create はゲームを作成し、採番されたIDをgame.IDに書き戻す。
func (r *PostgresGameRepo) Create(ctx context.Context, game *model.Game) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO jogos (nome_jogo, ano_lancamento, plataforma, avaliacao_media, image_url, descricao)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		game.NomeJogo, game.AnoLancamento, game.Plataforma, game.AvaliacaoMedia, game.ImageURL, game.Descricao,
	).Scan(&game.ID, &game.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert game: %w", err)
	}
	return nil
}

// List は全ゲームをID昇順で返す。
func (r *PostgresGameRepo) List(ctx context.Context) ([]*model.Game, error) {
	return r.queryGames(ctx,
		`SELECT `+gameColumns+` FROM jogos ORDER BY id ASC`,
	)
}

// Search はタイトルの部分一致（大文字小文字を区別しない）でゲームを検索する。
// 空文字列のtermは全件一致になる（ILIKE '%%'）。
func (r *PostgresGameRepo) Search(ctx context.Context, term string) ([]*model.Game, error) {
	return r.queryGames(ctx,
		`SELECT `+gameColumns+` FROM jogos WHERE nome_jogo ILIKE '%' || $1 || '%' ORDER BY id ASC`,
		term,
	)
}

// ListRecent はID降順で最新limit件のゲームを返す。
func (r *PostgresGameRepo) ListRecent(ctx context.Context, limit int) ([]*model.Game, error) {
	return r.queryGames(ctx,
		`SELECT `+gameColumns+` FROM jogos ORDER BY id DESC LIMIT $1`,
		limit,
	)
}

// UpdateCover はカバー画像キャッシュを保存する。
func (r *PostgresGameRepo) UpdateCover(ctx context.Context, gameID int64, data []byte, mime string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE jogos SET capa_data = $2, capa_mime = $3 WHERE id = $1`,
		gameID, data, mime,
	)
	if err != nil {
		return fmt.Errorf("failed to update cover: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("game not found: %d", gameID)
	}
	return nil
}

// FindCover はカバー画像キャッシュを取得する。未保存の場合はnilを返す。
func (r *PostgresGameRepo) FindCover(ctx context.Context, gameID int64) (*model.GameCover, error) {
	cover := &model.GameCover{GameID: gameID}
	var data []byte
	var mime sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT capa_data, capa_mime FROM jogos WHERE id = $1`,
		gameID,
	).Scan(&data, &mime)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find cover: %w", err)
	}
	if len(data) == 0 || !mime.Valid {
		return nil, nil
	}

	cover.Data = data
	cover.Mime = mime.String
	return cover, nil
}

// queryGames は複数行取得の共通処理。
func (r *PostgresGameRepo) queryGames(ctx context.Context, query string, args ...any) ([]*model.Game, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	var games []*model.Game
	for rows.Next() {
		game := &model.Game{}
		if err := rows.Scan(
			&game.ID, &game.NomeJogo, &game.AnoLancamento, &game.Plataforma,
			&game.AvaliacaoMedia, &game.ImageURL, &game.Descricao, &game.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan game row: %w", err)
		}
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate game rows: %w", err)
	}
	return games, nil
}

// scanGame は1行取得の共通処理。sql.ErrNoRowsは(nil, nil)に正規化する。
func scanGame(row *sql.Row) (*model.Game, error) {
	game := &model.Game{}
	err := row.Scan(
		&game.ID, &game.NomeJogo, &game.AnoLancamento, &game.Plataforma,
		&game.AvaliacaoMedia, &game.ImageURL, &game.Descricao, &game.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find game: %w", err)
	}

	return game, nil
}

// compile-time interface check
var _ GameRepository = (*PostgresGameRepo)(nil)
