// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/gamebox/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByUsername はユーザー名でユーザーを検索する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// FindByEmailAndSenha は(email, senha)の完全一致でユーザーを検索する。
	// ログイン認証に使用する。見つからない場合はnilを返す。
	FindByEmailAndSenha(ctx context.Context, email, senha string) (*model.User, error)

	// Create はユーザーを作成し、採番されたIDをuser.IDに書き戻す。
	Create(ctx context.Context, user *model.User) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteExpired は期限切れセッションを一括削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// GameRepository はカタログ（ゲーム）データの永続化インターフェース。
type GameRepository interface {
	// FindByID は指定IDのゲームを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Game, error)

	// FindByNomeJogo はタイトルでゲームを検索する。見つからない場合はnilを返す。
	FindByNomeJogo(ctx context.Context, nome string) (*model.Game, error)

	// Create はゲームを作成し、採番されたIDをgame.IDに書き戻す。
	Create(ctx context.Context, game *model.Game) error

	// List は全ゲームをID昇順で返す。
	List(ctx context.Context) ([]*model.Game, error)

	// Search はタイトルの部分一致（大文字小文字を区別しない）でゲームを検索する。
	Search(ctx context.Context, term string) ([]*model.Game, error)

	// ListRecent はID降順で最新limit件のゲームを返す。
	ListRecent(ctx context.Context, limit int) ([]*model.Game, error)

	// UpdateCover はカバー画像キャッシュを保存する。
	UpdateCover(ctx context.Context, gameID int64, data []byte, mime string) error

	// FindCover はカバー画像キャッシュを取得する。未保存の場合はnilを返す。
	FindCover(ctx context.Context, gameID int64) (*model.GameCover, error)
}

// LibraryRepository はライブラリ台帳の永続化インターフェース。
// 全操作がuserIDを必須の絞り込み条件に取る。エントリIDのみでの操作は提供しない。
type LibraryRepository interface {
	// FindByUserAndGame はユーザーIDとゲームIDで台帳エントリを検索する。
	// 見つからない場合はnilを返す。
	FindByUserAndGame(ctx context.Context, userID, gameID int64) (*model.LibraryEntry, error)

	// Create は台帳エントリを作成し、採番されたIDをentry.IDに書き戻す。
	// (userID, gameID)のユニーク制約違反はそのままエラーとして返す
	// （IsUniqueViolationで判定できる）。
	Create(ctx context.Context, entry *model.LibraryEntry) error

	// ListByUserWithGame はユーザーの台帳一覧をゲーム情報とJOINして返す。
	// 参照先のゲームが存在しないエントリは結果に含まれない。
	ListByUserWithGame(ctx context.Context, userID int64) ([]model.LibraryEntryWithGame, error)

	// UpdateStatus は台帳エントリのstatusのみを上書きする。data_adicaoは変更しない。
	// 該当エントリが存在しない場合はfalseを返す。
	UpdateStatus(ctx context.Context, userID, gameID int64, status string) (bool, error)

	// Delete は台帳エントリを削除する。該当エントリが存在しない場合はfalseを返す。
	Delete(ctx context.Context, userID, gameID int64) (bool, error)
}
