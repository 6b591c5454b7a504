package model

import "time"

// User はサービス利用ユーザーを表す。
// Senhaは平文のまま保持する。既存のフロントエンド／DB資産との互換のため、
// ログイン時の比較はDB上の完全一致で行う（ハッシュ化しない）。
type User struct {
	ID        int64
	Username  string
	Email     string
	Senha     string
	CreatedAt time.Time
}

// Session はユーザーのログインセッションを表す。
// IDはクライアントがCookieで保持する不透明トークン。
type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}
