// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。Messageはフロントエンドが
// そのまま表示するためポルトガル語（UI言語）で保持する。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ（UI表示用）
	Category string // カテゴリ: auth, validation, catalog, library, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeMissingField       = "MISSING_FIELD"
	ErrCodeDuplicateEmail     = "DUPLICATE_EMAIL"
	ErrCodeDuplicateUsername  = "DUPLICATE_USERNAME"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeGameNotFound       = "GAME_NOT_FOUND"
	ErrCodeDuplicateGame      = "DUPLICATE_GAME"
	ErrCodeEntryNotFound      = "ENTRY_NOT_FOUND"
	ErrCodePersistence        = "PERSISTENCE_ERROR"
)

// NewMissingFieldError は必須項目欠落エラーを生成する。
// messageには各エンドポイントの既存文言をそのまま渡す。
func NewMissingFieldError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeMissingField,
		Message:  message,
		Category: "validation",
		Action:   "Preencha os campos obrigatórios e tente novamente.",
	}
}

// NewDuplicateEmailError はメールアドレス重複エラーを生成する。
func NewDuplicateEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateEmail,
		Message:  "Email já cadastrado",
		Category: "auth",
		Action:   "Use outro email ou faça login com a conta existente.",
	}
}

// NewDuplicateUsernameError はユーザー名重複エラーを生成する。
func NewDuplicateUsernameError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateUsername,
		Message:  "Nome de usuário já cadastrado",
		Category: "auth",
		Action:   "Escolha outro nome de usuário.",
	}
}

// NewInvalidCredentialsError は認証失敗エラーを生成する。
// メール未登録とパスワード不一致を区別しない（列挙攻撃の観点からも文言は統一）。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Email ou senha incorretos",
		Category: "auth",
		Action:   "Verifique o email e a senha informados.",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "unauthorized",
		Category: "auth",
		Action:   "Faça login para continuar.",
	}
}

// NewGameNotFoundError はゲーム未検出エラーを生成する。
func NewGameNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeGameNotFound,
		Message:  "Jogo não encontrado",
		Category: "catalog",
		Action:   "Verifique o ID do jogo.",
	}
}

// NewDuplicateGameError はタイトル重複エラーを生成する。
func NewDuplicateGameError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateGame,
		Message:  "Jogo já cadastrado",
		Category: "catalog",
		Action:   "Esse título já existe no catálogo.",
	}
}

// NewEntryNotFoundError はライブラリにエントリが存在しない場合のエラーを生成する。
func NewEntryNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeEntryNotFound,
		Message:  "Jogo não encontrado na sua biblioteca",
		Category: "library",
		Action:   "Adicione o jogo à biblioteca antes de alterá-lo.",
	}
}

// NewPersistenceError は永続化層のコミット失敗エラーを生成する。
// 内部の例外詳細はログのみに記録し、ユーザーには一般的な文言を返す。
func NewPersistenceError(message string) *APIError {
	return &APIError{
		Code:     ErrCodePersistence,
		Message:  message,
		Category: "system",
		Action:   "Tente novamente em instantes.",
	}
}
