package repository

import (
	"errors"

	"github.com/lib/pq"
)

// uniqueViolation はPostgreSQLのunique_violationエラーコード。
const uniqueViolation = "23505"

// IsUniqueViolation はerrがユニーク制約違反かを判定する。
// constraintが空でない場合は該当制約名の違反のみを真とする。
// 同時リクエストが同一キーをINSERTした場合、片方はコミット時にこのエラーで
// 検出されるため、呼び出し側はドメイン上の結果（重複登録など）に翻訳する。
func IsUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

// ユニーク制約名。マイグレーションの定義と一致させること。
const (
	ConstraintUsuariosEmail    = "usuarios_email_key"
	ConstraintUsuariosUsername = "usuarios_username_key"
	ConstraintJogosNome        = "jogos_nome_jogo_key"
	ConstraintBibliotecaPar    = "biblioteca_usuario_jogo_key"
)
