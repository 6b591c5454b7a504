// Package handler はHTTPハンドラーを提供する。
//
// レスポンスのJSON形は既存フロントエンドとの互換のため2系統ある:
// 認証・ゲーム系は {"success": bool, "message": string}、
// ビブリオテカ系は {"erro": string} / {"mensagem": string}。
// この分裂は保存対象の契約であり、統一しない。
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeMessage は認証・ゲーム系の {"success": ..., "message": ...} 形を書き込む。
func writeMessage(w http.ResponseWriter, status int, success bool, message string) {
	writeJSON(w, status, map[string]any{
		"success": success,
		"message": message,
	})
}

// writeErro はビブリオテカ系の {"erro": ...} 形を書き込む。
func writeErro(w http.ResponseWriter, status int, erro string) {
	writeJSON(w, status, map[string]any{"erro": erro})
}

// writeMensagem はビブリオテカ系の {"mensagem": ...} 形を書き込む。
func writeMensagem(w http.ResponseWriter, status int, mensagem string) {
	writeJSON(w, status, map[string]any{"mensagem": mensagem})
}

// writeNotFound は/api/*共通の404形を書き込む。
func writeNotFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]any{
		"success": false,
		"error":   "Not Found",
	})
}
