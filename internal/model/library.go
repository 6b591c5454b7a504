package model

import "time"

// DefaultLibraryStatus はライブラリ追加時の既定status。
const DefaultLibraryStatus = "na fila"

// LibraryEntry はユーザーのライブラリ台帳の1エントリを表す。
// (UserID, GameID)の組はユニーク。
type LibraryEntry struct {
	ID         int64
	UserID     int64
	GameID     int64
	Status     string
	DataAdicao time.Time
}

// LibraryEntryWithGame は台帳エントリにゲーム情報を結合した一覧用の射影。
type LibraryEntryWithGame struct {
	LibraryEntry
	NomeJogo      string
	AnoLancamento *int
	Plataforma    *string
	ImageURL      *string
}
