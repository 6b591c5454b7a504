package model

import "time"

// Game はカタログ上のゲームを表す。nome_jogo以外の属性は任意。
type Game struct {
	ID             int64
	NomeJogo       string
	AnoLancamento  *int
	Plataforma     *string
	AvaliacaoMedia *float64
	ImageURL       *string
	Descricao      *string
	CreatedAt      time.Time
}

// GameCover はキャッシュ済みのカバー画像を表す。
// image_urlから取得した画像バイト列をDB上に保持する。
type GameCover struct {
	GameID int64
	Data   []byte
	Mime   string
}
