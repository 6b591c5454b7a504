// Package cover はゲームのカバー画像取得・キャッシュのドメインロジックを提供する。
//
// image_urlが画像を直接指していればそれを取り込み、HTMLページを指していれば
// og:imageメタタグから画像URLを解決して取り込む。取得した画像はjogosテーブルの
// capa_data / capa_mime列にキャッシュされ、GET /api/jogos/{id}/capa で配信される。
// 取得失敗はログに記録するのみで、ゲーム登録自体には影響させない。
package cover

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// SSRFValidator はSSRF検証のインターフェース。
// security.SSRFGuardServiceを抽象化してテスタビリティを向上させる。
type SSRFValidator interface {
	ValidateURL(rawURL string) error
	NewSafeClient(timeout time.Duration) *http.Client
}

// CoverStore はカバー画像キャッシュの保存先インターフェース。
// repository.GameRepositoryの部分集合として定義する。
type CoverStore interface {
	UpdateCover(ctx context.Context, gameID int64, data []byte, mime string) error
}

// Fetcher はカバー画像取得機能の実装。
type Fetcher struct {
	store     CoverStore
	ssrfGuard SSRFValidator
	timeout   time.Duration
	maxSize   int64
}

// NewFetcher はFetcherの新しいインスタンスを生成する。
// timeoutは1回のHTTP取得のタイムアウト、maxSizeは取り込む画像の最大バイト数。
func NewFetcher(store CoverStore, ssrfGuard SSRFValidator, timeout time.Duration, maxSize int64) *Fetcher {
	return &Fetcher{
		store:     store,
		ssrfGuard: ssrfGuard,
		timeout:   timeout,
		maxSize:   maxSize,
	}
}

// FetchAndStore はカバー画像の取得と保存を非同期に開始する。
// ゲーム登録のレスポンスを取得完了まで待たせないための入口で、
// 失敗はFetch内でログに記録されるのみ。
func (f *Fetcher) FetchAndStore(gameID int64, imageURL string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), f.timeout*2)
		defer cancel()
		if err := f.Fetch(ctx, gameID, imageURL); err != nil {
			slog.Warn("cover fetch failed",
				slog.Int64("game_id", gameID),
				slog.String("image_url", imageURL),
				slog.String("error", err.Error()),
			)
		}
	}()
}

// Fetch はimage_urlからカバー画像を同期的に取得してキャッシュに保存する。
// image_urlがHTMLページの場合はog:imageメタタグから画像URLを解決する
// （HTML→HTMLの多段解決は行わない）。
func (f *Fetcher) Fetch(ctx context.Context, gameID int64, imageURL string) error {
	body, mimeType, err := f.get(ctx, imageURL)
	if err != nil {
		return err
	}

	// HTMLページの場合: og:imageから画像URLを解決して再取得
	if strings.Contains(mimeType, "html") {
		ogURL := parseOGImage(body, imageURL)
		if ogURL == "" {
			return fmt.Errorf("no og:image found in HTML page: %s", imageURL)
		}
		body, mimeType, err = f.get(ctx, ogURL)
		if err != nil {
			return err
		}
	}

	if !isImageMime(mimeType) {
		return fmt.Errorf("unexpected content type %q for cover image", mimeType)
	}

	if err := f.store.UpdateCover(ctx, gameID, body, mimeType); err != nil {
		return fmt.Errorf("failed to store cover: %w", err)
	}

	slog.Info("cover cached",
		slog.Int64("game_id", gameID),
		slog.String("mime", mimeType),
		slog.Int("size", len(body)),
	)
	return nil
}

// get は1つのURLをGETしてボディとメディアタイプを返す。
// SSRF検証、ステータス検証、サイズ上限の検証を行う。
func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, string, error) {
	if rawURL == "" {
		return nil, "", fmt.Errorf("empty cover URL")
	}

	// SSRF検証（静的チェック。DNS再バインディングはSafeClient側で防止）
	if f.ssrfGuard != nil {
		if err := f.ssrfGuard.ValidateURL(rawURL); err != nil {
			return nil, "", fmt.Errorf("cover URL blocked: %w", err)
		}
	}

	client := f.getHTTPClient()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("invalid cover URL: %w", err)
	}
	req.Header.Set("User-Agent", "GameBox/1.0")
	req.Header.Set("Accept", "image/*, text/html;q=0.5")

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("cover request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("cover request returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read cover response: %w", err)
	}
	if int64(len(body)) > f.maxSize {
		return nil, "", fmt.Errorf("cover exceeds max size %d bytes", f.maxSize)
	}

	return body, extractMimeType(resp.Header.Get("Content-Type")), nil
}

// getHTTPClient はHTTPクライアントを取得する。
// SSRFGuardが設定されている場合はSSRF防止付きクライアントを返す。
func (f *Fetcher) getHTTPClient() *http.Client {
	if f.ssrfGuard != nil {
		return f.ssrfGuard.NewSafeClient(f.timeout)
	}
	return &http.Client{Timeout: f.timeout}
}

// parseOGImage はHTMLのheadタグからog:imageメタタグの画像URLを解析・検出する。
// 相対URLはbaseURLを基準に絶対URLに解決される。見つからない場合は空文字列。
func parseOGImage(htmlBody []byte, baseURL string) string {
	baseU, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}

	tokenizer := html.NewTokenizer(bytes.NewReader(htmlBody))
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return ""

		case html.StartTagToken, html.SelfClosingTagToken:
			tn, hasAttr := tokenizer.TagName()
			tagName := string(tn)

			if tagName == "body" {
				// og:imageはhead内にしか無いのでbodyに入ったら終了
				return ""
			}
			if tagName != "meta" || !hasAttr {
				continue
			}

			// meta要素の属性を解析
			var property, content string
			for {
				key, val, more := tokenizer.TagAttr()
				switch strings.ToLower(string(key)) {
				case "property", "name":
					property = strings.ToLower(string(val))
				case "content":
					content = string(val)
				}
				if !more {
					break
				}
			}

			if property == "og:image" && content != "" {
				return resolveURL(baseU, content)
			}
		}
	}
}

// resolveURL は相対URLをベースURLを基準に絶対URLに解決する。
func resolveURL(base *url.URL, rawRef string) string {
	ref, err := url.Parse(rawRef)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// extractMimeType はContent-Typeヘッダーからメディアタイプを抽出する。
func extractMimeType(contentType string) string {
	if contentType == "" {
		return ""
	}
	// セミコロンの前の部分（charset等を除去）
	parts := strings.SplitN(contentType, ";", 2)
	return strings.TrimSpace(strings.ToLower(parts[0]))
}

// isImageMime はMIMEタイプが画像かどうかを判定する。
func isImageMime(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}
