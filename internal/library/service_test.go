package library

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lib/pq"

	"github.com/hitoshi/gamebox/internal/model"
	"github.com/hitoshi/gamebox/internal/repository"
)

// --- モック ---

// fakeLibraryRepo はライブラリ台帳のインメモリ実装。
// DBのユニーク制約(usuario_id, jogo_id)と同じ重複検出を行う。
type fakeLibraryRepo struct {
	nextID  int64
	entries []*model.LibraryEntry
	// games はJOIN対象のゲーム集合。ListByUserWithGameで存在しないゲームは除外される。
	games map[int64]*model.Game
	// createErr が設定されている場合、Createは常にこのエラーを返す。
	createErr error
}

func newFakeLibraryRepo(games map[int64]*model.Game) *fakeLibraryRepo {
	return &fakeLibraryRepo{nextID: 1, games: games}
}

func (f *fakeLibraryRepo) FindByUserAndGame(ctx context.Context, userID, gameID int64) (*model.LibraryEntry, error) {
	for _, e := range f.entries {
		if e.UserID == userID && e.GameID == gameID {
			copied := *e
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeLibraryRepo) Create(ctx context.Context, entry *model.LibraryEntry) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, e := range f.entries {
		if e.UserID == entry.UserID && e.GameID == entry.GameID {
			return &pq.Error{Code: "23505", Constraint: repository.ConstraintBibliotecaPar}
		}
	}
	entry.ID = f.nextID
	entry.DataAdicao = time.Now()
	f.nextID++
	stored := *entry
	f.entries = append(f.entries, &stored)
	return nil
}

func (f *fakeLibraryRepo) ListByUserWithGame(ctx context.Context, userID int64) ([]model.LibraryEntryWithGame, error) {
	var result []model.LibraryEntryWithGame
	for _, e := range f.entries {
		if e.UserID != userID {
			continue
		}
		game, ok := f.games[e.GameID]
		if !ok {
			continue // ゲーム削除済みのエントリはJOINで落ちる
		}
		result = append(result, model.LibraryEntryWithGame{
			LibraryEntry: *e,
			NomeJogo:     game.NomeJogo,
			Plataforma:   game.Plataforma,
			ImageURL:     game.ImageURL,
		})
	}
	return result, nil
}

func (f *fakeLibraryRepo) UpdateStatus(ctx context.Context, userID, gameID int64, status string) (bool, error) {
	for _, e := range f.entries {
		if e.UserID == userID && e.GameID == gameID {
			e.Status = status
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLibraryRepo) Delete(ctx context.Context, userID, gameID int64) (bool, error) {
	for i, e := range f.entries {
		if e.UserID == userID && e.GameID == gameID {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type mockGameRepo struct {
	findByIDFn func(ctx context.Context, id int64) (*model.Game, error)
}

func (m *mockGameRepo) FindByID(ctx context.Context, id int64) (*model.Game, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockGameRepo) FindByNomeJogo(ctx context.Context, nome string) (*model.Game, error) {
	return nil, nil
}
func (m *mockGameRepo) Create(ctx context.Context, game *model.Game) error { return nil }
func (m *mockGameRepo) List(ctx context.Context) ([]*model.Game, error)   { return nil, nil }
func (m *mockGameRepo) Search(ctx context.Context, term string) ([]*model.Game, error) {
	return nil, nil
}
func (m *mockGameRepo) ListRecent(ctx context.Context, limit int) ([]*model.Game, error) {
	return nil, nil
}
func (m *mockGameRepo) UpdateCover(ctx context.Context, gameID int64, data []byte, mime string) error {
	return nil
}
func (m *mockGameRepo) FindCover(ctx context.Context, gameID int64) (*model.GameCover, error) {
	return nil, nil
}

func testCatalog() map[int64]*model.Game {
	return map[int64]*model.Game{
		1: {ID: 1, NomeJogo: "Chrono Trigger"},
		2: {ID: 2, NomeJogo: "Hollow Knight"},
	}
}

func gameRepoFor(games map[int64]*model.Game) *mockGameRepo {
	return &mockGameRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.Game, error) {
			if g, ok := games[id]; ok {
				return g, nil
			}
			return nil, nil
		},
	}
}

// --- テスト ---

// 存在しないゲームの追加がGAME_NOT_FOUNDになることを検証
func TestService_Add_GameNotFound(t *testing.T) {
	games := testCatalog()
	svc := NewService(newFakeLibraryRepo(games), gameRepoFor(games), nil)

	_, err := svc.Add(context.Background(), 1, 999, "")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeGameNotFound {
		t.Fatalf("err = %v, want GAME_NOT_FOUND", err)
	}
}

// statusを省略した追加で既定値na filaが使われることを検証
func TestService_Add_DefaultStatus(t *testing.T) {
	games := testCatalog()
	svc := NewService(newFakeLibraryRepo(games), gameRepoFor(games), nil)

	result, err := svc.Add(context.Background(), 1, 1, "")
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if !result.Created {
		t.Error("Created = false, want true")
	}
	if result.Status != "na fila" {
		t.Errorf("Status = %q, want %q", result.Status, "na fila")
	}
	if result.NomeJogo != "Chrono Trigger" {
		t.Errorf("NomeJogo = %q", result.NomeJogo)
	}
}

// 同じ(user, game)への2回目のAddがエラーではなく既存扱いになり、
// 1回目のstatusが変更されないことを検証
func TestService_Add_SecondCallAlreadyPresent(t *testing.T) {
	games := testCatalog()
	libRepo := newFakeLibraryRepo(games)
	svc := NewService(libRepo, gameRepoFor(games), nil)
	ctx := context.Background()

	first, err := svc.Add(ctx, 1, 1, "jogando")
	if err != nil || !first.Created {
		t.Fatalf("first Add: result = %+v, err = %v", first, err)
	}

	second, err := svc.Add(ctx, 1, 1, "completado")
	if err != nil {
		t.Fatalf("second Add returned error: %v", err)
	}
	if second.Created {
		t.Error("second Add: Created = true, want false")
	}
	if second.Status != "jogando" {
		t.Errorf("second Add: Status = %q, want original %q", second.Status, "jogando")
	}

	entries, _ := svc.List(ctx, 1)
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0].Status != "jogando" {
		t.Errorf("stored status = %q, want unchanged %q", entries[0].Status, "jogando")
	}
}

// 事前チェックをすり抜けた同時Add（コミット時のユニーク制約違反）が
// 既存扱いの結果に翻訳されることを検証
func TestService_Add_ConcurrentDuplicateAtCommit(t *testing.T) {
	games := testCatalog()
	libRepo := newFakeLibraryRepo(games)
	libRepo.createErr = &pq.Error{Code: "23505", Constraint: repository.ConstraintBibliotecaPar}
	svc := NewService(libRepo, gameRepoFor(games), nil)

	result, err := svc.Add(context.Background(), 1, 1, "na fila")
	if err != nil {
		t.Fatalf("Add returned error: %v, want already-present outcome", err)
	}
	if result.Created {
		t.Error("Created = true, want false")
	}
}

// コミット失敗がPERSISTENCE_ERRORに翻訳され、部分的な書き込みが
// 残らないことを検証
func TestService_Add_PersistenceError(t *testing.T) {
	games := testCatalog()
	libRepo := newFakeLibraryRepo(games)
	libRepo.createErr = errors.New("connection reset")
	svc := NewService(libRepo, gameRepoFor(games), nil)

	_, err := svc.Add(context.Background(), 1, 1, "")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodePersistence {
		t.Fatalf("err = %v, want PERSISTENCE_ERROR", err)
	}

	entries, _ := svc.List(context.Background(), 1)
	if len(entries) != 0 {
		t.Errorf("entries = %d, want 0 (no partial write)", len(entries))
	}
}

// 存在しない(user, game)のstatus更新がENTRY_NOT_FOUNDになり、
// 台帳が変化しないことを検証
func TestService_UpdateStatus_EntryNotFound(t *testing.T) {
	games := testCatalog()
	libRepo := newFakeLibraryRepo(games)
	svc := NewService(libRepo, gameRepoFor(games), nil)
	ctx := context.Background()

	if _, err := svc.Add(ctx, 1, 1, "na fila"); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	err := svc.UpdateStatus(ctx, 1, 2, "jogando")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeEntryNotFound {
		t.Fatalf("err = %v, want ENTRY_NOT_FOUND", err)
	}

	entries, _ := svc.List(ctx, 1)
	if len(entries) != 1 || entries[0].Status != "na fila" {
		t.Errorf("ledger changed: %+v", entries)
	}
}

// status更新がstatusのみを上書きし、data_adicaoを変えないことを検証
func TestService_UpdateStatus_KeepsDataAdicao(t *testing.T) {
	games := testCatalog()
	libRepo := newFakeLibraryRepo(games)
	svc := NewService(libRepo, gameRepoFor(games), nil)
	ctx := context.Background()

	if _, err := svc.Add(ctx, 1, 1, "na fila"); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	before, _ := svc.List(ctx, 1)

	if err := svc.UpdateStatus(ctx, 1, 1, "jogando"); err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}

	after, _ := svc.List(ctx, 1)
	if after[0].Status != "jogando" {
		t.Errorf("Status = %q, want %q", after[0].Status, "jogando")
	}
	if !after[0].DataAdicao.Equal(before[0].DataAdicao) {
		t.Error("DataAdicao changed on status update")
	}
}

// Remove後のListに削除済みゲームが現れないことを検証
func TestService_Remove_ThenListEmpty(t *testing.T) {
	games := testCatalog()
	svc := NewService(newFakeLibraryRepo(games), gameRepoFor(games), nil)
	ctx := context.Background()

	if _, err := svc.Add(ctx, 1, 1, ""); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if err := svc.Remove(ctx, 1, 1); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}

	entries, err := svc.List(ctx, 1)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %d, want 0", len(entries))
	}
}

// 存在しないエントリのRemoveがENTRY_NOT_FOUNDになることを検証
func TestService_Remove_EntryNotFound(t *testing.T) {
	games := testCatalog()
	svc := NewService(newFakeLibraryRepo(games), gameRepoFor(games), nil)

	err := svc.Remove(context.Background(), 1, 1)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeEntryNotFound {
		t.Fatalf("err = %v, want ENTRY_NOT_FOUND", err)
	}
}

// 2人のユーザーが同じゲームを追加すると独立したエントリになり、
// 片方の削除がもう片方に影響しないことを検証
func TestService_TwoUsers_IndependentEntries(t *testing.T) {
	games := testCatalog()
	svc := NewService(newFakeLibraryRepo(games), gameRepoFor(games), nil)
	ctx := context.Background()

	if _, err := svc.Add(ctx, 1, 1, "jogando"); err != nil {
		t.Fatalf("user 1 Add: %v", err)
	}
	if _, err := svc.Add(ctx, 2, 1, "na fila"); err != nil {
		t.Fatalf("user 2 Add: %v", err)
	}

	if err := svc.Remove(ctx, 1, 1); err != nil {
		t.Fatalf("user 1 Remove: %v", err)
	}

	user1, _ := svc.List(ctx, 1)
	user2, _ := svc.List(ctx, 2)
	if len(user1) != 0 {
		t.Errorf("user 1 entries = %d, want 0", len(user1))
	}
	if len(user2) != 1 || user2[0].Status != "na fila" {
		t.Errorf("user 2 entries = %+v, want 1 entry with status na fila", user2)
	}
}

// ゲームが削除された（JOIN先が存在しない）エントリがListで黙って
// スキップされることを検証
func TestService_List_SkipsDeletedGames(t *testing.T) {
	games := testCatalog()
	libRepo := newFakeLibraryRepo(games)
	svc := NewService(libRepo, gameRepoFor(games), nil)
	ctx := context.Background()

	if _, err := svc.Add(ctx, 1, 1, ""); err != nil {
		t.Fatalf("Add game 1: %v", err)
	}
	if _, err := svc.Add(ctx, 1, 2, ""); err != nil {
		t.Fatalf("Add game 2: %v", err)
	}

	// ゲーム2がカタログから消えたとする
	delete(games, 2)

	entries, err := svc.List(ctx, 1)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(entries) != 1 || entries[0].GameID != 1 {
		t.Errorf("entries = %+v, want only game 1", entries)
	}
}

// 登録→ログイン相当→追加→一覧→status更新→削除→空一覧のフルシナリオを
// ライブラリ操作の範囲で検証
func TestService_FullScenario(t *testing.T) {
	games := testCatalog()
	svc := NewService(newFakeLibraryRepo(games), gameRepoFor(games), nil)
	ctx := context.Background()
	userID := int64(10)

	result, err := svc.Add(ctx, userID, 1, "")
	if err != nil || !result.Created {
		t.Fatalf("Add: result = %+v, err = %v", result, err)
	}

	entries, _ := svc.List(ctx, userID)
	if len(entries) != 1 || entries[0].GameID != 1 || entries[0].Status != "na fila" {
		t.Fatalf("List = %+v, want [{game:1, status:na fila}]", entries)
	}

	if err := svc.UpdateStatus(ctx, userID, 1, "jogando"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	entries, _ = svc.List(ctx, userID)
	if entries[0].Status != "jogando" {
		t.Fatalf("status = %q, want jogando", entries[0].Status)
	}

	if err := svc.Remove(ctx, userID, 1); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	entries, _ = svc.List(ctx, userID)
	if len(entries) != 0 {
		t.Fatalf("List = %+v, want empty", entries)
	}
}
