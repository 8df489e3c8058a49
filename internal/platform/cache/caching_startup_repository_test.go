package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pitch_backend/internal/feature/startup/domain/entity"
)

// mockStartupRepository はテスト用のStartupRepositoryモック実装です。
type mockStartupRepository struct {
	searchFn func(ctx context.Context, f entity.Filter) ([]entity.Startup, error)
	createFn func(ctx context.Context, s *entity.Startup) error
	updateFn func(ctx context.Context, s *entity.Startup) error
}

func (m *mockStartupRepository) Create(ctx context.Context, s *entity.Startup) error {
	if m.createFn != nil {
		return m.createFn(ctx, s)
	}
	return nil
}

func (m *mockStartupRepository) Update(ctx context.Context, s *entity.Startup) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, s)
	}
	return nil
}

func (m *mockStartupRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Startup, error) {
	return &entity.Startup{ID: id}, nil
}

func (m *mockStartupRepository) FindByOwner(ctx context.Context, userID uuid.UUID) (*entity.Startup, error) {
	return &entity.Startup{UserID: userID}, nil
}

func (m *mockStartupRepository) Search(ctx context.Context, f entity.Filter) ([]entity.Startup, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, f)
	}
	return nil, nil
}

var testFilter = entity.Filter{Query: "Solar Drones", Domain: "CleanTech", Stage: ""}

var testKey = (&CachingStartupRepository{namespace: "startups"}).searchKey(testFilter)

// TestNewCachingStartupRepository_Defaults はデフォルト値（TTLとnamespace）が正しく設定されることを検証します。
func TestNewCachingStartupRepository_Defaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		ttl               time.Duration
		namespace         string
		expectedTTL       time.Duration
		expectedNamespace string
	}{
		{"default values when zero/empty", 0, "", 5 * time.Minute, "startups"},
		{"negative ttl uses default", -1 * time.Minute, "", 5 * time.Minute, "startups"},
		{"custom values preserved", 10 * time.Minute, "custom", 10 * time.Minute, "custom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := NewCachingStartupRepository(nil, tt.ttl, &mockStartupRepository{}, tt.namespace)

			if repo.ttl != tt.expectedTTL {
				t.Errorf("expected TTL %v, got %v", tt.expectedTTL, repo.ttl)
			}
			if repo.namespace != tt.expectedNamespace {
				t.Errorf("expected namespace %q, got %q", tt.expectedNamespace, repo.namespace)
			}
		})
	}
}

// TestCachingStartupRepository_Search_NilRedis はRedisがnilの場合にキャッシュをバイパスすることを検証します。
func TestCachingStartupRepository_Search_NilRedis(t *testing.T) {
	t.Parallel()

	inner := &mockStartupRepository{
		searchFn: func(ctx context.Context, f entity.Filter) ([]entity.Startup, error) {
			return []entity.Startup{{Name: "SkyVolt"}}, nil
		},
	}
	repo := NewCachingStartupRepository(nil, time.Minute, inner, "")

	got, err := repo.Search(context.Background(), testFilter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 startup, got %d", len(got))
	}
}

// TestCachingStartupRepository_Search_CacheHit はキャッシュヒット時に内部リポジトリを呼ばないことを検証します。
func TestCachingStartupRepository_Search_CacheHit(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	cached, _ := json.Marshal([]entity.Startup{{Name: "SkyVolt"}})
	mock.ExpectGet(testKey).SetVal(string(cached))

	innerCalled := false
	inner := &mockStartupRepository{
		searchFn: func(ctx context.Context, f entity.Filter) ([]entity.Startup, error) {
			innerCalled = true
			return nil, nil
		},
	}

	repo := NewCachingStartupRepository(rdb, 5*time.Minute, inner, "startups")
	got, err := repo.Search(context.Background(), testFilter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if innerCalled {
		t.Error("inner repository should not be called on cache hit")
	}
	if len(got) != 1 || got[0].Name != "SkyVolt" {
		t.Errorf("unexpected result: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet redis expectations: %v", err)
	}
}

// TestCachingStartupRepository_Search_CacheMiss はキャッシュミス時にDBから取得しキャッシュに保存することを検証します。
func TestCachingStartupRepository_Search_CacheMiss(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	fromDB := []entity.Startup{{Name: "MediScan"}}
	expectedJSON, _ := json.Marshal(fromDB)

	mock.ExpectGet(testKey).RedisNil()
	mock.ExpectSet(testKey, expectedJSON, 5*time.Minute).SetVal("OK")

	inner := &mockStartupRepository{
		searchFn: func(ctx context.Context, f entity.Filter) ([]entity.Startup, error) {
			return fromDB, nil
		},
	}

	repo := NewCachingStartupRepository(rdb, 5*time.Minute, inner, "startups")
	got, err := repo.Search(context.Background(), testFilter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Name != "MediScan" {
		t.Errorf("unexpected result: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet redis expectations: %v", err)
	}
}

// TestCachingStartupRepository_Search_InnerError は内部エラーをキャッシュせずに返すことを検証します。
func TestCachingStartupRepository_Search_InnerError(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectGet(testKey).RedisNil()

	dbErr := errors.New("db down")
	inner := &mockStartupRepository{
		searchFn: func(ctx context.Context, f entity.Filter) ([]entity.Startup, error) {
			return nil, dbErr
		},
	}

	repo := NewCachingStartupRepository(rdb, 5*time.Minute, inner, "startups")
	_, err := repo.Search(context.Background(), testFilter)
	if !errors.Is(err, dbErr) {
		t.Fatalf("expected db error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet redis expectations: %v", err)
	}
}

// TestCachingStartupRepository_Writes_Invalidate は作成・更新時に検索キャッシュが削除されることを検証します。
func TestCachingStartupRepository_Writes_Invalidate(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectScan(0, "startups:search:*", 200).SetVal([]string{testKey}, 0)
	mock.ExpectDel(testKey).SetVal(1)
	mock.ExpectScan(0, "startups:search:*", 200).SetVal([]string{}, 0)

	repo := NewCachingStartupRepository(rdb, 5*time.Minute, &mockStartupRepository{}, "startups")
	if err := repo.Create(context.Background(), &entity.Startup{ID: uuid.New()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Update(context.Background(), &entity.Startup{ID: uuid.New()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet redis expectations: %v", err)
	}
}

// TestCachingStartupRepository_Create_InnerError は書き込み失敗時にキャッシュを触らないことを検証します。
func TestCachingStartupRepository_Create_InnerError(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	dbErr := errors.New("insert failed")
	inner := &mockStartupRepository{
		createFn: func(ctx context.Context, s *entity.Startup) error { return dbErr },
	}

	repo := NewCachingStartupRepository(rdb, 5*time.Minute, inner, "startups")
	if err := repo.Create(context.Background(), &entity.Startup{}); !errors.Is(err, dbErr) {
		t.Fatalf("expected insert error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected redis calls: %v", err)
	}
}

// TestCachingStartupRepository_Search_DistinctFiltersDoNotCollide は記号だけが異なる検索が別々にキャッシュされることを検証します。
func TestCachingStartupRepository_Search_DistinctFiltersDoNotCollide(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	calls := 0
	inner := &mockStartupRepository{
		searchFn: func(ctx context.Context, f entity.Filter) ([]entity.Startup, error) {
			calls++
			return []entity.Startup{{Name: "match for " + f.Query}}, nil
		},
	}
	repo := NewCachingStartupRepository(rdb, time.Minute, inner, "startups")
	ctx := context.Background()

	queries := []string{"ai_ml", "ai ml", "ai:ml", "ai*ml", "ai?ml", "ai[ml]"}
	for _, q := range queries {
		got, err := repo.Search(ctx, entity.Filter{Query: q})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "match for "+q, got[0].Name)
	}
	assert.Equal(t, len(queries), calls, "every distinct query must reach the database once")

	// 2回目は全てキャッシュから返る
	for _, q := range queries {
		got, err := repo.Search(ctx, entity.Filter{Query: q})
		require.NoError(t, err)
		assert.Equal(t, "match for "+q, got[0].Name)
	}
	assert.Equal(t, len(queries), calls)

	// フィールドの区切りもずれない
	a := repo.searchKey(entity.Filter{Query: "fin", Domain: "tech"})
	b := repo.searchKey(entity.Filter{Query: "fin:tech"})
	assert.NotEqual(t, a, b)
}

// TestCachingStartupRepository_Search_CaseInsensitiveShareKey は大文字小文字違いの検索が同じキャッシュを使うことを検証します。
func TestCachingStartupRepository_Search_CaseInsensitiveShareKey(t *testing.T) {
	t.Parallel()

	repo := NewCachingStartupRepository(nil, time.Minute, &mockStartupRepository{}, "startups")
	k1 := repo.searchKey(entity.Filter{Query: "Solar", Domain: "CleanTech", Stage: "Seed"})
	k2 := repo.searchKey(entity.Filter{Query: "solar", Domain: "cleantech", Stage: "SEED"})
	assert.Equal(t, k1, k2)
	assert.True(t, strings.HasPrefix(k1, "startups:search:"))
	assert.NotContains(t, strings.TrimPrefix(k1, "startups:search:"), "*")
}
