package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
)

type cachedPoint struct {
	Ticker     string  `json:"ticker"`
	Volatility float64 `json:"volatility"`
}

// TestRedisStore_CacheHit はキャッシュヒット時にRedisからデータを返し、計算関数を呼ばないことを検証します。
func TestRedisStore_CacheHit(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	cached, _ := json.Marshal([]cachedPoint{{Ticker: "GC=F", Volatility: 0.12}})
	mock.ExpectGet("goldeye:volatility:GC=F").SetVal(string(cached))

	c := New(NewRedisStore(rdb), "")
	computeCalled := false
	out, err := GetOrCompute(context.Background(), c, "volatility:GC=F", 15*time.Minute, func(ctx context.Context) ([]cachedPoint, error) {
		computeCalled = true
		return nil, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if computeCalled {
		t.Error("compute should not be called on cache hit")
	}
	if len(out) != 1 || out[0].Ticker != "GC=F" {
		t.Errorf("unexpected cached value: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestRedisStore_CacheMiss はキャッシュミス時に計算し、結果をTTL付きで保存することを検証します。
func TestRedisStore_CacheMiss(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expected := []cachedPoint{{Ticker: "^TNX", Volatility: 0.3}}
	expectedJSON, _ := json.Marshal(expected)

	// singleflight内の再確認でもう一度GETされる
	mock.ExpectGet("goldeye:volatility:^TNX").RedisNil()
	mock.ExpectGet("goldeye:volatility:^TNX").RedisNil()
	mock.ExpectSet("goldeye:volatility:^TNX", expectedJSON, 15*time.Minute).SetVal("OK")

	c := New(NewRedisStore(rdb), "")
	out, err := GetOrCompute(context.Background(), c, "volatility:^TNX", 15*time.Minute, func(ctx context.Context) ([]cachedPoint, error) {
		return expected, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 {
		t.Errorf("expected 1 point, got %d", len(out))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestRedisStore_CorruptedCache は破損したキャッシュを検出・削除し、再計算することを検証します。
func TestRedisStore_CorruptedCache(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expected := []cachedPoint{{Ticker: "GC=F", Volatility: 0.1}}
	expectedJSON, _ := json.Marshal(expected)

	mock.ExpectGet("goldeye:k").SetVal("invalid json")
	mock.ExpectDel("goldeye:k").SetVal(1)
	mock.ExpectGet("goldeye:k").RedisNil()
	mock.ExpectSet("goldeye:k", expectedJSON, 5*time.Minute).SetVal("OK")

	c := New(NewRedisStore(rdb), "")
	out, err := GetOrCompute(context.Background(), c, "k", 0, func(ctx context.Context) ([]cachedPoint, error) {
		return expected, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 {
		t.Errorf("expected 1 point, got %d", len(out))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestRedisStore_UnavailableFallsThrough はRedisエラー時も計算結果を返すことを検証します。
func TestRedisStore_UnavailableFallsThrough(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectGet("goldeye:k").SetErr(errors.New("connection refused"))
	mock.ExpectGet("goldeye:k").SetErr(errors.New("connection refused"))
	mock.ExpectSet("goldeye:k", []byte("1"), time.Minute).SetErr(errors.New("connection refused"))

	c := New(NewRedisStore(rdb), "")
	v, err := GetOrCompute(context.Background(), c, "k", time.Minute, func(ctx context.Context) (int, error) {
		return 1, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 1 {
		t.Errorf("expected 1, got %d", v)
	}
}

func TestRedisStore_Name(t *testing.T) {
	t.Parallel()

	rdb, _ := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	if got := NewRedisStore(rdb).Name(); got != "redis" {
		t.Errorf("expected redis, got %q", got)
	}
}
