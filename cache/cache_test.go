package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type page struct {
	Total int `json:"total"`
}

func newRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	r := NewRedisFromClient(redis.NewClient(&redis.Options{Addr: srv.Addr()}))
	t.Cleanup(func() { r.Close() })
	return r, srv
}

func exercise(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	var got page
	if err := c.Get(ctx, "products:gender=Men", &got); !errors.Is(err, ErrMiss) {
		t.Fatalf("Get on empty cache = %v, want ErrMiss", err)
	}

	listKey := fmt.Sprintf(ProductListKey, "gender=Men")
	detailKey := fmt.Sprintf(ProductDetailKey, "p1")
	if err := c.Set(ctx, listKey, page{Total: 13}, time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, detailKey, page{Total: 1}, time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := c.Get(ctx, listKey, &got); err != nil || got.Total != 13 {
		t.Fatalf("Get = %+v, %v", got, err)
	}

	if err := c.DeleteByPattern(ctx, ProductListPattern); err != nil {
		t.Fatal(err)
	}
	if err := c.Get(ctx, listKey, &got); !errors.Is(err, ErrMiss) {
		t.Fatalf("list entry after delete = %v, want ErrMiss", err)
	}
	if err := c.Get(ctx, detailKey, &got); err != nil {
		t.Fatalf("detail entry removed by list pattern: %v", err)
	}
}

func TestRedis(t *testing.T) {
	r, _ := newRedis(t)
	exercise(t, r)
}

func TestMemory(t *testing.T) {
	exercise(t, NewMemory())
}

func TestRedisExpiry(t *testing.T) {
	r, srv := newRedis(t)
	ctx := context.Background()

	if err := r.Set(ctx, "product:p1", page{Total: 1}, time.Second); err != nil {
		t.Fatal(err)
	}
	srv.FastForward(2 * time.Second)

	var got page
	if err := r.Get(ctx, "product:p1", &got); !errors.Is(err, ErrMiss) {
		t.Fatalf("Get after expiry = %v, want ErrMiss", err)
	}
}

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory()
	now := time.Now()
	m.now = func() time.Time { return now }
	ctx := context.Background()

	if err := m.Set(ctx, "product:p1", page{Total: 1}, time.Second); err != nil {
		t.Fatal(err)
	}
	now = now.Add(2 * time.Second)

	var got page
	if err := m.Get(ctx, "product:p1", &got); !errors.Is(err, ErrMiss) {
		t.Fatalf("Get after expiry = %v, want ErrMiss", err)
	}
}

func TestRedisUnavailable(t *testing.T) {
	r, srv := newRedis(t)
	srv.Close()

	var got page
	err := r.Get(context.Background(), "product:p1", &got)
	if err == nil || errors.Is(err, ErrMiss) {
		t.Fatalf("Get with server down = %v, want a connection error", err)
	}
}

func TestNewRedisPings(t *testing.T) {
	srv := miniredis.RunT(t)
	r, err := NewRedis(context.Background(), RedisConfig{Addr: srv.Addr()})
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	r.Close()

	srv.Close()
	if _, err := NewRedis(context.Background(), RedisConfig{Addr: srv.Addr()}); err == nil {
		t.Fatal("NewRedis succeeded with the server down")
	}
}
