package tests

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/handcrafted-haven/marketplace/internal/adapter/storage"
	"github.com/handcrafted-haven/marketplace/internal/core/domain"
	"github.com/handcrafted-haven/marketplace/internal/core/service"
	"github.com/handcrafted-haven/marketplace/internal/port"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestIntegration_ConcurrentReservationsNeverOversell(t *testing.T) {
	rdb := setupRedis(t)
	ctx := context.Background()

	productID := "integration-" + uuid.NewString()
	initialStock := 10
	totalRequests := 50

	reserver := storage.NewRedisStockReserver(rdb)
	if err := reserver.SetStock(ctx, productID, initialStock); err != nil {
		t.Fatalf("set stock failed: %v", err)
	}
	defer rdb.Del(ctx, "stock:"+productID)

	var successCount atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := reserver.Reserve(ctx, productID, 1)
			if err == nil && ok {
				successCount.Add(1)
			}
		}()
	}
	wg.Wait()

	if successCount.Load() != int32(initialStock) {
		t.Errorf("expected %d successful reservations, got %d", initialStock, successCount.Load())
	}

	remaining, _ := rdb.Get(ctx, "stock:"+productID).Int()
	if remaining != 0 {
		t.Errorf("expected stock 0, got %d", remaining)
	}

	// Released units become reservable again.
	if err := reserver.Release(ctx, productID, 3); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	ok, err := reserver.Reserve(ctx, productID, 3)
	if err != nil || !ok {
		t.Errorf("expected reservation after release, got ok=%v err=%v", ok, err)
	}
}

func TestIntegration_CartSurvivesServiceRestart(t *testing.T) {
	rdb := setupRedis(t)
	ctx := context.Background()

	cartID := "integration-" + uuid.NewString()
	defer rdb.Del(ctx, "cart:"+cartID)

	store := storage.NewRedisStateStore(rdb)
	product := domain.Product{ID: "p1", Name: "Glazed Bowl", Price: 34.00, Stock: 8}

	first := service.NewCartService(store, zap.NewNop(), time.Minute)
	if _, err := first.AddToCart(ctx, cartID, product, "marias_pottery", 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	// A fresh service instance over the same Redis sees the same cart.
	second := service.NewCartService(store, zap.NewNop(), time.Minute)
	cart, err := second.Get(ctx, cartID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(cart.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(cart.Lines))
	}
	if cart.Lines[0].Quantity != 2 || cart.Lines[0].UnitPrice != 34.00 {
		t.Errorf("line did not survive restart: %+v", cart.Lines[0])
	}
}

func TestIntegration_CorruptCartPayloadFallsBackToEmpty(t *testing.T) {
	rdb := setupRedis(t)
	ctx := context.Background()

	cartID := "integration-" + uuid.NewString()
	key := "cart:" + cartID
	if err := rdb.Set(ctx, key, "{definitely not json", time.Minute).Err(); err != nil {
		t.Fatalf("seed corrupt payload: %v", err)
	}
	defer rdb.Del(ctx, key)

	svc := service.NewCartService(storage.NewRedisStateStore(rdb), zap.NewNop(), time.Minute)
	cart, err := svc.Get(ctx, cartID)
	if err != nil {
		t.Fatalf("corrupt payload must not error: %v", err)
	}
	if len(cart.Lines) != 0 {
		t.Errorf("expected empty cart, got %d lines", len(cart.Lines))
	}
}

func TestIntegration_SessionLifecycle(t *testing.T) {
	rdb := setupRedis(t)
	ctx := context.Background()

	store := storage.NewRedisSessionStore(rdb)
	sessionID, err := store.Create(ctx, "user-1", domain.RoleSeller, time.Minute)
	if err != nil {
		t.Fatalf("create session failed: %v", err)
	}
	defer rdb.Del(ctx, "session:"+sessionID)

	session, err := store.Get(ctx, sessionID)
	if err != nil {
		t.Fatalf("get session failed: %v", err)
	}
	if session.UserID != "user-1" || session.Role != domain.RoleSeller {
		t.Errorf("unexpected session: %+v", session)
	}

	if err := store.Refresh(ctx, sessionID, time.Minute); err != nil {
		t.Errorf("refresh failed: %v", err)
	}

	if err := store.Delete(ctx, sessionID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.Get(ctx, sessionID); !errors.Is(err, port.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after delete, got %v", err)
	}
}
