package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/sangkips/trademate-console/internal/domain/entity"
	"github.com/sangkips/trademate-console/internal/domain/enum"
	domainRepo "github.com/sangkips/trademate-console/internal/domain/repository"
	"github.com/sangkips/trademate-console/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&entity.IdempotencyKey{}))
	return db
}

func TestIdempotencyRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewIdempotencyRepository(db)
	ctx := context.Background()

	missing, err := repo.GetByKey(ctx, "k1", "sess")
	require.NoError(t, err)
	assert.Nil(t, missing)

	claim := func(key, sessionID string, expires time.Time) bool {
		t.Helper()
		ok, err := repo.Claim(ctx, &entity.IdempotencyKey{
			Key:       key,
			SessionID: sessionID,
			Endpoint:  "POST /store/checkout/print",
			ExpiresAt: expires,
		})
		require.NoError(t, err)
		return ok
	}

	require.True(t, claim("k1", "sess", time.Now().Add(time.Hour)))
	assert.False(t, claim("k1", "sess", time.Now().Add(time.Hour)), "second claim on a live key loses")
	assert.True(t, claim("k1", "another-session", time.Now().Add(time.Hour)))

	pending, err := repo.GetByKey(ctx, "k1", "sess")
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.True(t, pending.Pending())

	require.NoError(t, repo.Save(ctx, &entity.IdempotencyKey{
		Key:          "k1",
		SessionID:    "sess",
		ResponseCode: 303,
		Location:     "/store/receipt",
	}))
	got, err := repo.GetByKey(ctx, "k1", "sess")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.Pending())
	assert.Equal(t, "/store/receipt", got.Location)

	// a finished key is never released
	require.NoError(t, repo.Release(ctx, "k1", "sess"))
	got, err = repo.GetByKey(ctx, "k1", "sess")
	require.NoError(t, err)
	assert.NotNil(t, got)

	require.NoError(t, repo.Release(ctx, "k1", "another-session"))
	released, err := repo.GetByKey(ctx, "k1", "another-session")
	require.NoError(t, err)
	assert.Nil(t, released)

	require.True(t, claim("old", "sess", time.Now().Add(-time.Hour)))
	expired, err := repo.GetByKey(ctx, "old", "sess")
	require.NoError(t, err)
	assert.Nil(t, expired)
	assert.True(t, claim("old", "sess", time.Now().Add(time.Hour)), "an expired key can be claimed again")

	require.True(t, claim("stale", "sess", time.Now().Add(-time.Hour)))
	require.NoError(t, repo.DeleteExpired(ctx))
	var rows int64
	require.NoError(t, db.Model(&entity.IdempotencyKey{}).Count(&rows).Error)
	assert.Equal(t, int64(2), rows)
}

func TestIdempotencyClaimRace(t *testing.T) {
	repo := NewIdempotencyRepository(newTestDB(t))
	ctx := context.Background()

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		won int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.Claim(ctx, &entity.IdempotencyKey{
				Key:       "double-click",
				SessionID: "sess",
				Endpoint:  "POST /store/checkout/print",
				ExpiresAt: time.Now().Add(time.Hour),
			})
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, won)
}

func newRedisRepo(t *testing.T) (domainRepo.TerminalRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisTerminalRepository(client, "test:terminal:", time.Hour), mr
}

func terminalStores(t *testing.T) map[string]domainRepo.TerminalRepository {
	redisRepo, _ := newRedisRepo(t)
	return map[string]domainRepo.TerminalRepository{
		"memory": NewMemoryTerminalRepository(),
		"redis":  redisRepo,
	}
}

func TestTerminalRepositoryRoundTrip(t *testing.T) {
	for name, repo := range terminalStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			fresh, err := repo.Get(ctx, "s1")
			require.NoError(t, err)
			assert.True(t, fresh.Cart.IsEmpty())
			assert.Equal(t, enum.CheckoutStateIdle, fresh.State)

			p := entity.Product{ID: "p1", UnitPrice: money.FromMajor(250), Quantity: 4}
			_, err = repo.Update(ctx, "s1", func(term *entity.Terminal) error {
				cart, err := term.Cart.Add(p)
				term.Cart = cart
				term.State = enum.CheckoutStatePreviewed
				return err
			})
			require.NoError(t, err)

			got, err := repo.Get(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, money.FromMajor(250), got.Cart.Total())
			assert.Equal(t, enum.CheckoutStatePreviewed, got.State)

			require.NoError(t, repo.Delete(ctx, "s1"))
			got, err = repo.Get(ctx, "s1")
			require.NoError(t, err)
			assert.True(t, got.Cart.IsEmpty())
		})
	}
}

func TestTerminalRepositoryUpdateErrorKeepsState(t *testing.T) {
	for name, repo := range terminalStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			boom := errors.New("boom")

			_, err := repo.Update(ctx, "s1", func(term *entity.Terminal) error {
				term.Cart = entity.NewCart(entity.CartLine{Product: entity.Product{ID: "p1"}, Quantity: 2})
				return nil
			})
			require.NoError(t, err)

			unchanged, err := repo.Update(ctx, "s1", func(term *entity.Terminal) error {
				term.Cart = term.Cart.Clear()
				return boom
			})
			assert.ErrorIs(t, err, boom)
			require.NotNil(t, unchanged)
			assert.Equal(t, 1, unchanged.Cart.Len())

			got, err := repo.Get(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, 2, got.Cart.Units())
		})
	}
}

func TestMemoryTerminalRepositoryConcurrentUpdates(t *testing.T) {
	repo := NewMemoryTerminalRepository()
	ctx := context.Background()
	p := entity.Product{ID: "p1", UnitPrice: money.FromMajor(1), Quantity: 100}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Update(ctx, "s1", func(term *entity.Terminal) error {
				cart, err := term.Cart.Add(p)
				term.Cart = cart
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 50, got.Cart.Units())
}

func TestRedisTerminalRepositoryAppliesTTL(t *testing.T) {
	repo, mr := newRedisRepo(t)

	_, err := repo.Update(context.Background(), "s1", func(term *entity.Terminal) error { return nil })
	require.NoError(t, err)

	assert.True(t, mr.Exists("test:terminal:s1"))
	mr.FastForward(2 * time.Hour)
	assert.False(t, mr.Exists("test:terminal:s1"))
}
