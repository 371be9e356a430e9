package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/entrybox/internal/database"
	"github.com/charlesng35/entrybox/internal/database/testutil"
	"github.com/charlesng35/entrybox/internal/models"
)

func TestEntryService_PutCreatesThenOverwrites(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate(database.TableEntries))

	svc, err := NewEntryService(db)
	require.NoError(t, err)

	ctx := context.Background()

	entry, created, err := svc.Put(ctx, "greeting", "hello")
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, "greeting", entry.Key)
	require.Equal(t, "hello", entry.Value)
	require.False(t, entry.CreatedAt.IsZero())

	entry, created, err = svc.Put(ctx, "greeting", "bonjour")
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, "bonjour", entry.Value)

	got, err := svc.Get(ctx, "greeting")
	require.NoError(t, err)
	require.Equal(t, "bonjour", got.Value)

	var count int64
	require.NoError(t, db.Model(&models.Entry{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestEntryService_PutKeepsCreatedAt(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate(database.TableEntries))
	svc, err := NewEntryService(db)
	require.NoError(t, err)

	first, _, err := svc.Put(context.Background(), "k", "v1")
	require.NoError(t, err)
	second, _, err := svc.Put(context.Background(), "k", "v2")
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID)
	require.True(t, first.CreatedAt.Equal(second.CreatedAt))
}

func TestEntryService_GetMissing(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate(database.TableEntries))
	svc, err := NewEntryService(db)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrEntryNotFound)
}

func TestEntryService_AllowsEmptyValue(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate(database.TableEntries))
	svc, err := NewEntryService(db)
	require.NoError(t, err)

	_, _, err = svc.Put(context.Background(), "empty", "")
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), "empty")
	require.NoError(t, err)
	require.Equal(t, "", got.Value)
}

func TestEntryService_Limits(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate(database.TableEntries))
	svc, err := NewEntryService(db, WithEntryLimits(4, 6))
	require.NoError(t, err)

	ctx := context.Background()

	_, _, err = svc.Put(ctx, "abcde", "v")
	require.ErrorIs(t, err, ErrValidation)

	// Two 3 byte runes exceed a 4 byte key limit.
	_, _, err = svc.Put(ctx, "日本", "v")
	require.ErrorIs(t, err, ErrValidation)

	_, _, err = svc.Put(ctx, "abcd", strings.Repeat("x", 7))
	require.ErrorIs(t, err, ErrValidation)

	_, _, err = svc.Put(ctx, "", "v")
	require.ErrorIs(t, err, ErrValidation)

	_, _, err = svc.Put(ctx, "abcd", "xxxxxx")
	require.NoError(t, err)
}

func TestEntryService_ConcurrentPutsKeepOneRow(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate(database.TableEntries))
	svc, err := NewEntryService(db)
	require.NoError(t, err)

	const writers = 16
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := svc.Put(context.Background(), "shared", fmt.Sprintf("value-%d", i))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	var count int64
	require.NoError(t, db.Model(&models.Entry{}).Count(&count).Error)
	require.EqualValues(t, 1, count)

	got, err := svc.Get(context.Background(), "shared")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(got.Value, "value-"))
}

func TestEntryService_KeyCappedAtColumnWidth(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate(database.TableEntries))
	svc, err := NewEntryService(db, WithEntryLimits(0, 0))
	require.NoError(t, err)

	_, _, err = svc.Put(context.Background(), strings.Repeat("k", models.MaxKeyLength+1), "v")
	require.ErrorIs(t, err, ErrValidation)

	_, _, err = svc.Put(context.Background(), strings.Repeat("k", models.MaxKeyLength), "v")
	require.NoError(t, err)
}

// A writer that commits the same key between the lookup and the insert makes
// the insert fail on the unique index; Put must overwrite that row instead.
func TestEntryService_PutOverwritesRowInsertedAfterLookup(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate(database.TableEntries))
	svc, err := NewEntryService(db)
	require.NoError(t, err)

	var (
		injected  bool
		injectErr error
	)
	err = db.Callback().Query().After("gorm:query").Register("test:concurrent_insert", func(tx *gorm.DB) {
		if injected || tx.Statement.Table != "entries" || tx.RowsAffected != 0 {
			return
		}
		injected = true
		now := time.Now().UTC()
		_, injectErr = tx.Statement.ConnPool.ExecContext(tx.Statement.Context,
			`INSERT INTO entries ("key", value, created_at, updated_at) VALUES (?, ?, ?, ?)`,
			"k", "other writer", now, now)
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Callback().Query().Remove("test:concurrent_insert") })

	entry, created, err := svc.Put(context.Background(), "k", "mine")
	require.NoError(t, err)
	require.True(t, injected)
	require.NoError(t, injectErr)
	require.False(t, created)
	require.Equal(t, "k", entry.Key)
	require.Equal(t, "mine", entry.Value)

	var rows []models.Entry
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	require.Equal(t, "mine", rows[0].Value)
}

func TestEntryService_PersistenceFailure(t *testing.T) {
	// No migration: the entries table does not exist.
	db := testutil.MustOpenTestDB(t)
	svc, err := NewEntryService(db)
	require.NoError(t, err)

	_, _, err = svc.Put(context.Background(), "k", "v")
	require.Error(t, err)

	var pe *PersistenceError
	require.True(t, errors.As(err, &pe))
	require.Contains(t, pe.Err.Error(), "entries")

	_, err = svc.Get(context.Background(), "k")
	require.True(t, errors.As(err, &pe))
}

func TestNewEntryServiceRequiresDB(t *testing.T) {
	_, err := NewEntryService(nil)
	require.Error(t, err)

	var svc *EntryService
	_, _, err = svc.Put(context.Background(), "k", "v")
	require.Error(t, err)
}
