package slots

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

var dbSeq int

func repos(t *testing.T) map[string]Repository {
	t.Helper()

	dbSeq++
	dsn := fmt.Sprintf("file:slots_test_%d?mode=memory&cache=shared", dbSeq)
	db, err := OpenSQLite(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return map[string]Repository{
		"sqlite": NewSQLiteRepository(db),
		"memory": NewMemoryRepository(),
	}
}

func TestRepository_GetMissingReturnsNil(t *testing.T) {
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			v, err := repo.Get(context.Background(), "token")
			require.NoError(t, err)
			require.Nil(t, v)
		})
	}
}

func TestRepository_SetGetOverwrite(t *testing.T) {
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, repo.Set(ctx, "token", []byte("abc")))
			v, err := repo.Get(ctx, "token")
			require.NoError(t, err)
			require.Equal(t, []byte("abc"), v)

			require.NoError(t, repo.Set(ctx, "token", []byte("def")))
			v, err = repo.Get(ctx, "token")
			require.NoError(t, err)
			require.Equal(t, []byte("def"), v)
		})
	}
}

func TestRepository_SetManyDeleteMany(t *testing.T) {
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, repo.SetMany(ctx, map[string][]byte{
				"token": []byte("abc"),
				"user":  []byte(`{"id":1}`),
			}))

			all, err := repo.List(ctx)
			require.NoError(t, err)
			require.Len(t, all, 2)
			require.Equal(t, []byte("abc"), all["token"])

			require.NoError(t, repo.DeleteMany(ctx, "token", "user"))
			all, err = repo.List(ctx)
			require.NoError(t, err)
			require.Empty(t, all)
		})
	}
}

func TestRepository_DeleteAndClear(t *testing.T) {
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, repo.Set(ctx, "a", []byte("1")))
			require.NoError(t, repo.Set(ctx, "b", []byte("2")))

			require.NoError(t, repo.Delete(ctx, "a"))
			v, err := repo.Get(ctx, "a")
			require.NoError(t, err)
			require.Nil(t, v)

			require.NoError(t, repo.Clear(ctx))
			all, err := repo.List(ctx)
			require.NoError(t, err)
			require.Empty(t, all)
		})
	}
}
