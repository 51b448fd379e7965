package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemDBPutGet(t *testing.T) {
	db := NewMemDB()
	defer db.Close()

	require.NoError(t, db.Put([]byte("k"), []byte("v")))

	got, err := db.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v"), got)

	ok, err := db.Has([]byte("k"))
	require.NoError(t, err)
	require.True(t, ok)

	_, err = db.Get([]byte("missing"))
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemDBDefensiveCopies(t *testing.T) {
	db := NewMemDB()
	defer db.Close()

	key := []byte("k")
	value := []byte("v1")
	require.NoError(t, db.Put(key, value))
	value[0] = 'x'

	got, err := db.Get(key)
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), got)

	got[0] = 'y'
	again, err := db.Get(key)
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), again)
}

func TestBatchWriteAtomicView(t *testing.T) {
	db := NewMemDB()
	defer db.Close()

	batch := new(Batch)
	batch.Put([]byte("a"), []byte("1"))
	batch.Put([]byte("b"), []byte("2"))
	batch.Delete([]byte("c"))
	require.Equal(t, 3, batch.Len())

	require.NoError(t, db.Put([]byte("c"), []byte("3")))
	require.NoError(t, db.Write(batch))

	a, err := db.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("1"), a)

	_, err = db.Get([]byte("c"))
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestLevelDBRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pooldata")
	db, err := NewLevelDB(path)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Put([]byte("k"), []byte("v")))
	got, err := db.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v"), got)

	_, err = db.Get([]byte("missing"))
	require.ErrorIs(t, err, ErrKeyNotFound)

	batch := new(Batch)
	batch.Put([]byte("x"), []byte("1"))
	batch.Delete([]byte("k"))
	require.NoError(t, db.Write(batch))

	_, err = db.Get([]byte("k"))
	require.ErrorIs(t, err, ErrKeyNotFound)
}
