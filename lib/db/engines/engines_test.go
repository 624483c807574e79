package engines

import (
	"github.com/ValentinKolb/kvapp/lib/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestOpen(t *testing.T) {
	for _, kind := range db.Implementations {
		t.Run(string(kind), func(t *testing.T) {
			d, err := Open(kind, t.TempDir())
			require.NoError(t, err)
			defer d.Close()

			assert.Equal(t, kind, d.GetInfo().DbType)

			_, _, err = d.Put("k", []byte("v"))
			require.NoError(t, err)
			v, ok, err := d.Get("k")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, []byte("v"), v)
		})
	}
}

func TestOpenUnknown(t *testing.T) {
	_, err := Open("leveldb", t.TempDir())
	assert.Error(t, err)
}
