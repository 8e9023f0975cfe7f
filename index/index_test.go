package index

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDB(t *testing.T) {
	db := New()
	assert.Equal(t, 0, db.Length())

	require.NoError(t, db.Set(3, []byte("three")))
	require.NoError(t, db.Set(1, []byte("one")))
	require.NoError(t, db.Set(1, []byte("ignored")))
	assert.Equal(t, errEmpty, db.Set(2, nil))

	assert.Equal(t, 2, db.Length())
	assert.Equal(t, []byte("one"), db.Get(1))
	assert.Nil(t, db.Get(2))

	b, err := db.MarshalBinary()
	require.NoError(t, err)

	// Count, two entries sorted by CRC, then the thumbnails in the same order
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(b[0:]))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(b[4:]))
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(b[16:]))
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(b[20:]))
	assert.Equal(t, "onethree", string(b[28:]))

	got := New()
	require.NoError(t, got.UnmarshalBinary(b))
	assert.Equal(t, db.thumbnails, got.thumbnails)
}

func TestUnmarshalBinaryErrors(t *testing.T) {
	db := New()
	require.NoError(t, db.Set(42, []byte("thumbnail")))
	b, err := db.MarshalBinary()
	require.NoError(t, err)

	tables := []struct {
		name string
		b    []byte
		err  error
	}{
		{"empty", nil, errNotEnough},
		{"truncated entries", b[:10], errNotEnough},
		{"truncated data", b[:len(b)-1], errBadOffset},
		{"trailing data", append(append([]byte{}, b...), 0), errTooMuch},
		{"too many", []byte{0xff, 0xff, 0xff, 0xff}, errTooManyItems},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			assert.Equal(t, table.err, New().UnmarshalBinary(table.b))
		})
	}
}

func TestMarshalBinaryTooMany(t *testing.T) {
	db := New()
	for i := 0; i <= MaxEntries; i++ {
		require.NoError(t, db.Set(uint32(i), []byte{0}))
	}
	_, err := db.MarshalBinary()
	assert.Equal(t, errTooManyItems, err)
}

func TestCRCFilename(t *testing.T) {
	assert.Equal(t, CRCFilename("photo.jpg"), CRCFilename("PHOTO.JPG"))
	assert.Equal(t, CRCFilename("photo.jpg"), CRCFilename("/some/dir/photo.jpg"))
	assert.NotEqual(t, CRCFilename("photo.jpg"), CRCFilename("photo.png"))
}
