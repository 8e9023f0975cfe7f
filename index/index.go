/*
Package index implements the small thumbnail index written to each directory
that contains images.

The file starts with a little-endian 32-bit entry count followed by that many
entries, sorted by CRC, of three 32-bit values: the CRC of the image filename,
the offset of its thumbnail relative to the end of the entries and the length
of the thumbnail. The thumbnails themselves follow, concatenated.
*/
package index

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"
)

const (
	// Filename is the expected filename used when writing to disk
	Filename = "thumbs.idx"

	// MaxEntries is the most thumbnails a single index can hold
	MaxEntries = 4096
)

var (
	errEmpty        = errors.New("index: empty thumbnail")
	errNotEnough    = errors.New("index: not enough data")
	errTooMuch      = errors.New("index: too much data")
	errBadOffset    = errors.New("index: thumbnail outside of data")
	errTooManyItems = fmt.Errorf("index: more than %d entries", MaxEntries)
)

type entry struct {
	CRC    uint32
	Offset uint32
	Length uint32
}

// DB is the thumbnail index object. It implements the
// encoding.BinaryMarshaler and encoding.BinaryUnmarshaler interfaces.
type DB struct {
	thumbnails map[uint32][]byte
}

// New returns an empty thumbnail index
func New() *DB {
	return &DB{
		thumbnails: make(map[uint32][]byte),
	}
}

// Length returns the number of thumbnails in the index
func (db *DB) Length() int {
	return len(db.thumbnails)
}

// Set stores the provided thumbnail for the given CRC. If a thumbnail already
// exists for the CRC it is kept.
func (db *DB) Set(crc uint32, thumbnail []byte) error {
	if len(thumbnail) == 0 {
		return errEmpty
	}
	if _, ok := db.thumbnails[crc]; !ok {
		db.thumbnails[crc] = thumbnail
	}
	return nil
}

// Get returns the thumbnail for the given CRC or nil if there isn't one
func (db *DB) Get(crc uint32) []byte {
	return db.thumbnails[crc]
}

func (db *DB) keys() []uint32 {
	keys := make([]uint32, 0, len(db.thumbnails))
	for k := range db.thumbnails {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// MarshalBinary encodes the index into binary form and returns the result
func (db *DB) MarshalBinary() ([]byte, error) {
	length := len(db.thumbnails)

	if length > MaxEntries {
		return nil, errTooManyItems
	}

	keys := db.keys()

	entries := make([]entry, 0, length)
	var offset uint32
	for _, k := range keys {
		n := uint32(len(db.thumbnails[k]))
		entries = append(entries, entry{k, offset, n})
		offset += n
	}

	b := new(bytes.Buffer)

	if err := binary.Write(b, binary.LittleEndian, uint32(length)); err != nil {
		return nil, err
	}

	if err := binary.Write(b, binary.LittleEndian, entries); err != nil {
		return nil, err
	}

	for _, k := range keys {
		if _, err := b.Write(db.thumbnails[k]); err != nil {
			return nil, err
		}
	}

	return b.Bytes(), nil
}

// UnmarshalBinary decodes the index from binary form
func (db *DB) UnmarshalBinary(b []byte) error {
	r := bytes.NewReader(b)

	db.thumbnails = make(map[uint32][]byte)

	var length uint32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return errNotEnough
	}
	if length > MaxEntries {
		return errTooManyItems
	}

	entries := make([]entry, length)
	if err := binary.Read(r, binary.LittleEndian, entries); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return errNotEnough
		}
		return err
	}

	data := b[len(b)-r.Len():]

	var total uint64
	for _, e := range entries {
		end := uint64(e.Offset) + uint64(e.Length)
		if e.Length == 0 || end > uint64(len(data)) {
			return errBadOffset
		}
		db.thumbnails[e.CRC] = data[e.Offset:end:end]
		total += uint64(e.Length)
	}

	if total < uint64(len(data)) {
		return errTooMuch
	}

	return nil
}
