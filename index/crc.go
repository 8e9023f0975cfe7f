package index

import (
	"fmt"
	"hash/crc32"
	"path/filepath"
	"strings"
)

const filenameTrim = 56

// CRCFilename computes the CRC of the base name of the given filename. The
// name is upper-cased and trimmed or zero-padded to 56 bytes first so the
// lookup is insensitive to case.
func CRCFilename(filename string) uint32 {
	var b [filenameTrim]byte
	copy(b[:], []byte(fmt.Sprintf("%.*s", filenameTrim, strings.ToUpper(filepath.Base(filename)))))
	return crc32.ChecksumIEEE(b[:])
}
