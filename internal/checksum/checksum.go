// Package checksum computes content fingerprints for library files.
//
// Fingerprints use the Adler-32 algorithm over the full byte content of a
// file. The checksum is the identity half of a (filename, checksum) pair in
// the catalog: identical bytes always produce the same value, so an unchanged
// file is never reprocessed, while any edit yields a new pair.
package checksum

import (
	"fmt"
	"hash/adler32"
	"io"
	"os"
)

// Bytes returns the Adler-32 checksum of b.
func Bytes(b []byte) uint32 {
	return adler32.Checksum(b)
}

// File returns the Adler-32 checksum of the file's full byte content.
// An empty file yields the checksum of the empty byte sequence.
func File(path string) (uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		return 0, fmt.Errorf("checksum: %s is a directory", path)
	}

	h := adler32.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, err
	}
	return h.Sum32(), nil
}
