//go:build !windows && !unix && !appengine

package maxminddb

import "errors"

// Platforms with neither a Windows nor a POSIX mmap (WebAssembly, plan9)
// fall back to reading the whole file into memory; see Open.
func mmap(_ int, _ int) ([]byte, error) {
	return nil, errors.ErrUnsupported
}

func munmap(_ []byte) error {
	return nil
}
