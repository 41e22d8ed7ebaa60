package shm

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// ReadMeta reads and parses frame.meta at path. Any failure (absent file,
// short read, bad header) is returned to the caller as an ordinary error;
// callers on the reader side must treat these as expected, not exceptional
// (spec §4.1 failure semantics) and must not propagate them as agent errors.
func ReadMeta(path string) (Header, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return Header{}, err
	}
	return Unpack(buf)
}

// ReadData memory-maps path read-only, copies out exactly size bytes, and
// unmaps immediately. Copying out rather than returning the mapping keeps
// the caller's held memory ordinary Go-GC'd bytes, since the underlying
// shared-memory file can be rewritten out from under a long-lived mapping.
func ReadData(path string, size uint64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if uint64(info.Size()) < size {
		return nil, fmt.Errorf("shm: %s is %d bytes, want at least %d", path, info.Size(), size)
	}
	if size == 0 {
		return nil, nil
	}

	mapped, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}
	defer unix.Munmap(mapped)

	out := make([]byte, size)
	copy(out, mapped)
	return out, nil
}
