//go:build unix

package temptable

import "os"
import "unsafe"

import "golang.org/x/sys/unix"

// osmemalloc acquire size bytes of backing memory from the OS.
// SourceRAM maps anonymous process memory. SourceMMAP maps a
// temporary file created under tmpdir, sized with truncate and
// unlinked right away, so the disk space goes away with the mapping
// and no stale files survive a crash.
func osmemalloc(src Source, size int64, tmpdir string) (unsafe.Pointer, error) {
	if src == SourceRAM {
		data, err := unix.Mmap(
			-1, 0, int(size),
			unix.PROT_READ|unix.PROT_WRITE,
			unix.MAP_PRIVATE|unix.MAP_ANON)
		if err != nil {
			return nil, err
		}
		return unsafe.Pointer(&data[0]), nil
	}

	fd, err := os.CreateTemp(tmpdir, "temptable-*")
	if err != nil {
		return nil, err
	}
	defer fd.Close()
	defer os.Remove(fd.Name())
	if err := fd.Truncate(size); err != nil {
		return nil, err
	}
	data, err := unix.Mmap(
		int(fd.Fd()), 0, int(size),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	return unsafe.Pointer(&data[0]), nil
}

// osmemfree release backing memory acquired with osmemalloc.
func osmemfree(base unsafe.Pointer, size int64) {
	data := unsafe.Slice((*byte)(base), size)
	if err := unix.Munmap(data); err != nil {
		panicerr("munmap of %v bytes: %v", size, err)
	}
}
