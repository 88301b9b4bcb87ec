package sandbox

import (
	"io/fs"
	"time"

	"golang.org/x/sys/unix"
)

// fileTimes returns the access time and, when the filesystem records it,
// the birth time of p.
func fileTimes(p string, info fs.FileInfo) (time.Time, *time.Time) {
	var stx unix.Statx_t
	err := unix.Statx(unix.AT_FDCWD, p, unix.AT_SYMLINK_NOFOLLOW, unix.STATX_ATIME|unix.STATX_BTIME, &stx)
	if err != nil {
		return info.ModTime(), nil
	}

	accessed := info.ModTime()
	if stx.Mask&unix.STATX_ATIME != 0 {
		accessed = time.Unix(stx.Atime.Sec, int64(stx.Atime.Nsec))
	}
	if stx.Mask&unix.STATX_BTIME == 0 {
		return accessed, nil
	}
	created := time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec))
	return accessed, &created
}
