package sandbox

import (
	"io/fs"
	"syscall"
	"time"
)

func fileTimes(_ string, info fs.FileInfo) (time.Time, *time.Time) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime(), nil
	}
	accessed := time.Unix(st.Atimespec.Unix())
	created := time.Unix(st.Birthtimespec.Unix())
	return accessed, &created
}
