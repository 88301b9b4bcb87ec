//go:build !linux && !darwin

package sandbox

import (
	"io/fs"
	"time"
)

func fileTimes(_ string, info fs.FileInfo) (time.Time, *time.Time) {
	return info.ModTime(), nil
}
