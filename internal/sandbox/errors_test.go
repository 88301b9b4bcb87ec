package sandbox

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	pathErr := func(errno syscall.Errno) error {
		return &fs.PathError{Op: "open", Path: "/real/resolved/path", Err: errno}
	}

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "not exist", err: pathErr(syscall.ENOENT), want: KindNotFound},
		{name: "exists", err: pathErr(syscall.EEXIST), want: KindAlreadyExists},
		{name: "not empty", err: pathErr(syscall.ENOTEMPTY), want: KindDirectoryNotEmpty},
		{name: "is a directory", err: pathErr(syscall.EISDIR), want: KindIsADirectory},
		{name: "not a directory", err: pathErr(syscall.ENOTDIR), want: KindNotADirectory},
		{name: "permission", err: pathErr(syscall.EACCES), want: KindIOError},
		{name: "canceled", err: context.Canceled, want: KindCanceled},
		{name: "deadline", err: fmt.Errorf("walk: %w", context.DeadlineExceeded), want: KindCanceled},
		{name: "already classified", err: accessDenied("op", "p"), want: KindAccessDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("read_file", "notes.txt", tt.err)
			assert.Equal(t, tt.want, KindOf(err))
		})
	}

	assert.NoError(t, classify("op", "p", nil))
}

func TestErrorMessage(t *testing.T) {
	err := classify("read_file", "notes.txt", &fs.PathError{Op: "open", Path: "/real/resolved/notes.txt", Err: syscall.ENOENT})
	assert.Equal(t, "read_file notes.txt: no such file or directory", err.Error())
	assert.NotContains(t, err.Error(), "/real/resolved")

	link := classify("move_file", "a", &os.LinkError{Op: "rename", Old: "/x/a", New: "/x/b", Err: syscall.EXDEV})
	assert.Contains(t, link.Error(), "move_file a: ")
	assert.Contains(t, link.Error(), "cross-device link")
	assert.NotContains(t, link.Error(), "/x/")

	assert.Equal(t, "access denied - path outside allowed directories", accessDenied("read_file", "/etc/passwd").Error())
	assert.Equal(t, "tree: depth must be positive", invalidArgument("tree", "depth must be positive").Error())
}

func TestErrorIs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", newError(KindAlreadyExists, "copy_file", "b", "destination already exists"))

	assert.True(t, errors.Is(err, ErrAlreadyExists))
	assert.False(t, errors.Is(err, ErrNotFound))

	missing := classify("read_file", "x", &fs.PathError{Op: "open", Path: "x", Err: syscall.ENOENT})
	assert.True(t, errors.Is(missing, ErrNotFound))
	assert.True(t, errors.Is(missing, fs.ErrNotExist))
}

func TestKindOfForeignError(t *testing.T) {
	assert.Equal(t, KindIOError, KindOf(errors.New("boom")))
}
