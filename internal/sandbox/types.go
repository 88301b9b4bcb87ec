package sandbox

import (
	"io/fs"
	"time"
)

// EntryType is the kind of a filesystem entry as reported to callers.
type EntryType string

const (
	TypeFile      EntryType = "file"
	TypeDirectory EntryType = "directory"
	TypeSymlink   EntryType = "symlink"
	TypeOther     EntryType = "other"
)

func entryType(mode fs.FileMode) EntryType {
	switch {
	case mode&fs.ModeSymlink != 0:
		return TypeSymlink
	case mode.IsDir():
		return TypeDirectory
	case mode.IsRegular():
		return TypeFile
	default:
		return TypeOther
	}
}

// FileInfo is a point-in-time metadata snapshot. It is never cached.
type FileInfo struct {
	Name        string     `json:"name"`
	Path        string     `json:"path"`
	Size        int64      `json:"size"`
	Type        EntryType  `json:"type"`
	Mode        string     `json:"mode"`
	Permissions string     `json:"permissions"`
	Modified    time.Time  `json:"modified"`
	Accessed    time.Time  `json:"accessed"`
	Created     *time.Time `json:"created,omitempty"`
	MimeType    string     `json:"mime_type,omitempty"`
}

// DirEntry is one row of a directory listing.
type DirEntry struct {
	Name string    `json:"name"`
	Type EntryType `json:"type"`
	Size int64     `json:"size"`
}

// TreeNode is a node of a bounded directory snapshot.
type TreeNode struct {
	Name     string      `json:"name"`
	Type     EntryType   `json:"type"`
	Children []*TreeNode `json:"children,omitempty"`
}

// FileContent holds a file read in full.
type FileContent struct {
	Path     string `json:"path"`
	Data     []byte `json:"-"`
	MimeType string `json:"mime_type"`
	Charset  string `json:"charset,omitempty"`
	IsText   bool   `json:"is_text"`
}

// ReadResult is the per-path outcome of ReadMultipleFiles.
type ReadResult struct {
	Path    string
	Content *FileContent
	Err     error
}

// ContentMatch is one line that contains the searched substring.
type ContentMatch struct {
	Path   string `json:"path"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Text   string `json:"text"`
}

// CopyStats summarizes a copy.
type CopyStats struct {
	Files        int   `json:"files"`
	Directories  int   `json:"directories"`
	Symlinks     int   `json:"symlinks"`
	SkippedLinks int   `json:"skipped_links"`
	Bytes        int64 `json:"bytes"`
}

// Limits bounds the work done by traversal operations.
type Limits struct {
	DefaultTreeDepth  int
	MaxTreeDepth      int
	DefaultMaxResults int
	MaxLineLength     int
	BinarySniffBytes  int
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		DefaultTreeDepth:  3,
		MaxTreeDepth:      32,
		DefaultMaxResults: 1000,
		MaxLineLength:     512,
		BinarySniffBytes:  8000,
	}
}
