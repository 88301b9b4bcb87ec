package sandbox

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

var errLimitReached = errors.New("result limit reached")

// SearchFiles walks the tree under root and returns the paths whose name
// matches pattern. A pattern containing "/" is matched against the path
// relative to root instead. Matching is case-sensitive. Directories whose
// name or relative path matches one of exclude are not entered. Symlinks
// are matched by name but never followed.
func (f *FS) SearchFiles(ctx context.Context, root, pattern string, exclude []string, maxResults int) ([]string, error) {
	const op = "search_files"

	if pattern == "" {
		return nil, invalidArgument(op, "pattern must not be empty")
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, invalidArgument(op, "invalid pattern %q", pattern)
	}
	for _, ex := range exclude {
		if !doublestar.ValidatePattern(ex) {
			return nil, invalidArgument(op, "invalid exclude pattern %q", ex)
		}
	}
	limit, err := f.resultLimit(op, maxResults)
	if err != nil {
		return nil, err
	}

	if err := checkContext(ctx, op); err != nil {
		return nil, err
	}

	resolved, err := f.resolve(op, root)
	if err != nil {
		return nil, err
	}
	if err := requireDir(op, root, resolved); err != nil {
		return nil, err
	}
	display, _ := filepath.Abs(expandHome(root))

	byPath := strings.Contains(pattern, "/")

	var (
		mu      sync.Mutex
		matches []string
	)

	conf := fastwalk.Config{Follow: false}
	err = fastwalk.Walk(&conf, resolved, func(p string, d fs.DirEntry, err error) error {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if err != nil {
			// Unreadable subdirectories are skipped, not fatal.
			return nil
		}

		rel, rerr := filepath.Rel(resolved, p)
		if rerr != nil || rel == "." {
			return nil
		}
		slashed := filepath.ToSlash(rel)

		if d.IsDir() && excluded(exclude, d.Name(), slashed) {
			return fs.SkipDir
		}

		subject := d.Name()
		if byPath {
			subject = slashed
		}
		if ok, _ := doublestar.Match(pattern, subject); !ok {
			return nil
		}

		mu.Lock()
		defer mu.Unlock()
		if len(matches) >= limit {
			return errLimitReached
		}
		matches = append(matches, filepath.Join(display, rel))
		return nil
	})
	if err != nil && !errors.Is(err, errLimitReached) {
		return nil, classify(op, root, err)
	}

	sort.Strings(matches)
	return matches, nil
}

func excluded(patterns []string, name, rel string) bool {
	for _, ex := range patterns {
		subject := name
		if strings.Contains(ex, "/") {
			subject = rel
		}
		if ok, _ := doublestar.Match(ex, subject); ok {
			return true
		}
	}
	return false
}

type searchDir struct {
	dir     string
	display string
	level   int
}

// SearchWithinFiles scans regular files under root for substring and
// returns at most maxResults matches, one per matching line. A nil depth
// means unbounded; depth 0 scans only the files directly in root. The walk
// stops as soon as the limit is reached. Files whose first bytes contain a
// NUL are treated as binary and skipped. Symlinked files are scanned only
// when their target is allowed; symlinked directories are never entered.
func (f *FS) SearchWithinFiles(ctx context.Context, root, substring string, depth *int, maxResults int) ([]ContentMatch, error) {
	const op = "search_within_files"

	if substring == "" {
		return nil, invalidArgument(op, "substring must not be empty")
	}
	if depth != nil && *depth < 0 {
		return nil, invalidArgument(op, "depth must not be negative")
	}
	limit, err := f.resultLimit(op, maxResults)
	if err != nil {
		return nil, err
	}

	if err := checkContext(ctx, op); err != nil {
		return nil, err
	}

	resolved, err := f.resolve(op, root)
	if err != nil {
		return nil, err
	}
	display, _ := filepath.Abs(expandHome(root))

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, classify(op, root, err)
	}

	matches := make([]ContentMatch, 0)
	needle := []byte(substring)

	if !info.IsDir() {
		found, err := f.scanFile(resolved, display, needle, limit)
		if err != nil {
			return nil, classify(op, root, err)
		}
		return append(matches, found...), nil
	}

	queue := []searchDir{{dir: resolved, display: display}}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, classify(op, root, err)
		}

		cur := queue[0]
		queue = queue[1:]

		entries, err := os.ReadDir(cur.dir)
		if err != nil {
			if cur.dir == resolved {
				return nil, classify(op, root, err)
			}
			continue
		}

		for _, e := range entries {
			if err := ctx.Err(); err != nil {
				return nil, classify(op, root, err)
			}

			full := filepath.Join(cur.dir, e.Name())
			shown := filepath.Join(cur.display, e.Name())

			switch mode := e.Type(); {
			case mode.IsDir():
				if depth == nil || cur.level < *depth {
					queue = append(queue, searchDir{dir: full, display: shown, level: cur.level + 1})
				}
				continue
			case mode&fs.ModeSymlink != 0:
				target, info, err := f.followLink(full)
				if err != nil || !info.Mode().IsRegular() {
					continue
				}
				full = target
			case !mode.IsRegular():
				continue
			}

			found, err := f.scanFile(full, shown, needle, limit-len(matches))
			if err != nil {
				f.logger.Debug("search: file skipped", zap.String("name", e.Name()), zap.Error(err))
				continue
			}
			matches = append(matches, found...)
			if len(matches) >= limit {
				return matches, nil
			}
		}
	}

	return matches, nil
}

// scanFile returns up to limit matches for needle in the file at p,
// reporting them under display.
func (f *FS) scanFile(p, display string, needle []byte, limit int) ([]ContentMatch, error) {
	file, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	head := make([]byte, f.limits.BinarySniffBytes)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	head = head[:n]
	if bytes.IndexByte(head, 0) >= 0 {
		return nil, nil
	}

	var found []ContentMatch
	r := bufio.NewReader(io.MultiReader(bytes.NewReader(head), file))
	for line := 1; len(found) < limit; line++ {
		text, err := r.ReadBytes('\n')
		if col := bytes.Index(text, needle); col >= 0 {
			found = append(found, ContentMatch{
				Path:   display,
				Line:   line,
				Column: col + 1,
				Text:   f.truncate(text),
			})
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return found, err
		}
	}
	return found, nil
}

func (f *FS) truncate(line []byte) string {
	line = bytes.TrimRight(line, "\r\n")
	if len(line) > f.limits.MaxLineLength {
		line = line[:f.limits.MaxLineLength]
	}
	return strings.ToValidUTF8(string(line), "")
}

func (f *FS) resultLimit(op string, maxResults int) (int, error) {
	switch {
	case maxResults < 0:
		return 0, invalidArgument(op, "max_results must not be negative")
	case maxResults == 0:
		return f.limits.DefaultMaxResults, nil
	default:
		return maxResults, nil
	}
}

func requireDir(op, p, resolved string) error {
	info, err := os.Stat(resolved)
	if err != nil {
		return classify(op, p, err)
	}
	if !info.IsDir() {
		return newError(KindNotADirectory, op, p, "not a directory")
	}
	return nil
}

// GetFileInfo returns metadata for the entry at p. A symlink is described
// as itself, not as its target.
func (f *FS) GetFileInfo(ctx context.Context, p string) (*FileInfo, error) {
	const op = "get_file_info"

	if err := checkContext(ctx, op); err != nil {
		return nil, err
	}

	entry, err := f.resolveEntry(op, p)
	if err != nil {
		return nil, err
	}

	info, err := os.Lstat(entry)
	if err != nil {
		return nil, classify(op, p, err)
	}

	accessed, created := fileTimes(entry, info)
	fi := &FileInfo{
		Name:        filepath.Base(filepath.Clean(p)),
		Path:        p,
		Size:        info.Size(),
		Type:        entryType(info.Mode()),
		Mode:        info.Mode().String(),
		Permissions: fmt.Sprintf("%04o", info.Mode().Perm()),
		Modified:    info.ModTime(),
		Accessed:    accessed,
		Created:     created,
	}

	if fi.Type == TypeFile {
		if mtype, err := mimetype.DetectFile(entry); err == nil {
			fi.MimeType = mtype.String()
		}
	}
	return fi, nil
}
