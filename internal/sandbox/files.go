package sandbox

import (
	"context"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// ReadFile reads the whole file at p.
func (f *FS) ReadFile(ctx context.Context, p string) (*FileContent, error) {
	const op = "read_file"

	if err := checkContext(ctx, op); err != nil {
		return nil, err
	}

	resolved, err := f.resolve(op, p)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, classify(op, p, err)
	}
	if info.IsDir() {
		return nil, newError(KindIsADirectory, op, p, "is a directory")
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, classify(op, p, err)
	}

	return newFileContent(p, data), nil
}

// ReadMultipleFiles reads every path independently. The result has one
// entry per input path, in input order; a failure on one path never
// affects the others.
func (f *FS) ReadMultipleFiles(ctx context.Context, paths []string) []ReadResult {
	results := make([]ReadResult, len(paths))
	for i, p := range paths {
		content, err := f.ReadFile(ctx, p)
		results[i] = ReadResult{Path: p, Content: content, Err: err}
	}
	return results
}

// WriteFile creates or truncates the file at p. The parent directory must
// exist. An existing file keeps its permission bits.
func (f *FS) WriteFile(ctx context.Context, p string, content []byte) error {
	const op = "write_file"

	if err := checkContext(ctx, op); err != nil {
		return err
	}

	resolved, err := f.resolve(op, p)
	if err != nil {
		return err
	}

	perm := fs.FileMode(0o644)
	if info, err := os.Stat(resolved); err == nil {
		if info.IsDir() {
			return newError(KindIsADirectory, op, p, "is a directory")
		}
		perm = info.Mode().Perm()
	}

	if err := os.WriteFile(resolved, content, perm); err != nil {
		return classify(op, p, err)
	}

	f.logger.Debug("file written", zap.String("path", p), zap.Int("bytes", len(content)))
	return nil
}

// ModifyFile replaces find with replace in the file at p and returns the
// number of replacements. With regex set, find is an RE2 expression and
// replace may reference groups ($1, ${name}). Zero matches leaves the file
// untouched and is not an error.
func (f *FS) ModifyFile(ctx context.Context, p, find, replace string, all, regex bool) (int, error) {
	const op = "modify_file"

	if find == "" {
		return 0, invalidArgument(op, "find must not be empty")
	}

	var re *regexp.Regexp
	if regex {
		var err error
		if re, err = regexp.Compile(find); err != nil {
			return 0, invalidArgument(op, "invalid regular expression: %v", err)
		}
	}

	if err := checkContext(ctx, op); err != nil {
		return 0, err
	}

	resolved, err := f.resolve(op, p)
	if err != nil {
		return 0, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return 0, classify(op, p, err)
	}
	if info.IsDir() {
		return 0, newError(KindIsADirectory, op, p, "is a directory")
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return 0, classify(op, p, err)
	}

	var (
		out   string
		count int
	)
	if re != nil {
		out, count = replaceRegexp(re, string(data), replace, all)
	} else {
		out, count = replaceLiteral(string(data), find, replace, all)
	}
	if count == 0 {
		return 0, nil
	}

	if err := os.WriteFile(resolved, []byte(out), info.Mode().Perm()); err != nil {
		return 0, classify(op, p, err)
	}

	f.logger.Debug("file modified", zap.String("path", p), zap.Int("replacements", count))
	return count, nil
}

func replaceLiteral(text, find, replace string, all bool) (string, int) {
	if all {
		n := strings.Count(text, find)
		if n == 0 {
			return text, 0
		}
		return strings.ReplaceAll(text, find, replace), n
	}
	if !strings.Contains(text, find) {
		return text, 0
	}
	return strings.Replace(text, find, replace, 1), 1
}

func replaceRegexp(re *regexp.Regexp, text, replace string, all bool) (string, int) {
	if all {
		n := len(re.FindAllStringIndex(text, -1))
		if n == 0 {
			return text, 0
		}
		return re.ReplaceAllString(text, replace), n
	}

	loc := re.FindStringSubmatchIndex(text)
	if loc == nil {
		return text, 0
	}
	expanded := re.ExpandString(nil, replace, text, loc)
	return text[:loc[0]] + string(expanded) + text[loc[1]:], 1
}
