package filesystem

import (
	"encoding/base64"
	"fmt"
	"unicode/utf8"

	"github.com/GriffinCanCode/AgentOS/fsserver/internal/sandbox"
	"github.com/GriffinCanCode/AgentOS/fsserver/internal/shared/types"
	"go.uber.org/zap"
)

// FilesystemOps provides the sandbox shared by every operation group
type FilesystemOps struct {
	FS     *sandbox.FS
	Logger *zap.Logger
}

// Success helper
func Success(data map[string]interface{}) (*types.Result, error) {
	return &types.Result{Success: true, Data: data}, nil
}

// Failure helper for malformed or missing arguments
func Failure(message string) (*types.Result, error) {
	msg := message
	return &types.Result{Success: false, Error: &msg, ErrorKind: string(sandbox.KindInvalidArgument)}, nil
}

// FromError turns a sandbox error into a failed result. The error never
// escapes as a Go error so callers always get a structured value.
func FromError(err error) (*types.Result, error) {
	msg := err.Error()
	return &types.Result{Success: false, Error: &msg, ErrorKind: string(sandbox.KindOf(err))}, nil
}

// encodeContent returns data as text when it is valid UTF-8 text and as
// base64 otherwise, along with the encoding name.
func encodeContent(content *sandbox.FileContent) (string, string) {
	if content.IsText && utf8.Valid(content.Data) {
		return string(content.Data), "utf-8"
	}
	return base64.StdEncoding.EncodeToString(content.Data), "base64"
}

func contentData(content *sandbox.FileContent) map[string]interface{} {
	text, encoding := encodeContent(content)
	data := map[string]interface{}{
		"path":      content.Path,
		"content":   text,
		"encoding":  encoding,
		"mime_type": content.MimeType,
		"size":      len(content.Data),
	}
	if content.Charset != "" {
		data["charset"] = content.Charset
	}
	return data
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	units := []string{"KB", "MB", "GB", "TB", "PB"}
	return fmt.Sprintf("%.2f %s", float64(bytes)/float64(div), units[exp])
}
