package filesystem

import (
	"fmt"

	"github.com/bytedance/sonic"
)

type pathArgs struct {
	Path string `json:"path"`
}

type readMultipleArgs struct {
	Paths []string `json:"paths"`
}

type writeArgs struct {
	Path     string `json:"path"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

type transferArgs struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Overwrite   bool   `json:"overwrite"`
}

type deleteArgs struct {
	Path      string `json:"path"`
	Recursive bool   `json:"recursive"`
}

type modifyArgs struct {
	Path           string `json:"path"`
	Find           string `json:"find"`
	Replace        string `json:"replace"`
	AllOccurrences *bool  `json:"all_occurrences"`
	Regex          bool   `json:"regex"`
}

// replaceAll defaults to true when all_occurrences is omitted.
func (a modifyArgs) replaceAll() bool {
	return a.AllOccurrences == nil || *a.AllOccurrences
}

type treeArgs struct {
	Path           string `json:"path"`
	Depth          int    `json:"depth"`
	FollowSymlinks bool   `json:"follow_symlinks"`
}

type searchFilesArgs struct {
	Path            string   `json:"path"`
	Pattern         string   `json:"pattern"`
	ExcludePatterns []string `json:"exclude_patterns"`
	MaxResults      int      `json:"max_results"`
}

type searchWithinArgs struct {
	Path       string `json:"path"`
	Substring  string `json:"substring"`
	Depth      *int   `json:"depth"`
	MaxResults int    `json:"max_results"`
}

// decode converts loosely typed tool params into a typed argument struct.
func decode(params map[string]interface{}, dst interface{}) error {
	data, err := sonic.Marshal(params)
	if err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	if err := sonic.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}
