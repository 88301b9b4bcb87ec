// Package validation checks request envelopes before they reach a provider.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// Request limits
const (
	MaxRequestSize  = 32 * 1024 * 1024 // write_file content travels inline
	MaxToolIDLength = 128
	MaxParamsDepth  = 8
)

// ToolIDPattern allows alphanumeric, hyphens, underscores, and dots (for service.tool format)
var ToolIDPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// ValidateToolID validates a tool ID
func ValidateToolID(id string) error {
	if id == "" {
		return fmt.Errorf("tool_id is required")
	}
	if len(id) > MaxToolIDLength {
		return fmt.Errorf("tool_id must not exceed %d characters", MaxToolIDLength)
	}
	if !ToolIDPattern.MatchString(id) {
		return fmt.Errorf("tool_id contains invalid characters (only alphanumeric, dots, hyphens, and underscores allowed)")
	}
	return nil
}

// ValidateParams rejects parameter trees nested deeper than MaxParamsDepth
// and keys containing NUL bytes.
func ValidateParams(params map[string]interface{}) error {
	return checkDepth(params, 0)
}

func checkDepth(data interface{}, depth int) error {
	if depth > MaxParamsDepth {
		return fmt.Errorf("params nesting depth %d exceeds maximum %d", depth, MaxParamsDepth)
	}

	switch v := data.(type) {
	case map[string]interface{}:
		for key, value := range v {
			if strings.Contains(key, "\x00") {
				return fmt.Errorf("params key contains invalid characters")
			}
			if err := checkDepth(value, depth+1); err != nil {
				return err
			}
		}
	case []interface{}:
		for _, value := range v {
			if err := checkDepth(value, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}
