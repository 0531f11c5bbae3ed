// Package shared provides common utility functions used across multiple
// packages in the noetic-jammy codebase.
package shared

import (
	"fmt"
	"strings"
)

// maxCommandOutput bounds how much tool output is folded into an error.
const maxCommandOutput = 4096

// HTTPStatusError creates a formatted error for non-2xx HTTP responses.
func HTTPStatusError(status int, url string) error {
	return fmt.Errorf("status=%d url=%s", status, url)
}

// TailOutput returns the trimmed last maxCommandOutput bytes of output.
func TailOutput(output []byte) string {
	trimmed := strings.TrimSpace(string(output))
	if len(trimmed) > maxCommandOutput {
		trimmed = "..." + trimmed[len(trimmed)-maxCommandOutput:]
	}
	return trimmed
}

// DebPackageName returns the Debian binary package name bloom uses for a
// ROS package, e.g. ("noetic", "roscpp_core") -> "ros-noetic-roscpp-core".
func DebPackageName(rosDistro string, pkg string) string {
	normalized := strings.ToLower(strings.TrimSpace(pkg))
	normalized = strings.ReplaceAll(normalized, "_", "-")
	return fmt.Sprintf("ros-%s-%s", strings.TrimSpace(rosDistro), normalized)
}
