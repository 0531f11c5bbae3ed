package types

import (
	"fmt"
	"strings"
)

// Command is a single external tool invocation.
type Command struct {
	Name string
	Args []string

	// Dir is the working directory for the tool. The caller's working
	// directory is never changed.
	Dir string

	// Env holds extra KEY=VALUE pairs appended to the process environment.
	Env []string
}

// String renders the command the way a shell trace would print it.
func (c Command) String() string {
	parts := append([]string{c.Name}, c.Args...)
	return strings.Join(parts, " ")
}

// ToolError reports a failed external tool together with its exit status.
type ToolError struct {
	Command  string
	ExitCode int
	Output   string
	Err      error
}

func (e *ToolError) Error() string {
	if strings.TrimSpace(e.Output) != "" {
		return fmt.Sprintf("%s exited with status %d: %s", e.Command, e.ExitCode, strings.TrimSpace(e.Output))
	}
	return fmt.Sprintf("%s exited with status %d", e.Command, e.ExitCode)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}
