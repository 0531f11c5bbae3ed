package ports

import (
	"context"

	"noetic-jammy/internal/types"
)

// CommandRunnerPort executes external tools. Implementations must run
// each command in cmd.Dir without touching the caller's directory.
type CommandRunnerPort interface {
	Run(ctx context.Context, cmd types.Command) error
}
