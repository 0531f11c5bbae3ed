package adapters

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"noetic-jammy/internal/ports"
	"noetic-jammy/internal/shared"
	"noetic-jammy/internal/types"
)

// tailSize is how much tool output is kept for error reporting.
const tailSize = 8192

// ExecRunner runs external tools as child processes. Tool output is
// streamed to Output and each command is echoed to Trace as "+ argv"
// before it starts.
type ExecRunner struct {
	Output io.Writer
	Trace  io.Writer
}

func NewExecRunner() ExecRunner {
	return ExecRunner{Output: os.Stderr, Trace: os.Stderr}
}

func (r ExecRunner) Run(ctx context.Context, command types.Command) error {
	if command.Name == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("command name is empty")
	}
	if r.Trace != nil {
		fmt.Fprintf(r.Trace, "+ %s\n", command.String())
	}
	log.Debug().
		Str("command", command.String()).
		Str("dir", command.Dir).
		Strs("env", command.Env).
		Msg("running tool")

	cmd := exec.CommandContext(ctx, command.Name, command.Args...)
	cmd.Dir = command.Dir
	cmd.Env = append(os.Environ(), command.Env...)
	tail := &tailBuffer{limit: tailSize}
	if r.Output != nil {
		cmd.Stdout = io.MultiWriter(r.Output, tail)
	} else {
		cmd.Stdout = tail
	}
	cmd.Stderr = cmd.Stdout

	err := cmd.Run()
	if err == nil {
		return nil
	}
	toolErr := &types.ToolError{
		Command:  command.String(),
		ExitCode: -1,
		Output:   shared.TailOutput(tail.Bytes()),
		Err:      err,
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		toolErr.ExitCode = exitErr.ExitCode()
	}
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(fmt.Sprintf("%s failed", command.Name)).
		WithCause(toolErr)
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	limit int
	data  []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = append(b.data, p...)
	if over := len(b.data) - b.limit; over > 0 {
		b.data = append(b.data[:0], b.data[over:]...)
	}
	return len(p), nil
}

func (b *tailBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.data...)
}

var _ ports.CommandRunnerPort = ExecRunner{}
