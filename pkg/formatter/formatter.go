// Package formatter runs generated source text through an external code
// formatter before it is written to disk. The formatter contract is
// "source on standard input, formatted source on standard output".
package formatter

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/atollweb/atoll/pkg/errors"
	"github.com/atollweb/atoll/pkg/logging"
)

// Formatter formats generated source text.
type Formatter interface {
	Format(ctx context.Context, src []byte) ([]byte, error)
}

// Command invokes an external formatter process. A non-zero exit is
// treated as fatal: writing unformatted or truncated generated source
// silently would leave the project in an inconsistent state.
type Command struct {
	// Path is the formatter executable.
	Path string
	// Args are passed verbatim to the process.
	Args []string
}

// NewCommand creates a Command formatter for the given executable and
// arguments.
func NewCommand(path string, args ...string) *Command {
	return &Command{Path: path, Args: args}
}

func (c *Command) Format(ctx context.Context, src []byte) ([]byte, error) {
	logger := logging.GetLogger("formatter")
	logging.LogCommand(c.Path, c.Args)

	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Stdin = bytes.NewReader(src)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFormatter, "formatter %q failed", c.Path).
			WithDetail("stderr", stderr.String())
	}

	logger.Trace().Int("bytes", stdout.Len()).Msg("Formatted generated source")
	return stdout.Bytes(), nil
}

// Noop returns the source unchanged. Used when no formatter is
// configured for the project.
type Noop struct{}

func (Noop) Format(_ context.Context, src []byte) ([]byte, error) {
	return src, nil
}
