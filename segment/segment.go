// Package segment extracts the foreground subject of a photo.
//
// Segmentation itself is delegated to a Segmenter, typically an external
// background-removal tool run through Command. The Loader drives one
// segmentation per upload off the event goroutine, superseding any earlier
// upload still in flight.
package segment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/mattn/go-shellwords"

	"github.com/gogpu/thumbnail"
)

// Sentinel errors.
var (
	// ErrFailed wraps every error returned by a segmentation attempt.
	ErrFailed = errors.New("segment: segmentation failed")

	// ErrEmptyResult is returned when a segmenter produced no data.
	ErrEmptyResult = errors.New("segment: empty result")

	// ErrBadCommand is returned by ParseCommand for unusable command lines.
	ErrBadCommand = errors.New("segment: bad command")

	// ErrIdle is returned by Loader.Wait when nothing is loading or loaded.
	ErrIdle = errors.New("segment: no load in progress")
)

// Segmenter returns image data holding only the foreground subject of src,
// at the same aspect ratio, with a transparent background.
type Segmenter interface {
	Segment(ctx context.Context, src []byte) ([]byte, error)
}

// Func adapts a function to the Segmenter interface.
type Func func(ctx context.Context, src []byte) ([]byte, error)

// Segment calls f.
func (f Func) Segment(ctx context.Context, src []byte) ([]byte, error) {
	return f(ctx, src)
}

// Passthrough returns its input unchanged. It serves sources that are
// already cut out, and tests.
var Passthrough Segmenter = Func(func(_ context.Context, src []byte) ([]byte, error) {
	return src, nil
})

// Placeholders substituted in Command arguments.
const (
	InPlaceholder  = "{in}"
	OutPlaceholder = "{out}"
)

// Command runs an external program. Arguments may reference the source
// file as {in} and the result file as {out}; without {in} the source is
// written to the program's stdin, and without {out} the result is read
// from its stdout.
type Command struct {
	Path string
	Args []string
}

// ParseCommand splits a shell-style command line such as
// "rembg i {in} {out}" into a Command.
func ParseCommand(line string) (Command, error) {
	args, err := shellwords.Parse(line)
	if err != nil {
		return Command{}, fmt.Errorf("%w: %w", ErrBadCommand, err)
	}
	if len(args) == 0 {
		return Command{}, fmt.Errorf("%w: empty command line", ErrBadCommand)
	}
	return Command{Path: args[0], Args: args[1:]}, nil
}

// String returns the command line.
func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// Segment runs the command on src in a scratch directory.
func (c Command) Segment(ctx context.Context, src []byte) ([]byte, error) {
	if c.Path == "" {
		return nil, fmt.Errorf("%w: %w: no program", ErrFailed, ErrBadCommand)
	}
	dir, err := os.MkdirTemp("", "thumbnail-segment-")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailed, err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	ext := "img"
	if kind, err := filetype.Match(src); err == nil && kind != filetype.Unknown {
		ext = kind.Extension
	}
	in := filepath.Join(dir, "in."+ext)
	out := filepath.Join(dir, "out.png")

	useIn, useOut := false, false
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		useIn = useIn || strings.Contains(a, InPlaceholder)
		useOut = useOut || strings.Contains(a, OutPlaceholder)
		a = strings.ReplaceAll(a, InPlaceholder, in)
		args[i] = strings.ReplaceAll(a, OutPlaceholder, out)
	}

	cmd := exec.CommandContext(ctx, c.Path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stderr = &stderr
	if useIn {
		if err := os.WriteFile(in, src, 0o600); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFailed, err)
		}
	} else {
		cmd.Stdin = bytes.NewReader(src)
	}
	if !useOut {
		cmd.Stdout = &stdout
	}

	thumbnail.Logger().Debug("segment: run", "cmd", c.Path, "args", len(args))
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrFailed, ctx.Err())
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s: %w: %s", ErrFailed, c.Path, err, msg)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrFailed, c.Path, err)
	}

	result := stdout.Bytes()
	if useOut {
		if result, err = os.ReadFile(out); err != nil {
			return nil, fmt.Errorf("%w: read result: %w", ErrFailed, err)
		}
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrFailed, ErrEmptyResult)
	}
	return result, nil
}
