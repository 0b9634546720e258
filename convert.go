package fbxview

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/mattn/go-shellwords"
	"github.com/pkg/errors"
)

// Converter turns an asset file into a JSON document tree at output.
type Converter interface {
	Convert(ctx context.Context, input, output string, overwrite bool) error
}

// DocumentSource is implemented by converters that can hand over the tree
// without going through a file.
type DocumentSource interface {
	Document(input string) (*Node, error)
}

// prepareOutput refuses an existing output unless overwrite is set, in which
// case the old file is removed.
func prepareOutput(output string, overwrite bool) error {
	if _, err := os.Stat(output); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if !overwrite {
		return errors.Wrapf(ErrAlreadyExists, "%s", output)
	}
	return os.Remove(output)
}

// InputPlaceholder in a command line is replaced with the input path. When
// absent the input path is appended.
const InputPlaceholder = "{input}"

// ExecConverter runs an external dump tool and appends its stdout to the
// output file.
type ExecConverter struct {
	Command string
	Dir     string
}

func NewExecConverter(command, dir string) *ExecConverter {
	return &ExecConverter{Command: command, Dir: dir}
}

func (c *ExecConverter) args(input string) ([]string, error) {
	args, err := shellwords.Parse(c.Command)
	if err != nil {
		return nil, errors.Wrapf(ErrValue, "converter command %q: %v", c.Command, err)
	}
	if len(args) == 0 {
		return nil, errors.Wrap(ErrValue, "empty converter command")
	}
	replaced := false
	for i, a := range args {
		if strings.Contains(a, InputPlaceholder) {
			args[i] = strings.ReplaceAll(a, InputPlaceholder, input)
			replaced = true
		}
	}
	if !replaced {
		args = append(args, input)
	}
	return args, nil
}

func (c *ExecConverter) Convert(ctx context.Context, input, output string, overwrite bool) error {
	args, err := c.args(input)
	if err != nil {
		return err
	}
	if err := prepareOutput(output, overwrite); err != nil {
		return err
	}

	f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = c.Dir
	cmd.Stdout = f
	cmd.Stderr = &stderr

	logger.Debug("running converter", "args", args, "dir", c.Dir, "output", output)
	err = cmd.Run()
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		discardOutput(output)
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return errors.Wrapf(err, "%s: %s", args[0], msg)
		}
		return errors.Wrap(err, args[0])
	}
	return nil
}

// discardOutput removes a partly written output.
func discardOutput(output string) {
	if err := os.Remove(output); err != nil && !os.IsNotExist(err) {
		logger.Warn("remove partial output", "output", output, "err", err)
	}
}

var _ Converter = (*ExecConverter)(nil)
