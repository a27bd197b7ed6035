package ops

import (
	stderrors "errors"
	"io"
	"os"

	"github.com/hpungsan/quickmr/internal/errors"
)

// FileTarget is a merge request form backed by files on disk.
// A missing file reads as empty. Writes never follow a symlink at the final path component.
type FileTarget struct {
	DescriptionPath string
	// TitlePath is optional; when empty the target has no title field.
	TitlePath string
}

// Description returns the current description file contents.
func (t *FileTarget) Description() (string, error) {
	return readTargetFile(t.DescriptionPath)
}

// SetDescription replaces the description file contents.
func (t *FileTarget) SetDescription(text string) error {
	return writeTargetFile(t.DescriptionPath, text)
}

// Title returns the current title file contents.
func (t *FileTarget) Title() (string, bool, error) {
	if t.TitlePath == "" {
		return "", false, nil
	}
	s, err := readTargetFile(t.TitlePath)
	return s, err == nil, err
}

// SetTitle replaces the title file contents.
func (t *FileTarget) SetTitle(title string) error {
	if t.TitlePath == "" {
		return nil
	}
	return writeTargetFile(t.TitlePath, title)
}

func readTargetFile(path string) (string, error) {
	if path == "" {
		return "", errors.NewInvalidRequest("target path is required")
	}
	f, err := openFileNoFollowRead(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return string(data), nil
}

func writeTargetFile(path, text string) error {
	if path == "" {
		return errors.NewInvalidRequest("target path is required")
	}
	f, err := openFileNoFollow(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return errors.NewInternal(err)
	}
	if err := f.Close(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// MemoryTarget holds the form fields in memory. Used by the MCP server, where the
// client sends the current fields and receives the updated ones.
type MemoryTarget struct {
	Desc      string
	TitleText string
	HasTitle  bool
}

// Description returns the in-memory description.
func (t *MemoryTarget) Description() (string, error) { return t.Desc, nil }

// SetDescription replaces the in-memory description.
func (t *MemoryTarget) SetDescription(text string) error {
	t.Desc = text
	return nil
}

// Title returns the in-memory title.
func (t *MemoryTarget) Title() (string, bool, error) { return t.TitleText, t.HasTitle, nil }

// SetTitle replaces the in-memory title.
func (t *MemoryTarget) SetTitle(title string) error {
	if !t.HasTitle {
		return nil
	}
	t.TitleText = title
	return nil
}
