package pipeline

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matzehuels/galvo/pkg/errors"
)

// WriteFile writes data to name through a buffered writer. The data goes to
// a temporary file in the same directory that replaces name only once it is
// flushed and closed, so a failed write never leaves a partial stream.
// The file ends up world-readable (0644) like one made by os.Create.
func WriteFile(name string, data []byte) (err error) {
	if err := errors.ValidatePath(name); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(name), "."+filepath.Base(name)+".*")
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", name, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), name); err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}
