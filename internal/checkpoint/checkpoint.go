// Package checkpoint persists the adapter runner's resume point (spec
// §4.8): a single decimal block number in a text file, written
// atomically via temp-file-then-rename.
package checkpoint

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Checkpointer manages the checkpoint file's load/save lifecycle.
type Checkpointer struct {
	path string
}

func New(path string) *Checkpointer {
	return &Checkpointer{path: path}
}

// Load reads the resume block number. Returns (0, false, nil) if no
// checkpoint file exists yet (fresh start).
func (c *Checkpointer) Load() (uint64, bool, error) {
	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("checkpoint: read %s: %w", c.path, err)
	}

	n, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("checkpoint: parse %s: %w", c.path, err)
	}
	return n, true, nil
}

// Save persists block as the new resume point, writing to a temp file
// in the same directory and renaming over the checkpoint path so a
// crash mid-write never leaves a corrupt or partial checkpoint (spec
// §4.8).
func (c *Checkpointer) Save(block uint64) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("checkpoint: mkdir: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(strconv.FormatUint(block, 10)), 0o644); err != nil {
		return fmt.Errorf("checkpoint: write temp: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("checkpoint: rename: %w", err)
	}
	return nil
}
