// File: internal/services/speech/tempfile.go
package speech

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// withTempAudio copies audio into a uniquely named file under dir, calls fn
// with the open file, and removes the file on every return path.
func withTempAudio(dir string, audio io.Reader, fn func(f *os.File) error) error {
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, "kairos-stt-"+uuid.NewString()+".audio")

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("create temp audio: %w", err)
	}
	defer os.Remove(path)
	defer f.Close()

	if _, err := io.Copy(f, audio); err != nil {
		return fmt.Errorf("write temp audio: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind temp audio: %w", err)
	}
	return fn(f)
}
