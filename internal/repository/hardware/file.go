package hardware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/peachcloud/peach-config/internal/domain/peach"
)

// Repository defines persistence operations for the hardware configuration log.
type Repository interface {
	Load(ctx context.Context) (*peach.HardwareConfig, error)
	Save(ctx context.Context, cfg *peach.HardwareConfig) error
}

// FileRepository persists the hardware configuration to a JSON file.
type FileRepository struct {
	// path is the filesystem location of the JSON file.
	path string
}

// DefaultFileMode keeps the log readable by the microservices.
const DefaultFileMode os.FileMode = 0o644

// ErrNotFound is returned when setup never completed on this device.
var ErrNotFound = errors.New("hardware config not found")

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Path returns the location of the JSON file.
func (r *FileRepository) Path() string {
	return r.path
}

// Load reads the hardware configuration from disk.
func (r *FileRepository) Load(_ context.Context) (*peach.HardwareConfig, error) {
	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, &peach.Error{Kind: peach.KindFileRead, File: r.path, Err: err}
	}

	var cfg peach.HardwareConfig
	if err = json.Unmarshal(contents, &cfg); err != nil {
		return nil, &peach.Error{Kind: peach.KindSerialization, File: r.path, Err: err}
	}

	return &cfg, nil
}

// Save replaces the file with the JSON form of cfg.
func (r *FileRepository) Save(_ context.Context, cfg *peach.HardwareConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return &peach.Error{Kind: peach.KindSerialization, File: r.path, Err: err}
	}

	_, err = os.Stat(r.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		err = r.create(data)
	case err == nil:
		// go-update renames the current file aside before moving the new one in.
		err = goupdate.Apply(bytes.NewReader(data), goupdate.Options{
			TargetPath: r.path,
			TargetMode: DefaultFileMode,
		})
	}

	if err != nil {
		return &peach.Error{Kind: peach.KindFileWrite, File: r.path, Err: err}
	}

	return nil
}

// create writes the first record to a temporary file next to the target and
// renames it into place, so the target never exists with partial content.
func (r *FileRepository) create(data []byte) (err error) {
	dir := filepath.Dir(r.path)

	if err = os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}

	if err = tmp.Chmod(DefaultFileMode); err != nil {
		return err
	}

	if err = tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), r.path)
}
