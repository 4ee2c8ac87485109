package share

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/0w0mewo/lsctl/internal/models"
	"github.com/google/uuid"
)

// Materializer turns a text item into a file the backend can serve.
type Materializer interface {
	Materialize(it models.SelectedItem) (string, error)
	Release(paths ...string)
}

// TempMaterializer writes each text into its own directory under Dir, so the
// file keeps the item's name.
type TempMaterializer struct {
	Dir string
}

func (m TempMaterializer) Materialize(it models.SelectedItem) (string, error) {
	if it.Kind != models.KindText {
		return "", fmt.Errorf("cannot materialize %s item %s", it.Kind, it.ID)
	}

	base := m.Dir
	if base == "" {
		base = os.TempDir()
	}

	dir := filepath.Join(base, "lsctl-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}

	fpath := filepath.Join(dir, filepath.Base(it.FileName))
	if err := os.WriteFile(fpath, []byte(it.TextContent), 0o600); err != nil {
		os.RemoveAll(dir)
		return "", err
	}

	return fpath, nil
}

// Release removes materialized files along with their directories.
func (m TempMaterializer) Release(paths ...string) {
	for _, p := range paths {
		os.RemoveAll(filepath.Dir(p))
	}
}
