package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/ssplabs/atende/internal/result"
)

// AudioFolder is the fixed folder convention for archived voice notes.
const AudioFolder = "audios_wav"

// Archive persists converted artifacts to durable storage and returns
// the stored-object identifier.
type Archive interface {
	Put(ctx context.Context, folder, name string, data []byte) result.Result[string]
}

// NewObjectName generates a unique archive object name with ext.
func NewObjectName(ext string) string {
	return uuid.NewString() + ext
}

// DirArchive stores objects under a root directory, one subdirectory
// per folder.
type DirArchive struct {
	root string
}

// NewDirArchive creates an archive rooted at dir.
func NewDirArchive(dir string) *DirArchive {
	return &DirArchive{root: dir}
}

// Put writes data under <root>/<folder>/<name> and returns the
// folder-qualified identifier.
func (a *DirArchive) Put(_ context.Context, folder, name string, data []byte) result.Result[string] {
	dir := filepath.Join(a.root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return result.Wrap[string]("Erro ao enviar arquivo para o armazenamento", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return result.Wrap[string]("Erro ao enviar arquivo para o armazenamento", err)
	}
	return result.Ok(fmt.Sprintf("%s/%s", folder, name))
}
