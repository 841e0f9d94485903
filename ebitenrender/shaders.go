package ebitenrender

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/phanxgames/oriel"
)

//go:embed shaders/*.kage
var builtinShaders embed.FS

// FSLoader is an oriel.TextLoader reading from a file system.
type FSLoader struct {
	FS fs.FS
}

// LoadText reads path from l.FS. A missing file is reported as
// oriel.ErrFileNotFound.
func (l FSLoader) LoadText(path string) (string, error) {
	data, err := fs.ReadFile(l.FS, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", path, oriel.ErrFileNotFound)
		}
		return "", err
	}
	return string(data), nil
}

// BuiltinLoader returns a loader for the shaders compiled into the package.
func BuiltinLoader() FSLoader {
	sub, err := fs.Sub(builtinShaders, "shaders")
	if err != nil {
		panic(err)
	}
	return FSLoader{FS: sub}
}

// NewShaderRegistry creates a registry that compiles with d. Shaders are
// read from dir when it is not empty, otherwise from the built-in set.
func NewShaderRegistry(d *Device, dir string) *oriel.ShaderRegistry {
	loader := BuiltinLoader()
	if dir != "" {
		loader = FSLoader{FS: os.DirFS(dir)}
	}
	return oriel.NewShaderRegistry(d, loader)
}
