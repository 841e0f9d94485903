package oriel

import (
	"errors"
	"fmt"
)

// ShaderKey identifies a shader program. Materials refer to programs by key;
// the program itself lives in a ShaderRegistry.
type ShaderKey string

// Built-in shader keys used by the material builders.
const (
	ShaderStandard     ShaderKey = "standard"
	ShaderUV           ShaderKey = "uv"
	ShaderCheckerboard ShaderKey = "checkerboard"
)

// Program is a compiled shader program owned by the graphics backend.
type Program interface {
	Dispose()
}

// ShaderBinder receives a material's state at draw time.
type ShaderBinder interface {
	Bind(p Program) error
	// SetUniform sets a uniform. value is one of float32, int32,
	// mgl32.Vec2, mgl32.Vec3, mgl32.Vec4, mgl32.Mat3 or mgl32.Mat4.
	SetUniform(name string, value any) error
	SetTextureUnit(unit int, tex Texture) error
}

// RasterizerApplier applies a fully resolved rasterizer state.
type RasterizerApplier interface {
	ApplyRasterizer(state RasterizerState) error
}

// Device is the graphics backend seen by Scene.Render.
type Device interface {
	ShaderBinder
	RasterizerApplier
}

// ShaderCompiler turns shader source into a Program.
type ShaderCompiler interface {
	Compile(key ShaderKey, source string) (Program, error)
}

// TextLoader loads text assets. A missing file is reported with an error
// matching ErrFileNotFound.
type TextLoader interface {
	LoadText(path string) (string, error)
}

// ShaderRegistry compiles and caches programs by key. It belongs to a render
// context: create one per graphics context and Close it on teardown.
type ShaderRegistry struct {
	compiler ShaderCompiler
	loader   TextLoader
	sources  map[ShaderKey]string
	programs map[ShaderKey]Program
}

// NewShaderRegistry creates a registry that loads sources through loader and
// builds them with compiler.
func NewShaderRegistry(compiler ShaderCompiler, loader TextLoader) *ShaderRegistry {
	return &ShaderRegistry{
		compiler: compiler,
		loader:   loader,
		sources:  make(map[ShaderKey]string),
		programs: make(map[ShaderKey]Program),
	}
}

// SetSource maps key to a source path for the loader. Keys with no mapping
// load from "<key>.kage".
func (r *ShaderRegistry) SetSource(key ShaderKey, path string) {
	r.sources[key] = path
}

// Program returns the program for key, compiling it on first use. A load
// failure is returned as is; a compile failure is wrapped in *ShaderError.
// A nil registry reports ErrNoShaderRegistry.
func (r *ShaderRegistry) Program(key ShaderKey) (Program, error) {
	if r == nil {
		return nil, fmt.Errorf("shader %q: %w", key, ErrNoShaderRegistry)
	}
	if p, ok := r.programs[key]; ok {
		return p, nil
	}
	path, ok := r.sources[key]
	if !ok {
		path = string(key) + ".kage"
	}
	src, err := r.loader.LoadText(path)
	if err != nil {
		return nil, fmt.Errorf("load shader %q from %s: %w", key, path, err)
	}
	p, err := r.compiler.Compile(key, src)
	if err != nil {
		var se *ShaderError
		if errors.As(err, &se) {
			return nil, err
		}
		return nil, &ShaderError{Key: key, Err: err}
	}
	r.programs[key] = p
	Logger().Info("shader compiled", "key", string(key), "path", path)
	return p, nil
}

// Len returns the number of compiled programs.
func (r *ShaderRegistry) Len() int { return len(r.programs) }

// Close disposes every compiled program. The registry stays usable and
// recompiles on the next Program call.
func (r *ShaderRegistry) Close() {
	for key, p := range r.programs {
		p.Dispose()
		delete(r.programs, key)
	}
}

// MapLoader is a TextLoader backed by an in-memory map.
type MapLoader map[string]string

func (m MapLoader) LoadText(path string) (string, error) {
	s, ok := m[path]
	if !ok {
		return "", fmt.Errorf("%s: %w", path, ErrFileNotFound)
	}
	return s, nil
}
