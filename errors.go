package oriel

import (
	"errors"
	"fmt"
)

// Structural errors. These indicate a caller tried to put the scene or a
// material into an invalid shape; the operation is rejected and nothing is
// modified.
var (
	ErrCycle                 = errors.New("oriel: adding child would create a cycle")
	ErrNilNode               = errors.New("oriel: nil node")
	ErrDisposed              = errors.New("oriel: node is disposed")
	ErrBehaviorAttached      = errors.New("oriel: behavior is already attached")
	ErrTextureUnitsExhausted = errors.New("oriel: texture units exhausted")
	ErrTextureUnitInUse      = errors.New("oriel: texture unit already in use")
	ErrTextureUnitRange      = errors.New("oriel: texture unit out of range")
	ErrZeroScale             = errors.New("oriel: scale component is zero")
	ErrAlreadyRegistered     = errors.New("oriel: node is already registered for tracking")
	ErrDeviceIndex           = errors.New("oriel: tracked device index out of range")
	ErrNoShaderRegistry      = errors.New("oriel: no shader registry")
)

// Resource errors. These come from collaborators (shader compiler, file
// loader, VR runtime) and are passed up unchanged; the core never retries.
var (
	ErrShaderCompile = errors.New("oriel: shader compile failed")
	ErrFileNotFound  = errors.New("oriel: file not found")
	ErrNoRuntime     = errors.New("oriel: VR runtime not available")
	ErrNoHMD         = errors.New("oriel: no headset connected")
)

// ShaderError describes a failed shader build. It matches ErrShaderCompile
// with errors.Is.
type ShaderError struct {
	Key ShaderKey
	Log string
	Err error
}

func (e *ShaderError) Error() string {
	if e.Log != "" {
		return fmt.Sprintf("shader %q: %v\n%s", e.Key, e.Err, e.Log)
	}
	return fmt.Sprintf("shader %q: %v", e.Key, e.Err)
}

func (e *ShaderError) Unwrap() []error {
	return []error{ErrShaderCompile, e.Err}
}
