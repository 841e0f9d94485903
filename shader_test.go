package oriel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShaderRegistryCompilesOnce(t *testing.T) {
	c := &fakeCompiler{}
	reg := NewShaderRegistry(c, builtinSources())

	p1, err := reg.Program(ShaderStandard)
	require.NoError(t, err)
	p2, err := reg.Program(ShaderStandard)
	require.NoError(t, err)

	assert.Same(t, p1, p2)
	assert.Equal(t, 1, c.compiled[ShaderStandard])
	assert.Equal(t, 1, reg.Len())
}

func TestShaderRegistryMissingSource(t *testing.T) {
	reg := NewShaderRegistry(&fakeCompiler{}, MapLoader{})
	_, err := reg.Program("nope")
	assert.ErrorIs(t, err, ErrFileNotFound)
	assert.Equal(t, 0, reg.Len())
}

func TestShaderRegistryCompileError(t *testing.T) {
	cause := errors.New("line 3: syntax error")
	reg := NewShaderRegistry(&fakeCompiler{fail: cause}, builtinSources())

	_, err := reg.Program(ShaderUV)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrShaderCompile)
	assert.ErrorIs(t, err, cause)

	var se *ShaderError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ShaderUV, se.Key)
}

func TestShaderRegistryKeepsBackendShaderError(t *testing.T) {
	backend := &ShaderError{Key: ShaderUV, Log: "bad token", Err: errors.New("compile")}
	reg := NewShaderRegistry(&fakeCompiler{fail: backend}, builtinSources())

	_, err := reg.Program(ShaderUV)
	var se *ShaderError
	require.ErrorAs(t, err, &se)
	assert.Same(t, backend, se)
	assert.Contains(t, err.Error(), "bad token")
}

func TestShaderRegistrySetSource(t *testing.T) {
	c := &fakeCompiler{}
	reg := NewShaderRegistry(c, MapLoader{"shaders/toon.kage": "toon"})
	reg.SetSource("toon", "shaders/toon.kage")

	_, err := reg.Program("toon")
	require.NoError(t, err)
	assert.Equal(t, 1, c.compiled["toon"])
}

func TestShaderRegistryClose(t *testing.T) {
	c := &fakeCompiler{}
	reg := NewShaderRegistry(c, builtinSources())

	p, err := reg.Program(ShaderCheckerboard)
	require.NoError(t, err)
	reg.Close()

	assert.True(t, p.(*fakeProgram).disposed)
	assert.Equal(t, 0, reg.Len())

	p2, err := reg.Program(ShaderCheckerboard)
	require.NoError(t, err)
	assert.NotSame(t, p, p2)
	assert.Equal(t, 2, c.compiled[ShaderCheckerboard])
}
