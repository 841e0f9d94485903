package oriel

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// fakeMesh counts draws and optionally records them into a shared log.
type fakeMesh struct {
	name  string
	draws int
	log   *[]string
	err   error
	box   AABB
}

func (m *fakeMesh) Draw() error {
	m.draws++
	if m.log != nil {
		*m.log = append(*m.log, "draw "+m.name)
	}
	return m.err
}

func (m *fakeMesh) Bounds() AABB { return m.box }

type fakeProgram struct {
	key      ShaderKey
	disposed bool
}

func (p *fakeProgram) Dispose() { p.disposed = true }

// fakeCompiler compiles any source into a fakeProgram.
type fakeCompiler struct {
	compiled map[ShaderKey]int
	fail     error
}

func (c *fakeCompiler) Compile(key ShaderKey, source string) (Program, error) {
	if c.fail != nil {
		return nil, c.fail
	}
	if c.compiled == nil {
		c.compiled = make(map[ShaderKey]int)
	}
	c.compiled[key]++
	return &fakeProgram{key: key}, nil
}

// builtinSources maps every built-in shader key to a dummy source.
func builtinSources() MapLoader {
	return MapLoader{
		"standard.kage":     "standard",
		"uv.kage":           "uv",
		"checkerboard.kage": "checkerboard",
	}
}

// recordingBinder is a Device that records every call.
type recordingBinder struct {
	calls    []string
	uniforms map[string]any
	units    map[int]Texture
	states   []RasterizerState
	bound    []ShaderKey
	failOn   string
}

func newRecordingBinder() *recordingBinder {
	return &recordingBinder{uniforms: make(map[string]any), units: make(map[int]Texture)}
}

func (b *recordingBinder) Bind(p Program) error {
	fp := p.(*fakeProgram)
	b.bound = append(b.bound, fp.key)
	b.calls = append(b.calls, "bind "+string(fp.key))
	return nil
}

func (b *recordingBinder) SetUniform(name string, value any) error {
	if name == b.failOn {
		return fmt.Errorf("rejected %s", name)
	}
	b.uniforms[name] = value
	b.calls = append(b.calls, "uniform "+name)
	return nil
}

func (b *recordingBinder) SetTextureUnit(unit int, tex Texture) error {
	b.units[unit] = tex
	b.calls = append(b.calls, fmt.Sprintf("texture %d", unit))
	return nil
}

func (b *recordingBinder) ApplyRasterizer(s RasterizerState) error {
	b.states = append(b.states, s)
	b.calls = append(b.calls, "rasterizer")
	return nil
}

type fakeTexture struct{ id uint32 }

func (t fakeTexture) ID() uint32  { return t.id }
func (t fakeTexture) Width() int  { return 1 }
func (t fakeTexture) Height() int { return 1 }

// fakeTracker reports fixed poses and logs every call.
type fakeTracker struct {
	log     *[]string
	poses   map[int]mgl32.Mat4
	roles   map[DeviceRole]int
	ipd     float32
	pollErr error
	waitErr error
	onWait  func()
	submits [2]int
}

func (f *fakeTracker) record(s string) {
	if f.log != nil {
		*f.log = append(*f.log, s)
	}
}

func (f *fakeTracker) HeadToEyeTransform(eye Eye) mgl32.Mat4 {
	x := f.ipd / 2
	if eye == EyeLeft {
		x = -x
	}
	return mgl32.Translate3D(x, 0, 0)
}

func (f *fakeTracker) ProjectionRaw(eye Eye, near, far float32) mgl32.Mat4 {
	return mgl32.Frustum(-near, near, -near, near, near, far)
}

func (f *fakeTracker) PollPoses(dst *PoseSnapshot) error {
	f.record("poll")
	if f.pollErr != nil {
		return f.pollErr
	}
	for i, m := range f.poses {
		dst.Poses[i] = DevicePose{Valid: true, Matrix: m}
	}
	return nil
}

func (f *fakeTracker) SubmitFrame(eye Eye, frame Texture) error {
	f.record("submit " + eye.String())
	f.submits[eye]++
	return nil
}

func (f *fakeTracker) WaitForRunningStart() error {
	f.record("wait")
	if f.onWait != nil {
		f.onWait()
	}
	return f.waitErr
}

func (f *fakeTracker) DeviceForRole(role DeviceRole) (int, bool) {
	i, ok := f.roles[role]
	return i, ok
}
