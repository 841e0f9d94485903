package oriel

import (
	"errors"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stereoFixture is a scene with a head camera, one tracked hand and one
// cube, sharing a single call log with the tracker and the cube mesh.
type stereoFixture struct {
	scene   *Scene
	hand    *Node
	cube    *fakeMesh
	tracker *fakeTracker
	loop    *FrameLoop
	log     []string
}

func newStereoFixture(t *testing.T) *stereoFixture {
	t.Helper()
	f := &stereoFixture{scene: NewScene()}
	f.tracker = &fakeTracker{
		log:   &f.log,
		ipd:   0.064,
		poses: map[int]mgl32.Mat4{1: mgl32.Translate3D(0.3, 1, -0.2)},
	}

	head := NewNode("head")
	head.SetCamera(NewCamera(Rect{Width: 100, Height: 100}))
	require.NoError(t, f.scene.Root().AddChild(head, false))

	f.hand = NewNode("hand")
	require.NoError(t, f.scene.Root().AddChild(f.hand, false))

	f.cube = &fakeMesh{name: "cube", log: &f.log}
	cube := NewMeshNode("cube", f.cube, StandardMaterial(ColorWhite))
	require.NoError(t, f.scene.Root().AddChild(cube, false))
	require.NoError(t, cube.AddBehavior(NewBehaviorFunc(func(n *Node, dt float64) {
		f.log = append(f.log, "update")
	})))

	rc := RenderContext{
		Device:  newRecordingBinder(),
		Shaders: NewShaderRegistry(&fakeCompiler{}, builtinSources()),
	}
	f.loop = NewFrameLoop(f.scene, rc, f.tracker)
	require.NoError(t, f.loop.Poses.Register(f.hand, 1))
	return f
}

func TestFrameLoopStereoOrdering(t *testing.T) {
	f := newStereoFixture(t)
	require.NoError(t, f.loop.Step(1.0/90))

	assert.Equal(t, []string{
		"update",
		"wait",
		"poll",
		"draw cube",
		"submit left",
		"draw cube",
		"submit right",
	}, f.log)
	assert.Equal(t, uint64(1), f.loop.Frames())
	assert.Equal(t, [2]int{1, 1}, f.tracker.submits)
	assert.InDelta(t, 0.3, f.hand.SceneSpace().Translation[0], 1e-5)
}

func TestFrameLoopPosesAppliedBeforeRender(t *testing.T) {
	f := newStereoFixture(t)
	var seen mgl32.Vec3
	f.cube.log = nil
	f.tracker.onWait = func() {
		// Still the previous pose while waiting.
		seen = f.hand.SceneSpace().Translation
	}
	require.NoError(t, f.loop.Step(1.0/90))
	assert.Equal(t, mgl32.Vec3{}, seen)
	assert.InDelta(t, 1, f.hand.SceneSpace().Translation[1], 1e-5)
}

func TestFrameLoopEyeViewsDiffer(t *testing.T) {
	f := newStereoFixture(t)
	dev := f.loop.Render.Device.(*recordingBinder)
	var views []mgl32.Mat4
	f.cube.log = nil
	f.loop.Render.Device = &viewCapture{recordingBinder: dev, views: &views}
	require.NoError(t, f.loop.Step(1.0/90))

	require.Len(t, views, 2)
	cam := f.scene.MainCamera()
	assert.Equal(t, EyeView(cam, EyeLeft, f.tracker).View, views[0])
	assert.Equal(t, EyeView(cam, EyeRight, f.tracker).View, views[1])
	assert.NotEqual(t, views[0], views[1])
}

// viewCapture records every u_view pushed to the device.
type viewCapture struct {
	*recordingBinder
	views *[]mgl32.Mat4
}

func (v *viewCapture) SetUniform(name string, value any) error {
	if name == UniformView {
		*v.views = append(*v.views, value.(mgl32.Mat4))
	}
	return v.recordingBinder.SetUniform(name, value)
}

func TestFrameLoopRunningStartOverrun(t *testing.T) {
	f := newStereoFixture(t)
	base := time.Unix(0, 0)
	var calls int
	f.loop.now = func() time.Time {
		calls++
		if calls%2 == 1 {
			return base
		}
		return base.Add(30 * time.Millisecond)
	}

	require.NoError(t, f.loop.Step(1.0/90))
	assert.Equal(t, 30*time.Millisecond, f.loop.LastWait())
	assert.Equal(t, 1, f.loop.Overruns())

	f.loop.MaxRunningStartWait = time.Second
	require.NoError(t, f.loop.Step(1.0/90))
	assert.Equal(t, 1, f.loop.Overruns(), "a wait under budget is not an overrun")
	assert.Equal(t, uint64(2), f.loop.Frames())
}

func TestFrameLoopWaitError(t *testing.T) {
	f := newStereoFixture(t)
	f.tracker.waitErr = ErrNoRuntime

	err := f.loop.Step(1.0/90)
	require.ErrorIs(t, err, ErrNoRuntime)
	assert.Equal(t, []string{"update", "wait"}, f.log)
	assert.Equal(t, uint64(0), f.loop.Frames())
}

func TestFrameLoopPollErrorSkipsRender(t *testing.T) {
	f := newStereoFixture(t)
	f.tracker.pollErr = errors.New("usb unplugged")

	require.Error(t, f.loop.Step(1.0/90))
	assert.NotContains(t, f.log, "draw cube")
	assert.Equal(t, 0, f.cube.draws)
}

// eyeImages hands out one fake texture per eye.
type eyeImages struct {
	begun []Eye
	fail  error
}

func (e *eyeImages) BeginEye(eye Eye) (Texture, error) {
	if e.fail != nil {
		return nil, e.fail
	}
	e.begun = append(e.begun, eye)
	return fakeTexture{id: uint32(eye) + 100}, nil
}

func TestFrameLoopEyeTargets(t *testing.T) {
	f := newStereoFixture(t)
	targets := &eyeImages{}
	f.loop.Targets = targets

	require.NoError(t, f.loop.Step(1.0/90))
	assert.Equal(t, []Eye{EyeLeft, EyeRight}, targets.begun)

	targets.fail = errors.New("lost device")
	err := f.loop.Step(1.0/90)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin left eye")
}

func TestFrameLoopStereoNeedsCamera(t *testing.T) {
	s := NewScene()
	rc := RenderContext{Device: newRecordingBinder(), Shaders: NewShaderRegistry(&fakeCompiler{}, builtinSources())}
	loop := NewFrameLoop(s, rc, &fakeTracker{})
	require.Error(t, loop.Step(0.01))
}

func TestFrameLoopMono(t *testing.T) {
	s := NewScene()
	for _, name := range []string{"main", "minimap"} {
		n := NewNode(name)
		n.SetCamera(NewCamera(Rect{Width: 10, Height: 10}))
		require.NoError(t, s.Root().AddChild(n, false))
	}
	mesh := &fakeMesh{name: "cube"}
	require.NoError(t, s.Root().AddChild(NewMeshNode("cube", mesh, nil), false))

	rc := RenderContext{Device: newRecordingBinder(), Shaders: NewShaderRegistry(&fakeCompiler{}, builtinSources())}
	loop := NewFrameLoop(s, rc, nil)
	assert.Nil(t, loop.Poses)

	require.NoError(t, loop.Step(0.01))
	assert.Equal(t, 2, mesh.draws, "one draw per camera")
	assert.Equal(t, time.Duration(0), loop.LastWait())
}
