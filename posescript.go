package oriel

import (
	"encoding/json"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// poseStep is a single frame range in a pose script.
type poseStep struct {
	Frames int          `json:"frames"`
	Poses  []scriptPose `json:"poses"`
}

// scriptPose places one device for the frames of its step. Omitted devices
// are untracked.
type scriptPose struct {
	Device   int        `json:"device"`
	Role     string     `json:"role,omitempty"`
	Position [3]float32 `json:"position"`
	// Euler angles in degrees, applied yaw (Y), pitch (X), roll (Z).
	Rotation [3]float32 `json:"rotation,omitempty"`
}

// poseScript is the top-level JSON structure for a pose script.
type poseScript struct {
	IPD   float32    `json:"ipd,omitempty"`
	Loop  bool       `json:"loop,omitempty"`
	Steps []poseStep `json:"steps"`
}

// ScriptedTracker is a Tracker that replays poses from a JSON script, one
// step per frame range. It renders symmetric per-eye projections and is used
// for headless runs and demos without a headset.
//
//	{"ipd": 0.064, "steps": [
//	  {"frames": 60, "poses": [{"device": 0, "role": "head", "position": [0, 1.7, 0]}]},
//	  {"frames": 30, "poses": []}
//	]}
type ScriptedTracker struct {
	// FovY is the vertical field of view in degrees used by ProjectionRaw.
	FovY float32
	// Aspect is the per-eye aspect ratio used by ProjectionRaw.
	Aspect float32

	steps     []poseStep
	loop      bool
	ipd       float32
	cursor    int
	remaining int
	done      bool

	roles     map[DeviceRole]int
	submitted [2]int
	waits     int
}

// LoadPoseScript parses a JSON pose script and returns a tracker replaying it.
func LoadPoseScript(jsonData []byte) (*ScriptedTracker, error) {
	var script poseScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse pose script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse pose script: no steps")
	}
	roles := make(map[DeviceRole]int)
	for i, st := range script.Steps {
		for _, p := range st.Poses {
			if p.Device < 0 || p.Device >= MaxTrackedDevices {
				return nil, fmt.Errorf("parse pose script: step %d: device %d: %w", i, p.Device, ErrDeviceIndex)
			}
			if p.Role == "" {
				continue
			}
			role, ok := parseRole(p.Role)
			if !ok {
				return nil, fmt.Errorf("parse pose script: step %d: unknown role %q", i, p.Role)
			}
			roles[role] = p.Device
		}
	}
	ipd := script.IPD
	if ipd == 0 {
		ipd = 0.064
	}
	return &ScriptedTracker{
		FovY:   90,
		Aspect: 1,
		steps:  script.Steps,
		loop:   script.Loop,
		ipd:    ipd,
		roles:  roles,
	}, nil
}

func parseRole(s string) (DeviceRole, bool) {
	for r := RoleHead; r <= RoleGeneric; r++ {
		if r.String() == s {
			return r, true
		}
	}
	return 0, false
}

// Done reports whether every step of a non-looping script has been replayed.
func (t *ScriptedTracker) Done() bool {
	return t.done
}

// Submitted returns how many frames were submitted for eye.
func (t *ScriptedTracker) Submitted(eye Eye) int {
	return t.submitted[eye]
}

// Waits returns how many times WaitForRunningStart was called.
func (t *ScriptedTracker) Waits() int {
	return t.waits
}

func (t *ScriptedTracker) HeadToEyeTransform(eye Eye) mgl32.Mat4 {
	x := t.ipd / 2
	if eye == EyeLeft {
		x = -x
	}
	return mgl32.Translate3D(x, 0, 0)
}

func (t *ScriptedTracker) ProjectionRaw(eye Eye, near, far float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(t.FovY), t.Aspect, near, far)
}

// PollPoses writes the current step's poses into dst and advances one
// frame. Once a non-looping script ends every device is untracked.
func (t *ScriptedTracker) PollPoses(dst *PoseSnapshot) error {
	dst.Reset()
	if t.done {
		return nil
	}
	if t.remaining == 0 {
		if t.cursor >= len(t.steps) {
			if !t.loop {
				t.done = true
				return nil
			}
			t.cursor = 0
		}
		t.remaining = max(t.steps[t.cursor].Frames, 1)
		t.cursor++
	}
	for _, p := range t.steps[t.cursor-1].Poses {
		rot := mgl32.AnglesToQuat(
			mgl32.DegToRad(p.Rotation[0]),
			mgl32.DegToRad(p.Rotation[1]),
			mgl32.DegToRad(p.Rotation[2]),
			mgl32.YXZ,
		)
		pos := mgl32.Vec3(p.Position)
		dst.Poses[p.Device] = DevicePose{
			Valid:  true,
			Matrix: NewTransform(pos, rot, mgl32.Vec3{1, 1, 1}).ToMatrix(),
		}
	}
	t.remaining--
	return nil
}

func (t *ScriptedTracker) SubmitFrame(eye Eye, frame Texture) error {
	t.submitted[eye]++
	return nil
}

func (t *ScriptedTracker) WaitForRunningStart() error {
	t.waits++
	return nil
}

func (t *ScriptedTracker) DeviceForRole(role DeviceRole) (int, bool) {
	idx, ok := t.roles[role]
	return idx, ok
}

// NullTracker stands in for a missing VR runtime: every call fails with err.
type NullTracker struct {
	Err error
}

// NewNullTracker returns a tracker that reports ErrNoHMD.
func NewNullTracker() NullTracker {
	return NullTracker{Err: ErrNoHMD}
}

func (n NullTracker) HeadToEyeTransform(Eye) mgl32.Mat4 { return mgl32.Ident4() }

func (n NullTracker) ProjectionRaw(_ Eye, near, far float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(DefaultFovY), 1, near, far)
}

func (n NullTracker) PollPoses(*PoseSnapshot) error { return n.Err }
func (n NullTracker) SubmitFrame(Eye, Texture) error { return n.Err }
func (n NullTracker) WaitForRunningStart() error { return n.Err }
func (n NullTracker) DeviceForRole(DeviceRole) (int, bool) { return 0, false }
