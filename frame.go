package oriel

import (
	"fmt"
	"time"
)

// DefaultMaxRunningStartWait is the running-start budget used when a
// FrameLoop has none set: two frames at 90 Hz.
const DefaultMaxRunningStartWait = 22 * time.Millisecond

// EyeTargets is implemented by backends that render each eye into its own
// image. BeginEye directs subsequent draws to eye's image and returns it.
type EyeTargets interface {
	BeginEye(eye Eye) (Texture, error)
}

// FrameLoop sequences one frame:
//
//  1. behaviors and camera animations update
//  2. WaitForRunningStart blocks until the compositor is ready
//  3. poses are polled once and applied to bound nodes
//  4. scene-space transforms are refreshed
//  5. each eye is rendered and submitted
//
// Without a Tracker the loop updates, refreshes and renders every camera.
type FrameLoop struct {
	Scene   *Scene
	Render  RenderContext
	Tracker Tracker
	Poses   *PoseTracker
	// Camera is the head camera for stereo rendering; nil uses the scene's
	// main camera.
	Camera *Camera
	// Targets provides per-eye images; nil renders both eyes into the
	// current target and submits nil frames.
	Targets EyeTargets
	// MaxRunningStartWait is the documented upper bound for the compositor
	// wait. Longer waits are logged, never interrupted.
	MaxRunningStartWait time.Duration

	now      func() time.Time
	lastWait time.Duration
	overruns int
	frames   uint64
}

// NewFrameLoop creates a loop for scene. tracker may be nil for a
// monoscopic loop.
func NewFrameLoop(scene *Scene, rc RenderContext, tracker Tracker) *FrameLoop {
	l := &FrameLoop{
		Scene:               scene,
		Render:              rc,
		Tracker:             tracker,
		MaxRunningStartWait: DefaultMaxRunningStartWait,
		now:                 time.Now,
	}
	if tracker != nil {
		l.Poses = NewPoseTracker(tracker)
	}
	return l
}

// LastWait returns how long the previous WaitForRunningStart blocked.
func (l *FrameLoop) LastWait() time.Duration { return l.lastWait }

// Overruns returns how many frames exceeded MaxRunningStartWait.
func (l *FrameLoop) Overruns() int { return l.overruns }

// Frames returns the number of completed frames.
func (l *FrameLoop) Frames() uint64 { return l.frames }

// Step runs one frame.
func (l *FrameLoop) Step(dt float64) error {
	s := l.Scene
	s.UpdateBehaviors(dt)

	if l.Tracker == nil {
		s.RefreshTransforms()
		if err := s.RenderCameras(l.Render); err != nil {
			return err
		}
		l.frames++
		return nil
	}

	if err := l.waitRunningStart(); err != nil {
		return err
	}
	if l.Poses != nil {
		if err := l.Poses.Update(); err != nil {
			return err
		}
	}
	s.RefreshTransforms()

	cam := l.Camera
	if cam == nil {
		cam = s.MainCamera()
	}
	if cam == nil {
		return fmt.Errorf("stereo frame: no camera in scene")
	}
	for _, eye := range Eyes {
		var target Texture
		if l.Targets != nil {
			t, err := l.Targets.BeginEye(eye)
			if err != nil {
				return fmt.Errorf("begin %s eye: %w", eye, err)
			}
			target = t
		}
		if err := s.Render(l.Render, EyeView(cam, eye, l.Tracker)); err != nil {
			return fmt.Errorf("render %s eye: %w", eye, err)
		}
		if err := l.Tracker.SubmitFrame(eye, target); err != nil {
			return fmt.Errorf("submit %s eye: %w", eye, err)
		}
	}
	l.frames++
	return nil
}

func (l *FrameLoop) waitRunningStart() error {
	now := l.now
	if now == nil {
		now = time.Now
	}
	start := now()
	err := l.Tracker.WaitForRunningStart()
	l.lastWait = now().Sub(start)
	if err != nil {
		return fmt.Errorf("wait for running start: %w", err)
	}
	budget := l.MaxRunningStartWait
	if budget <= 0 {
		budget = DefaultMaxRunningStartWait
	}
	if l.lastWait > budget {
		l.overruns++
		Logger().Warn("running start wait exceeded budget",
			"wait", l.lastWait, "budget", budget, "frame", l.frames)
	}
	return nil
}
