package oriel

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func captureLogs(t *testing.T, level slog.Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})))
	t.Cleanup(func() { SetLogger(nil) })
	return &buf
}

func TestDefaultLoggerIsSilent(t *testing.T) {
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("default logger should discard everything")
	}
}

func TestShaderBuildIsLogged(t *testing.T) {
	buf := captureLogs(t, slog.LevelInfo)
	reg := NewShaderRegistry(&fakeCompiler{}, builtinSources())
	if _, err := reg.Program(ShaderUV); err != nil {
		t.Fatal(err)
	}
	if out := buf.String(); !strings.Contains(out, "shader compiled") || !strings.Contains(out, "key=uv") {
		t.Errorf("log = %q", out)
	}
}

func TestTrackingLossIsLogged(t *testing.T) {
	buf := captureLogs(t, slog.LevelWarn)
	_, _, nodes := trackedScene(t, "hand")
	tr := &fakeTracker{poses: map[int]mgl32.Mat4{2: mgl32.Ident4()}}
	pt := NewPoseTracker(tr)
	pt.Register(nodes[0], 2)
	pt.Update()
	delete(tr.poses, 2)
	pt.Update()

	if out := buf.String(); !strings.Contains(out, "tracking lost") || !strings.Contains(out, "node=hand") {
		t.Errorf("log = %q", out)
	}
}

func TestDebugFrameStats(t *testing.T) {
	buf := captureLogs(t, slog.LevelDebug)
	s := NewScene()
	s.SetDebugMode(true)
	t.Cleanup(func() { s.SetDebugMode(false) })
	s.Root().AddChild(NewMeshNode("n", &fakeMesh{}, nil), false)

	rc := RenderContext{Device: newRecordingBinder(), Shaders: NewShaderRegistry(&fakeCompiler{}, builtinSources())}
	if err := s.Render(rc, View{View: mgl32.Ident4(), Projection: mgl32.Ident4()}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "msg=frame") || !strings.Contains(out, "drawCalls=1") {
		t.Errorf("log = %q", out)
	}
}
