package ebitenrender

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/phanxgames/oriel"
)

func TestBuiltinLoader(t *testing.T) {
	l := BuiltinLoader()
	for _, key := range []oriel.ShaderKey{oriel.ShaderStandard, oriel.ShaderUV, oriel.ShaderCheckerboard} {
		src, err := l.LoadText(string(key) + ".kage")
		if err != nil {
			t.Fatalf("%s: %v", key, err)
		}
		if !strings.Contains(src, "//kage:unit pixels") {
			t.Errorf("%s: missing unit directive", key)
		}
	}
}

func TestFSLoaderMissing(t *testing.T) {
	l := FSLoader{FS: fstest.MapFS{"a.kage": {Data: []byte("package main")}}}
	if _, err := l.LoadText("b.kage"); !errors.Is(err, oriel.ErrFileNotFound) {
		t.Errorf("err = %v, want ErrFileNotFound", err)
	}
	src, err := l.LoadText("a.kage")
	if err != nil || src != "package main" {
		t.Errorf("LoadText = %q, %v", src, err)
	}
}
