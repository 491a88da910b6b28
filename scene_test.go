package birch

import "testing"

func TestNewScene(t *testing.T) {
	s := NewScene()
	if s.root == nil {
		t.Fatal("root should not be nil")
	}
	if s.root.Name != "root" {
		t.Errorf("root.Name = %q, want %q", s.root.Name, "root")
	}
	if s.root.Type != NodeTypeContainer {
		t.Errorf("root.Type = %d, want NodeTypeContainer", s.root.Type)
	}
	if s.Lights == nil || s.Lights.Enabled {
		t.Error("scene lights should exist and start disabled")
	}
}

func TestSceneRoot(t *testing.T) {
	s := NewScene()
	if s.Root() != s.root {
		t.Error("Root() should return the internal root node")
	}
}

func TestSceneSetDebugMode(t *testing.T) {
	s := NewScene()
	s.SetDebugMode(true)
	if !globalDebug {
		t.Error("debug should be true")
	}
	s.SetDebugMode(false)
	if globalDebug {
		t.Error("debug should be false")
	}
}

func TestSceneUpdateOrder(t *testing.T) {
	s := NewScene()
	var got []float32
	s.SetUpdateFunc(func(dt float32) { got = append(got, dt) })
	s.Update(0.25)
	s.Update(0.5)
	if len(got) != 2 || got[0] != 0.25 || got[1] != 0.5 {
		t.Errorf("update callback saw %v, want [0.25 0.5]", got)
	}
}

func TestSceneUpdateAdvancesTileLayers(t *testing.T) {
	s := NewScene()
	l, err := NewTileLayer(1, 1, 16, 16, []uint32{1}, nil)
	if err != nil {
		t.Fatal(err)
	}
	s.AddTileLayer(l)
	s.Update(0.5)
	if l.animElapsed != 500 {
		t.Errorf("animElapsed = %d, want 500", l.animElapsed)
	}
}
