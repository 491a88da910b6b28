package birch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCameraCullLights(t *testing.T) {
	cam := NewCamera(Rect{Width: 800, Height: 600})

	inside := NewLight(100, 100, 50, 1)
	outside := NewLight(2000, 2000, 50, 1)
	edge := NewLight(850, 300, 60, 1)
	hidden := NewLight(100, 100, 50, 1)
	hidden.Visible = false
	dark := NewLight(100, 100, 50, 0)

	got := cam.CullLights([]*Light{inside, outside, edge, hidden, dark}, nil)
	assert.Equal(t, []*Light{inside, edge}, got)
}

func TestCameraCullLightsScrollFactor(t *testing.T) {
	cam := NewCamera(Rect{Width: 800, Height: 600})
	cam.ScrollX = 1000
	cam.PreRender()

	world := NewLight(100, 100, 50, 1)
	pinned := NewLight(100, 100, 50, 1)
	pinned.ScrollFactorX, pinned.ScrollFactorY = 0, 0

	got := cam.CullLights([]*Light{world, pinned}, nil)
	assert.Equal(t, []*Light{pinned}, got)
}

func TestLightsForSortsByDistance(t *testing.T) {
	cam := NewCamera(Rect{Width: 800, Height: 600})
	lm := NewLightManager(10)

	far := lm.AddLight(NewLight(0, 0, 50, 1))
	center := lm.AddLight(NewLight(400, 300, 50, 1))
	near := lm.AddLight(NewLight(500, 300, 50, 1))

	got := lm.LightsFor(cam, nil)
	assert.Equal(t, []*Light{center, near, far}, got)
}

func TestLightsForCapsAndWarnsOnce(t *testing.T) {
	cam := NewCamera(Rect{Width: 800, Height: 600})
	lm := NewLightManager(2)
	lm.AddLight(NewLight(0, 0, 50, 1))
	a := lm.AddLight(NewLight(400, 300, 50, 1))
	b := lm.AddLight(NewLight(450, 300, 50, 1))

	got := lm.LightsFor(cam, nil)
	assert.Equal(t, []*Light{a, b}, got)
	assert.True(t, lm.warnedCap)

	// Reuses dst without keeping stale entries.
	got = lm.LightsFor(cam, got[:0])
	assert.Len(t, got, 2)
}

func TestLightManagerAddRemove(t *testing.T) {
	lm := NewLightManager(0)
	assert.Equal(t, DefaultMaxLights, lm.MaxLights)
	assert.False(t, lm.Enabled)
	assert.True(t, lm.Enable().Enabled)

	a := lm.AddLight(NewLight(0, 0, 10, 1))
	b := lm.AddLight(NewLight(0, 0, 10, 1))
	lm.RemoveLight(a)
	assert.Equal(t, []*Light{b}, lm.Lights())
	lm.ClearLights()
	assert.Empty(t, lm.Lights())
}

func TestLightFollowsTarget(t *testing.T) {
	s := NewScene()
	group := NewContainer("group")
	group.SetPosition(10, 20)
	s.Root().AddChild(group)
	target := NewContainer("target")
	target.SetPosition(40, 40)
	group.AddChild(target)

	l := s.Lights.AddLight(NewLight(0, 0, 10, 1))
	l.Target = target
	l.OffsetX = 5

	s.Update(0.016)
	assert.InDelta(t, 55, l.X, 1e-9)
	assert.InDelta(t, 60, l.Y, 1e-9)

	target.Dispose()
	s.Update(0.016)
	assert.Nil(t, l.Target)
}

func TestUploadLights(t *testing.T) {
	_, fb, ps := newTestManager(t, 12, "Light")
	p := ps[0]

	cam := NewCamera(Rect{X: 10, Width: 800, Height: 600})
	cam.ScrollX = 100
	cam.PreRender()

	world := NewLight(300, 100, 50, 0.5)
	world.Color = 0xff0000
	pinned := NewLight(300, 100, 40, 1)
	pinned.ScrollFactorX, pinned.ScrollFactorY = 0, 0

	var scratch Matrix
	uploadLights(p, cam, 0x808080, []*Light{world, pinned}, &scratch)

	u := fb.uniforms[p.program]
	assert.Equal(t, []float32{10, 0, 0, 1}, u["uCamera"])
	assert.InDeltaSlice(t, []float32{128.0 / 255, 128.0 / 255, 128.0 / 255}, u["uAmbientLightColor"], 1e-6)
	assert.Equal(t, []float32{2}, u["uLightCount"])

	// Screen space: the viewport offset is included.
	assert.Equal(t, []float32{210, 100}, u["uLights[0].position"])
	assert.Equal(t, []float32{1, 0, 0}, u["uLights[0].color"])
	assert.Equal(t, []float32{50}, u["uLights[0].radius"])
	assert.Equal(t, []float32{0.5}, u["uLights[0].intensity"])
	assert.Equal(t, []float32{310, 100}, u["uLights[1].position"])
}

func TestRenderCapsLightsByConfig(t *testing.T) {
	fb := newFakeBackend(4)
	r, err := NewRenderer(fb, Config{BatchSize: 16, MaxLights: 1})
	require.NoError(t, err)
	s, _ := testSceneCamera()
	s.Lights.Enable()
	s.Lights.AddLight(NewLight(400, 300, 50, 1))
	s.Lights.AddLight(NewLight(410, 300, 50, 1))

	tex := addTexture(t, r, "hero", 10, 10)
	sp := NewSprite("hero", tex.Base())
	sp.SetPosition(400, 300)
	sp.Pipeline = LightPipeline
	sp.NormalMap = tex
	s.Root().AddChild(sp)
	r.Render(s)

	require.Len(t, fb.draws, 1)
	assert.Equal(t, LightPipeline, fb.draws[0].program)
	assert.Equal(t, []float32{1}, fb.draws[0].uniforms["uLightCount"])
	assert.Equal(t, DefaultMaxLights, s.Lights.MaxLights, "the config cap applies per frame only")
}
