package birch

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// RunConfig configures Run.
type RunConfig struct {
	Title         string
	Width, Height int
	// ShowFPS prints the current FPS and TPS in the top-left corner.
	ShowFPS bool
	// ScreenshotDir receives PNGs queued with Game.Screenshot.
	// Defaults to DefaultScreenshotDir.
	ScreenshotDir string
	// Renderer settings. Width and Height default to the window size.
	Config Config
}

// Run opens a window and drives scene with an Ebitengine game loop until the
// window closes. Each tick calls Scene.Update; each frame renders through an
// EbitenBackend.
func Run(scene *Scene, cfg RunConfig) error {
	g, err := NewGame(scene, cfg)
	if err != nil {
		return err
	}
	return g.Run()
}

// Game adapts a Scene and Renderer to ebiten.Game. Use it directly to embed
// birch in an existing Ebitengine loop.
type Game struct {
	Scene    *Scene
	Renderer *Renderer
	Backend  *EbitenBackend

	title         string
	width, height int
	background    color.RGBA
	fps           *fpsCounter

	shotDir string
	shots   []string
	script  *FrameScript
}

// NewGame creates the backend and renderer for scene.
func NewGame(scene *Scene, cfg RunConfig) (*Game, error) {
	rc := cfg.Config
	if rc.Width == 0 {
		rc.Width = cfg.Width
	}
	if rc.Height == 0 {
		rc.Height = cfg.Height
	}
	backend := NewEbitenBackend()
	r, err := NewRenderer(backend, rc)
	if err != nil {
		return nil, err
	}
	rc = r.Config()
	g := &Game{
		Scene:      scene,
		Renderer:   r,
		Backend:    backend,
		title:      cfg.Title,
		width:      rc.Width,
		height:     rc.Height,
		background: rgbaOf(rc.BackgroundColor),
		shotDir:    cfg.ScreenshotDir,
	}
	if g.shotDir == "" {
		g.shotDir = DefaultScreenshotDir
	}
	if cfg.ShowFPS {
		g.fps = &fpsCounter{}
	}
	return g, nil
}

// Run opens the window and blocks until it closes. Textures can be added
// to g.Renderer.Textures between NewGame and Run.
func (g *Game) Run() error {
	if g.title != "" {
		ebiten.SetWindowTitle(g.title)
	}
	ebiten.SetWindowSize(g.width, g.height)
	return ebiten.RunGame(g)
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	dt := float32(1.0 / float64(ebiten.TPS()))
	if g.script != nil {
		g.script.step(g.Scene, g.Screenshot)
	}
	g.Scene.Update(dt)
	if g.fps != nil {
		g.fps.update(dt)
	}
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.background)
	g.Backend.SetTarget(screen)
	g.Backend.ResetState()
	g.Renderer.Render(g.Scene)
	g.flushScreenshots(screen)
	if g.fps != nil {
		ebitenutil.DebugPrint(screen, g.fps.text)
	}
}

// Layout implements ebiten.Game. The logical screen keeps the configured
// size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}

// fpsCounter refreshes its text about twice a second.
type fpsCounter struct {
	elapsed float32
	text    string
}

func (f *fpsCounter) update(dt float32) {
	f.elapsed += dt
	if f.text != "" && f.elapsed < 0.5 {
		return
	}
	f.elapsed = 0
	f.text = fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS())
}

func rgbaOf(rgb uint32) color.RGBA {
	return color.RGBA{R: uint8(rgb >> 16), G: uint8(rgb >> 8), B: uint8(rgb), A: 0xff}
}
