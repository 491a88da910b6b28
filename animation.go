package birch

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// tweenChannel moves one value from its start to its target. Float channels
// write dst directly; color channels blend the RGB bytes of from and to into
// color.
type tweenChannel struct {
	dst      *float64
	from, to float64

	color          *uint32
	fromRGB, toRGB uint32
}

func (c *tweenChannel) apply(t float64) {
	if c.color != nil {
		*c.color = lerpRGB(c.fromRGB, c.toRGB, t)
		return
	}
	*c.dst = c.from + (c.to-c.from)*t
}

// TweenGroup eases any number of renderer fields over one shared clock.
// Build one with NewTweenGroup or a Tween* helper, then hand it to
// Scene.AddTween or call Update yourself. The group stops early when its
// owner goes away (a disposed node or a light removed from its manager).
type TweenGroup struct {
	clock    *gween.Tween
	channels []tweenChannel
	alive    func() bool
	onDone   func()
	Done     bool
}

// NewTweenGroup returns an empty group that runs for duration seconds.
func NewTweenGroup(duration float32, fn ease.TweenFunc) *TweenGroup {
	if fn == nil {
		fn = ease.Linear
	}
	return &TweenGroup{clock: gween.New(0, 1, duration, fn)}
}

// Float adds a channel easing *dst from its current value to to.
func (g *TweenGroup) Float(dst *float64, to float64) *TweenGroup {
	g.channels = append(g.channels, tweenChannel{dst: dst, from: *dst, to: to})
	return g
}

// Color adds a channel blending the 0xRRGGBB value at dst toward to.
func (g *TweenGroup) Color(dst *uint32, to uint32) *TweenGroup {
	g.channels = append(g.channels, tweenChannel{color: dst, fromRGB: *dst & 0xffffff, toRGB: to & 0xffffff})
	return g
}

// While stops the group as soon as alive reports false.
func (g *TweenGroup) While(alive func() bool) *TweenGroup {
	g.alive = alive
	return g
}

// OnDone registers fn to run once when the group finishes normally.
func (g *TweenGroup) OnDone(fn func()) *TweenGroup {
	g.onDone = fn
	return g
}

// Update advances the clock by dt seconds and writes every channel.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if g.alive != nil && !g.alive() {
		g.Done = true
		return
	}
	t, finished := g.clock.Update(dt)
	for i := range g.channels {
		g.channels[i].apply(float64(t))
	}
	if finished {
		g.Done = true
		if g.onDone != nil {
			g.onDone()
		}
	}
}

func nodeAlive(n *Node) func() bool {
	return func() bool { return !n.IsDisposed() }
}

// TweenPosition moves node to (toX, toY).
func TweenPosition(node *Node, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return NewTweenGroup(duration, fn).
		Float(&node.X, toX).
		Float(&node.Y, toY).
		While(nodeAlive(node))
}

// TweenScale scales node to (toSX, toSY).
func TweenScale(node *Node, toSX, toSY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return NewTweenGroup(duration, fn).
		Float(&node.ScaleX, toSX).
		Float(&node.ScaleY, toSY).
		While(nodeAlive(node))
}

// TweenRotation turns node to the angle to, in radians.
func TweenRotation(node *Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return NewTweenGroup(duration, fn).Float(&node.Rotation, to).While(nodeAlive(node))
}

// TweenAlpha fades node to alpha to.
func TweenAlpha(node *Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return NewTweenGroup(duration, fn).Float(&node.Alpha, to).While(nodeAlive(node))
}

// TweenCornerAlpha fades the four corner alphas of node, in TL, BL, BR, TR
// order.
func TweenCornerAlpha(node *Node, to [4]float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := NewTweenGroup(duration, fn).While(nodeAlive(node))
	for i := range to {
		g.Float(&node.CornerAlpha[i], to[i])
	}
	return g
}

// TweenTint blends the four corner tints of node toward rgb.
func TweenTint(node *Node, rgb uint32, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := NewTweenGroup(duration, fn).While(nodeAlive(node))
	for i := range node.Tint {
		g.Color(&node.Tint[i], rgb)
	}
	return g
}

// LightTween lists the light fields a TweenLight changes. Nil fields are
// left alone.
type LightTween struct {
	X, Y      *float64
	Radius    *float64
	Intensity *float64
	Color     *uint32
}

// TweenLight eases the fields of l named in to. With a non-nil manager the
// group stops once l is removed from it.
func TweenLight(l *Light, lm *LightManager, to LightTween, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := NewTweenGroup(duration, fn)
	if to.X != nil {
		g.Float(&l.X, *to.X)
	}
	if to.Y != nil {
		g.Float(&l.Y, *to.Y)
	}
	if to.Radius != nil {
		g.Float(&l.Radius, *to.Radius)
	}
	if to.Intensity != nil {
		g.Float(&l.Intensity, *to.Intensity)
	}
	if to.Color != nil {
		g.Color(&l.Color, *to.Color)
	}
	if lm != nil {
		g.While(func() bool { return lm.Has(l) })
	}
	return g
}

// TweenRopeColors blends every per-point color of rope toward colors,
// point by point. The rope's color slice is grown to len(colors) first,
// filling new entries with white.
func TweenRopeColors(rope *Rope, colors []uint32, duration float32, fn ease.TweenFunc) *TweenGroup {
	for len(rope.Colors) < len(colors) {
		rope.Colors = append(rope.Colors, 0xffffff)
	}
	g := NewTweenGroup(duration, fn)
	for i, c := range colors {
		g.Color(&rope.Colors[i], c)
	}
	return g
}

// lerpRGB blends two 0xRRGGBB colors per channel, rounding to nearest.
func lerpRGB(a, b uint32, t float64) uint32 {
	var out uint32
	for shift := 0; shift <= 16; shift += 8 {
		ca := float64((a >> shift) & 0xff)
		cb := float64((b >> shift) & 0xff)
		v := ca + (cb-ca)*t + 0.5
		if v < 0 {
			v = 0
		} else if v > 255 {
			v = 255
		}
		out |= uint32(v) << shift
	}
	return out
}
