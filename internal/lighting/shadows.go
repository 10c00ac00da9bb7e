package lighting

import (
	"log"
	"math"
	"time"

	"worldgen/internal/config"
	"worldgen/internal/world"
)

const defaultStepSize = 0.1

// Engine casts hourly shadows across a grid and keeps the relations current
// as light blockers come and go.
type Engine struct {
	dirs        [world.Hours]Vec
	stoneHeight float64
	stepSize    float64
}

func NewEngine(mapCfg config.MapConfig, cfg config.LightingConfig) *Engine {
	eq := 0.0
	if mapCfg.PlanetTile != nil {
		eq = mapCfg.PlanetTile.EquatorOffset
	}
	step := cfg.StepSize
	if step <= 0 {
		step = defaultStepSize
	}
	return &Engine{
		dirs:        Directions(eq),
		stoneHeight: mapCfg.StoneHeight,
		stepSize:    step,
	}
}

// IsCaster reports whether t throws shadows: a light blocker next to open
// ground, or a roofed tile that is not stone.
func IsCaster(g *world.Grid, t *world.Tile) bool {
	if t.Roof && !t.Terrain.IsStoneEquivalent() {
		return true
	}
	if !t.BlocksLight() {
		return false
	}
	for _, nb := range g.Surrounding(t) {
		if nb != nil && !nb.BlocksLight() {
			return true
		}
	}
	return false
}

// ComputeAll drops every relation on the grid and casts from every caster.
func (e *Engine) ComputeAll(g *world.Grid) {
	start := time.Now()
	g.ResetLight()
	casters := 0
	for _, t := range g.Tiles() {
		if !IsCaster(g, t) {
			continue
		}
		e.cast(g, t)
		casters++
	}
	log.Printf("shadows cast from %d tiles in %s", casters, time.Since(start).Round(time.Millisecond))
}

// Recompute refreshes the shadows affected by a change at t: t itself, the
// casters that shadowed it, those whose shadow it cut short, and its
// neighbours. Everything else is left untouched.
func (e *Engine) Recompute(g *world.Grid, t *world.Tile) {
	affected := map[int]*world.Tile{g.IndexOf(t): t}
	if t.Light != nil {
		for h := 0; h < world.Hours; h++ {
			for ci := range t.Light.ShadowsFrom[h] {
				affected[ci] = g.TileAt(ci)
			}
			for ci := range t.Light.Truncates[h] {
				affected[ci] = g.TileAt(ci)
			}
		}
	}
	for _, nb := range g.Surrounding(t) {
		if nb != nil {
			affected[g.IndexOf(nb)] = nb
		}
	}

	for _, c := range affected {
		g.ClearCast(c)
	}
	for _, c := range affected {
		if IsCaster(g, c) {
			e.cast(g, c)
		}
	}
}

// cast marches every hour's shadow away from caster. The range grows with
// the caster's height above the stone threshold and with the distance from
// noon. The first light blocker ends the march.
func (e *Engine) cast(g *world.Grid, caster *world.Tile) {
	n := float64(g.Size())
	ox, oy := float64(caster.X)+0.5, float64(caster.Y)+0.5
	heightFactor := 1 + caster.Height - e.stoneHeight
	for h := 0; h < world.Hours; h++ {
		b := ShadowBrightness(h)
		if b >= 1 {
			continue
		}
		dir := e.dirs[h]
		maxDist := dir.Len()*heightFactor*5 + math.Pow(float64(h)-12, 2)/6
		var last *world.Tile
		for d := 0.0; d <= maxDist; d += e.stepSize {
			px, py := ox+dir.X*d, oy+dir.Y*d
			if px < 0 || px >= n || py < 0 || py >= n {
				break
			}
			r := g.AtPosition(px, py)
			if r == caster || r == last {
				continue
			}
			last = r
			if r.BlocksLight() {
				g.AddTruncation(caster, r, h)
				break
			}
			g.AddShadow(caster, r, h, b)
		}
	}
}
