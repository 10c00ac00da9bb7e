package terrain

import (
	"math"

	"worldgen/internal/world"
)

// PreventEdgeTouching fades heights to zero toward the map border so the
// land mass never touches an edge.
func PreventEdgeTouching(g *world.Grid) {
	n := float64(g.Size())
	cx, cy := n/2, n/2
	for _, t := range g.Tiles() {
		dist := math.Hypot(float64(t.X)-cx, float64(t.Y)-cy)
		edge := (n - dist) / n
		mult := world.Clamp01(-math.Pow(edge-1.5, 10) + 1)
		t.SetHeight(t.Height * mult)
	}
}

// BlendEdges scales heights near each edge whose neighbouring map reports a
// nonzero elevation bias. surrounding is indexed up, right, down, left.
func BlendEdges(g *world.Grid, surrounding [4]float64) {
	n := float64(g.Size())
	for _, t := range g.Tiles() {
		for edge, bias := range surrounding {
			if bias == 0 {
				continue
			}
			closest := float64(g.DistanceToEdge(t, edge)) / n
			mult := bias*math.Pow(closest-1, 10) + 1
			t.SetHeight(t.Height * mult)
		}
	}
}
