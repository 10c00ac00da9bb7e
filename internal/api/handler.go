package api

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"worldgen/internal/config"
	"worldgen/internal/lighting"
	"worldgen/internal/mapgen"
	"worldgen/internal/world"
)

// Handler exposes a generated map over HTTP. Every request holds the lock
// because the map has a single writer.
type Handler struct {
	mu     sync.Mutex
	m      *mapgen.Map
	output config.OutputConfig
}

func NewHandler(m *mapgen.Map, output config.OutputConfig) *Handler {
	return &Handler{m: m, output: output}
}

func (h *Handler) RegisterRoutes(s *server.Hertz) {
	s.GET("/tiles", h.tile)
	s.GET("/tiles/neighbours", h.neighbours)
	s.GET("/tiles/light", h.light)
	s.POST("/tiles/object", h.placeObject)
	s.DELETE("/tiles/object", h.removeObject)
	s.GET("/visible", h.visible)
	s.GET("/rivers", h.rivers)
	s.GET("/preview.png", h.preview)
}

type tileView struct {
	X             int      `json:"x"`
	Y             int      `json:"y"`
	Height        float64  `json:"height"`
	Temperature   float64  `json:"temperature"`
	Precipitation float64  `json:"precipitation"`
	Terrain       string   `json:"terrain"`
	Biome         string   `json:"biome"`
	Walkable      bool     `json:"walkable"`
	WalkSpeed     float64  `json:"walk_speed"`
	Buildable     bool     `json:"buildable"`
	Roof          bool     `json:"roof"`
	Plant         string   `json:"plant,omitempty"`
	Objects       []string `json:"objects,omitempty"`
	TerrainRegion int      `json:"terrain_region"`
	WalkRegion    int      `json:"walk_region"`
	Block         int      `json:"block"`
	Basin         int      `json:"basin"`
	River         int      `json:"river"`
}

func viewOf(t *world.Tile) tileView {
	v := tileView{
		X:             t.X,
		Y:             t.Y,
		Height:        t.Height,
		Temperature:   t.Temperature,
		Precipitation: t.Precipitation,
		Terrain:       string(t.Terrain),
		Biome:         t.Biome,
		Walkable:      t.Walkable,
		WalkSpeed:     t.WalkSpeed,
		Buildable:     t.Buildable,
		Roof:          t.Roof,
		TerrainRegion: t.TerrainRegion,
		WalkRegion:    t.WalkRegion,
		Block:         t.Block,
		Basin:         t.Basin,
		River:         t.River,
	}
	if t.Plant != nil {
		v.Plant = t.Plant.Group
	}
	for _, obj := range t.Objects {
		if obj != nil {
			v.Objects = append(v.Objects, string(obj.Kind))
		}
	}
	return v
}

type editView struct {
	Tile          tileView `json:"tile"`
	WalkFlipped   bool     `json:"walk_flipped"`
	LightFlipped  bool     `json:"light_flipped"`
	TerrainAction string   `json:"terrain_action"`
	WalkAction    string   `json:"walk_action"`
}

func editOf(e *mapgen.Edit) editView {
	return editView{
		Tile:          viewOf(e.Tile),
		WalkFlipped:   e.WalkFlipped,
		LightFlipped:  e.LightFlipped,
		TerrainAction: e.TerrainAction.String(),
		WalkAction:    e.WalkAction.String(),
	}
}

func (h *Handler) tile(c context.Context, ctx *app.RequestContext) {
	x, y, ok := coords(ctx)
	if !ok {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	t, err := h.m.Tile(x, y)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, viewOf(t))
}

func (h *Handler) neighbours(c context.Context, ctx *app.RequestContext) {
	x, y, ok := coords(ctx)
	if !ok {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	tiles, mask, err := h.m.SameCategoryNeighbours(x, y)
	if err != nil {
		writeError(ctx, err)
		return
	}
	t, _ := h.m.Tile(x, y)
	views := make([]tileView, 0, len(tiles))
	for _, n := range tiles {
		views = append(views, viewOf(n))
	}
	sum := mapgen.MaskSum(mask)
	ctx.JSON(consts.StatusOK, map[string]any{
		"category": mapgen.CategoryOf(t),
		"tiles":    views,
		"sum":      sum,
		"index":    mapgen.BitmaskIndex(sum),
	})
}

type hourLight struct {
	Hour       int     `json:"hour"`
	Phase      string  `json:"phase"`
	Brightness float64 `json:"brightness"`
}

func (h *Handler) light(c context.Context, ctx *app.RequestContext) {
	x, y, ok := coords(ctx)
	if !ok {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	t, err := h.m.Tile(x, y)
	if err != nil {
		writeError(ctx, err)
		return
	}
	hours := make([]hourLight, 0, world.Hours)
	for hour := 0; hour < world.Hours; hour++ {
		hours = append(hours, hourLight{
			Hour:       hour,
			Phase:      string(lighting.PhaseAt(hour)),
			Brightness: t.Brightness(hour),
		})
	}
	ctx.JSON(consts.StatusOK, map[string]any{"x": x, "y": y, "hours": hours})
}

func (h *Handler) placeObject(c context.Context, ctx *app.RequestContext) {
	x, y, ok := coords(ctx)
	if !ok {
		return
	}
	kind := string(ctx.Query("object"))
	if kind == "" {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_query", "object is required")
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	edit, err := h.m.SetTileObject(x, y, world.ObjectKind(kind))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, editOf(edit))
}

func (h *Handler) removeObject(c context.Context, ctx *app.RequestContext) {
	x, y, ok := coords(ctx)
	if !ok {
		return
	}
	layer, ok := intQuery(ctx, "layer")
	if !ok {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	edit, err := h.m.RemoveTileObject(x, y, layer)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, editOf(edit))
}

func (h *Handler) visible(c context.Context, ctx *app.RequestContext) {
	x, y, ok := coords(ctx)
	if !ok {
		return
	}
	radius, err := strconv.ParseFloat(string(ctx.Query("radius")), 64)
	if err != nil || radius < 0 {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_query", "radius must be a non-negative number")
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := h.m.Tile(x, y); err != nil {
		writeError(ctx, err)
		return
	}
	blocks := h.m.Visible(x, y, radius)
	if blocks == nil {
		blocks = []int{}
	}
	ctx.JSON(consts.StatusOK, map[string]any{"blocks": blocks})
}

type riverView struct {
	ID           int    `json:"id"`
	Length       int    `json:"length"`
	ExpandRadius int    `json:"expand_radius"`
	JoinedRiver  int    `json:"joined_river"`
	Start        [2]int `json:"start"`
	End          [2]int `json:"end"`
}

func (h *Handler) rivers(c context.Context, ctx *app.RequestContext) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]riverView, 0, len(h.m.Rivers()))
	for _, r := range h.m.Rivers() {
		v := riverView{ID: r.ID, Length: len(r.Tiles), ExpandRadius: r.ExpandRadius, JoinedRiver: r.JoinedRiver}
		if r.Start != nil {
			v.Start = [2]int{r.Start.X, r.Start.Y}
		}
		if r.End != nil {
			v.End = [2]int{r.End.X, r.End.Y}
		}
		out = append(out, v)
	}
	ctx.JSON(consts.StatusOK, map[string]any{"rivers": out, "basins": len(h.m.Basins())})
}

func (h *Handler) preview(c context.Context, ctx *app.RequestContext) {
	name := string(ctx.Query("mode"))
	if name == "" {
		name = h.output.PreviewMode
	}
	mode, err := world.ParsePreviewMode(name)
	if err != nil {
		writeError(ctx, err)
		return
	}
	hour := 12
	if raw := ctx.Query("hour"); len(raw) > 0 {
		v, err := strconv.Atoi(string(raw))
		if err != nil || v < 0 || v >= world.Hours {
			writeErrorBody(ctx, consts.StatusBadRequest, "invalid_query", "hour must be within [0,23]")
			return
		}
		hour = v
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.m.Grid() == nil {
		writeError(ctx, mapgen.ErrNotGenerated)
		return
	}
	var buf bytes.Buffer
	opts := world.PreviewOptions{
		Mode:         mode,
		Scale:        h.output.PreviewScale,
		Hour:         hour,
		BiomeColours: h.m.Biomes().Colours(),
	}
	if err := world.EncodePreview(&buf, h.m.Grid(), opts); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.Data(consts.StatusOK, "image/png", buf.Bytes())
}

func coords(ctx *app.RequestContext) (int, int, bool) {
	x, ok := intQuery(ctx, "x")
	if !ok {
		return 0, 0, false
	}
	y, ok := intQuery(ctx, "y")
	if !ok {
		return 0, 0, false
	}
	return x, y, true
}

func intQuery(ctx *app.RequestContext, key string) (int, bool) {
	v, err := strconv.Atoi(string(ctx.Query(key)))
	if err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_query", key+" must be an integer")
		return 0, false
	}
	return v, true
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, world.ErrOutOfBounds):
		writeErrorBody(ctx, consts.StatusNotFound, "tile_not_found", err.Error())
	case errors.Is(err, world.ErrLayerOccupied):
		writeErrorBody(ctx, consts.StatusConflict, "layer_occupied", err.Error())
	case errors.Is(err, mapgen.ErrEmptyLayer):
		writeErrorBody(ctx, consts.StatusNotFound, "layer_empty", err.Error())
	case errors.Is(err, world.ErrUnknownObject):
		writeErrorBody(ctx, consts.StatusBadRequest, "unknown_object", err.Error())
	case errors.Is(err, world.ErrUnknownPreviewMode):
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_query", err.Error())
	case errors.Is(err, mapgen.ErrNotGenerated):
		writeErrorBody(ctx, consts.StatusServiceUnavailable, "map_not_ready", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
