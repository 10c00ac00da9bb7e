package world

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/colornames"
)

// PreviewMode selects which tile attribute a preview visualises.
type PreviewMode string

const (
	PreviewTerrain       PreviewMode = "terrain"
	PreviewHeight        PreviewMode = "height"
	PreviewTemperature   PreviewMode = "temperature"
	PreviewPrecipitation PreviewMode = "precipitation"
	PreviewBiome         PreviewMode = "biome"
	PreviewBrightness    PreviewMode = "brightness"
	PreviewRegions       PreviewMode = "regions"
)

// ErrUnknownPreviewMode is returned for modes RenderPreview cannot draw.
var ErrUnknownPreviewMode = errors.New("unknown preview mode")

// ParsePreviewMode validates a mode name. An empty name selects terrain.
func ParsePreviewMode(name string) (PreviewMode, error) {
	switch mode := PreviewMode(strings.ToLower(name)); mode {
	case "":
		return PreviewTerrain, nil
	case PreviewTerrain, PreviewHeight, PreviewTemperature, PreviewPrecipitation,
		PreviewBiome, PreviewBrightness, PreviewRegions:
		return mode, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownPreviewMode, name)
	}
}

// PreviewOptions tune RenderPreview. BiomeColours maps biome names to hex
// colours; Hour is used by the brightness mode.
type PreviewOptions struct {
	Mode         PreviewMode
	Scale        int
	Hour         int
	BiomeColours map[string]string
}

var terrainColours = map[TerrainType]color.RGBA{
	TerrainDirt:           colornames.Sienna,
	TerrainMud:            colornames.Saddlebrown,
	TerrainDirtGrass:      colornames.Olivedrab,
	TerrainDirtThinGrass:  colornames.Darkkhaki,
	TerrainDirtDryGrass:   colornames.Tan,
	TerrainGrass:          colornames.Forestgreen,
	TerrainThickGrass:     colornames.Darkgreen,
	TerrainColdGrass:      colornames.Seagreen,
	TerrainDryGrass:       colornames.Yellowgreen,
	TerrainSand:           colornames.Khaki,
	TerrainSnow:           colornames.Snow,
	TerrainSnowIce:        colornames.Lightcyan,
	TerrainSnowStone:      colornames.Gainsboro,
	TerrainStoneIce:       colornames.Powderblue,
	TerrainStoneThinGrass: colornames.Darkseagreen,
	TerrainStoneSand:      colornames.Burlywood,
	TerrainStoneSnow:      colornames.Lightgray,
	TerrainStone:          colornames.Dimgray,
	TerrainGranite:        colornames.Slategray,
	TerrainLimestone:      colornames.Silver,
	TerrainMarble:         colornames.Whitesmoke,
	TerrainSandstone:      colornames.Peru,
	TerrainSlate:          colornames.Darkslategray,
	TerrainClay:           colornames.Chocolate,
}

// RenderPreview draws one Scale×Scale square per tile. North (+y) is drawn at
// the top of the image.
func RenderPreview(g *Grid, opts PreviewOptions) (image.Image, error) {
	if g == nil {
		return nil, fmt.Errorf("grid is nil")
	}
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	if opts.Mode == "" {
		opts.Mode = PreviewTerrain
	}
	size := g.Size()
	dc := gg.NewContext(size*opts.Scale, size*opts.Scale)
	dc.SetColor(colornames.Black)
	dc.Clear()

	for _, t := range g.Tiles() {
		col, err := tileColour(t, opts)
		if err != nil {
			return nil, err
		}
		px := float64(t.X * opts.Scale)
		py := float64((size - 1 - t.Y) * opts.Scale)
		dc.SetColor(col)
		dc.DrawRectangle(px, py, float64(opts.Scale), float64(opts.Scale))
		dc.Fill()
	}
	return dc.Image(), nil
}

// EncodePreview renders the grid and writes it as PNG to w.
func EncodePreview(w io.Writer, g *Grid, opts PreviewOptions) error {
	img, err := RenderPreview(g, opts)
	if err != nil {
		return err
	}
	if err := gg.NewContextForImage(img).EncodePNG(w); err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	return nil
}

// SavePreview renders the grid and writes it as PNG to path.
func SavePreview(g *Grid, path string, opts PreviewOptions) error {
	img, err := RenderPreview(g, opts)
	if err != nil {
		return err
	}
	if err := ensurePreviewDir(filepath.Dir(path)); err != nil {
		return err
	}
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("save preview: %w", err)
	}
	return nil
}

func tileColour(t *Tile, opts PreviewOptions) (color.Color, error) {
	switch opts.Mode {
	case PreviewTerrain:
		return terrainColour(t.Terrain), nil
	case PreviewHeight:
		return grey(t.Height), nil
	case PreviewTemperature:
		// -50..50 maps blue to red.
		v := Clamp01((t.Temperature + 50) / 100)
		return color.NRGBA{R: uint8(255 * v), G: 64, B: uint8(255 * (1 - v)), A: 255}, nil
	case PreviewPrecipitation:
		v := Clamp01(t.Precipitation)
		return color.NRGBA{R: uint8(230 * (1 - v)), G: uint8(200 * (1 - v/2)), B: 255, A: 255}, nil
	case PreviewBiome:
		if t.Terrain.IsLiquidWater() || t.Terrain.IsStoneEquivalent() {
			return terrainColour(t.Terrain), nil
		}
		if hex, ok := opts.BiomeColours[t.Biome]; ok {
			if col, ok := parseHexColor(hex); ok {
				return col, nil
			}
		}
		return terrainColour(t.Terrain), nil
	case PreviewBrightness:
		base := color.NRGBAModel.Convert(terrainColour(t.Terrain)).(color.NRGBA)
		return applyLighting(base, t.Brightness(opts.Hour)), nil
	case PreviewRegions:
		if !t.Walkable {
			return colornames.Black, nil
		}
		return regionColour(t.WalkRegion), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownPreviewMode, opts.Mode)
	}
}

func terrainColour(t TerrainType) color.Color {
	if col, ok := terrainColours[t]; ok {
		return col
	}
	switch {
	case t.IsLiquidWater():
		return colornames.Royalblue
	case t.IsHole():
		return colornames.Black
	}
	return colornames.Magenta
}

func regionColour(id int) color.Color {
	// Golden-angle hue steps keep neighbouring ids distinguishable.
	hue := math.Mod(float64(id)*137.508, 360)
	return hsv(hue, 0.55, 0.9)
}

func hsv(h, s, v float64) color.NRGBA {
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c
	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return color.NRGBA{R: uint8((r + m) * 255), G: uint8((g + m) * 255), B: uint8((b + m) * 255), A: 255}
}

func grey(v float64) color.NRGBA {
	c := uint8(math.Round(Clamp01(v) * 255))
	return color.NRGBA{R: c, G: c, B: c, A: 255}
}

func parseHexColor(value string) (color.NRGBA, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return color.NRGBA{}, false
	}
	trimmed = strings.TrimPrefix(trimmed, "#")
	if len(trimmed) != 6 {
		return color.NRGBA{}, false
	}
	r, ok := parseHexByte(trimmed[0:2])
	if !ok {
		return color.NRGBA{}, false
	}
	g, ok := parseHexByte(trimmed[2:4])
	if !ok {
		return color.NRGBA{}, false
	}
	b, ok := parseHexByte(trimmed[4:6])
	if !ok {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: r, G: g, B: b, A: 255}, true
}

func parseHexByte(value string) (uint8, bool) {
	if len(value) != 2 {
		return 0, false
	}
	v, err := strconv.ParseUint(value, 16, 8)
	if err != nil {
		return 0, false
	}
	return uint8(v), true
}

func applyLighting(base color.NRGBA, factor float64) color.NRGBA {
	factor = Clamp01(factor)
	r := uint8(math.Round(float64(base.R) * factor))
	g := uint8(math.Round(float64(base.G) * factor))
	b := uint8(math.Round(float64(base.B) * factor))
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

func ensurePreviewDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create preview directory: %w", err)
	}
	return nil
}
