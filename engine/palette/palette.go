// Package palette assigns a colour to every surface and blends between them while the graph
// morphs, so the tint follows the same weight as the geometry.
package palette

import (
	"fmt"
	"maps"

	"github.com/Carmen-Shannon/oxy-graph/common"
	"github.com/Carmen-Shannon/oxy-graph/engine/graph"
	"github.com/Carmen-Shannon/oxy-graph/engine/surface"
	"github.com/lucasb-eyer/go-colorful"
)

// DefaultColours are the hex colours used for any surface without an override.
var DefaultColours = map[surface.Kind]string{
	surface.Wave:      "#2f7fff",
	surface.MultiWave: "#00c2a8",
	surface.Ripple:    "#ffb000",
	surface.Sphere:    "#ff4f6d",
	surface.Torus:     "#9b5cff",
}

// Palette maps each surface kind to a colour.
type Palette struct {
	colours [surface.Count]colorful.Color
}

// New builds a Palette from DefaultColours with the given overrides applied. Override keys are
// surface names as accepted by surface.ParseKind.
//
// Parameters:
//   - overrides: surface name to hex colour, may be nil
//
// Returns:
//   - *Palette: the palette
//   - error: an error if a name or a hex colour does not parse
func New(overrides map[string]string) (*Palette, error) {
	hexes := maps.Clone(DefaultColours)
	for name, hex := range overrides {
		kind, err := surface.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("palette: %w", err)
		}
		hexes[kind] = hex
	}

	p := &Palette{}
	for kind, hex := range hexes {
		c, err := colorful.Hex(hex)
		if err != nil {
			return nil, fmt.Errorf("palette: colour for %s: %w", kind, err)
		}
		p.colours[kind.Index()] = c
	}
	return p, nil
}

// Colour returns the colour assigned to a surface. Kinds outside the catalog get the Torus
// colour, matching surface.Lookup.
//
// Parameters:
//   - kind: the surface
//
// Returns:
//   - colorful.Color: its colour
func (p *Palette) Colour(kind surface.Kind) colorful.Color {
	if !kind.Valid() {
		kind = surface.Torus
	}
	return p.colours[kind.Index()]
}

// Blend returns the colour for a frame: the current surface's colour while holding, otherwise
// the HCL blend of the current and target colours at the frame weight. Overshooting weights
// are clamped to [0, 1] and the result is clamped into the RGB gamut.
//
// Parameters:
//   - frame: the animator frame
//
// Returns:
//   - colorful.Color: the blended colour
func (p *Palette) Blend(frame graph.Frame) colorful.Color {
	from := p.Colour(frame.Current)
	if !frame.Transitioning {
		return from
	}
	w := common.Clamp01(frame.Weight)
	return from.BlendHcl(p.Colour(frame.Target), float64(w)).Clamped()
}

// Tint returns the blended frame colour as an RGBA vector for the graph uniform.
//
// Parameters:
//   - frame: the animator frame
//
// Returns:
//   - [4]float32: red, green, blue in [0, 1] and alpha 1
func (p *Palette) Tint(frame graph.Frame) [4]float32 {
	c := p.Blend(frame)
	return [4]float32{float32(c.R), float32(c.G), float32(c.B), 1}
}

// RGB returns the blended frame colour as 8-bit channels for the frame stream.
//
// Parameters:
//   - frame: the animator frame
//
// Returns:
//   - [3]uint8: red, green and blue
func (p *Palette) RGB(frame graph.Frame) [3]uint8 {
	r, g, b := p.Blend(frame).RGB255()
	return [3]uint8{r, g, b}
}
