package albedo

import (
	"image/color"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette is an ordered set of opaque colors chosen by one quantization.
// Entries are sorted from dark to light by CIE L*.
type Palette []color.NRGBA

// Colors returns the palette in the form image.Paletted and the ditherer
// expect.
func (p Palette) Colors() color.Palette {
	out := make(color.Palette, len(p))
	for i, c := range p {
		out[i] = c
	}
	return out
}

// Hex returns the entries as #rrggbb strings.
func (p Palette) Hex() []string {
	out := make([]string, len(p))
	for i, c := range p {
		out[i] = toColorful(c).Hex()
	}
	return out
}

func toColorful(c color.NRGBA) colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
}

// sortByLightness orders leaves by the L* of their average color, breaking
// ties by hex so the order does not depend on tree traversal.
func sortByLightness(leaves []*octreeNode) Palette {
	type entry struct {
		node *octreeNode
		c    color.NRGBA
		l    float64
		hex  string
	}

	entries := make([]entry, len(leaves))
	for i, n := range leaves {
		c := n.average()
		cf := toColorful(c)
		l, _, _ := cf.Lab()
		entries[i] = entry{node: n, c: c, l: l, hex: cf.Hex()}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].l != entries[j].l {
			return entries[i].l < entries[j].l
		}
		return entries[i].hex < entries[j].hex
	})

	p := make(Palette, len(entries))
	for i, e := range entries {
		e.node.index = i
		p[i] = e.c
	}
	return p
}
