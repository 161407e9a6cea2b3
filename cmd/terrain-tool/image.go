package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-editor/internal/terrain"
	"github.com/Faultbox/midgard-editor/internal/tools"
	mathx "github.com/Faultbox/midgard-editor/pkg/math"
)

func cmdPreview(args []string) error {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	scale := fs.Int("scale", 1, "Upscale factor for the output image")
	fs.Parse(args)

	if fs.NArg() < 2 {
		return fmt.Errorf("usage: terrain-tool preview [-scale N] <file.gat> <out.png>")
	}

	g, _, err := openTerrain(fs.Arg(0), 0, 0, mathx.One, mathx.One)
	if err != nil {
		return err
	}

	img := heightImage(g)
	if err := savePNG(fs.Arg(1), img, *scale); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%dx%d)\n", fs.Arg(1), img.Bounds().Dx()*max(*scale, 1), img.Bounds().Dy()*max(*scale, 1))
	return nil
}

func cmdNoise(args []string) error {
	fs := flag.NewFlagSet("noise", flag.ExitOnError)
	size := fs.Int("size", 128, "Image side in samples")
	seed := fs.Int64("seed", 0, "Noise seed")
	octaves := fs.Int("octaves", 0, "Octave count (0 = tool default)")
	fs.Parse(args)

	if fs.NArg() < 1 || *size <= 0 {
		return fmt.Errorf("usage: terrain-tool noise [-size N] [-seed S] <out.png>")
	}

	p := tools.DefaultRoughParams()
	p.Seed = *seed
	if *octaves > 0 {
		p.Octaves = *octaves
	}
	buf := tools.RoughField(p, 1).Buffer(0, 0, 0, *size)

	if err := savePNG(fs.Arg(0), grayImage(buf, *size, *size), 1); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%dx%d)\n", fs.Arg(0), *size, *size)
	return nil
}

// heightImage renders the grid with the lowest sample black and the highest
// white. North (+Z) is up.
func heightImage(g *terrain.Grid) *image.Gray {
	lo, hi := g.Extent()
	w, d := g.Size()
	values := make([]float32, 0, w*d)
	for z := hi.Z; z >= lo.Z; z-- {
		for x := lo.X; x <= hi.X; x++ {
			values = append(values, g.HeightAt(terrain.Coord{X: x, Z: z}))
		}
	}
	return grayImage(values, w, d)
}

func grayImage(values []float32, w, h int) *image.Gray {
	lo, hi := math32.Inf(1), math32.Inf(-1)
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo
	if span <= 0 {
		span = 1
	}

	img := image.NewGray(image.Rect(0, 0, w, h))
	for i, v := range values {
		img.SetGray(i%w, i/w, color.Gray{Y: uint8((v - lo) / span * 255)})
	}
	return img
}

func savePNG(path string, img image.Image, scale int) error {
	if scale > 1 {
		b := img.Bounds()
		img = transform.Resize(img, b.Dx()*scale, b.Dy()*scale, transform.NearestNeighbor)
	}
	if err := imgio.Save(path, img, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}
