package world

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/nfnt/resize"
)

const previewAmbientLight = 0.35

// Palette supplies preview colours for block ids.
type Palette interface {
	Color(id BlockID) color.NRGBA
}

// RenderPreview draws a top-down image of the chunk: one pixel per column,
// coloured by its highest block and shaded by height. scale upsizes the image
// with nearest-neighbour filtering.
func RenderPreview(chunk *Chunk, palette Palette, scale int) (image.Image, error) {
	if chunk == nil {
		return nil, fmt.Errorf("chunk is nil")
	}
	if palette == nil {
		return nil, fmt.Errorf("palette is nil")
	}
	if scale <= 0 {
		scale = 1
	}

	img := image.NewNRGBA(image.Rect(0, 0, ChunkSize, ChunkSize))
	background := color.NRGBA{R: 10, G: 10, B: 18, A: 255}
	for z := 0; z < ChunkSize; z++ {
		for x := 0; x < ChunkSize; x++ {
			y := chunk.HighestBlock(x, z, nil)
			if y < 0 {
				img.SetNRGBA(x, z, background)
				continue
			}
			base := palette.Color(chunk.LocalBlock(x, y, z))
			img.SetNRGBA(x, z, shade(base, float64(y)/float64(ChunkHeight-1)))
		}
	}
	if scale == 1 {
		return img, nil
	}
	size := uint(ChunkSize * scale)
	return resize.Resize(size, size, img, resize.NearestNeighbor), nil
}

// SavePreview writes chunk_<x>_<z>.png beneath outputDir.
func SavePreview(chunk *Chunk, palette Palette, scale int, outputDir string) (string, error) {
	img, err := RenderPreview(chunk, palette, scale)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create preview directory: %w", err)
	}
	path := filepath.Join(outputDir, fmt.Sprintf("chunk_%d_%d.png", chunk.Key.X, chunk.Key.Z))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create preview: %w", err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encode preview: %w", err)
	}
	return path, nil
}

func shade(c color.NRGBA, height float64) color.NRGBA {
	if height < 0 {
		height = 0
	}
	if height > 1 {
		height = 1
	}
	factor := previewAmbientLight + (1-previewAmbientLight)*height
	return color.NRGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: 255,
	}
}
