package renderer

import (
	"fmt"
	"image"
	"image/png"
	"os"
)

// Write a rendered RGBA framebuffer to a png file.
func WriteFrame(path string, frameBuffer []uint8, frameW, frameH int) error {
	if len(frameBuffer) != frameW*frameH*4 {
		return fmt.Errorf("renderer: framebuffer size %d does not match %dx%d frame", len(frameBuffer), frameW, frameH)
	}

	img := image.NewRGBA(image.Rect(0, 0, frameW, frameH))
	copy(img.Pix, frameBuffer)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, img)
}
