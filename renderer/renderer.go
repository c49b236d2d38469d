package renderer

type Renderer interface {
	// Render frame: build all cascade levels, merge and resolve the
	// irradiance buffer, tonemap into the framebuffer.
	Render() error

	// Shutdown renderer and release its buffers.
	Close()

	// Get render statistics for the last frame.
	Stats() FrameStats

	// The resolved irradiance buffer of the last frame as a dense RGB
	// array plus its pixel dimensions. Read-only; overwritten by the
	// next Render.
	Irradiance() ([]float32, int, int)

	// The tonemapped RGBA framebuffer of the last frame. Read-only;
	// overwritten by the next Render.
	FrameBuffer() []uint8
}
