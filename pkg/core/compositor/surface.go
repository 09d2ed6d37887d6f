// Package compositor renders the two participants into a single
// recordable picture and mixes the session's two audio tracks into the
// archival recording.
package compositor

import (
	"image"
	"image/color"
	"sync"
)

// Rect is an axis-aligned region in source or canvas pixels.
type Rect struct {
	X, Y, W, H int
}

// Source is a live visual input: a webcam feed, a still avatar, or a
// looping animation.
type Source interface {
	// Dimensions returns the native frame size. ok is false until the
	// source has decoded at least one frame.
	Dimensions() (w, h int, ok bool)
}

// PixelSource is a Source whose current frame can be sampled.
type PixelSource interface {
	Source
	// Frame returns the current decoded frame. May return nil while
	// Dimensions reports not ready.
	Frame() image.Image
}

// Surface is a generic 2D raster target. The compositor draws every
// frame through this interface, so the pixel backend is swappable.
type Surface interface {
	Size() (w, h int)
	Clear()
	Fill(c color.Color)
	// DrawSource samples srcRect from the source and writes it scaled
	// into dstRect at the given opacity in [0, 1].
	DrawSource(src Source, srcRect, dstRect Rect, opacity float64)
	// Present seals the frame and hands it to the frame consumer.
	Present()
}

// RasterSurface is a software Surface over an RGBA buffer. Present
// passes the composed frame to the onFrame callback; the callback must
// copy if it retains the image.
type RasterSurface struct {
	mu      sync.Mutex
	img     *image.RGBA
	onFrame func(*image.RGBA)
}

// NewRasterSurface creates a software surface of the given size.
func NewRasterSurface(w, h int, onFrame func(*image.RGBA)) *RasterSurface {
	return &RasterSurface{
		img:     image.NewRGBA(image.Rect(0, 0, w, h)),
		onFrame: onFrame,
	}
}

func (s *RasterSurface) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

func (s *RasterSurface) Clear() {
	s.Fill(color.RGBA{})
}

func (s *RasterSurface) Fill(c color.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, g, b, a := c.RGBA()
	px := [4]byte{byte(r >> 8), byte(g >> 8), byte(b >> 8), byte(a >> 8)}
	for i := 0; i < len(s.img.Pix); i += 4 {
		copy(s.img.Pix[i:i+4], px[:])
	}
}

func (s *RasterSurface) DrawSource(src Source, srcRect, dstRect Rect, opacity float64) {
	ps, ok := src.(PixelSource)
	if !ok {
		return
	}
	frame := ps.Frame()
	if frame == nil || srcRect.W <= 0 || srcRect.H <= 0 || dstRect.W <= 0 || dstRect.H <= 0 {
		return
	}
	if opacity <= 0 {
		return
	}
	if opacity > 1 {
		opacity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w, h := s.Size()
	// Nearest-neighbor scale with straight alpha blend. Plenty for a
	// 720p canvas at 30fps in software.
	for dy := 0; dy < dstRect.H; dy++ {
		y := dstRect.Y + dy
		if y < 0 || y >= h {
			continue
		}
		sy := srcRect.Y + dy*srcRect.H/dstRect.H
		for dx := 0; dx < dstRect.W; dx++ {
			x := dstRect.X + dx
			if x < 0 || x >= w {
				continue
			}
			sx := srcRect.X + dx*srcRect.W/dstRect.W
			r, g, b, a := frame.At(sx, sy).RGBA()
			alpha := opacity * float64(a) / 0xffff
			if alpha <= 0 {
				continue
			}
			i := s.img.PixOffset(x, y)
			s.img.Pix[i+0] = blend(s.img.Pix[i+0], byte(r>>8), alpha)
			s.img.Pix[i+1] = blend(s.img.Pix[i+1], byte(g>>8), alpha)
			s.img.Pix[i+2] = blend(s.img.Pix[i+2], byte(b>>8), alpha)
			s.img.Pix[i+3] = 0xff
		}
	}
}

func blend(dst, src byte, alpha float64) byte {
	return byte(float64(dst)*(1-alpha) + float64(src)*alpha)
}

func (s *RasterSurface) Present() {
	if s.onFrame != nil {
		s.onFrame(s.img)
	}
}

// Image exposes the backing buffer for tests and previews.
func (s *RasterSurface) Image() *image.RGBA {
	return s.img
}

// StillSource is a PixelSource over a fixed image, used for the host
// avatar.
type StillSource struct {
	img image.Image
}

// NewStillSource wraps a decoded image. A nil image makes a source
// that reports not ready, which the compositor paints over with its
// fallback fill.
func NewStillSource(img image.Image) *StillSource {
	return &StillSource{img: img}
}

func (s *StillSource) Dimensions() (int, int, bool) {
	if s.img == nil {
		return 0, 0, false
	}
	b := s.img.Bounds()
	return b.Dx(), b.Dy(), true
}

func (s *StillSource) Frame() image.Image { return s.img }

// FrameSource is a PixelSource fed externally with decoded frames,
// used for the guest webcam and the looping host animation.
type FrameSource struct {
	mu    sync.RWMutex
	frame image.Image
}

func NewFrameSource() *FrameSource {
	return &FrameSource{}
}

// Update replaces the current frame.
func (s *FrameSource) Update(frame image.Image) {
	s.mu.Lock()
	s.frame = frame
	s.mu.Unlock()
}

func (s *FrameSource) Dimensions() (int, int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.frame == nil {
		return 0, 0, false
	}
	b := s.frame.Bounds()
	return b.Dx(), b.Dy(), true
}

func (s *FrameSource) Frame() image.Image {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame
}
