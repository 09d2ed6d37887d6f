// Package segmentation mattes the guest webcam feed: a person
// segmentation model cuts the speaker out of their background, with a
// plain blur as the fallback when no model can be loaded. Selection
// happens once at startup; the rest of the pipeline only sees the
// FrameProcessor interface.
package segmentation

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"
)

// Config tunes the matting pipeline.
type Config struct {
	// SegmentationThreshold is the model confidence required to call
	// a pixel part of the person.
	SegmentationThreshold float64 `json:"segmentation_threshold"`
	// EdgeBlur softens the matte boundary by this many pixels.
	EdgeBlur int `json:"edge_blur"`
	// BlurAmount is the fallback blur radius.
	BlurAmount int `json:"blur_amount"`
	// TargetFPS caps how often frames are actually processed.
	TargetFPS int `json:"target_fps"`
}

// DefaultConfig balances quality against the per-frame budget.
func DefaultConfig() Config {
	return Config{
		SegmentationThreshold: 0.6,
		EdgeBlur:              3,
		BlurAmount:            3,
		TargetFPS:             30,
	}
}

// FrameProcessor transforms webcam frames. Init may fail; callers
// select an implementation with Select and fall back accordingly.
// ProcessFrame returns (nil, nil) when the frame is dropped to hold
// the target rate.
type FrameProcessor interface {
	Init() error
	ProcessFrame(frame image.Image, now time.Time) (image.Image, error)
	Close() error
}

// Segmenter is the black-box person segmentation model. The mask has
// one entry per pixel in row-major order, true where the model is at
// least threshold confident the pixel belongs to the person.
type Segmenter interface {
	SegmentPerson(frame image.Image, threshold float64) ([]bool, error)
	Close() error
}

// ModelLoader produces a Segmenter, typically by loading model
// weights. Loading is allowed to fail.
type ModelLoader func(Config) (Segmenter, error)

// Select initializes processors in preference order and returns the
// first that comes up. Failed candidates are logged by the caller via
// the returned errors; if none initializes the last error is
// returned.
func Select(processors ...FrameProcessor) (FrameProcessor, error) {
	var lastErr error
	for _, p := range processors {
		if err := p.Init(); err != nil {
			lastErr = err
			continue
		}
		return p, nil
	}
	if lastErr == nil {
		lastErr = errors.New("segmentation: no frame processors supplied")
	}
	return nil, lastErr
}

// PersonMatte replaces everything outside the detected person with a
// virtual background, or a dark fill when none is set.
type PersonMatte struct {
	config     Config
	loader     ModelLoader
	model      Segmenter
	background image.Image

	lastFrame time.Time
	interval  time.Duration
}

// NewPersonMatte creates an uninitialized matte processor. The model
// is not loaded until Init.
func NewPersonMatte(config Config, loader ModelLoader) *PersonMatte {
	fps := config.TargetFPS
	if fps <= 0 {
		fps = 30
	}
	return &PersonMatte{
		config:   config,
		loader:   loader,
		interval: time.Second / time.Duration(fps),
	}
}

// Init loads the segmentation model. An error here means the caller
// should fall back to another processor.
func (p *PersonMatte) Init() error {
	if p.loader == nil {
		return errors.New("segmentation: no model loader configured")
	}
	model, err := p.loader(p.config)
	if err != nil {
		return fmt.Errorf("segmentation: load model: %w", err)
	}
	p.model = model
	return nil
}

// SetBackground installs the virtual studio backdrop. A nil image
// falls back to a solid dark fill.
func (p *PersonMatte) SetBackground(img image.Image) {
	p.background = img
}

var matteFallbackFill = color.RGBA{R: 0x1a, G: 0x1a, B: 0x1a, A: 0xff}

// ProcessFrame mattes one frame. Frames arriving faster than the
// target rate are dropped.
func (p *PersonMatte) ProcessFrame(frame image.Image, now time.Time) (image.Image, error) {
	if p.model == nil {
		return nil, errors.New("segmentation: not initialized")
	}
	if now.Sub(p.lastFrame) < p.interval {
		return nil, nil
	}
	p.lastFrame = now

	bounds := frame.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	mask, err := p.model.SegmentPerson(frame, p.config.SegmentationThreshold)
	if err != nil {
		return nil, fmt.Errorf("segmentation: segment person: %w", err)
	}
	if len(mask) != w*h {
		return nil, fmt.Errorf("segmentation: mask has %d entries for a %dx%d frame", len(mask), w, h)
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	if p.background != nil {
		draw.Draw(out, out.Bounds(), p.background, p.background.Bounds().Min, draw.Src)
	} else {
		draw.Draw(out, out.Bounds(), image.NewUniform(matteFallbackFill), image.Point{}, draw.Src)
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !mask[y*w+x] {
				continue
			}
			r, g, b, _ := frame.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			c := color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 0xff}
			if p.config.EdgeBlur > 0 && onMaskEdge(mask, w, h, x, y) {
				c = blendOver(out.RGBAAt(x, y), c, 0.5)
			}
			out.SetRGBA(x, y, c)
		}
	}
	return out, nil
}

// Close releases the model.
func (p *PersonMatte) Close() error {
	if p.model == nil {
		return nil
	}
	err := p.model.Close()
	p.model = nil
	return err
}

// onMaskEdge reports whether a person pixel touches the background.
func onMaskEdge(mask []bool, w, h, x, y int) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			nx, ny := x+dx, y+dy
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			if !mask[ny*w+nx] {
				return true
			}
		}
	}
	return false
}

func blendOver(dst, src color.RGBA, alpha float64) color.RGBA {
	mix := func(d, s uint8) uint8 {
		return uint8(float64(d)*(1-alpha) + float64(s)*alpha)
	}
	return color.RGBA{R: mix(dst.R, src.R), G: mix(dst.G, src.G), B: mix(dst.B, src.B), A: 0xff}
}

// BlurFallback is the processor used when no segmentation model
// loads: it blurs the whole frame instead of matting the person.
type BlurFallback struct {
	radius    int
	lastFrame time.Time
	interval  time.Duration
}

// NewBlurFallback creates a blur processor with the config's fallback
// radius.
func NewBlurFallback(config Config) *BlurFallback {
	fps := config.TargetFPS
	if fps <= 0 {
		fps = 30
	}
	radius := config.BlurAmount
	if radius <= 0 {
		radius = 1
	}
	return &BlurFallback{radius: radius, interval: time.Second / time.Duration(fps)}
}

// Init never fails; the blur needs no external resources.
func (b *BlurFallback) Init() error { return nil }

// ProcessFrame box-blurs the frame. Frames arriving faster than the
// target rate are dropped.
func (b *BlurFallback) ProcessFrame(frame image.Image, now time.Time) (image.Image, error) {
	if now.Sub(b.lastFrame) < b.interval {
		return nil, nil
	}
	b.lastFrame = now

	bounds := frame.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewRGBA(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sumR, sumG, sumB, n uint32
			for dy := -b.radius; dy <= b.radius; dy++ {
				for dx := -b.radius; dx <= b.radius; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					r, g, bl, _ := frame.At(bounds.Min.X+nx, bounds.Min.Y+ny).RGBA()
					sumR += r >> 8
					sumG += g >> 8
					sumB += bl >> 8
					n++
				}
			}
			out.SetRGBA(x, y, color.RGBA{
				R: uint8(sumR / n),
				G: uint8(sumG / n),
				B: uint8(sumB / n),
				A: 0xff,
			})
		}
	}
	return out, nil
}

// Close is a no-op.
func (b *BlurFallback) Close() error { return nil }
