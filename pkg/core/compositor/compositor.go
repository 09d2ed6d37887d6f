package compositor

import (
	"image/color"
	"sync"
	"time"

	"github.com/monumento/studio/pkg/core/types"
)

// Config sizes the composed picture.
type Config struct {
	Width          int `json:"width"`
	Height         int `json:"height"`
	FPS            int `json:"fps"`
	FadeDurationMs int `json:"fade_duration_ms"`
}

// DefaultConfig is a 16:9 720p canvas with a 200ms cross-fade.
func DefaultConfig() Config {
	return Config{Width: 1280, Height: 720, FPS: 30, FadeDurationMs: 200}
}

// Fallback fills for sources that have not produced a frame yet.
var (
	guestFallback = color.RGBA{A: 0xff}                               // black
	hostFallback  = color.RGBA{R: 0x1a, G: 0x1a, B: 0x1a, A: 0xff}   // dark gray
	hostOverlayOpacity = 0.3
)

// Compositor renders the active speaker's view each frame, cross-fading
// from the previous speaker after a switch.
type Compositor struct {
	config  Config
	surface Surface

	guest    Source
	host     Source
	hostAnim Source

	mu          sync.Mutex
	active      types.Speaker
	fadeStart   time.Time
	fading      bool
	hostTalking bool
}

// New creates a compositor drawing to the given surface. hostAnim may
// be nil when avatar animation is disabled.
func New(config Config, surface Surface, guest, host, hostAnim Source) *Compositor {
	if config.Width == 0 {
		config = DefaultConfig()
	}
	return &Compositor{
		config:  config,
		surface: surface,
		guest:   guest,
		host:    host,
		hostAnim: hostAnim,
		active:  types.SpeakerGuest,
	}
}

// SetActiveSpeaker switches the featured view and starts a fade. A
// repeated speaker is a no-op, so detector ticks can call it freely.
func (c *Compositor) SetActiveSpeaker(speaker types.Speaker, now time.Time) {
	if speaker == types.SpeakerNone {
		return
	}
	c.mu.Lock()
	if c.active != speaker {
		c.active = speaker
		c.fadeStart = now
		c.fading = true
	}
	c.mu.Unlock()
}

// SetHostTalking toggles the animated overlay on the host view.
func (c *Compositor) SetHostTalking(talking bool) {
	c.mu.Lock()
	c.hostTalking = talking
	c.mu.Unlock()
}

// ActiveSpeaker returns the currently featured speaker.
func (c *Compositor) ActiveSpeaker() types.Speaker {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// RenderFrame composes one frame at the given instant and presents it.
// It never blocks and never fails: sources without frames get their
// fallback fill.
func (c *Compositor) RenderFrame(now time.Time) {
	c.mu.Lock()
	active := c.active
	fadeProgress := 1.0
	if c.fading {
		elapsed := now.Sub(c.fadeStart)
		fadeProgress = float64(elapsed) / float64(time.Duration(c.config.FadeDurationMs)*time.Millisecond)
		if fadeProgress >= 1 {
			fadeProgress = 1
			c.fading = false
		} else if fadeProgress < 0 {
			fadeProgress = 0
		}
	}
	hostTalking := c.hostTalking
	c.mu.Unlock()

	c.surface.Clear()

	if active == types.SpeakerGuest {
		c.renderGuest(1)
		if fadeProgress < 1 {
			c.renderHost(1-fadeProgress, hostTalking)
		}
	} else {
		c.renderHost(1, hostTalking)
		if fadeProgress < 1 {
			c.renderGuest(1 - fadeProgress)
		}
	}

	c.surface.Present()
}

func (c *Compositor) renderGuest(opacity float64) {
	w, h := c.surface.Size()
	canvas := Rect{W: w, H: h}

	sw, sh, ok := c.guest.Dimensions()
	if !ok {
		if opacity >= 1 {
			c.surface.Fill(guestFallback)
		}
		return
	}
	c.surface.DrawSource(c.guest, CoverCrop(sw, sh, w, h), canvas, opacity)
}

func (c *Compositor) renderHost(opacity float64, talking bool) {
	w, h := c.surface.Size()
	canvas := Rect{W: w, H: h}

	sw, sh, ok := c.host.Dimensions()
	if !ok {
		if opacity >= 1 {
			c.surface.Fill(hostFallback)
		}
		return
	}
	c.surface.DrawSource(c.host, Rect{W: sw, H: sh}, canvas, opacity)

	if talking && c.hostAnim != nil {
		if aw, ah, ok := c.hostAnim.Dimensions(); ok {
			c.surface.DrawSource(c.hostAnim, Rect{W: aw, H: ah}, canvas, hostOverlayOpacity*opacity)
		}
	}
}

// CoverCrop returns the source region that fills a dst-aspect canvas
// without stretching: the longer dimension is cropped symmetrically.
func CoverCrop(srcW, srcH, dstW, dstH int) Rect {
	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return Rect{W: srcW, H: srcH}
	}
	if srcW*dstH > dstW*srcH {
		// Source is wider: crop the sides.
		targetW := srcH * dstW / dstH
		return Rect{X: (srcW - targetW) / 2, W: targetW, H: srcH}
	}
	// Source is taller: crop top and bottom.
	targetH := srcW * dstH / dstW
	return Rect{Y: (srcH - targetH) / 2, W: srcW, H: targetH}
}
