package compositor

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/monumento/studio/pkg/core/types"
)

func solidImage(w, h int, c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestCoverCrop(t *testing.T) {
	tests := []struct {
		name                   string
		srcW, srcH, dstW, dstH int
		want                   Rect
	}{
		{"wider source crops sides", 1920, 720, 1280, 720, Rect{X: 320, Y: 0, W: 1280, H: 720}},
		{"taller source crops top and bottom", 1280, 960, 1280, 720, Rect{X: 0, Y: 120, W: 1280, H: 720}},
		{"matching aspect untouched", 640, 360, 1280, 720, Rect{X: 0, Y: 0, W: 640, H: 360}},
		{"portrait phone camera", 720, 1280, 1280, 720, Rect{X: 0, Y: 437, W: 720, H: 405}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CoverCrop(tt.srcW, tt.srcH, tt.dstW, tt.dstH)
			if got != tt.want {
				t.Errorf("CoverCrop = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRenderFallbackFills(t *testing.T) {
	surface := NewRasterSurface(32, 18, nil)
	guest := NewFrameSource() // no frame yet
	host := NewStillSource(nil)
	c := New(DefaultConfig(), surface, guest, host, nil)

	now := time.Now()
	c.RenderFrame(now)
	if got := surface.Image().RGBAAt(10, 10); got != (color.RGBA{A: 0xff}) {
		t.Errorf("guest fallback pixel = %+v, want black", got)
	}

	c.SetActiveSpeaker(types.SpeakerHost, now)
	// Past the fade so only the host view renders.
	c.RenderFrame(now.Add(300 * time.Millisecond))
	if got := surface.Image().RGBAAt(10, 10); got != (color.RGBA{R: 0x1a, G: 0x1a, B: 0x1a, A: 0xff}) {
		t.Errorf("host fallback pixel = %+v, want dark gray", got)
	}
}

func TestRenderCrossFade(t *testing.T) {
	surface := NewRasterSurface(16, 9, nil)
	guest := NewFrameSource()
	guest.Update(solidImage(16, 9, color.RGBA{R: 200, A: 0xff}))
	host := NewStillSource(solidImage(16, 9, color.RGBA{B: 200, A: 0xff}))
	c := New(DefaultConfig(), surface, guest, host, nil)

	start := time.Now()
	c.RenderFrame(start)
	if got := surface.Image().RGBAAt(8, 4); got.R < 190 {
		t.Fatalf("initial frame pixel = %+v, want guest red", got)
	}

	// Switch to host; half way through the 200ms fade both views
	// should contribute.
	c.SetActiveSpeaker(types.SpeakerHost, start)
	c.RenderFrame(start.Add(100 * time.Millisecond))
	mid := surface.Image().RGBAAt(8, 4)
	if mid.B < 90 || mid.B > 210 || mid.R < 90 || mid.R > 210 {
		t.Errorf("mid-fade pixel = %+v, want a blend of red and blue", mid)
	}

	// After the fade only the host remains.
	c.RenderFrame(start.Add(250 * time.Millisecond))
	end := surface.Image().RGBAAt(8, 4)
	if end.B < 190 || end.R > 20 {
		t.Errorf("post-fade pixel = %+v, want host blue", end)
	}
}

func TestSetActiveSpeakerIgnoresNoneAndRepeat(t *testing.T) {
	surface := NewRasterSurface(16, 9, nil)
	c := New(DefaultConfig(), surface, NewFrameSource(), NewStillSource(nil), nil)

	now := time.Now()
	c.SetActiveSpeaker(types.SpeakerNone, now)
	if c.ActiveSpeaker() != types.SpeakerGuest {
		t.Error("none must not change the featured speaker")
	}

	c.SetActiveSpeaker(types.SpeakerHost, now)
	first := c.ActiveSpeaker()
	// Repeat must not restart the fade.
	c.SetActiveSpeaker(types.SpeakerHost, now.Add(time.Second))
	c.mu.Lock()
	fadeStart := c.fadeStart
	c.mu.Unlock()
	if first != types.SpeakerHost || !fadeStart.Equal(now) {
		t.Error("repeated speaker restarted the fade")
	}
}

func TestHostTalkingOverlay(t *testing.T) {
	surface := NewRasterSurface(16, 9, nil)
	host := NewStillSource(solidImage(16, 9, color.RGBA{A: 0xff})) // black avatar
	anim := NewFrameSource()
	anim.Update(solidImage(16, 9, color.RGBA{R: 255, G: 255, B: 255, A: 0xff}))
	c := New(DefaultConfig(), surface, NewFrameSource(), host, anim)

	start := time.Now()
	c.SetActiveSpeaker(types.SpeakerHost, start.Add(-time.Second))

	c.RenderFrame(start)
	quiet := surface.Image().RGBAAt(8, 4)

	c.SetHostTalking(true)
	c.RenderFrame(start.Add(33 * time.Millisecond))
	talking := surface.Image().RGBAAt(8, 4)

	if talking.R <= quiet.R {
		t.Errorf("talking overlay did not brighten the host view: %+v vs %+v", talking, quiet)
	}
	// 30% overlay of white on black lands well below half brightness.
	if talking.R > 128 {
		t.Errorf("overlay too strong: %+v", talking)
	}
}

func TestPresentDeliversFrames(t *testing.T) {
	frames := 0
	surface := NewRasterSurface(16, 9, func(img *image.RGBA) { frames++ })
	c := New(DefaultConfig(), surface, NewFrameSource(), NewStillSource(nil), nil)

	now := time.Now()
	for i := 0; i < 5; i++ {
		c.RenderFrame(now.Add(time.Duration(i) * 33 * time.Millisecond))
	}
	if frames != 5 {
		t.Errorf("presented %d frames, want 5", frames)
	}
}
