package audio

import (
	"sync"
	"time"
)

// Buffer is decoded float PCM ready for playback.
type Buffer struct {
	Data       []float32
	SampleRate int
	Channels   int
}

// Duration is the playback length of the buffer.
func (b *Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 || b.Channels <= 0 {
		return 0
	}
	frames := len(b.Data) / b.Channels
	return time.Duration(frames) * time.Second / time.Duration(b.SampleRate)
}

// PCM16 re-quantizes the buffer back to interleaved 16-bit
// little-endian bytes for mixing and archival.
func (b *Buffer) PCM16() []byte {
	out := make([]byte, len(b.Data)*2)
	for i, s := range b.Data {
		v := quantize(s)
		out[i*2] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}
	return out
}

// WindowBuffer accumulates incoming samples and hands them back in
// fixed-size processing windows. Partial tails wait for more input.
type WindowBuffer struct {
	mu      sync.Mutex
	window  int
	pending []float32
}

// ProcessingWindow is the number of samples per outbound audio frame.
const ProcessingWindow = 2048

func NewWindowBuffer(window int) *WindowBuffer {
	if window <= 0 {
		window = ProcessingWindow
	}
	return &WindowBuffer{window: window}
}

// Write appends captured samples to the buffer.
func (w *WindowBuffer) Write(samples []float32) {
	w.mu.Lock()
	w.pending = append(w.pending, samples...)
	w.mu.Unlock()
}

// Next pops one full window, or returns false if fewer than a full
// window of samples is pending.
func (w *WindowBuffer) Next() ([]float32, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.pending) < w.window {
		return nil, false
	}
	out := make([]float32, w.window)
	copy(out, w.pending)
	w.pending = w.pending[:copy(w.pending, w.pending[w.window:])]
	return out, true
}

// Pending reports how many samples are waiting for a full window.
func (w *WindowBuffer) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// ByteBuffer accumulates raw PCM bytes across chunk boundaries.
type ByteBuffer struct {
	mu   sync.Mutex
	data []byte
}

func NewByteBuffer() *ByteBuffer {
	return &ByteBuffer{}
}

func (b *ByteBuffer) Write(p []byte) {
	b.mu.Lock()
	b.data = append(b.data, p...)
	b.mu.Unlock()
}

// Bytes returns a copy of the accumulated data.
func (b *ByteBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

func (b *ByteBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

func (b *ByteBuffer) Reset() {
	b.mu.Lock()
	b.data = b.data[:0]
	b.mu.Unlock()
}
