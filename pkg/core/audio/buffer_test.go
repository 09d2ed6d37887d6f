package audio

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestWindowBufferPopsFixedWindows(t *testing.T) {
	wb := NewWindowBuffer(4)

	wb.Write([]float32{1, 2, 3})
	if _, ok := wb.Next(); ok {
		t.Fatal("partial window should not pop")
	}

	wb.Write([]float32{4, 5, 6, 7, 8, 9})
	first, ok := wb.Next()
	if !ok {
		t.Fatal("expected a full window")
	}
	if first[0] != 1 || first[3] != 4 {
		t.Errorf("first window = %v, want [1 2 3 4]", first)
	}

	second, ok := wb.Next()
	if !ok {
		t.Fatal("expected a second window")
	}
	if second[0] != 5 || second[3] != 8 {
		t.Errorf("second window = %v, want [5 6 7 8]", second)
	}

	if _, ok := wb.Next(); ok {
		t.Error("one pending sample should not pop")
	}
	if wb.Pending() != 1 {
		t.Errorf("Pending = %d, want 1", wb.Pending())
	}
}

func TestByteBuffer(t *testing.T) {
	b := NewByteBuffer()
	b.Write([]byte{1, 2})
	b.Write([]byte{3})
	if b.Len() != 3 {
		t.Errorf("Len = %d, want 3", b.Len())
	}
	got := b.Bytes()
	got[0] = 99
	if b.Bytes()[0] != 1 {
		t.Error("Bytes must return a copy")
	}
	b.Reset()
	if b.Len() != 0 {
		t.Error("Reset should empty the buffer")
	}
}

func TestConfigMath(t *testing.T) {
	cfg := OutputConfig()
	if got := cfg.BytesPerSecond(); got != 48000 {
		t.Errorf("BytesPerSecond = %d, want 48000", got)
	}
	if got := cfg.DurationMs(48000); got != 1000 {
		t.Errorf("DurationMs(48000) = %d, want 1000", got)
	}
	if got := cfg.BytesForDurationMs(1000); got != 48000 {
		t.Errorf("BytesForDurationMs(1000) = %d, want 48000", got)
	}
	if got := cfg.BytesForDurationMs(1) % 2; got != 0 {
		t.Error("BytesForDurationMs must align to whole frames")
	}
}

func TestWriteWAVHeader(t *testing.T) {
	pcm := make([]byte, 3200)
	var buf bytes.Buffer
	if err := WriteWAV(&buf, pcm, InputConfig()); err != nil {
		t.Fatal(err)
	}
	out := buf.Bytes()
	if len(out) != 44+len(pcm) {
		t.Fatalf("output = %d bytes, want %d", len(out), 44+len(pcm))
	}
	if string(out[0:4]) != "RIFF" || string(out[8:12]) != "WAVE" {
		t.Error("missing RIFF/WAVE magic")
	}
	if rate := binary.LittleEndian.Uint32(out[24:28]); rate != 16000 {
		t.Errorf("sample rate = %d, want 16000", rate)
	}
	if size := binary.LittleEndian.Uint32(out[40:44]); size != uint32(len(pcm)) {
		t.Errorf("data size = %d, want %d", size, len(pcm))
	}
}
