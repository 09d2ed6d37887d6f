package audio

import (
	"encoding/binary"
	"io"
)

// WriteWAV wraps raw 16-bit PCM in a RIFF/WAVE container.
func WriteWAV(w io.Writer, pcm []byte, cfg Config) error {
	byteRate := cfg.BytesPerSecond()
	blockAlign := cfg.Channels * cfg.BitsPerSample / 8

	var header [44]byte
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+len(pcm)))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], uint16(cfg.Channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(cfg.SampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], uint16(cfg.BitsPerSample))
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(len(pcm)))

	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err := w.Write(pcm)
	return err
}
