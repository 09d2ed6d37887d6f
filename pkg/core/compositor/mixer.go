package compositor

import (
	"io"
	"sync"
	"time"

	"github.com/monumento/studio/pkg/core/audio"
)

// ChunkDurationMs is the archival capture granularity. Sealing the
// recording in one-second chunks bounds memory and lets callers flush
// incrementally.
const ChunkDurationMs = 1000

// Chunk is one sealed slice of the mixed archival track.
type Chunk struct {
	Index int
	Start time.Duration
	PCM   []byte
}

// Mixer combines the guest microphone and the tapped synthesized host
// speech into one archival track at the host's sample rate.
//
// The two tracks run on different clocks. Mic chunks arrive in real
// time and are placed at their wall-clock offset. Host chunks arrive
// in bursts faster than real time, so they are placed by a pacing
// cursor that advances by each chunk's duration, exactly mirroring how
// the playback scheduler spaces them.
type Mixer struct {
	mu      sync.Mutex
	micCfg  audio.Config
	hostCfg audio.Config
	onChunk func(Chunk)

	started    bool
	start      time.Time
	micTrack   []byte // at hostCfg rate, resampled on write
	hostTrack  []byte
	hostCursor int // byte offset into hostTrack timeline
	sealed     int // number of chunks already flushed
}

// NewMixer creates a mixer. onChunk, if non-nil, receives each sealed
// one-second chunk as the recording progresses.
func NewMixer(micCfg, hostCfg audio.Config, onChunk func(Chunk)) *Mixer {
	return &Mixer{
		micCfg:  micCfg,
		hostCfg: hostCfg,
		onChunk: onChunk,
	}
}

// Start marks the recording start. Writes before Start are dropped.
func (m *Mixer) Start(now time.Time) {
	m.mu.Lock()
	m.started = true
	m.start = now
	m.mu.Unlock()
}

// WriteMic places a guest microphone chunk at its wall-clock position.
// Gaps are zero-filled silence.
func (m *Mixer) WriteMic(pcm []byte, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return
	}

	resampled := audio.ResampleLinear(pcm, m.micCfg.SampleRate, m.hostCfg.SampleRate)
	offsetMs := int(now.Sub(m.start).Milliseconds()) - m.hostCfg.DurationMs(len(resampled))
	if offsetMs < 0 {
		offsetMs = 0
	}
	m.micTrack = placeAt(m.micTrack, m.hostCfg.BytesForDurationMs(offsetMs), resampled)
}

// WriteHost places a synthesized speech chunk at the pacing cursor.
// The cursor never runs behind the wall clock, so speech after a pause
// lands where it was actually heard.
func (m *Mixer) WriteHost(pcm []byte, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return
	}

	wallBytes := m.hostCfg.BytesForDurationMs(int(now.Sub(m.start).Milliseconds()))
	if m.hostCursor < wallBytes {
		m.hostCursor = wallBytes
	}
	m.hostTrack = placeAt(m.hostTrack, m.hostCursor, pcm)
	m.hostCursor += len(pcm)
}

// FlushHost discards scheduled-but-unplayed host audio after an
// interruption: the track is truncated back to the wall clock and the
// cursor rewound with it.
func (m *Mixer) FlushHost(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return
	}

	wallBytes := m.hostCfg.BytesForDurationMs(int(now.Sub(m.start).Milliseconds()))
	floor := m.sealedBytes()
	if wallBytes < floor {
		wallBytes = floor
	}
	if wallBytes < len(m.hostTrack) {
		m.hostTrack = m.hostTrack[:wallBytes]
	}
	m.hostCursor = wallBytes
}

// Advance seals every chunk whose full second has elapsed. The
// recorder calls this from its periodic sampling loop.
func (m *Mixer) Advance(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started || m.onChunk == nil {
		return
	}

	elapsed := int(now.Sub(m.start).Milliseconds())
	for (m.sealed+1)*ChunkDurationMs <= elapsed {
		m.sealLocked()
	}
}

// sealLocked mixes and emits the next chunk. Caller holds m.mu.
func (m *Mixer) sealLocked() {
	chunkBytes := m.hostCfg.BytesForDurationMs(ChunkDurationMs)
	from := m.sealed * chunkBytes
	to := from + chunkBytes

	pcm := audio.MixPCM16(sliceTrack(m.micTrack, from, to), sliceTrack(m.hostTrack, from, to))
	chunk := Chunk{
		Index: m.sealed,
		Start: time.Duration(m.sealed) * time.Second,
		PCM:   pcm,
	}
	m.sealed++
	m.onChunk(chunk)
}

func (m *Mixer) sealedBytes() int {
	return m.sealed * m.hostCfg.BytesForDurationMs(ChunkDurationMs)
}

// Mixed renders the full mixed track accumulated so far.
func (m *Mixer) Mixed() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return audio.MixPCM16(m.micTrack, m.hostTrack)
}

// Tracks returns copies of the two raw tracks, both at the host rate.
func (m *Mixer) Tracks() (mic, host []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mic = make([]byte, len(m.micTrack))
	copy(mic, m.micTrack)
	host = make([]byte, len(m.hostTrack))
	copy(host, m.hostTrack)
	return mic, host
}

// Persist writes the mixed track as a WAV container.
func (m *Mixer) Persist(w io.Writer) error {
	return audio.WriteWAV(w, m.Mixed(), m.hostCfg)
}

// placeAt writes pcm into track at the given byte offset, zero-filling
// any gap and mixing where ranges overlap.
func placeAt(track []byte, offset int, pcm []byte) []byte {
	end := offset + len(pcm)
	if len(track) < end {
		track = append(track, make([]byte, end-len(track))...)
	}
	for i := 0; i+1 < len(pcm); i += 2 {
		a := int32(int16(track[offset+i]) | int16(track[offset+i+1])<<8)
		b := int32(int16(pcm[i]) | int16(pcm[i+1])<<8)
		sum := a + b
		if sum > 32767 {
			sum = 32767
		} else if sum < -32768 {
			sum = -32768
		}
		track[offset+i] = byte(sum)
		track[offset+i+1] = byte(sum >> 8)
	}
	return track
}

func sliceTrack(track []byte, from, to int) []byte {
	if from >= len(track) {
		return make([]byte, to-from)
	}
	if to > len(track) {
		out := make([]byte, to-from)
		copy(out, track[from:])
		return out
	}
	return track[from:to]
}
