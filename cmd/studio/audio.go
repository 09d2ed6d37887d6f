package main

import (
	"log"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/gen2brain/malgo"

	"github.com/monumento/studio/pkg/core/audio"
)

// initAudio sets up the 16 kHz microphone capture and the 24 kHz
// speaker. Returns the mic, the speaker (a live.Sink), and a cleanup
// function.
func initAudio() (*micReader, *speakerSink, func()) {
	malgoConfig := malgo.ContextConfig{}
	malgoConfig.ThreadPriority = malgo.ThreadPriorityRealtime

	malgoCtx, err := malgo.InitContext(nil, malgoConfig, nil)
	if err != nil {
		log.Fatalf("Failed to init audio context: %v", err)
	}

	mic := newMicReader(malgoCtx.Context, audio.InputSampleRate, 1)

	// At 24kHz mono 16-bit: 4800 bytes = 100ms of audio.
	otoOpts := &oto.NewContextOptions{
		SampleRate:   audio.OutputSampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   4800,
	}
	otoCtx, ready, err := oto.NewContext(otoOpts)
	if err != nil {
		log.Fatalf("Failed to init speaker: %v", err)
	}
	<-ready

	speaker := newSpeakerSink(otoCtx)

	cleanup := func() {
		mic.Close()
		speaker.Close()
		malgoCtx.Uninit()
	}
	return mic, speaker, cleanup
}

// micReader captures 16-bit PCM from the default microphone.
type micReader struct {
	device *malgo.Device
	buf    []byte
	mu     sync.Mutex
	cond   *sync.Cond
	closed bool
}

func newMicReader(ctx malgo.Context, sampleRate, channels int) *micReader {
	m := &micReader{
		buf: make([]byte, 0, sampleRate*2),
	}
	m.cond = sync.NewCond(&m.mu)

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = uint32(channels)
	deviceConfig.SampleRate = uint32(sampleRate)
	deviceConfig.PeriodSizeInMilliseconds = 20

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, pInputSamples []byte, _ uint32) {
			m.mu.Lock()
			m.buf = append(m.buf, pInputSamples...)
			m.mu.Unlock()
			m.cond.Signal()
		},
	}

	device, err := malgo.InitDevice(ctx, deviceConfig, callbacks)
	if err != nil {
		log.Fatalf("Failed to init microphone: %v", err)
	}
	m.device = device

	if err := device.Start(); err != nil {
		log.Fatalf("Failed to start microphone: %v", err)
	}
	return m
}

// Read blocks until captured audio is available. Returns 0 after
// Close.
func (m *micReader) Read(p []byte) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	for len(m.buf) == 0 && !m.closed {
		m.cond.Wait()
	}
	if m.closed {
		return 0
	}

	n := copy(p, m.buf)
	m.buf = m.buf[n:]
	return n
}

func (m *micReader) Close() {
	m.mu.Lock()
	m.closed = true
	m.cond.Broadcast()
	m.mu.Unlock()

	if m.device != nil {
		m.device.Stop()
		m.device.Uninit()
	}
}

// speakerSink plays scheduled host audio through the speaker. It
// implements live.Sink and live.Flusher: Play appends to the pull
// buffer, Flush discards whatever has not reached the device yet.
type speakerSink struct {
	otoCtx  *oto.Context
	player  *oto.Player
	buf     []byte
	mu      sync.Mutex
	cond    *sync.Cond
	playing bool
	closed  bool
}

func newSpeakerSink(ctx *oto.Context) *speakerSink {
	s := &speakerSink{
		otoCtx: ctx,
		buf:    make([]byte, 0, audio.OutputSampleRate*4),
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Play queues one PCM chunk. The player starts on the first chunk.
func (s *speakerSink) Play(pcm []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buf = append(s.buf, pcm...)

	if !s.playing && !s.closed {
		s.playing = true
		s.player = s.otoCtx.NewPlayer(s)
		s.player.Play()
	}
	s.cond.Signal()
	return nil
}

// Read implements io.Reader for oto.Player, pulling queued audio.
func (s *speakerSink) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.buf) == 0 && !s.closed {
		s.cond.Wait()
	}

	if s.closed && len(s.buf) == 0 {
		// Silence lets oto drain gracefully.
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}

	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	return n, nil
}

// Flush drops queued audio after an interruption so stale speech does
// not overlap the host's next turn.
func (s *speakerSink) Flush() {
	s.mu.Lock()
	s.buf = s.buf[:0]

	if s.player != nil && s.playing {
		s.playing = false
		player := s.player
		s.player = nil
		s.mu.Unlock()

		player.Pause()
		player.Reset()
		player.Close()
		return
	}
	s.mu.Unlock()
}

func (s *speakerSink) Close() {
	s.mu.Lock()
	s.closed = true
	s.cond.Broadcast()
	s.mu.Unlock()

	if s.player != nil {
		s.player.Close()
	}
}
