package audio

// Config describes a raw PCM stream.
type Config struct {
	SampleRate    int `json:"sample_rate"`
	Channels      int `json:"channels"`
	BitsPerSample int `json:"bits_per_sample"`
}

// InputConfig is the microphone format sent upstream.
func InputConfig() Config {
	return Config{SampleRate: InputSampleRate, Channels: 1, BitsPerSample: 16}
}

// OutputConfig is the synthesized voice format received downstream.
func OutputConfig() Config {
	return Config{SampleRate: OutputSampleRate, Channels: 1, BitsPerSample: 16}
}

// BytesPerSecond returns the stream's byte rate.
func (c Config) BytesPerSecond() int {
	return c.SampleRate * c.Channels * c.BitsPerSample / 8
}

// DurationMs returns how many milliseconds of audio n bytes hold.
func (c Config) DurationMs(n int) int {
	bps := c.BytesPerSecond()
	if bps == 0 {
		return 0
	}
	return n * 1000 / bps
}

// BytesForDurationMs returns the byte count for ms milliseconds of
// audio, aligned down to a whole frame.
func (c Config) BytesForDurationMs(ms int) int {
	n := c.BytesPerSecond() * ms / 1000
	frame := c.Channels * c.BitsPerSample / 8
	if frame == 0 {
		return n
	}
	return n - n%frame
}
