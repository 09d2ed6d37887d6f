package audio

import "math"

// CalculateRMSEnergy computes the root-mean-square energy of 16-bit
// little-endian PCM, normalized to [0, 1].
func CalculateRMSEnergy(pcm []byte) float64 {
	if len(pcm) < 2 {
		return 0
	}
	var sum float64
	n := len(pcm) / 2
	for i := 0; i+1 < len(pcm); i += 2 {
		sample := int16(pcm[i]) | int16(pcm[i+1])<<8
		f := float64(sample) / 32768.0
		sum += f * f
	}
	return math.Sqrt(sum / float64(n))
}

// CalculatePeakAmplitude returns the largest absolute sample value of
// 16-bit little-endian PCM, normalized to [0, 1].
func CalculatePeakAmplitude(pcm []byte) float64 {
	var peak float64
	for i := 0; i+1 < len(pcm); i += 2 {
		sample := int16(pcm[i]) | int16(pcm[i+1])<<8
		f := math.Abs(float64(sample) / 32768.0)
		if f > peak {
			peak = f
		}
	}
	return peak
}

// levelGain maps full-scale RMS onto the 0-100 meter consumed by the
// speaker switcher. Conversational speech lands roughly between 10
// and 60 on this scale.
const levelGain = 200

// Level converts a PCM chunk to the 0-100 volume scale.
func Level(pcm []byte) float64 {
	return math.Min(100, CalculateRMSEnergy(pcm)*levelGain)
}

// LevelFromSamples is Level for float samples that have not been
// quantized yet.
func LevelFromSamples(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	rms := math.Sqrt(sum / float64(len(samples)))
	return math.Min(100, rms*levelGain)
}
