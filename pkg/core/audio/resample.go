package audio

// ResampleLinear converts mono 16-bit PCM between sample rates by
// linear interpolation. Good enough for voice; callers needing higher
// fidelity should resample upstream.
func ResampleLinear(pcm []byte, fromRate, toRate int) []byte {
	if fromRate == toRate || fromRate <= 0 || toRate <= 0 || len(pcm) < 2 {
		out := make([]byte, len(pcm))
		copy(out, pcm)
		return out
	}

	n := len(pcm) / 2
	outN := n * toRate / fromRate
	out := make([]byte, outN*2)

	for i := 0; i < outN; i++ {
		pos := float64(i) * float64(fromRate) / float64(toRate)
		j := int(pos)
		frac := pos - float64(j)

		s0 := int16(pcm[j*2]) | int16(pcm[j*2+1])<<8
		s1 := s0
		if j+1 < n {
			s1 = int16(pcm[(j+1)*2]) | int16(pcm[(j+1)*2+1])<<8
		}
		v := int16(float64(s0) + (float64(s1)-float64(s0))*frac)
		out[i*2] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}
	return out
}

// MixPCM16 sums two mono 16-bit PCM tracks sample by sample with
// saturation. The result is as long as the longer input.
func MixPCM16(a, b []byte) []byte {
	longer, shorter := a, b
	if len(b) > len(a) {
		longer, shorter = b, a
	}
	out := make([]byte, len(longer))
	copy(out, longer)

	for i := 0; i+1 < len(shorter); i += 2 {
		sa := int32(int16(out[i]) | int16(out[i+1])<<8)
		sb := int32(int16(shorter[i]) | int16(shorter[i+1])<<8)
		sum := sa + sb
		if sum > 32767 {
			sum = 32767
		} else if sum < -32768 {
			sum = -32768
		}
		out[i] = byte(sum)
		out[i+1] = byte(sum >> 8)
	}
	return out
}
