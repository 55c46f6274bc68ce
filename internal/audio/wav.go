// Package audio records phrases and plays synthesized speech through
// external command-line tools, and frames raw PCM as WAV.
package audio

import (
	"bytes"
	"encoding/binary"
	"time"
)

// wavHeaderLen is the size of the canonical 44-byte PCM WAV header.
const wavHeaderLen = 44

// PCMToWAV wraps raw PCM data in a WAV container.
func PCMToWAV(pcm []byte, sampleRate, channels, bytesPerSample int) []byte {
	dataLen := len(pcm)

	buf := &bytes.Buffer{}
	buf.Grow(wavHeaderLen + dataLen)

	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate*channels*bytesPerSample))
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels*bytesPerSample))
	_ = binary.Write(buf, binary.LittleEndian, uint16(bytesPerSample*8))

	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(dataLen))
	buf.Write(pcm)

	return buf.Bytes()
}

// Silence returns d worth of zeroed PCM frames.
func Silence(d time.Duration, sampleRate, channels, bytesPerSample int) []byte {
	if d <= 0 {
		return nil
	}
	frames := int(d.Seconds() * float64(sampleRate))
	return make([]byte, frames*channels*bytesPerSample)
}

// HasSamples reports whether a WAV file carries any audio data past its header.
func HasSamples(wav []byte) bool {
	return len(wav) > wavHeaderLen
}
