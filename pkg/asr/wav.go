package asr

import (
	"bytes"
	"encoding/binary"

	"github.com/babelbridge/babelbridge/pkg/audio/pcm"
)

// wrapWAV wraps raw PCM data in a minimal RIFF/WAVE container so transcription
// backends that expect a self-describing file can consume it.
func wrapWAV(data []byte, format pcm.Format) []byte {
	var buf bytes.Buffer
	buf.Grow(44 + len(data))

	channels := uint16(format.Channels())
	rate := uint32(format.SampleRate())
	depth := uint16(format.Depth())
	blockAlign := channels * depth / 8
	byteRate := rate * uint32(blockAlign)

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(data)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, channels)
	binary.Write(&buf, binary.LittleEndian, rate)
	binary.Write(&buf, binary.LittleEndian, byteRate)
	binary.Write(&buf, binary.LittleEndian, blockAlign)
	binary.Write(&buf, binary.LittleEndian, depth)

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(data)))
	buf.Write(data)

	return buf.Bytes()
}
