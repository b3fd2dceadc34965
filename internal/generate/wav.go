package generate

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/zhven/bytefit/internal/sizing"
)

const (
	wavHeaderBytes   = 44
	wavChannels      = 2
	wavSampleRate    = 44100
	wavBitsPerSample = 16
)

// WriteWAV writes a playable PCM WAV file of exactly target bytes: the 44
// byte RIFF header followed by noise frames. Header size fields saturate
// at 4 GiB, the limit of the RIFF format itself.
func WriteWAV(path string, target int64) error {
	if target < wavHeaderBytes {
		return fmt.Errorf("%w: wav needs at least %d bytes", ErrBadTarget, wavHeaderBytes)
	}
	dataLen := target - wavHeaderBytes

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := f.Write(wavHeader(dataLen)); err != nil {
		_ = f.Close()
		return fmt.Errorf("write wav header: %w", err)
	}

	buf := make([]byte, min(dataLen, int64(sizing.DefaultChunkBytes)))
	remaining := dataLen
	for remaining > 0 {
		writeLen := int64(len(buf))
		if remaining < writeLen {
			writeLen = remaining
		}
		if _, err := rand.Read(buf[:writeLen]); err != nil {
			_ = f.Close()
			return fmt.Errorf("noise source: %w", err)
		}
		if _, err := f.Write(buf[:writeLen]); err != nil {
			_ = f.Close()
			return fmt.Errorf("write wav frames: %w", err)
		}
		remaining -= writeLen
	}
	return f.Close()
}

func wavHeader(dataLen int64) []byte {
	const blockAlign = wavChannels * wavBitsPerSample / 8

	buf := make([]byte, 0, wavHeaderBytes)
	buf = append(buf, "RIFF"...)
	buf = binary.LittleEndian.AppendUint32(buf, saturate32(dataLen+36))
	buf = append(buf, "WAVE"...)
	buf = append(buf, "fmt "...)
	buf = binary.LittleEndian.AppendUint32(buf, 16)
	buf = binary.LittleEndian.AppendUint16(buf, 1) // PCM
	buf = binary.LittleEndian.AppendUint16(buf, wavChannels)
	buf = binary.LittleEndian.AppendUint32(buf, wavSampleRate)
	buf = binary.LittleEndian.AppendUint32(buf, wavSampleRate*blockAlign)
	buf = binary.LittleEndian.AppendUint16(buf, blockAlign)
	buf = binary.LittleEndian.AppendUint16(buf, wavBitsPerSample)
	buf = append(buf, "data"...)
	buf = binary.LittleEndian.AppendUint32(buf, saturate32(dataLen))
	return buf
}

func saturate32(n int64) uint32 {
	if n > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(n)
}
