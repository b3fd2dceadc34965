package generate

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteWAV_ExactSizeAndHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	const target = int64(2048)

	require.NoError(t, WriteWAV(path, target))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data, int(target))

	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, "WAVE", string(data[8:12]))
	assert.Equal(t, "fmt ", string(data[12:16]))
	assert.Equal(t, "data", string(data[36:40]))

	riffLen := binary.LittleEndian.Uint32(data[4:8])
	dataLen := binary.LittleEndian.Uint32(data[40:44])
	assert.Equal(t, uint32(target-8), riffLen)
	assert.Equal(t, uint32(target-44), dataLen)

	channels := binary.LittleEndian.Uint16(data[22:24])
	sampleRate := binary.LittleEndian.Uint32(data[24:28])
	bits := binary.LittleEndian.Uint16(data[34:36])
	assert.Equal(t, uint16(2), channels)
	assert.Equal(t, uint32(44100), sampleRate)
	assert.Equal(t, uint16(16), bits)
}

func TestWriteWAV_HeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.wav")

	require.NoError(t, WriteWAV(path, 44))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(44), info.Size())
}

func TestWriteWAV_TargetBelowHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.wav")

	err := WriteWAV(path, 10)
	assert.ErrorIs(t, err, ErrBadTarget)
}

func TestSaturate32(t *testing.T) {
	assert.Equal(t, uint32(100), saturate32(100))
	assert.Equal(t, uint32(0xFFFFFFFF), saturate32(int64(0xFFFFFFFF)+5))
}
