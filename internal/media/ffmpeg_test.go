package media

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeMockTool drops an executable script named tool into dir that prints
// output and exits with code.
func writeMockTool(t *testing.T, dir, tool, output string, code int) {
	t.Helper()

	mockPath := filepath.Join(dir, tool)
	var script string
	if runtime.GOOS == "windows" {
		mockPath += ".bat"
		script = "@echo off\necho " + output + "\nexit /b " + strconv.Itoa(code)
	} else {
		script = "#!/bin/sh\necho '" + output + "'\nexit " + strconv.Itoa(code)
	}
	require.NoError(t, os.WriteFile(mockPath, []byte(script), 0755))
}

func testFfmpeg() ffmpeg {
	return NewFfmpeg("ffmpeg", "ffprobe", 5*time.Second, zerolog.Nop())
}

// TestFfmpeg_ProbeDuration tests duration probing against a mocked ffprobe
func TestFfmpeg_ProbeDuration(t *testing.T) {
	tests := []struct {
		name        string
		mockOutput  string
		exitCode    int
		expected    float64
		expectError bool
	}{
		{
			name:       "Plain duration",
			mockOutput: "128.53",
			exitCode:   0,
			expected:   128.53,
		},
		{
			name:       "Trailing newline handled",
			mockOutput: "2.000000",
			exitCode:   0,
			expected:   2.0,
		},
		{
			name:        "Non-zero exit",
			mockOutput:  "128.53",
			exitCode:    1,
			expectError: true,
		},
		{
			name:        "Unparseable output",
			mockOutput:  "N/A",
			exitCode:    0,
			expectError: true,
		},
		{
			name:        "Empty output",
			mockOutput:  "",
			exitCode:    0,
			expectError: true,
		},
		{
			name:        "Zero duration rejected",
			mockOutput:  "0.0",
			exitCode:    0,
			expectError: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			mockDir := t.TempDir()
			writeMockTool(t, mockDir, "ffprobe", tt.mockOutput, tt.exitCode)

			originalPath := os.Getenv("PATH")
			defer os.Setenv("PATH", originalPath)
			os.Setenv("PATH", mockDir+":"+originalPath)

			ff := testFfmpeg()
			duration, err := ff.ProbeDuration(context.Background(), "dummy.mp4")

			if tt.expectError {
				assert.Error(t, err)
				assert.ErrorIs(t, err, ErrProbeFailed)
			} else {
				assert.NoError(t, err)
				assert.InDelta(t, tt.expected, duration, 1e-6)
			}
		})
	}
}

// TestFfmpeg_Transcode tests the ffmpeg invocation against mocked binaries
func TestFfmpeg_Transcode(t *testing.T) {
	mockDir := t.TempDir()
	writeMockTool(t, mockDir, "ffmpeg", "frame processed", 0)

	originalPath := os.Getenv("PATH")
	defer os.Setenv("PATH", originalPath)
	os.Setenv("PATH", mockDir+":"+originalPath)

	ff := testFfmpeg()
	err := ff.Transcode(context.Background(), TranscodeRequest{
		Input:    "in.mp4",
		Output:   "out.mp4",
		Duration: 12.5,
		Kind:     StreamVideo,
	})
	assert.NoError(t, err)
}

func TestFfmpeg_TranscodeFailure(t *testing.T) {
	mockDir := t.TempDir()
	writeMockTool(t, mockDir, "ffmpeg", "Invalid data found when processing input", 1)

	originalPath := os.Getenv("PATH")
	defer os.Setenv("PATH", originalPath)
	os.Setenv("PATH", mockDir+":"+originalPath)

	ff := testFfmpeg()
	err := ff.Transcode(context.Background(), TranscodeRequest{
		Input:    "in.mp3",
		Output:   "out.mp3",
		Duration: 3,
		Kind:     StreamAudio,
	})
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrEncodeFailed)
	assert.Contains(t, err.Error(), "Invalid data")
}

func TestFfmpeg_TranscodeTimeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("sleep-based mock not portable to windows")
	}

	mockDir := t.TempDir()
	mockPath := filepath.Join(mockDir, "ffmpeg")
	script := "#!/bin/sh\nsleep 5\nexit 0"
	require.NoError(t, os.WriteFile(mockPath, []byte(script), 0755))

	originalPath := os.Getenv("PATH")
	defer os.Setenv("PATH", originalPath)
	os.Setenv("PATH", mockDir+":"+originalPath)

	ff := NewFfmpeg("ffmpeg", "ffprobe", 100*time.Millisecond, zerolog.Nop())

	start := time.Now()
	err := ff.Transcode(context.Background(), TranscodeRequest{
		Input:    "in.mp4",
		Output:   "out.mp4",
		Duration: 1,
		Kind:     StreamVideo,
	})
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 3*time.Second, "deadline should cut the run short")
}

// TestFfmpeg_probeDurationArgs tests the probe args builder
func TestFfmpeg_probeDurationArgs(t *testing.T) {
	ff := testFfmpeg()
	args := ff.probeDurationArgs("/path/to/video.mp4")

	expected := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		"/path/to/video.mp4",
	}

	assert.Equal(t, expected, args)
}

func TestFfmpeg_transcodeArgs(t *testing.T) {
	ff := testFfmpeg()

	tests := []struct {
		name     string
		req      TranscodeRequest
		expected []string
	}{
		{
			name: "mp4 video",
			req:  TranscodeRequest{Input: "a.mp4", Output: "b.mp4", Duration: 10, Kind: StreamVideo},
			expected: []string{
				"-i", "a.mp4", "-t", "10.000",
				"-c:v", "libx264", "-c:a", "aac",
				"-y", "b.mp4",
			},
		},
		{
			name: "avi video falls back to xvid",
			req:  TranscodeRequest{Input: "a.avi", Output: "b.avi", Duration: 2.5, Kind: StreamVideo},
			expected: []string{
				"-i", "a.avi", "-t", "2.500",
				"-c:v", "libxvid", "-c:a", "mp3",
				"-y", "b.avi",
			},
		},
		{
			name: "wav audio",
			req:  TranscodeRequest{Input: "a.wav", Output: "b.wav", Duration: 61.2, Kind: StreamAudio},
			expected: []string{
				"-i", "a.wav", "-t", "61.200",
				"-c:a", "pcm_s16le",
				"-y", "b.wav",
			},
		},
		{
			name: "unknown audio container defaults to lame",
			req:  TranscodeRequest{Input: "a.xyz", Output: "b.xyz", Duration: 1, Kind: StreamAudio},
			expected: []string{
				"-i", "a.xyz", "-t", "1.000",
				"-c:a", "libmp3lame",
				"-y", "b.xyz",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ff.transcodeArgs(tt.req))
		})
	}
}

func TestFfmpeg_renderClipArgs(t *testing.T) {
	ff := testFfmpeg()
	args := ff.renderClipArgs("base.mp4", DefaultClipSpec())

	expected := []string{
		"-f", "lavfi",
		"-i", "color=c=red:s=160x120:r=10:d=2.000",
		"-pix_fmt", "yuv420p",
		"-y", "base.mp4",
	}

	assert.Equal(t, expected, args)
}

func TestAudioCodecArgs(t *testing.T) {
	assert.Equal(t, []string{"-c:a", "libmp3lame"}, audioCodecArgs("mp3"))
	assert.Equal(t, []string{"-c:a", "aac"}, audioCodecArgs("m4a"))
	assert.Equal(t, []string{"-c:a", "libvorbis"}, audioCodecArgs("ogg"))
	assert.Equal(t, []string{"-c:a", "wmav2"}, audioCodecArgs("wma"))
	assert.Equal(t, []string{"-c:a", "libmp3lame"}, audioCodecArgs("unknown"))
}

// TestNewFfmpeg tests constructor defaults
func TestNewFfmpeg(t *testing.T) {
	ff := NewFfmpeg("", "", 0, zerolog.Nop())
	assert.Equal(t, "ffmpeg", ff.ffmpegCmd)
	assert.Equal(t, "ffprobe", ff.ffprobeCmd)
}

// TestErrorCases tests error handling when the tooling is absent
func TestErrorCases(t *testing.T) {
	originalPath := os.Getenv("PATH")
	defer os.Setenv("PATH", originalPath)

	// Clear PATH to simulate the tooling not being available
	os.Setenv("PATH", "")

	ff := testFfmpeg()

	assert.Error(t, ff.Check())

	_, err := ff.ProbeDuration(context.Background(), "test.mp4")
	assert.ErrorIs(t, err, ErrProbeFailed)

	err = ff.Transcode(context.Background(), TranscodeRequest{Input: "a", Output: "b.mp3", Duration: 1, Kind: StreamAudio})
	assert.ErrorIs(t, err, ErrEncodeFailed)
}
