package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// ErrFFmpegUnavailable is returned when a container needs ffmpeg and no
// binary could be located.
var ErrFFmpegUnavailable = errors.New("audio: ffmpeg is not available")

// ffmpegDecode runs ffmpeg over data and returns mono s16le samples at
// sampleRate. The input is spooled to a temp file because MP4 containers
// (m4a) may keep their index at the end of the file and cannot be read from
// a pipe.
func ffmpegDecode(ctx context.Context, ffmpegPath string, data []byte, sampleRate int) ([]float32, error) {
	bin, err := resolveBinary(ffmpegPath)
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp("", "orator-*.audio")
	if err != nil {
		return nil, fmt.Errorf("audio: spool upload: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("audio: spool upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("audio: spool upload: %w", err)
	}

	// -vn: drop cover art streams
	// -ac 1 -ar N: downmix and resample inside ffmpeg
	cmd := exec.CommandContext(ctx, bin,
		"-hide_banner",
		"-loglevel", "error",
		"-nostdin",
		"-i", tmp.Name(),
		"-vn",
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
		"-f", "s16le",
		"pipe:1",
	)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("audio: ffmpeg interrupted: %w", ctx.Err())
		}
		errMsg := strings.TrimSpace(stderr.String())
		if errMsg == "" {
			errMsg = err.Error()
		}
		return nil, fmt.Errorf("%w: ffmpeg: %s", ErrDecode, errMsg)
	}

	raw := out.Bytes()
	samples := make([]int16, len(raw)/2)
	for i := range samples {
		samples[i] = int16(raw[i*2]) | int16(raw[i*2+1])<<8
	}
	return Int16ToFloat(samples), nil
}

// resolveBinary finds path on $PATH (or as given when absolute).
func resolveBinary(path string) (string, error) {
	if path == "" {
		path = "ffmpeg"
	}
	bin, err := exec.LookPath(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFFmpegUnavailable, err)
	}
	return bin, nil
}
