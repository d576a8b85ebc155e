package audio

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned when an upload is not one of the accepted
// containers.
var ErrUnsupportedFormat = errors.New("audio: unsupported format")

// ErrDecode wraps every failure to turn an accepted container into samples.
var ErrDecode = errors.New("audio: decode failed")

// Container identifies an accepted audio container.
type Container string

const (
	ContainerWAV  Container = "wav"
	ContainerFLAC Container = "flac"
	ContainerMP3  Container = "mp3"
	ContainerM4A  Container = "m4a"
	ContainerOGG  Container = "ogg"
)

var extensions = map[string]Container{
	".wav":  ContainerWAV,
	".wave": ContainerWAV,
	".flac": ContainerFLAC,
	".mp3":  ContainerMP3,
	".m4a":  ContainerM4A,
	".mp4":  ContainerM4A,
	".aac":  ContainerM4A,
	".ogg":  ContainerOGG,
	".oga":  ContainerOGG,
	".opus": ContainerOGG,
}

// SupportedExtensions lists the file extensions accepted for upload.
func SupportedExtensions() []string {
	return []string{".wav", ".flac", ".mp3", ".m4a", ".ogg"}
}

// Sniff identifies the container from the leading bytes of a file. It returns
// false when no known signature matches.
func Sniff(header []byte) (Container, bool) {
	switch {
	case len(header) >= 12 && bytes.Equal(header[:4], []byte("RIFF")) && bytes.Equal(header[8:12], []byte("WAVE")):
		return ContainerWAV, true
	case bytes.HasPrefix(header, []byte("fLaC")):
		return ContainerFLAC, true
	case bytes.HasPrefix(header, []byte("OggS")):
		return ContainerOGG, true
	case len(header) >= 8 && bytes.Equal(header[4:8], []byte("ftyp")):
		return ContainerM4A, true
	case bytes.HasPrefix(header, []byte("ID3")):
		return ContainerMP3, true
	case len(header) >= 2 && header[0] == 0xFF && header[1]&0xE0 == 0xE0:
		return ContainerMP3, true
	}
	return "", false
}

// DetectContainer resolves the container of an upload. The byte signature
// wins over the file name; an unrecognised signature falls back to the
// extension so that a truncated file with a valid name is reported as a
// decode failure rather than an unsupported format.
func DetectContainer(filename string, header []byte) (Container, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	byExt, extOK := extensions[ext]
	if ext != "" && !extOK {
		return "", fmt.Errorf("%w: extension %q", ErrUnsupportedFormat, ext)
	}
	if c, ok := Sniff(header); ok {
		return c, nil
	}
	if extOK {
		return byExt, nil
	}
	return "", fmt.Errorf("%w: unrecognised signature", ErrUnsupportedFormat)
}
