package audio

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"simpleink/logger"

	"github.com/dhowden/tag"
	"github.com/go-audio/wav"
	"github.com/mewkiz/flac"
	"github.com/tcolgate/mp3"
)

// Metadata 是从上传音频中读出的信息，读不到的字段保持零值
type Metadata struct {
	Title    string `json:"title,omitempty"`
	Artist   string `json:"artist,omitempty"`
	Album    string `json:"album,omitempty"`
	Duration int    `json:"duration,omitempty"` // 秒
	Format   string `json:"format,omitempty"`
}

// IsAudio reports whether name has an extension Probe understands.
func IsAudio(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp3", ".flac", ".wav":
		return true
	}
	return false
}

// Probe reads tags and duration from r. Failures are logged and leave fields empty.
// r is rewound to the start before returning.
func Probe(r io.ReadSeeker, name string) Metadata {
	var md Metadata
	defer r.Seek(0, io.SeekStart)

	if m, err := tag.ReadFrom(r); err == nil {
		md.Title = m.Title()
		md.Artist = m.Artist()
		md.Album = m.Album()
		md.Format = string(m.FileType())
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return md
	}

	d, err := duration(r, strings.ToLower(filepath.Ext(name)))
	if err != nil {
		logger.Debug("Failed to calculate duration", logger.String("file", name), logger.ErrorField(err))
		return md
	}
	md.Duration = d
	return md
}

func duration(r io.ReadSeeker, ext string) (int, error) {
	switch ext {
	case ".mp3":
		return durationMP3(r)
	case ".flac":
		return durationFLAC(r)
	case ".wav":
		return durationWAV(r)
	default:
		return 0, fmt.Errorf("unsupported format: %s", ext)
	}
}

// durationMP3 sums frame durations. A stream with no decodable frame is an error.
func durationMP3(r io.ReadSeeker) (int, error) {
	dec := mp3.NewDecoder(r)
	var total time.Duration
	var skipped, frames int
	for {
		var fr mp3.Frame
		if err := dec.Decode(&fr, &skipped); err != nil {
			if frames == 0 {
				if errors.Is(err, io.EOF) {
					return 0, errors.New("no mp3 frames found")
				}
				return 0, fmt.Errorf("no mp3 frames found: %w", err)
			}
			break
		}
		total += fr.Duration()
		frames++
	}
	return int(total.Seconds() + 0.5), nil
}

// durationFLAC uses the STREAMINFO block.
func durationFLAC(r io.ReadSeeker) (int, error) {
	// hide Close so the caller's reader stays open
	stream, err := flac.Parse(struct{ io.Reader }{r})
	if err != nil {
		return 0, err
	}
	si := stream.Info
	if si.NSamples == 0 || si.SampleRate == 0 {
		return 0, errors.New("flac stream missing sample info")
	}
	return int(float64(si.NSamples)/float64(si.SampleRate) + 0.5), nil
}

// durationWAV reads the header and derives the length from the PCM byte count.
func durationWAV(r io.ReadSeeker) (int, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return 0, errors.New("invalid wav file")
	}
	frameBytes := int64(dec.BitDepth/8) * int64(dec.NumChans)
	if dec.SampleRate == 0 || frameBytes <= 0 {
		return 0, errors.New("invalid wav header")
	}
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	pcm := size - 44
	if pcm < 0 {
		pcm = 0
	}
	return int(float64(pcm/frameBytes)/float64(dec.SampleRate) + 0.5), nil
}
