package audio

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
)

// pcmWAV builds a mono 16-bit PCM file of the given length.
func pcmWAV(seconds, sampleRate int) []byte {
	dataLen := seconds * sampleRate * 2
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataLen))
	buf.Write(make([]byte, dataLen))
	return buf.Bytes()
}

func TestProbeWAVDuration(t *testing.T) {
	r := bytes.NewReader(pcmWAV(3, 8000))
	md := Probe(r, "ponto.wav")
	if md.Duration != 3 {
		t.Errorf("expected 3s, got %d", md.Duration)
	}
	if pos, _ := r.Seek(0, io.SeekCurrent); pos != 0 {
		t.Errorf("reader not rewound, at %d", pos)
	}
}

func TestProbeUnknownFormat(t *testing.T) {
	md := Probe(bytes.NewReader([]byte("not audio")), "capa.png")
	if md != (Metadata{}) {
		t.Errorf("expected empty metadata, got %+v", md)
	}
}

func TestIsAudio(t *testing.T) {
	for name, want := range map[string]bool{"a.MP3": true, "b.flac": true, "c.wav": true, "d.png": false, "e": false} {
		if IsAudio(name) != want {
			t.Errorf("IsAudio(%q) != %v", name, want)
		}
	}
}

func TestProbeMP3WithoutFramesHasNoDuration(t *testing.T) {
	r := bytes.NewReader(bytes.Repeat([]byte("not really audio "), 300))
	md := Probe(r, "p1.mp3")
	if md.Duration != 0 {
		t.Errorf("expected no duration for bytes without mp3 frames, got %d", md.Duration)
	}
	if pos, _ := r.Seek(0, io.SeekCurrent); pos != 0 {
		t.Errorf("expected reader rewound, at %d", pos)
	}
}
