package player

import (
	"fmt"
	"math"
	"strings"
)

// ResolveAudioURL turns a stored audio_url into something the element can load.
// Full URLs, which uploads now persist, pass through untouched; the other rules
// cover rows written before the bucket was recorded.
func ResolveAudioURL(base, audioPath string) string {
	base = strings.TrimRight(base, "/")
	switch {
	case audioPath == "":
		return ""
	case strings.HasPrefix(audioPath, "http"):
		return audioPath
	case strings.HasPrefix(audioPath, "/"):
		return base + audioPath
	case strings.Contains(audioPath, "/imagens/"):
		return base + "/api/files/" + audioPath
	case strings.HasSuffix(audioPath, ".mp3"):
		if strings.Contains(audioPath, "/") {
			return base + "/api/files/" + audioPath
		}
		return base + "/api/files/audios/" + audioPath
	default:
		return base + "/api/files/audios/" + fileName(audioPath)
	}
}

// AlternativeAudioURL swaps the audios bucket for imagens. Any other URL is
// returned unchanged, meaning there is no alternative.
func AlternativeAudioURL(base, current string) string {
	if !strings.Contains(current, "/audios/") {
		return current
	}
	return strings.TrimRight(base, "/") + "/api/files/imagens/" + fileName(current)
}

func fileName(p string) string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}

// FormatTime renders seconds as m:ss.
func FormatTime(sec float64) string {
	if math.IsNaN(sec) || math.IsInf(sec, 0) || sec < 0 {
		sec = 0
	}
	total := int(sec)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
