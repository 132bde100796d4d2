package extract

import (
	"path/filepath"
	"regexp"
	"strings"
)

var audioExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".ogg":  true,
	".flac": true,
	".aac":  true,
}

// IsAudio reports whether the input should go through transcription
// instead of text extraction.
func IsAudio(mediaType, filename string) bool {
	if mt := normalizeMediaType(mediaType); strings.HasPrefix(mt, "audio/") {
		return true
	}
	return audioExtensions[strings.ToLower(filepath.Ext(filename))]
}

// speakerLinePattern matches "Name: said something" transcript lines.
// The name is capped at 40 chars so prose sentences with a colon deep in
// the line do not count as speaker turns.
var speakerLinePattern = regexp.MustCompile(`(?m)^[^:\n]{1,40}:`)

// EnsureSpeakerTurns wraps a transcript without speaker-labeled lines as a
// single synthetic turn. Analysis prompts assume turn-structured input, and
// whisper-style transcribers return flat prose.
func EnsureSpeakerTurns(transcript string) string {
	t := strings.TrimSpace(transcript)
	if t == "" {
		return t
	}
	if speakerLinePattern.MatchString(t) {
		return t
	}
	return "Speaker 1: " + t
}
