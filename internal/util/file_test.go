package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetFileType(t *testing.T) {
	cases := map[string]string{
		"photo.JPG":   "image",
		"shot.heic":   "image",
		"live.livp":   "image",
		"voice.m4a":   "audio",
		"memo.MP3":    "audio",
		"report.pdf":  "document",
		"binary.exe":  "unknown",
		"noextension": "unknown",
	}

	for name, want := range cases {
		assert.Equal(t, want, GetFileType(name), name)
	}
}
