package util

import (
	"bytes"
	"testing"
)

func TestValidateMimeType(t *testing.T) {
	// %PDF 魔数足以被 DetectContentType 识别
	pdf := []byte("%PDF-1.7 rest of file")

	mime, err := ValidateMimeType(bytes.NewReader(pdf), []string{MimePDF})
	if err != nil {
		t.Fatalf("ValidateMimeType: %v", err)
	}
	if mime != "application/pdf" {
		t.Fatalf("mime = %q, want application/pdf", mime)
	}

	if _, err := ValidateMimeType(bytes.NewReader(pdf), []string{MimeImage}); err == nil {
		t.Fatalf("pdf must be rejected when only images are allowed")
	}
}

func TestIsVideoFilename(t *testing.T) {
	for _, name := range []string{"lesson.mp4", "LESSON.MP4", "clip.webm", "old.mov"} {
		if !IsVideoFilename(name) {
			t.Fatalf("%q must be accepted as a video filename", name)
		}
	}
	for _, name := range []string{"slides.pdf", "video", "clip.mp3", "notes.txt"} {
		if IsVideoFilename(name) {
			t.Fatalf("%q must not be accepted as a video filename", name)
		}
	}
}

func TestIsAllowedDocMime(t *testing.T) {
	allowed := []string{
		"application/pdf",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	}
	for _, mime := range allowed {
		if !IsAllowedDocMime(mime) {
			t.Fatalf("%q must be an allowed document type", mime)
		}
	}
	if IsAllowedDocMime("video/mp4") || IsAllowedDocMime("text/html") {
		t.Fatalf("non-document types must be rejected")
	}
}
