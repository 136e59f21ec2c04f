package analysis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"aasha-server/internal/models"
)

// ErrCaptureDenied means the module's audio or camera payload is missing or
// unusable. The module cannot proceed until the capture is retried.
var ErrCaptureDenied = errors.New("capture unavailable")

// ErrInvalidInput means questionnaire or symptom input referenced something
// outside the catalog.
var ErrInvalidInput = errors.New("invalid module input")

// CheckInput verifies that in carries what module needs. Media payloads are
// sniffed, not trusted by their declared type. maxBytes <= 0 disables the
// size check.
func CheckInput(module models.ModuleType, in Input, maxBytes int64) error {
	switch module {
	case models.ModuleTB:
		return checkMedia(module, in.Audio, maxBytes, isAudio)
	case models.ModuleSkin, models.ModuleAnemia:
		return checkMedia(module, in.Image, maxBytes, isImage)
	case models.ModuleMaternal:
		for key := range in.Answers {
			if !models.IsWarningSign(key) {
				return fmt.Errorf("%w: unknown maternal question %q", ErrInvalidInput, key)
			}
		}
		return nil
	case models.ModuleTriage:
		for _, s := range in.Symptoms {
			if !models.IsTriageSymptom(s) {
				return fmt.Errorf("%w: unknown triage symptom %q", ErrInvalidInput, s)
			}
		}
		return nil
	}
	return fmt.Errorf("%w: unknown module %q", ErrInvalidInput, module)
}

func checkMedia(module models.ModuleType, payload []byte, maxBytes int64, accept func(*mimetype.MIME) bool) error {
	if len(payload) == 0 {
		return fmt.Errorf("%w: %s needs a capture", ErrCaptureDenied, module)
	}
	if maxBytes > 0 && int64(len(payload)) > maxBytes {
		return fmt.Errorf("%w: %s capture is %d bytes, limit %d", ErrCaptureDenied, module, len(payload), maxBytes)
	}
	mt := mimetype.Detect(payload)
	if !accept(mt) {
		return fmt.Errorf("%w: %s capture has type %s", ErrCaptureDenied, module, mt.String())
	}
	return nil
}

func isAudio(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "audio/") {
			return true
		}
	}
	// Browser recorders emit webm/ogg containers.
	return mt.Is("video/webm") || mt.Is("application/ogg")
}

func isImage(mt *mimetype.MIME) bool {
	return strings.HasPrefix(mt.String(), "image/")
}
