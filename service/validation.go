package service

import (
	"errors"
	"regexp"

	"github.com/zlnvch/stylussphere/models"
)

// ErrInvalidInput marks caller mistakes so the transport layer can
// answer 400 instead of 500.
var ErrInvalidInput = errors.New("invalid input")

var usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

const (
	maxUsernameLength = 64
	maxPasswordLength = 256
	maxColorLength    = 32

	// Data URLs of full-screen canvases run to a couple of MB; anything
	// beyond this is rejected rather than stored.
	maxSnapshotBytes = 10 << 20
)

func ValidateUsername(username string) error {
	if len(username) == 0 {
		return errors.New("username required")
	}
	if len(username) > maxUsernameLength {
		return errors.New("username too long")
	}
	if !usernameRegex.MatchString(username) {
		return errors.New("username contains invalid characters")
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) == 0 {
		return errors.New("password required")
	}
	if len(password) > maxPasswordLength {
		return errors.New("password too long")
	}
	return nil
}

// ValidateStroke checks structural shape only. Coordinate ranges are
// not enforced; clients clip to their own viewport.
func ValidateStroke(segment models.StrokeSegment) error {
	if segment.Mode != models.ModeDraw && segment.Mode != models.ModeErase {
		return errors.New("invalid stroke mode")
	}
	if len(segment.Color) == 0 {
		return errors.New("stroke color required")
	}
	if len(segment.Color) > maxColorLength {
		return errors.New("stroke color too long")
	}
	return nil
}

func ValidateSnapshotPayload(payload []byte) error {
	if len(payload) == 0 {
		return errors.New("snapshot payload required")
	}
	if len(payload) > maxSnapshotBytes {
		return errors.New("snapshot payload too large")
	}
	return nil
}
