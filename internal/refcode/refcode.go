package refcode

import (
	"crypto/rand"
	"fmt"

	"voyara/pkg/model"
)

const (
	alphabet    = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeLength  = 8
	totalLength = 2 + codeLength
)

// Generate produces a booking reference: the kind's two-letter prefix
// followed by eight random base-36 characters, e.g. "FL7K2M9Q1X". The
// caller must check the result against existing references; with eight
// random characters collisions are rare but possible, and the caller
// regenerates on collision.
func Generate(kind model.ResourceKind) (string, error) {
	profile := kind.Profile()
	if profile.ReferencePrefix == "" {
		return "", fmt.Errorf("no reference prefix for resource kind %q", kind)
	}

	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}

	return profile.ReferencePrefix + string(buf), nil
}

// Valid reports whether a string has the shape of a reference code:
// a known kind prefix followed by eight base-36 characters.
func Valid(reference string) bool {
	if len(reference) != totalLength {
		return false
	}
	prefix := reference[:2]
	known := false
	for _, kind := range []model.ResourceKind{model.KindFlight, model.KindYacht, model.KindCar, model.KindHotelRoom} {
		if kind.Profile().ReferencePrefix == prefix {
			known = true
			break
		}
	}
	if !known {
		return false
	}
	for i := 2; i < totalLength; i++ {
		c := reference[i]
		if (c < '0' || c > '9') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}
