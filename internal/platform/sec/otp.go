// Copyright (c) 2026 Atrium. All rights reserved.
// Author: vo.hoangminh.dev@gmail.com

package sec

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateNumericCode returns a random numeric one-time code of the given
// length, zero-padded (e.g. "042517" for length 6).
//
// # Randomness
//
// The code is drawn from crypto/rand. It guards a rate-limited, short-lived
// reset flow rather than anything long-lived, but it must still not be
// predictable from a weak PRNG seeded by wall-clock time.
func GenerateNumericCode(length int) (string, error) {
	if length < 4 || length > 10 {
		return "", fmt.Errorf("sec: unsupported code length %d", length)
	}

	// upperBound = 10^length, so n is uniform over [0, 10^length).
	upperBound := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)

	n, err := rand.Int(rand.Reader, upperBound)
	if err != nil {
		return "", fmt.Errorf("sec: failed to generate code: %w", err)
	}

	return fmt.Sprintf("%0*d", length, n), nil
}
