package pda

import "errors"

var (
	ErrDerivationExhausted   = errors.New("unable to find a viable program address bump seed")
	ErrMaxSeedLengthExceeded = errors.New("seed exceeds maximum seed length")
	ErrTooManySeeds          = errors.New("too many seeds")
	ErrOnCurve               = errors.New("derived address lies on the ed25519 curve")
)
