package pda

import (
	"crypto/sha256"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/gagliardetto/solana-go"
)

const (
	// MaxSeeds bounds the seed list handed to CreateProgramAddress, bump included.
	MaxSeeds = 16
	// MaxSeedLength bounds every individual seed.
	MaxSeedLength = 32

	domainTag = "ProgramDerivedAddress"
)

// DerivedAddress is the result of a successful derivation.
type DerivedAddress struct {
	Address solana.PublicKey
	Bump    uint8
}

// Seeds returns the full seed list, bump included, that recreates Address
// through CreateProgramAddress.
func (d DerivedAddress) Seeds(seeds ...[]byte) [][]byte {
	full := make([][]byte, 0, len(seeds)+1)
	full = append(full, seeds...)
	return append(full, []byte{d.Bump})
}

// Derive finds the canonical program-derived address for programID and seeds.
func Derive(programID solana.PublicKey, seeds ...[]byte) (DerivedAddress, error) {
	if len(seeds) > MaxSeeds-1 {
		return DerivedAddress{}, fmt.Errorf("%w: %d seeds, at most %d allowed before the bump", ErrTooManySeeds, len(seeds), MaxSeeds-1)
	}
	if err := validateSeeds(seeds); err != nil {
		return DerivedAddress{}, err
	}

	candidate := make([][]byte, len(seeds)+1)
	copy(candidate, seeds)
	bumpSeed := []byte{0}
	candidate[len(seeds)] = bumpSeed

	for bump := 255; bump >= 0; bump-- {
		bumpSeed[0] = uint8(bump)
		address := hashSeeds(programID, candidate)
		if !IsOnCurve(address[:]) {
			return DerivedAddress{Address: address, Bump: uint8(bump)}, nil
		}
	}

	return DerivedAddress{}, fmt.Errorf("%w for program %s", ErrDerivationExhausted, programID)
}

// MustDerive is Derive for constant seeds. It panics on error.
func MustDerive(programID solana.PublicKey, seeds ...[]byte) DerivedAddress {
	derived, err := Derive(programID, seeds...)
	if err != nil {
		panic(err)
	}
	return derived
}

// CreateProgramAddress hashes seeds exactly once. Callers pass the bump as
// the last seed.
func CreateProgramAddress(programID solana.PublicKey, seeds ...[]byte) (solana.PublicKey, error) {
	if len(seeds) > MaxSeeds {
		return solana.PublicKey{}, fmt.Errorf("%w: %d seeds, at most %d allowed", ErrTooManySeeds, len(seeds), MaxSeeds)
	}
	if err := validateSeeds(seeds); err != nil {
		return solana.PublicKey{}, err
	}

	address := hashSeeds(programID, seeds)
	if IsOnCurve(address[:]) {
		return solana.PublicKey{}, ErrOnCurve
	}
	return address, nil
}

// IsOnCurve reports whether b decodes to a valid edwards25519 point, which
// means it could be an ed25519 public key.
func IsOnCurve(b []byte) bool {
	if len(b) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

func validateSeeds(seeds [][]byte) error {
	for index, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return fmt.Errorf("%w: seed %d is %d bytes, limit is %d", ErrMaxSeedLengthExceeded, index, len(seed), MaxSeedLength)
		}
	}
	return nil
}

func hashSeeds(programID solana.PublicKey, seeds [][]byte) solana.PublicKey {
	hasher := sha256.New()
	for _, seed := range seeds {
		hasher.Write(seed)
	}
	hasher.Write(programID[:])
	hasher.Write([]byte(domainTag))

	var address solana.PublicKey
	copy(address[:], hasher.Sum(nil))
	return address
}
