// Package pda derives Solana program-derived addresses (PDAs).
//
// A PDA is a deterministic, off-curve 32-byte address computed from a program
// ID and an ordered list of seed byte strings. Because no ed25519 private key
// exists for an off-curve point, only the owning program can sign for it.
//
// # Derivation
//
// Derive walks the bump seed from 255 down to 0 and returns the first
// candidate whose SHA-256 digest of
//
//	seeds... || [bump] || programID || "ProgramDerivedAddress"
//
// does not decode to an edwards25519 point:
//
//	derived, err := pda.Derive(programID, []byte("credential"), authority.Bytes(), []byte("test28"))
//	fmt.Println(derived.Address, derived.Bump)
//
// Seed order is part of the input. Reordering seeds yields a different address.
//
// This package is part of the SAS SDK for Go.
package pda
