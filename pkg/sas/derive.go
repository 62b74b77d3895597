package sas

import (
	"github.com/gagliardetto/solana-go"

	"github.com/sas-community/sas-sdk-go/pkg/pda"
)

// DeriveCredentialPda derives the credential account of authority named name.
func DeriveCredentialPda(authority solana.PublicKey, name string) (pda.DerivedAddress, error) {
	return pda.Derive(ProgramID, []byte(CredentialSeed), authority.Bytes(), []byte(name))
}

// DeriveSchemaPda derives a schema account. The version is a single byte seed.
func DeriveSchemaPda(credential solana.PublicKey, name string, version uint8) (pda.DerivedAddress, error) {
	return pda.Derive(ProgramID, []byte(SchemaSeed), credential.Bytes(), []byte(name), []byte{version})
}

// DeriveAttestationPda derives an attestation account. The nonce makes
// multiple attestations under one schema distinct.
func DeriveAttestationPda(credential solana.PublicKey, schema solana.PublicKey, nonce solana.PublicKey) (pda.DerivedAddress, error) {
	return pda.Derive(ProgramID, []byte(AttestationSeed), credential.Bytes(), schema.Bytes(), nonce.Bytes())
}

func DeriveAttestationMintPda(attestation solana.PublicKey) (pda.DerivedAddress, error) {
	return pda.Derive(ProgramID, []byte(AttestationMintSeed), attestation.Bytes())
}

func DeriveSchemaMintPda(schema solana.PublicKey) (pda.DerivedAddress, error) {
	return pda.Derive(ProgramID, []byte(SchemaMintSeed), schema.Bytes())
}

// DeriveSasAuthorityAddress derives the program authority that owns
// tokenized attestation mints.
func DeriveSasAuthorityAddress() (pda.DerivedAddress, error) {
	return pda.Derive(ProgramID, []byte(SasSeed))
}
