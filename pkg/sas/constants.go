package sas

import (
	"github.com/gagliardetto/solana-go"
)

var (
	// ProgramID is the Solana Attestation Service program.
	ProgramID       = solana.MustPublicKeyFromBase58("22zoJMtdu4tQc2PzL74ZUT7FrwgB1Udec8DdW4yw4BdG")
	SystemProgramID = solana.MustPublicKeyFromBase58("11111111111111111111111111111111")
)

const (
	CredentialSeed      = "credential"
	SchemaSeed          = "schema"
	AttestationSeed     = "attestation"
	AttestationMintSeed = "attestation_mint"
	SchemaMintSeed      = "schema_mint"
	SasSeed             = "sas"
)

type InstructionDiscriminator uint8

const (
	DiscriminatorCreateCredential           InstructionDiscriminator = 0
	DiscriminatorCreateSchema               InstructionDiscriminator = 1
	DiscriminatorChangeSchemaStatus         InstructionDiscriminator = 2
	DiscriminatorChangeAuthorizedSigners    InstructionDiscriminator = 3
	DiscriminatorChangeSchemaDescription    InstructionDiscriminator = 4
	DiscriminatorChangeSchemaVersion        InstructionDiscriminator = 5
	DiscriminatorCreateAttestation          InstructionDiscriminator = 6
	DiscriminatorCloseAttestation           InstructionDiscriminator = 7
	DiscriminatorTokenizeSchema             InstructionDiscriminator = 9
	DiscriminatorCreateTokenizedAttestation InstructionDiscriminator = 10
	DiscriminatorCloseTokenizedAttestation  InstructionDiscriminator = 11
)

type AccountDiscriminator uint8

const (
	AccountCredential  AccountDiscriminator = 0
	AccountSchema      AccountDiscriminator = 1
	AccountAttestation AccountDiscriminator = 2
)

const (
	DefaultSchemaVersion uint8 = 1
	// MaxNameLength follows from the seed limit; names are used as PDA seeds.
	MaxNameLength = 32
)
