package sas

import (
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/sas-community/sas-sdk-go/pkg/txn"
)

// Credential is the on-chain issuer account.
type Credential struct {
	Authority         solana.PublicKey   `json:"authority"`
	Name              string             `json:"name"`
	AuthorizedSigners []solana.PublicKey `json:"authorized_signers"`
}

// Schema describes the layout of attestation data issued under a credential.
type Schema struct {
	Credential  solana.PublicKey `json:"credential"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Layout      []byte           `json:"layout"`
	FieldNames  []string         `json:"field_names"`
	IsPaused    bool             `json:"is_paused"`
	Version     uint8            `json:"version"`
}

// Attestation is one signed statement about a subject under a schema.
// TokenAccount is zero for plain attestations.
type Attestation struct {
	Nonce        solana.PublicKey `json:"nonce"`
	Credential   solana.PublicKey `json:"credential"`
	Schema       solana.PublicKey `json:"schema"`
	Data         []byte           `json:"data"`
	Signer       solana.PublicKey `json:"signer"`
	Expiry       int64            `json:"expiry"`
	TokenAccount solana.PublicKey `json:"token_account"`
}

// Expired reports whether the attestation has a non-zero expiry before now.
func (a Attestation) Expired(now time.Time) bool {
	return a.Expiry != 0 && a.Expiry < now.Unix()
}

type CreateCredentialParams struct {
	Payer      solana.PublicKey
	Authority  solana.PublicKey
	Credential solana.PublicKey
	Name       string
	Signers    []solana.PublicKey
}

type CreateSchemaParams struct {
	Payer       solana.PublicKey
	Authority   solana.PublicKey
	Credential  solana.PublicKey
	Schema      solana.PublicKey
	Name        string
	Description string
	Layout      []byte
	FieldNames  []string
}

type CreateAttestationParams struct {
	Payer       solana.PublicKey
	Authority   solana.PublicKey
	Credential  solana.PublicKey
	Schema      solana.PublicKey
	Attestation solana.PublicKey
	Nonce       solana.PublicKey
	Data        []byte
	Expiry      int64
}

type CreateTokenizedAttestationParams struct {
	CreateAttestationParams

	SchemaMint            solana.PublicKey
	AttestationMint       solana.PublicKey
	SasAuthority          solana.PublicKey
	Recipient             solana.PublicKey
	RecipientTokenAccount solana.PublicKey
	TokenProgram          solana.PublicKey
	AssociatedProgram     solana.PublicKey

	TokenName        string
	TokenSymbol      string
	TokenURI         string
	MintAccountSpace uint16
}

// ClientConfig configures a Client. KeypairPath is the Solana CLI keypair
// used as fee payer and authority; it is read once by NewClient.
type ClientConfig struct {
	Network        string
	RPCURL         string
	KeypairPath    string
	Commitment     string
	SkipPreflight  bool
	ConfirmTimeout time.Duration
	Logger         *zap.Logger
	Builder        InstructionBuilder
}

type CreateCredentialOptions struct {
	Name    string
	Signers []solana.PublicKey
}

type CreateSchemaOptions struct {
	CredentialName string
	Name           string
	Description    string
	Version        uint8
	Fields         []SchemaField
}

type CreateAttestationOptions struct {
	CredentialName string
	SchemaName     string
	SchemaVersion  uint8
	// Nonce defaults to the client authority.
	Nonce  solana.PublicKey
	Values map[string]any
	Expiry int64
}

type CreateTokenizedAttestationOptions struct {
	CreateAttestationOptions

	// Recipient defaults to the client authority.
	Recipient   solana.PublicKey
	TokenName   string
	TokenSymbol string
	TokenURI    string
}

type CreateCredentialResult struct {
	txn.Result
	Credential solana.PublicKey `json:"credential"`
}

type CreateSchemaResult struct {
	txn.Result
	Credential solana.PublicKey `json:"credential"`
	Schema     solana.PublicKey `json:"schema"`
}

type CreateAttestationResult struct {
	txn.Result
	Credential  solana.PublicKey `json:"credential"`
	Schema      solana.PublicKey `json:"schema"`
	Attestation solana.PublicKey `json:"attestation"`
}

type CreateTokenizedAttestationResult struct {
	CreateAttestationResult
	SchemaMint            solana.PublicKey `json:"schema_mint"`
	AttestationMint       solana.PublicKey `json:"attestation_mint"`
	SasAuthority          solana.PublicKey `json:"sas_authority"`
	RecipientTokenAccount solana.PublicKey `json:"recipient_token_account"`
	MintAccountSpace      int              `json:"mint_account_space"`
}
