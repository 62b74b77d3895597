package sas

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/sas-community/sas-sdk-go/pkg/shared"
	"github.com/sas-community/sas-sdk-go/pkg/token2022"
	"github.com/sas-community/sas-sdk-go/pkg/txn"
)

// RPC is the subset of *rpc.Client used by Client.
type RPC interface {
	txn.RPC
	GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error)
}

type Client struct {
	rpc        RPC
	submitter  *txn.Submitter
	builder    InstructionBuilder
	payer      solana.PrivateKey
	network    string
	commitment string
	logger     *zap.Logger
}

// NewClient creates a SAS client connected to the configured cluster. The
// keypair at KeypairPath pays for and authorizes every transaction.
func NewClient(config ClientConfig) (*Client, error) {
	keypairPath := strings.TrimSpace(config.KeypairPath)
	if keypairPath == "" {
		keypairPath = shared.DefaultKeypairPath
	}
	payer, err := shared.LoadKeypair(keypairPath)
	if err != nil {
		return nil, err
	}

	rpcClient, err := shared.NewRPCClient(config.Network, config.RPCURL)
	if err != nil {
		return nil, err
	}
	return NewClientWithRPC(rpcClient, payer, config)
}

// NewClientWithRPC creates a client around an existing RPC connection and
// payer key. config.KeypairPath and config.RPCURL are ignored.
func NewClientWithRPC(client RPC, payer solana.PrivateKey, config ClientConfig) (*Client, error) {
	if client == nil {
		return nil, fmt.Errorf("rpc client is required")
	}
	if len(payer) != 64 {
		return nil, fmt.Errorf("payer key must be 64 bytes")
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	submitter, err := txn.NewSubmitter(client, txn.Config{
		Network:        config.Network,
		Commitment:     config.Commitment,
		SkipPreflight:  config.SkipPreflight,
		ConfirmTimeout: config.ConfirmTimeout,
		Logger:         logger,
	})
	if err != nil {
		return nil, err
	}
	commitment, err := shared.NormalizeCommitment(config.Commitment)
	if err != nil {
		return nil, err
	}

	builder := config.Builder
	if builder == nil {
		builder = NewProgramInstructionBuilder(ProgramID)
	}

	return &Client{
		rpc:        client,
		submitter:  submitter,
		builder:    builder,
		payer:      payer,
		network:    submitter.Network(),
		commitment: commitment,
		logger:     logger,
	}, nil
}

// Authority returns the public key of the configured payer.
func (c *Client) Authority() solana.PublicKey {
	return c.payer.PublicKey()
}

func (c *Client) Network() string {
	return c.network
}

// CreateCredential creates a credential named options.Name owned by the
// client authority.
func (c *Client) CreateCredential(
	ctx context.Context,
	options CreateCredentialOptions,
) (CreateCredentialResult, error) {
	authority := c.Authority()
	if err := ValidateName("credential", options.Name); err != nil {
		return CreateCredentialResult{}, err
	}
	credential, err := DeriveCredentialPda(authority, options.Name)
	if err != nil {
		return CreateCredentialResult{}, fmt.Errorf("failed to derive credential address: %w", err)
	}
	c.logger.Info("derived credential address",
		zap.Stringer("credential", credential.Address),
		zap.Uint8("bump", credential.Bump),
	)

	instruction, err := c.builder.CreateCredential(CreateCredentialParams{
		Payer:      authority,
		Authority:  authority,
		Credential: credential.Address,
		Name:       options.Name,
		Signers:    options.Signers,
	})
	if err != nil {
		return CreateCredentialResult{}, err
	}

	result, err := c.submitter.Submit(ctx, c.payer, []solana.Instruction{instruction})
	return CreateCredentialResult{Result: result, Credential: credential.Address}, err
}

// CreateSchema creates a schema under the named credential of the client
// authority. A zero version selects DefaultSchemaVersion.
func (c *Client) CreateSchema(
	ctx context.Context,
	options CreateSchemaOptions,
) (CreateSchemaResult, error) {
	authority := c.Authority()
	version := options.Version
	if version == 0 {
		version = DefaultSchemaVersion
	}
	if err := ValidateName("schema", options.Name); err != nil {
		return CreateSchemaResult{}, err
	}

	credential, err := DeriveCredentialPda(authority, credentialName(options.CredentialName, options.Name))
	if err != nil {
		return CreateSchemaResult{}, fmt.Errorf("failed to derive credential address: %w", err)
	}
	schema, err := DeriveSchemaPda(credential.Address, options.Name, version)
	if err != nil {
		return CreateSchemaResult{}, fmt.Errorf("failed to derive schema address: %w", err)
	}
	c.logger.Info("derived schema address",
		zap.Stringer("credential", credential.Address),
		zap.Stringer("schema", schema.Address),
		zap.Uint8("version", version),
	)

	layout, fieldNames := LayoutFromFields(options.Fields)
	instruction, err := c.builder.CreateSchema(CreateSchemaParams{
		Payer:       authority,
		Authority:   authority,
		Credential:  credential.Address,
		Schema:      schema.Address,
		Name:        options.Name,
		Description: options.Description,
		Layout:      layout,
		FieldNames:  fieldNames,
	})
	if err != nil {
		return CreateSchemaResult{}, err
	}

	result, err := c.submitter.Submit(ctx, c.payer, []solana.Instruction{instruction})
	return CreateSchemaResult{Result: result, Credential: credential.Address, Schema: schema.Address}, err
}

// CreateAttestation fetches the target schema, encodes options.Values against
// it and creates the attestation.
func (c *Client) CreateAttestation(
	ctx context.Context,
	options CreateAttestationOptions,
) (CreateAttestationResult, error) {
	prepared, err := c.prepareAttestation(ctx, options)
	if err != nil {
		return CreateAttestationResult{}, err
	}

	instruction, err := c.builder.CreateAttestation(prepared.params)
	if err != nil {
		return CreateAttestationResult{}, err
	}

	result, err := c.submitter.Submit(ctx, c.payer, []solana.Instruction{instruction})
	prepared.result.Result = result
	return prepared.result, err
}

// CreateTokenizedAttestation creates an attestation together with a
// non-transferable Token-2022 mint held by the recipient.
func (c *Client) CreateTokenizedAttestation(
	ctx context.Context,
	options CreateTokenizedAttestationOptions,
) (CreateTokenizedAttestationResult, error) {
	if strings.TrimSpace(options.TokenName) == "" {
		return CreateTokenizedAttestationResult{}, fmt.Errorf("token name is required")
	}
	if strings.TrimSpace(options.TokenSymbol) == "" {
		return CreateTokenizedAttestationResult{}, fmt.Errorf("token symbol is required")
	}

	prepared, err := c.prepareAttestation(ctx, options.CreateAttestationOptions)
	if err != nil {
		return CreateTokenizedAttestationResult{}, err
	}
	schema := prepared.result.Schema
	attestation := prepared.result.Attestation

	recipient := options.Recipient
	if recipient.IsZero() {
		recipient = c.Authority()
	}

	attestationMint, err := DeriveAttestationMintPda(attestation)
	if err != nil {
		return CreateTokenizedAttestationResult{}, fmt.Errorf("failed to derive attestation mint: %w", err)
	}
	schemaMint, err := DeriveSchemaMintPda(schema)
	if err != nil {
		return CreateTokenizedAttestationResult{}, fmt.Errorf("failed to derive schema mint: %w", err)
	}
	sasAuthority, err := DeriveSasAuthorityAddress()
	if err != nil {
		return CreateTokenizedAttestationResult{}, fmt.Errorf("failed to derive sas authority: %w", err)
	}
	recipientTokenAccount, err := token2022.FindAssociatedTokenAddress(recipient, attestationMint.Address, token2022.ProgramID)
	if err != nil {
		return CreateTokenizedAttestationResult{}, fmt.Errorf("failed to derive recipient token account: %w", err)
	}

	mintSpace := AttestationMintSize(sasAuthority.Address, schemaMint.Address, attestationMint.Address, options.TokenName, options.TokenSymbol, options.TokenURI)
	if mintSpace > math.MaxUint16 {
		return CreateTokenizedAttestationResult{}, fmt.Errorf("mint account space %d exceeds %d bytes", mintSpace, math.MaxUint16)
	}
	c.logger.Info("derived tokenized attestation addresses",
		zap.Stringer("sas_authority", sasAuthority.Address),
		zap.Stringer("schema_mint", schemaMint.Address),
		zap.Stringer("attestation_mint", attestationMint.Address),
		zap.Stringer("recipient_token_account", recipientTokenAccount.Address),
		zap.Int("mint_account_space", mintSpace),
	)

	instruction, err := c.builder.CreateTokenizedAttestation(CreateTokenizedAttestationParams{
		CreateAttestationParams: prepared.params,
		SchemaMint:              schemaMint.Address,
		AttestationMint:         attestationMint.Address,
		SasAuthority:            sasAuthority.Address,
		Recipient:               recipient,
		RecipientTokenAccount:   recipientTokenAccount.Address,
		TokenProgram:            token2022.ProgramID,
		AssociatedProgram:       token2022.AssociatedTokenProgramID,
		TokenName:               options.TokenName,
		TokenSymbol:             options.TokenSymbol,
		TokenURI:                options.TokenURI,
		MintAccountSpace:        uint16(mintSpace),
	})
	if err != nil {
		return CreateTokenizedAttestationResult{}, err
	}

	result, err := c.submitter.Submit(ctx, c.payer, []solana.Instruction{instruction})
	prepared.result.Result = result
	return CreateTokenizedAttestationResult{
		CreateAttestationResult: prepared.result,
		SchemaMint:              schemaMint.Address,
		AttestationMint:         attestationMint.Address,
		SasAuthority:            sasAuthority.Address,
		RecipientTokenAccount:   recipientTokenAccount.Address,
		MintAccountSpace:        mintSpace,
	}, err
}

// AttestationMintSize returns the account space of a tokenized attestation
// mint: a non-transferable group member carrying its own metadata, with the
// SAS authority as delegate and close authority.
func AttestationMintSize(
	sasAuthority solana.PublicKey,
	schemaMint solana.PublicKey,
	attestationMint solana.PublicKey,
	name string,
	symbol string,
	uri string,
) int {
	return token2022.GetMintSize(
		token2022.GroupMemberPointer{Authority: sasAuthority, MemberAddress: attestationMint},
		token2022.NonTransferable{},
		token2022.MetadataPointer{Authority: sasAuthority, MetadataAddress: attestationMint},
		token2022.PermanentDelegate{Delegate: sasAuthority},
		token2022.MintCloseAuthority{CloseAuthority: sasAuthority},
		token2022.TokenMetadata{
			UpdateAuthority: sasAuthority,
			Mint:            attestationMint,
			Name:            name,
			Symbol:          symbol,
			URI:             uri,
		},
		token2022.TokenGroupMember{Mint: attestationMint, Group: schemaMint, MemberNumber: 1},
	)
}

type preparedAttestation struct {
	params CreateAttestationParams
	result CreateAttestationResult
}

func (c *Client) prepareAttestation(ctx context.Context, options CreateAttestationOptions) (preparedAttestation, error) {
	authority := c.Authority()
	if strings.TrimSpace(options.SchemaName) == "" {
		return preparedAttestation{}, fmt.Errorf("schema name is required")
	}
	if err := validateExpiry(options.Expiry); err != nil {
		return preparedAttestation{}, err
	}
	version := options.SchemaVersion
	if version == 0 {
		version = DefaultSchemaVersion
	}
	nonce := options.Nonce
	if nonce.IsZero() {
		nonce = authority
	}

	credential, err := DeriveCredentialPda(authority, credentialName(options.CredentialName, options.SchemaName))
	if err != nil {
		return preparedAttestation{}, fmt.Errorf("failed to derive credential address: %w", err)
	}
	schemaAddress, err := DeriveSchemaPda(credential.Address, options.SchemaName, version)
	if err != nil {
		return preparedAttestation{}, fmt.Errorf("failed to derive schema address: %w", err)
	}
	attestation, err := DeriveAttestationPda(credential.Address, schemaAddress.Address, nonce)
	if err != nil {
		return preparedAttestation{}, fmt.Errorf("failed to derive attestation address: %w", err)
	}
	c.logger.Info("derived attestation address",
		zap.Stringer("credential", credential.Address),
		zap.Stringer("schema", schemaAddress.Address),
		zap.Stringer("attestation", attestation.Address),
		zap.Stringer("nonce", nonce),
	)

	schema, err := c.FetchSchema(ctx, schemaAddress.Address)
	if err != nil {
		return preparedAttestation{}, fmt.Errorf("%w %s: %w", ErrSchemaFetchFailed, schemaAddress.Address, err)
	}
	if schema.IsPaused {
		return preparedAttestation{}, fmt.Errorf("%w: %s", ErrSchemaPaused, schemaAddress.Address)
	}

	data, err := SerializeAttestationData(schema, options.Values)
	if err != nil {
		return preparedAttestation{}, fmt.Errorf("failed to encode attestation data: %w", err)
	}

	return preparedAttestation{
		params: CreateAttestationParams{
			Payer:       authority,
			Authority:   authority,
			Credential:  credential.Address,
			Schema:      schemaAddress.Address,
			Attestation: attestation.Address,
			Nonce:       nonce,
			Data:        data,
			Expiry:      options.Expiry,
		},
		result: CreateAttestationResult{
			Credential:  credential.Address,
			Schema:      schemaAddress.Address,
			Attestation: attestation.Address,
		},
	}, nil
}

// credentialName falls back to the schema name, which is how a credential
// and its first schema are usually named together.
func credentialName(credential string, fallback string) string {
	if strings.TrimSpace(credential) != "" {
		return credential
	}
	return fallback
}

func isNotFound(err error) bool {
	return errors.Is(err, rpc.ErrNotFound) || errors.Is(err, ErrAccountNotFound)
}
