package sas

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/sas-community/sas-sdk-go/pkg/token2022"
)

// InstructionBuilder produces SAS program instructions. Client depends on
// this interface so the program encoding can be swapped or faked.
type InstructionBuilder interface {
	CreateCredential(params CreateCredentialParams) (solana.Instruction, error)
	CreateSchema(params CreateSchemaParams) (solana.Instruction, error)
	CreateAttestation(params CreateAttestationParams) (solana.Instruction, error)
	CreateTokenizedAttestation(params CreateTokenizedAttestationParams) (solana.Instruction, error)
}

// ProgramInstructionBuilder encodes instructions for a deployed SAS program.
type ProgramInstructionBuilder struct {
	ProgramID solana.PublicKey
}

// NewProgramInstructionBuilder targets programID, or ProgramID when zero.
func NewProgramInstructionBuilder(programID solana.PublicKey) ProgramInstructionBuilder {
	if programID.IsZero() {
		programID = ProgramID
	}
	return ProgramInstructionBuilder{ProgramID: programID}
}

func (b ProgramInstructionBuilder) CreateCredential(params CreateCredentialParams) (solana.Instruction, error) {
	if err := requireKeys(map[string]solana.PublicKey{
		"payer":      params.Payer,
		"authority":  params.Authority,
		"credential": params.Credential,
	}); err != nil {
		return nil, err
	}
	if err := ValidateName("credential", params.Name); err != nil {
		return nil, err
	}
	if err := ValidateSigners(params.Signers); err != nil {
		return nil, err
	}

	data, err := instructionData(DiscriminatorCreateCredential, func(encoder *bin.Encoder) error {
		if err := writeBytes(encoder, []byte(params.Name)); err != nil {
			return err
		}
		if err := encoder.WriteUint32(uint32(len(params.Signers)), bin.LE); err != nil {
			return err
		}
		for _, signer := range params.Signers {
			if err := encoder.WriteBytes(signer.Bytes(), false); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return solana.NewInstruction(b.programID(), solana.AccountMetaSlice{
		solana.Meta(params.Payer).WRITE().SIGNER(),
		solana.Meta(params.Credential).WRITE(),
		solana.Meta(params.Authority).SIGNER(),
		solana.Meta(SystemProgramID),
	}, data), nil
}

func (b ProgramInstructionBuilder) CreateSchema(params CreateSchemaParams) (solana.Instruction, error) {
	if err := requireKeys(map[string]solana.PublicKey{
		"payer":      params.Payer,
		"authority":  params.Authority,
		"credential": params.Credential,
		"schema":     params.Schema,
	}); err != nil {
		return nil, err
	}
	if err := ValidateName("schema", params.Name); err != nil {
		return nil, err
	}
	if err := ValidateSchemaFields(params.Layout, params.FieldNames); err != nil {
		return nil, err
	}

	data, err := instructionData(DiscriminatorCreateSchema, func(encoder *bin.Encoder) error {
		for _, raw := range [][]byte{[]byte(params.Name), []byte(params.Description), params.Layout} {
			if err := writeBytes(encoder, raw); err != nil {
				return err
			}
		}
		if err := encoder.WriteUint32(uint32(len(params.FieldNames)), bin.LE); err != nil {
			return err
		}
		for _, name := range params.FieldNames {
			if err := writeBytes(encoder, []byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return solana.NewInstruction(b.programID(), solana.AccountMetaSlice{
		solana.Meta(params.Payer).WRITE().SIGNER(),
		solana.Meta(params.Authority).SIGNER(),
		solana.Meta(params.Credential),
		solana.Meta(params.Schema).WRITE(),
		solana.Meta(SystemProgramID),
	}, data), nil
}

func (b ProgramInstructionBuilder) CreateAttestation(params CreateAttestationParams) (solana.Instruction, error) {
	if err := validateAttestationParams(params); err != nil {
		return nil, err
	}

	data, err := instructionData(DiscriminatorCreateAttestation, func(encoder *bin.Encoder) error {
		return writeAttestationBody(encoder, params)
	})
	if err != nil {
		return nil, err
	}

	return solana.NewInstruction(b.programID(), attestationAccounts(params), data), nil
}

func (b ProgramInstructionBuilder) CreateTokenizedAttestation(params CreateTokenizedAttestationParams) (solana.Instruction, error) {
	if err := validateAttestationParams(params.CreateAttestationParams); err != nil {
		return nil, err
	}
	if err := requireKeys(map[string]solana.PublicKey{
		"schema mint":             params.SchemaMint,
		"attestation mint":        params.AttestationMint,
		"sas authority":           params.SasAuthority,
		"recipient":               params.Recipient,
		"recipient token account": params.RecipientTokenAccount,
	}); err != nil {
		return nil, err
	}
	if params.MintAccountSpace == 0 {
		return nil, fmt.Errorf("mint account space is required")
	}
	if params.TokenName == "" || params.TokenSymbol == "" {
		return nil, fmt.Errorf("token name and symbol are required")
	}

	tokenProgram := params.TokenProgram
	if tokenProgram.IsZero() {
		tokenProgram = token2022.ProgramID
	}
	associatedProgram := params.AssociatedProgram
	if associatedProgram.IsZero() {
		associatedProgram = token2022.AssociatedTokenProgramID
	}

	data, err := instructionData(DiscriminatorCreateTokenizedAttestation, func(encoder *bin.Encoder) error {
		if err := writeAttestationBody(encoder, params.CreateAttestationParams); err != nil {
			return err
		}
		for _, value := range []string{params.TokenName, params.TokenURI, params.TokenSymbol} {
			if err := writeBytes(encoder, []byte(value)); err != nil {
				return err
			}
		}
		return encoder.WriteUint16(params.MintAccountSpace, bin.LE)
	})
	if err != nil {
		return nil, err
	}

	accounts := append(attestationAccounts(params.CreateAttestationParams),
		solana.Meta(params.SchemaMint).WRITE(),
		solana.Meta(params.AttestationMint).WRITE(),
		solana.Meta(params.SasAuthority),
		solana.Meta(params.RecipientTokenAccount).WRITE(),
		solana.Meta(params.Recipient),
		solana.Meta(tokenProgram),
		solana.Meta(associatedProgram),
	)
	return solana.NewInstruction(b.programID(), accounts, data), nil
}

func (b ProgramInstructionBuilder) programID() solana.PublicKey {
	if b.ProgramID.IsZero() {
		return ProgramID
	}
	return b.ProgramID
}

func validateAttestationParams(params CreateAttestationParams) error {
	if err := requireKeys(map[string]solana.PublicKey{
		"payer":       params.Payer,
		"authority":   params.Authority,
		"credential":  params.Credential,
		"schema":      params.Schema,
		"attestation": params.Attestation,
		"nonce":       params.Nonce,
	}); err != nil {
		return err
	}
	return validateExpiry(params.Expiry)
}

func attestationAccounts(params CreateAttestationParams) solana.AccountMetaSlice {
	return solana.AccountMetaSlice{
		solana.Meta(params.Payer).WRITE().SIGNER(),
		solana.Meta(params.Authority).SIGNER(),
		solana.Meta(params.Credential),
		solana.Meta(params.Schema),
		solana.Meta(params.Attestation).WRITE(),
		solana.Meta(SystemProgramID),
	}
}

func writeAttestationBody(encoder *bin.Encoder, params CreateAttestationParams) error {
	if err := encoder.WriteBytes(params.Nonce.Bytes(), false); err != nil {
		return err
	}
	if err := writeBytes(encoder, params.Data); err != nil {
		return err
	}
	return encoder.WriteInt64(params.Expiry, bin.LE)
}

func instructionData(discriminator InstructionDiscriminator, body func(*bin.Encoder) error) ([]byte, error) {
	buffer := new(bytes.Buffer)
	encoder := bin.NewBorshEncoder(buffer)
	if err := encoder.WriteUint8(uint8(discriminator)); err != nil {
		return nil, err
	}
	if err := body(encoder); err != nil {
		return nil, fmt.Errorf("failed to encode instruction data: %w", err)
	}
	return buffer.Bytes(), nil
}
