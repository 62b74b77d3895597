package commands

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/sas-community/sas-sdk-go/pkg/pda"
	"github.com/sas-community/sas-sdk-go/pkg/sas"
	"github.com/sas-community/sas-sdk-go/pkg/shared"
	"github.com/sas-community/sas-sdk-go/pkg/token2022"
)

type derivedAddress struct {
	Address string `json:"address"`
	Bump    uint8  `json:"bump"`
}

type deriveOutput struct {
	Authority             string          `json:"authority"`
	Credential            derivedAddress  `json:"credential"`
	Schema                derivedAddress  `json:"schema"`
	Attestation           *derivedAddress `json:"attestation,omitempty"`
	AttestationMint       *derivedAddress `json:"attestation_mint,omitempty"`
	RecipientTokenAccount *derivedAddress `json:"recipient_token_account,omitempty"`
	SchemaMint            derivedAddress  `json:"schema_mint"`
	SasAuthority          derivedAddress  `json:"sas_authority"`
}

func toDerived(address pda.DerivedAddress) derivedAddress {
	return derivedAddress{Address: address.Address.String(), Bump: address.Bump}
}

func deriveCmd(s *state) *cobra.Command {
	var (
		authorityValue string
		credentialName string
		schemaName     string
		version        uint8
		nonceValue     string
	)

	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Print the program-derived addresses for a credential, schema and attestation",
		RunE: func(cmd *cobra.Command, args []string) error {
			authority, err := parsePublicKey("authority", authorityValue)
			if err != nil {
				return err
			}
			if authority.IsZero() {
				payer, err := shared.LoadKeypair(s.config.KeypairPath)
				if err != nil {
					return fmt.Errorf("--authority not set: %w", err)
				}
				authority = payer.PublicKey()
			}
			nonce, err := parsePublicKey("nonce", nonceValue)
			if err != nil {
				return err
			}
			if schemaName == "" {
				schemaName = credentialName
			}

			output, err := deriveAll(authority, credentialName, schemaName, version, nonce)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), output)
		},
	}

	cmd.Flags().StringVar(&authorityValue, "authority", "", "credential authority (default: keypair public key)")
	cmd.Flags().StringVar(&credentialName, "name", "", "credential name")
	cmd.Flags().StringVar(&schemaName, "schema", "", "schema name (default: credential name)")
	cmd.Flags().Uint8Var(&version, "version", sas.DefaultSchemaVersion, "schema version")
	cmd.Flags().StringVar(&nonceValue, "nonce", "", "attestation nonce; also derives the attestation mint")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func deriveAll(authority solana.PublicKey, credentialName string, schemaName string, version uint8, nonce solana.PublicKey) (deriveOutput, error) {
	credential, err := sas.DeriveCredentialPda(authority, credentialName)
	if err != nil {
		return deriveOutput{}, fmt.Errorf("credential: %w", err)
	}
	schema, err := sas.DeriveSchemaPda(credential.Address, schemaName, version)
	if err != nil {
		return deriveOutput{}, fmt.Errorf("schema: %w", err)
	}
	schemaMint, err := sas.DeriveSchemaMintPda(schema.Address)
	if err != nil {
		return deriveOutput{}, fmt.Errorf("schema mint: %w", err)
	}
	sasAuthority, err := sas.DeriveSasAuthorityAddress()
	if err != nil {
		return deriveOutput{}, fmt.Errorf("sas authority: %w", err)
	}

	output := deriveOutput{
		Authority:    authority.String(),
		Credential:   toDerived(credential),
		Schema:       toDerived(schema),
		SchemaMint:   toDerived(schemaMint),
		SasAuthority: toDerived(sasAuthority),
	}
	if nonce.IsZero() {
		return output, nil
	}

	attestation, err := sas.DeriveAttestationPda(credential.Address, schema.Address, nonce)
	if err != nil {
		return deriveOutput{}, fmt.Errorf("attestation: %w", err)
	}
	attestationMint, err := sas.DeriveAttestationMintPda(attestation.Address)
	if err != nil {
		return deriveOutput{}, fmt.Errorf("attestation mint: %w", err)
	}
	tokenAccount, err := token2022.FindAssociatedTokenAddress(authority, attestationMint.Address, token2022.ProgramID)
	if err != nil {
		return deriveOutput{}, fmt.Errorf("recipient token account: %w", err)
	}

	attestationOut := toDerived(attestation)
	mintOut := toDerived(attestationMint)
	tokenAccountOut := toDerived(tokenAccount)
	output.Attestation = &attestationOut
	output.AttestationMint = &mintOut
	output.RecipientTokenAccount = &tokenAccountOut
	return output, nil
}
