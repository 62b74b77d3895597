package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sas-community/sas-sdk-go/pkg/sas"
)

func createCredentialCmd(s *state) *cobra.Command {
	var (
		name    string
		signers []string
	)

	cmd := &cobra.Command{
		Use:   "create-credential",
		Short: "Create a credential owned by the keypair",
		RunE: func(cmd *cobra.Command, args []string) error {
			signerKeys, err := parsePublicKeys("signer", signers)
			if err != nil {
				return err
			}
			client, err := s.client()
			if err != nil {
				return err
			}

			result, err := client.CreateCredential(cmd.Context(), sas.CreateCredentialOptions{
				Name:    name,
				Signers: signerKeys,
			})
			return printResult(cmd.OutOrStdout(), result, result.Signature, err)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "credential name")
	cmd.Flags().StringSliceVar(&signers, "signer", nil, "authorized signer address (repeatable)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func createSchemaCmd(s *state) *cobra.Command {
	var (
		file           string
		credentialName string
	)

	cmd := &cobra.Command{
		Use:   "create-schema",
		Short: "Create a schema from a YAML definition",
		RunE: func(cmd *cobra.Command, args []string) error {
			options, err := loadSchemaFile(file)
			if err != nil {
				return err
			}
			if credentialName != "" {
				options.CredentialName = credentialName
			}
			client, err := s.client()
			if err != nil {
				return err
			}

			result, err := client.CreateSchema(cmd.Context(), options)
			return printResult(cmd.OutOrStdout(), result, result.Signature, err)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "schema definition YAML")
	cmd.Flags().StringVar(&credentialName, "credential", "", "credential name (default: from file, then schema name)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

type attestationFlags struct {
	credentialName string
	schemaName     string
	version        uint8
	nonce          string
	expiry         int64
	dataFile       string
	fields         []string
}

func (f *attestationFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.credentialName, "credential", "", "credential name (default: schema name)")
	cmd.Flags().StringVar(&f.schemaName, "schema", "", "schema name")
	cmd.Flags().Uint8Var(&f.version, "version", sas.DefaultSchemaVersion, "schema version")
	cmd.Flags().StringVar(&f.nonce, "nonce", "", "attestation nonce address (default: keypair public key)")
	cmd.Flags().Int64Var(&f.expiry, "expiry", 0, "unix expiry timestamp, 0 for none")
	cmd.Flags().StringVarP(&f.dataFile, "data", "d", "", "attestation data YAML mapping")
	cmd.Flags().StringArrayVar(&f.fields, "field", nil, "attestation field as key=value (repeatable)")
	_ = cmd.MarkFlagRequired("schema")
}

func (f *attestationFlags) options() (sas.CreateAttestationOptions, error) {
	nonce, err := parsePublicKey("nonce", f.nonce)
	if err != nil {
		return sas.CreateAttestationOptions{}, err
	}
	values, err := loadValues(f.dataFile, f.fields)
	if err != nil {
		return sas.CreateAttestationOptions{}, err
	}
	return sas.CreateAttestationOptions{
		CredentialName: f.credentialName,
		SchemaName:     f.schemaName,
		SchemaVersion:  f.version,
		Nonce:          nonce,
		Values:         values,
		Expiry:         f.expiry,
	}, nil
}

func createAttestationCmd(s *state) *cobra.Command {
	flags := &attestationFlags{}

	cmd := &cobra.Command{
		Use:   "create-attestation",
		Short: "Create an attestation encoded against an on-chain schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			options, err := flags.options()
			if err != nil {
				return err
			}
			client, err := s.client()
			if err != nil {
				return err
			}

			result, err := client.CreateAttestation(cmd.Context(), options)
			return printResult(cmd.OutOrStdout(), result, result.Signature, err)
		},
	}
	flags.register(cmd)
	return cmd
}

func createTokenizedAttestationCmd(s *state) *cobra.Command {
	var (
		flags     = &attestationFlags{}
		recipient string
		name      string
		symbol    string
		uri       string
	)

	cmd := &cobra.Command{
		Use:   "create-tokenized-attestation",
		Short: "Create an attestation with a non-transferable Token-2022 mint",
		RunE: func(cmd *cobra.Command, args []string) error {
			options, err := flags.options()
			if err != nil {
				return err
			}
			recipientKey, err := parsePublicKey("recipient", recipient)
			if err != nil {
				return err
			}
			client, err := s.client()
			if err != nil {
				return err
			}

			result, err := client.CreateTokenizedAttestation(cmd.Context(), sas.CreateTokenizedAttestationOptions{
				CreateAttestationOptions: options,
				Recipient:                recipientKey,
				TokenName:                name,
				TokenSymbol:              symbol,
				TokenURI:                 uri,
			})
			if err != nil {
				err = fmt.Errorf("tokenized attestation failed: %w", err)
			}
			return printResult(cmd.OutOrStdout(), result, result.Signature, err)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&recipient, "recipient", "", "token recipient (default: keypair public key)")
	cmd.Flags().StringVar(&name, "token-name", "", "token metadata name")
	cmd.Flags().StringVar(&symbol, "token-symbol", "", "token metadata symbol")
	cmd.Flags().StringVar(&uri, "token-uri", "", "token metadata URI")
	_ = cmd.MarkFlagRequired("token-name")
	_ = cmd.MarkFlagRequired("token-symbol")
	return cmd
}
