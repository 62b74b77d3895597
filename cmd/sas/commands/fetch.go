package commands

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/sas-community/sas-sdk-go/pkg/sas"
)

type attestationOutput struct {
	sas.Attestation
	Values map[string]any `json:"values,omitempty"`
}

func fetchCmd(s *state) *cobra.Command {
	var decode bool

	cmd := &cobra.Command{
		Use:       "fetch (credential|schema|attestation) ADDRESS",
		Short:     "Read and decode a SAS account",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"credential", "schema", "attestation"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(cmd.ValidArgs, args[0]) {
				return fmt.Errorf("unknown account kind %q", args[0])
			}
			address, err := parsePublicKey("address", args[1])
			if err != nil {
				return err
			}
			if address.IsZero() {
				return fmt.Errorf("address is required")
			}
			client, err := s.client()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			switch args[0] {
			case "credential":
				credential, err := client.FetchCredential(ctx, address)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), credential)
			case "schema":
				schema, err := client.FetchSchema(ctx, address)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), schema)
			case "attestation":
				attestation, err := client.FetchAttestation(ctx, address)
				if err != nil {
					return err
				}
				output := attestationOutput{Attestation: attestation}
				if decode {
					schema, err := client.FetchSchema(ctx, attestation.Schema)
					if err != nil {
						return fmt.Errorf("%w: %w", sas.ErrSchemaFetchFailed, err)
					}
					if output.Values, err = sas.DeserializeAttestationData(schema, attestation.Data); err != nil {
						return err
					}
				}
				return printJSON(cmd.OutOrStdout(), output)
			default:
				return fmt.Errorf("unknown account kind %q", args[0])
			}
		},
	}

	cmd.Flags().BoolVar(&decode, "decode", true, "decode attestation data against its schema")
	return cmd
}
