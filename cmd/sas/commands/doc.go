// Package commands defines the sas CLI.
//
// Commands
//
//   - derive                        Print credential, schema, attestation and mint addresses
//   - create-credential             Create a credential owned by the keypair
//   - create-schema                 Create a schema from a YAML definition
//   - create-attestation            Create an attestation from YAML or key=value data
//   - create-tokenized-attestation  Create an attestation backed by a Token-2022 mint
//   - fetch                         Read and decode a credential, schema or attestation
//
// # Configuration
//
// Settings come from SOLANA_* environment variables and the nearest .env
// file; persistent flags override them. The keypair is only loaded by
// commands that sign or need the authority address.
package commands
