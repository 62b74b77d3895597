// Package sas_sdk_go is a Go SDK for the Solana Attestation Service.
//
// # Packages
//
//   - pkg/pda: program-derived address derivation
//   - pkg/txn: transaction assembly, signing, submission and confirmation
//   - pkg/sas: SAS instructions, account decoding, attestation data codec and Client
//   - pkg/token2022: Token-2022 mint sizing and associated token accounts
//   - pkg/shared: cluster endpoints, explorer links, operator configuration
//
// The sas command in cmd/sas exposes the same flows from the shell, and
// examples/ holds one program per flow.
//
// # Installation
//
//	go get github.com/sas-community/sas-sdk-go@latest
package sas_sdk_go
