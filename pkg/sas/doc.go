// Package sas is a client for the Solana Attestation Service program.
//
// It derives credential, schema and attestation addresses, builds the
// program's instructions, encodes attestation data against a schema layout
// and decodes accounts read back from the cluster. Client ties these
// together with a txn.Submitter for end-to-end issuance flows.
package sas
