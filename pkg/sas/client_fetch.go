package sas

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// FetchCredential reads and decodes a credential account.
func (c *Client) FetchCredential(ctx context.Context, address solana.PublicKey) (Credential, error) {
	data, err := c.fetchAccountData(ctx, address)
	if err != nil {
		return Credential{}, err
	}
	return DecodeCredential(data)
}

// FetchSchema reads and decodes a schema account.
func (c *Client) FetchSchema(ctx context.Context, address solana.PublicKey) (Schema, error) {
	data, err := c.fetchAccountData(ctx, address)
	if err != nil {
		return Schema{}, err
	}
	return DecodeSchema(data)
}

// FetchAttestation reads and decodes an attestation account.
func (c *Client) FetchAttestation(ctx context.Context, address solana.PublicKey) (Attestation, error) {
	data, err := c.fetchAccountData(ctx, address)
	if err != nil {
		return Attestation{}, err
	}
	return DecodeAttestation(data)
}

// AccountExists reports whether address holds an account owned by the SAS
// program.
func (c *Client) AccountExists(ctx context.Context, address solana.PublicKey) (bool, error) {
	_, err := c.fetchAccountData(ctx, address)
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, err
}

func (c *Client) fetchAccountData(ctx context.Context, address solana.PublicKey) ([]byte, error) {
	result, err := c.rpc.GetAccountInfoWithOpts(ctx, address, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: rpc.CommitmentType(c.commitment),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, address)
		}
		return nil, fmt.Errorf("failed to fetch account %s: %w", address, err)
	}
	if result == nil || result.Value == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, address)
	}

	account := result.Value
	if !account.Owner.Equals(ProgramID) {
		return nil, fmt.Errorf("%w: %s is owned by %s", ErrInvalidAccountData, address, account.Owner)
	}
	if account.Data == nil {
		return nil, fmt.Errorf("%w: %s has no data", ErrInvalidAccountData, address)
	}
	return account.Data.GetBinary(), nil
}
