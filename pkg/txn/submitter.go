package txn

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/sas-community/sas-sdk-go/pkg/shared"
)

var (
	errNotYetVisible   = errors.New("signature status not yet available")
	errNotYetConfirmed = errors.New("commitment not yet reached")
)

var commitmentRank = map[string]int{
	shared.CommitmentProcessed: 1,
	shared.CommitmentConfirmed: 2,
	shared.CommitmentFinalized: 3,
}

type Submitter struct {
	rpc        RPC
	config     Config
	network    string
	commitment string
	logger     *zap.Logger
}

// NewSubmitter creates a new Submitter. Zero durations and retry counts fall
// back to the package defaults.
func NewSubmitter(client RPC, config Config) (*Submitter, error) {
	if client == nil {
		return nil, fmt.Errorf("rpc client is required")
	}

	network, err := shared.NormalizeNetwork(config.Network)
	if err != nil {
		return nil, err
	}
	commitment, err := shared.NormalizeCommitment(config.Commitment)
	if err != nil {
		return nil, err
	}

	if config.ConfirmTimeout <= 0 {
		config.ConfirmTimeout = DefaultConfirmTimeout
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	if config.AnchorRetries == 0 {
		config.AnchorRetries = DefaultAnchorRetries
	}
	if config.RetryInterval <= 0 {
		config.RetryInterval = DefaultRetryInterval
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Submitter{
		rpc:        client,
		config:     config,
		network:    network,
		commitment: commitment,
		logger:     logger,
	}, nil
}

// Network returns the normalized cluster name used for explorer links.
func (s *Submitter) Network() string {
	return s.network
}

// Submit builds a transaction from instructions, signs it with payer and
// signers, sends it and waits for the configured commitment. The payer is
// always the fee payer.
func (s *Submitter) Submit(
	ctx context.Context,
	payer solana.PrivateKey,
	instructions []solana.Instruction,
	signers ...solana.PrivateKey,
) (Result, error) {
	result := Result{Status: StatusUnsigned}

	if len(instructions) == 0 {
		return s.fail(result, ErrNoInstructions)
	}
	if len(payer) == 0 {
		return s.fail(result, fmt.Errorf("%w: fee payer key is required", ErrMissingSigner))
	}

	blockhash, err := s.latestBlockhash(ctx)
	if err != nil {
		return s.fail(result, err)
	}

	transaction, err := solana.NewTransaction(
		instructions,
		blockhash,
		solana.TransactionPayer(payer.PublicKey()),
	)
	if err != nil {
		return s.fail(result, fmt.Errorf("failed to build transaction: %w", err))
	}

	if err := s.sign(transaction, append([]solana.PrivateKey{payer}, signers...)); err != nil {
		return s.fail(result, err)
	}
	result.Status = StatusSigned
	signature := transaction.Signatures[0]
	result.Signature = signature.String()
	result.ExplorerURL = shared.ExplorerTransactionURL(result.Signature, s.network)

	if _, err := s.rpc.SendTransactionWithOpts(ctx, transaction, rpc.TransactionOpts{
		SkipPreflight:       s.config.SkipPreflight,
		PreflightCommitment: rpc.CommitmentType(s.commitment),
	}); err != nil {
		return s.fail(result, fmt.Errorf("%w: %w", ErrSubmissionRejected, err))
	}
	result.Status = StatusSubmitted

	slot, err := s.awaitConfirmation(ctx, signature)
	if err != nil {
		if errors.Is(err, ErrSubmissionRejected) && !errors.Is(err, ErrConfirmationTimeout) {
			result.Status = StatusFailed
		}
		return s.fail(result, err)
	}

	result.Success = true
	result.Status = StatusConfirmed
	result.Slot = slot

	s.logger.Info("transaction confirmed",
		zap.String("signature", result.Signature),
		zap.Uint64("slot", slot),
		zap.String("explorer", result.ExplorerURL),
	)
	return result, nil
}

func (s *Submitter) sign(transaction *solana.Transaction, signers []solana.PrivateKey) error {
	keys := make(map[solana.PublicKey]solana.PrivateKey, len(signers))
	for _, signer := range signers {
		if len(signer) == 0 {
			continue
		}
		keys[signer.PublicKey()] = signer
	}

	required := int(transaction.Message.Header.NumRequiredSignatures)
	for _, account := range transaction.Message.AccountKeys[:required] {
		if _, ok := keys[account]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingSigner, account)
		}
	}

	_, err := transaction.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		signer, ok := keys[key]
		if !ok {
			return nil
		}
		return &signer
	})
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}
	return nil
}

func (s *Submitter) latestBlockhash(ctx context.Context) (solana.Hash, error) {
	var blockhash solana.Hash
	operation := func() error {
		response, err := s.rpc.GetLatestBlockhash(ctx, rpc.CommitmentType(s.commitment))
		if err != nil {
			return err
		}
		if response == nil || response.Value == nil {
			return fmt.Errorf("empty blockhash response")
		}
		blockhash = response.Value.Blockhash
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.config.RetryInterval
	retryPolicy := backoff.WithContext(backoff.WithMaxRetries(policy, s.config.AnchorRetries), ctx)

	err := backoff.RetryNotify(operation, retryPolicy, func(err error, wait time.Duration) {
		s.logger.Warn("retrying latest blockhash fetch",
			zap.Error(err),
			zap.Duration("backoff", wait),
		)
	})
	if err != nil {
		return solana.Hash{}, fmt.Errorf("%w: failed to fetch latest blockhash: %w", ErrNetworkUnavailable, err)
	}
	return blockhash, nil
}

func (s *Submitter) awaitConfirmation(ctx context.Context, signature solana.Signature) (uint64, error) {
	confirmCtx, cancel := context.WithTimeout(ctx, s.config.ConfirmTimeout)
	defer cancel()

	var (
		slot    uint64
		pollErr error
	)
	operation := func() error {
		response, err := s.rpc.GetSignatureStatuses(confirmCtx, false, signature)
		pollErr = err
		if err != nil {
			return err
		}
		if response == nil || len(response.Value) == 0 || response.Value[0] == nil {
			return errNotYetVisible
		}

		status := response.Value[0]
		if status.Err != nil {
			return backoff.Permanent(fmt.Errorf("%w: transaction %s failed: %v", ErrSubmissionRejected, signature, status.Err))
		}
		if commitmentRank[string(status.ConfirmationStatus)] < commitmentRank[s.commitment] {
			return errNotYetConfirmed
		}

		slot = status.Slot
		return nil
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.NewConstantBackOff(s.config.PollInterval), confirmCtx))
	if err == nil {
		return slot, nil
	}
	if errors.Is(err, ErrSubmissionRejected) {
		return 0, err
	}
	if ctx.Err() != nil {
		return 0, fmt.Errorf("confirmation of %s aborted: %w", signature, ctx.Err())
	}
	// The last poll decides: an RPC failure is a network problem, a silent status is a timeout.
	if pollErr != nil && !errors.Is(pollErr, context.DeadlineExceeded) {
		return 0, fmt.Errorf("%w: signature status for %s: %w", ErrNetworkUnavailable, signature, pollErr)
	}
	return 0, fmt.Errorf("%w: %w: %s after %s", ErrSubmissionRejected, ErrConfirmationTimeout, signature, s.config.ConfirmTimeout)
}

func (s *Submitter) fail(result Result, err error) (Result, error) {
	result.Success = false
	result.Error = err.Error()

	fields := []zap.Field{zap.Error(err), zap.String("status", string(result.Status))}
	if result.Signature != "" {
		fields = append(fields, zap.String("signature", result.Signature))
	}
	s.logger.Error("unable to send and confirm the transaction", fields...)

	return result, err
}
