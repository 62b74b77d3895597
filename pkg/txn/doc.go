// Package txn assembles, signs, submits and confirms Solana transactions.
//
// A Submitter turns an ordered list of already-built instructions into a
// legacy transaction anchored to a fresh blockhash, signs it with the fee
// payer and any additional signers, sends it and waits until the requested
// commitment level is reached:
//
//	submitter, err := txn.NewSubmitter(rpcClient, txn.Config{
//		Network:        "devnet",
//		Commitment:     "confirmed",
//		SkipPreflight:  true,
//		ConfirmTimeout: time.Minute,
//	})
//
//	result, err := submitter.Submit(ctx, payer, []solana.Instruction{instruction})
//
// Every call builds a fresh envelope. Fetching the blockhash is retried with
// bounded exponential backoff; the submission itself is never resent.
// Failures are returned both as an error (matchable with errors.Is against
// the package sentinels) and in the Result.
package txn
