package token2022

import (
	"github.com/gagliardetto/solana-go"

	"github.com/sas-community/sas-sdk-go/pkg/pda"
)

var LegacyTokenProgramID = solana.MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")

// FindAssociatedTokenAddress derives the associated token account of owner
// for mint under tokenProgram. A zero tokenProgram selects Token-2022.
func FindAssociatedTokenAddress(owner solana.PublicKey, mint solana.PublicKey, tokenProgram solana.PublicKey) (pda.DerivedAddress, error) {
	if tokenProgram.IsZero() {
		tokenProgram = ProgramID
	}
	return pda.Derive(AssociatedTokenProgramID, owner.Bytes(), tokenProgram.Bytes(), mint.Bytes())
}
