// Package token2022 sizes Token-2022 mint accounts and derives associated
// token accounts for mints owned by the Token-2022 program.
//
// Tokenized attestations are Token-2022 mints carrying a fixed set of
// extensions (group member pointer, non-transferable, metadata pointer,
// permanent delegate, mint close authority, token metadata and token group
// member). GetMintSize returns the account space such a mint needs.
package token2022
