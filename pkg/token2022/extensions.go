package token2022

import (
	"github.com/gagliardetto/solana-go"
)

const (
	// MintSize is the length of a mint without extensions.
	MintSize = 82
	// AccountSize is the base length of a token account. Extended mints are
	// padded to it so the two account kinds cannot be confused.
	AccountSize = 165

	accountTypeSize = 1
	tlvHeaderSize   = 4
)

var (
	ProgramID                = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")
	AssociatedTokenProgramID = solana.MustPublicKeyFromBase58("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
)

type ExtensionType uint16

const (
	ExtensionMintCloseAuthority ExtensionType = 3
	ExtensionNonTransferable    ExtensionType = 9
	ExtensionPermanentDelegate  ExtensionType = 12
	ExtensionMetadataPointer    ExtensionType = 18
	ExtensionTokenMetadata      ExtensionType = 19
	ExtensionGroupPointer       ExtensionType = 20
	ExtensionTokenGroup         ExtensionType = 21
	ExtensionGroupMemberPointer ExtensionType = 22
	ExtensionTokenGroupMember   ExtensionType = 23
)

// Extension is a mint extension whose serialized length is known.
type Extension interface {
	Type() ExtensionType
	Len() int
}

type MintCloseAuthority struct {
	CloseAuthority solana.PublicKey
}

func (MintCloseAuthority) Type() ExtensionType { return ExtensionMintCloseAuthority }
func (MintCloseAuthority) Len() int            { return 32 }

type NonTransferable struct{}

func (NonTransferable) Type() ExtensionType { return ExtensionNonTransferable }
func (NonTransferable) Len() int            { return 0 }

type PermanentDelegate struct {
	Delegate solana.PublicKey
}

func (PermanentDelegate) Type() ExtensionType { return ExtensionPermanentDelegate }
func (PermanentDelegate) Len() int            { return 32 }

type MetadataPointer struct {
	Authority       solana.PublicKey
	MetadataAddress solana.PublicKey
}

func (MetadataPointer) Type() ExtensionType { return ExtensionMetadataPointer }
func (MetadataPointer) Len() int            { return 64 }

type GroupPointer struct {
	Authority    solana.PublicKey
	GroupAddress solana.PublicKey
}

func (GroupPointer) Type() ExtensionType { return ExtensionGroupPointer }
func (GroupPointer) Len() int            { return 64 }

type GroupMemberPointer struct {
	Authority     solana.PublicKey
	MemberAddress solana.PublicKey
}

func (GroupMemberPointer) Type() ExtensionType { return ExtensionGroupMemberPointer }
func (GroupMemberPointer) Len() int            { return 64 }

// TokenGroup holds the update authority, mint, current size and max size.
type TokenGroup struct {
	UpdateAuthority solana.PublicKey
	Mint            solana.PublicKey
	Size            uint64
	MaxSize         uint64
}

func (TokenGroup) Type() ExtensionType { return ExtensionTokenGroup }
func (TokenGroup) Len() int            { return 32 + 32 + 8 + 8 }

type TokenGroupMember struct {
	Mint         solana.PublicKey
	Group        solana.PublicKey
	MemberNumber uint64
}

func (TokenGroupMember) Type() ExtensionType { return ExtensionTokenGroupMember }
func (TokenGroupMember) Len() int            { return 32 + 32 + 8 }

// MetadataEntry is one additional key/value pair of TokenMetadata.
type MetadataEntry struct {
	Key   string
	Value string
}

// TokenMetadata is variable length: strings are u32 length-prefixed.
type TokenMetadata struct {
	UpdateAuthority    solana.PublicKey
	Mint               solana.PublicKey
	Name               string
	Symbol             string
	URI                string
	AdditionalMetadata []MetadataEntry
}

func (TokenMetadata) Type() ExtensionType { return ExtensionTokenMetadata }

func (m TokenMetadata) Len() int {
	size := 32 + 32 + prefixedLen(m.Name) + prefixedLen(m.Symbol) + prefixedLen(m.URI) + 4
	for _, entry := range m.AdditionalMetadata {
		size += prefixedLen(entry.Key) + prefixedLen(entry.Value)
	}
	return size
}

func prefixedLen(value string) int {
	return 4 + len(value)
}

// GetMintSize returns the account space needed for a mint with extensions.
func GetMintSize(extensions ...Extension) int {
	if len(extensions) == 0 {
		return MintSize
	}

	size := AccountSize + accountTypeSize
	for _, extension := range extensions {
		size += tlvHeaderSize + extension.Len()
	}
	return size
}
