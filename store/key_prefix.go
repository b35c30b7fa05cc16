package store

import (
	"fmt"

	"safetx/codec"
)

// Database key layout. Nonces are zero-padded so lexicographic key order is
// numeric nonce order, which ListTransactions relies on.
const (
	PrefixTransaction  = "mstx:"
	PrefixConfirmation = "msconf:"
)

func txKey(wallet codec.Address, nonce uint64) []byte {
	return []byte(fmt.Sprintf("%s%s:%020d", PrefixTransaction, wallet, nonce))
}

func txWalletPrefix(wallet codec.Address) []byte {
	return []byte(fmt.Sprintf("%s%s:", PrefixTransaction, wallet))
}

func confirmationKey(wallet codec.Address, nonce uint64, owner codec.Address) []byte {
	return []byte(fmt.Sprintf("%s%s:%020d:%s", PrefixConfirmation, wallet, nonce, owner))
}

func confirmationPrefix(wallet codec.Address, nonce uint64) []byte {
	return []byte(fmt.Sprintf("%s%s:%020d:", PrefixConfirmation, wallet, nonce))
}
