package oracle

import (
	"golang.org/x/crypto/sha3"

	"safetx/codec"
	"safetx/types"
)

// transactionDigest mirrors the wallet contract's getTransactionHash:
// keccak256(0x19 || 0x00 || wallet || to || value || data || operation || nonce)
// with value and nonce as 32-byte big-endian words and the wallet address as
// the domain-separation binding.
func transactionDigest(wallet codec.Address, params types.TxParams, nonce uint64) codec.Digest {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte{0x19, 0x00})
	h.Write(wallet.Bytes())
	h.Write(params.To.Bytes())

	var value [32]byte
	if params.Value != nil {
		value = params.Value.Bytes32()
	}
	h.Write(value[:])

	h.Write(params.Data)
	h.Write([]byte{byte(params.Operation)})

	var nonceWord [32]byte
	nonceWord[24] = byte(nonce >> 56)
	nonceWord[25] = byte(nonce >> 48)
	nonceWord[26] = byte(nonce >> 40)
	nonceWord[27] = byte(nonce >> 32)
	nonceWord[28] = byte(nonce >> 24)
	nonceWord[29] = byte(nonce >> 16)
	nonceWord[30] = byte(nonce >> 8)
	nonceWord[31] = byte(nonce)
	h.Write(nonceWord[:])

	return codec.DigestFromBytes(h.Sum(nil))
}
