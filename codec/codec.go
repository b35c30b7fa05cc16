package codec

import (
	"strings"

	"golang.org/x/crypto/sha3"

	"safetx/errors"
)

// Address is a canonical 0x-prefixed, EIP-55 checksummed account identifier.
type Address string

// Digest is a canonical 0x-prefixed, lowercase 32-byte hex digest.
type Digest string

const (
	addressHexLen = 40
	digestHexLen  = 64
)

func (a Address) String() string { return string(a) }
func (d Digest) String() string  { return string(d) }

// Bytes returns the raw 20 address bytes.
func (a Address) Bytes() []byte {
	return mustDecodeHex(strings.ToLower(strings.TrimPrefix(string(a), "0x")))
}

// Bytes returns the raw 32 digest bytes.
func (d Digest) Bytes() []byte {
	return mustDecodeHex(strings.TrimPrefix(string(d), "0x"))
}

// NormalizeAddress validates a fixed-length hex account identifier and
// returns its canonical checksummed form. Mixed-case input must carry a
// valid EIP-55 checksum; all-lowercase and all-uppercase inputs are accepted
// and re-checksummed.
func NormalizeAddress(raw string) (Address, error) {
	body := strings.TrimPrefix(raw, "0x")
	if len(body) != addressHexLen || !isHex(body) {
		return "", errors.NewError(errors.ErrCodeMalformedAddress, errors.ErrMsgMalformedAddress)
	}

	lower := strings.ToLower(body)
	checksummed := checksumHex(lower)
	if body != lower && body != strings.ToUpper(body) && body != checksummed {
		return "", errors.NewError(errors.ErrCodeMalformedAddress, errors.ErrMsgMalformedAddress)
	}

	return Address("0x" + checksummed), nil
}

// NormalizeDigest validates a fixed-length hex digest string and returns its
// canonical lowercase form.
func NormalizeDigest(raw string) (Digest, error) {
	body := strings.TrimPrefix(raw, "0x")
	if len(body) != digestHexLen || !isHex(body) {
		return "", errors.NewError(errors.ErrCodeInvalidDigest, errors.ErrMsgInvalidDigest)
	}
	return Digest("0x" + strings.ToLower(body)), nil
}

// DigestFromBytes builds the canonical digest string for a raw 32-byte hash.
func DigestFromBytes(b []byte) Digest {
	return Digest("0x" + encodeHex(b))
}

// AddressFromBytes builds the canonical checksummed address for raw 20 bytes.
func AddressFromBytes(b []byte) Address {
	return Address("0x" + checksumHex(encodeHex(b)))
}

// checksumHex applies the EIP-55 mixed-case checksum to a lowercase hex body.
// A hex letter is uppercased when the corresponding nibble of
// keccak256(lowercase body) is >= 8.
func checksumHex(lower string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	sum := h.Sum(nil)

	out := []byte(lower)
	for i := 0; i < len(out); i++ {
		if out[i] < 'a' || out[i] > 'f' {
			continue
		}
		nibble := sum[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if nibble&0x0f >= 8 {
			out[i] -= 'a' - 'A'
		}
	}
	return string(out)
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}

const hexDigits = "0123456789abcdef"

func encodeHex(b []byte) string {
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexDigits[c>>4]
		out[i*2+1] = hexDigits[c&0x0f]
	}
	return string(out)
}

func mustDecodeHex(s string) []byte {
	out := make([]byte, len(s)/2)
	for i := 0; i < len(out); i++ {
		out[i] = hexNibble(s[i*2])<<4 | hexNibble(s[i*2+1])
	}
	return out
}

func hexNibble(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}
