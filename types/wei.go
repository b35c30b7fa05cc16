package types

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// Wei is an unsigned 256-bit transaction value. It marshals as a decimal
// string and accepts both JSON numbers and decimal strings on input, since
// wallet clients disagree on how to encode amounts above 2^53.
type Wei struct {
	uint256.Int
}

// NewWei builds a Wei value from a uint64.
func NewWei(v uint64) *Wei {
	w := &Wei{}
	w.SetUint64(v)
	return w
}

// WeiFromDecimal parses a base-10 value string.
func WeiFromDecimal(s string) (*Wei, error) {
	i, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("invalid wei value %q: %w", s, err)
	}
	return &Wei{Int: *i}, nil
}

func (w *Wei) String() string {
	return w.Dec()
}

func (w Wei) MarshalJSON() ([]byte, error) {
	return []byte(`"` + w.Dec() + `"`), nil
}

func (w *Wei) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if strings.HasPrefix(s, `"`) {
		if len(s) < 2 || !strings.HasSuffix(s, `"`) {
			return fmt.Errorf("invalid wei value %s", s)
		}
		s = s[1 : len(s)-1]
	}
	i, err := uint256.FromDecimal(s)
	if err != nil {
		return fmt.Errorf("invalid wei value %q: %w", s, err)
	}
	w.Int = *i
	return nil
}
