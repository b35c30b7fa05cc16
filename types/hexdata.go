package types

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// HexData is an opaque call payload, marshaled as a 0x-prefixed hex string.
// Empty payloads round-trip as "0x".
type HexData []byte

func (d HexData) MarshalJSON() ([]byte, error) {
	return []byte(`"0x` + hex.EncodeToString(d) + `"`), nil
}

func (d *HexData) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if !strings.HasPrefix(s, `"`) || !strings.HasSuffix(s, `"`) || len(s) < 2 {
		return fmt.Errorf("invalid data payload %s", s)
	}
	body := strings.TrimPrefix(s[1:len(s)-1], "0x")
	if body == "" {
		*d = HexData{}
		return nil
	}
	raw, err := hex.DecodeString(body)
	if err != nil {
		return fmt.Errorf("invalid data payload: %w", err)
	}
	*d = raw
	return nil
}
