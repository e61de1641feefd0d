package whatsapp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"object":"whatsapp_business_account"}`)
	valid := Sign("secret", body)

	tests := []struct {
		name   string
		header string
		body   []byte
		ok     bool
	}{
		{"valid", valid, body, true},
		{"missing prefix", valid[len("sha256="):], body, false},
		{"not hex", "sha256=zz", body, false},
		{"other secret", Sign("other", body), body, false},
		{"tampered body", valid, []byte(`{"object":"page"}`), false},
		{"empty", "", body, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifySignature("secret", tt.body, tt.header)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidSignature)
		})
	}
}
