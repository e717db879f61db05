package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeE164(t *testing.T) {
	cases := []struct {
		name, input, region, want string
	}{
		{"brazil national", "(11) 98765-4321", "BR", "+5511987654321"},
		{"international keeps own country", "+31 20 123 4567", "BR", "+31201234567"},
		{"unknown region falls back", "(11) 98765-4321", "Brazil", "+5511987654321"},
		{"garbage returned trimmed", "  not a phone  ", "BR", "not a phone"},
		{"empty", "   ", "BR", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeE164(tc.input, tc.region))
		})
	}
}

func TestRegion(t *testing.T) {
	assert.Equal(t, "NL", Region("nl"))
	assert.Equal(t, DefaultRegion, Region(""))
	assert.Equal(t, DefaultRegion, Region("Netherlands"))
	assert.Equal(t, DefaultRegion, Region("ZZ"))
}
