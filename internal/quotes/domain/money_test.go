package domain

import (
	"strings"
	"testing"
)

func TestFormatMoney(t *testing.T) {
	got := FormatMoney(880.004, "USD")
	if !strings.Contains(got, "USD") || !strings.Contains(got, "880") {
		t.Fatalf("unexpected formatted amount %q", got)
	}

	if got := FormatMoney(12.3, "QQQ"); got != "QQQ 12.30" {
		t.Fatalf("unexpected fallback %q", got)
	}
}
