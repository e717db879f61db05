package email

import (
	"strings"
	"testing"
	"time"

	gomail "github.com/wneessen/go-mail"
)

func TestRenderQuoteSent(t *testing.T) {
	subject, body, err := RenderQuoteSent(QuoteSentMessage{
		RecipientName: "Ana <Acme>",
		Reference:     "BRL-Q-2024-0001",
		Total:         "USD 1,540.00",
		ValidUntil:    time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if subject != "Your freight quote BRL-Q-2024-0001" {
		t.Fatalf("unexpected subject %q", subject)
	}
	for _, want := range []string{"USD 1,540.00", "31 Mar 2024", "Ana &lt;Acme&gt;", "<title>"} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q:\n%s", want, body)
		}
	}
}

func TestRenderShipmentStatus(t *testing.T) {
	subject, body, err := RenderShipmentStatus(ShipmentStatusMessage{
		RecipientName:  "Acme",
		Reference:      "MSCU1234567",
		ShipmentType:   "ocean",
		PreviousStatus: "booked",
		Status:         "in-transit",
		Description:    "Vessel departed",
		Location:       "Santos",
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if subject != "Shipment MSCU1234567 is now in-transit" {
		t.Fatalf("unexpected subject %q", subject)
	}
	if !strings.Contains(body, "Vessel departed (Santos)") {
		t.Fatalf("body missing event line:\n%s", body)
	}
}

func TestSMTPSenderBuildsMessage(t *testing.T) {
	s := NewSMTPSender("localhost", 2525, "", "", "desk@example.com", "Freight Desk")
	msg, err := s.newMessage("ana@example.com", "subject", "<p>hi</p>")
	if err != nil {
		t.Fatalf("newMessage failed: %v", err)
	}
	to := msg.GetAddrHeader(gomail.HeaderTo)
	if len(to) != 1 || to[0].Address != "ana@example.com" {
		t.Fatalf("unexpected To header %v", to)
	}
	from := msg.GetAddrHeader(gomail.HeaderFrom)
	if len(from) != 1 || from[0].Address != "desk@example.com" || from[0].Name != "Freight Desk" {
		t.Fatalf("unexpected From header %v", from)
	}

	if _, err := s.newMessage("not an address", "subject", "body"); err == nil {
		t.Fatal("expected invalid recipient to fail")
	}
}
