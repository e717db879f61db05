package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
}

type quoteSentEmailData struct {
	baseEmailData
	RecipientName string
	Reference     string
	Total         string
	ValidUntil    string
}

type shipmentStatusEmailData struct {
	baseEmailData
	RecipientName  string
	Reference      string
	ShipmentType   string
	PreviousStatus string
	Status         string
	Description    string
	Location       string
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

// RenderQuoteSent renders the subject and HTML body of a quote email.
func RenderQuoteSent(msg QuoteSentMessage) (string, string, error) {
	subject := fmt.Sprintf(subjectQuoteSentFmt, msg.Reference)
	body, err := renderEmailTemplate("quote_sent.html", quoteSentEmailData{
		baseEmailData: baseEmailData{Title: subject, Heading: "Your quote is ready"},
		RecipientName: msg.RecipientName,
		Reference:     msg.Reference,
		Total:         msg.Total,
		ValidUntil:    msg.ValidUntil.Format("02 Jan 2006"),
	})
	return subject, body, err
}

// RenderShipmentStatus renders the subject and HTML body of a status update.
func RenderShipmentStatus(msg ShipmentStatusMessage) (string, string, error) {
	subject := fmt.Sprintf(subjectShipmentStatusFmt, msg.Reference, msg.Status)
	body, err := renderEmailTemplate("shipment_status.html", shipmentStatusEmailData{
		baseEmailData:  baseEmailData{Title: subject, Heading: "Shipment update"},
		RecipientName:  msg.RecipientName,
		Reference:      msg.Reference,
		ShipmentType:   msg.ShipmentType,
		PreviousStatus: msg.PreviousStatus,
		Status:         msg.Status,
		Description:    msg.Description,
		Location:       msg.Location,
	})
	return subject, body, err
}
