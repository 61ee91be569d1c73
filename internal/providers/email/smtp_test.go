package email

import (
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMTPSendBuildsMultipartWithAttachment(t *testing.T) {
	var (
		gotAddr string
		gotTo   []string
		gotRaw  []byte
	)
	provider := NewSMTP(Config{Host: "smtp.example.com", Port: 587, From: "noreply@airlink.com", FromName: "AirLink"})
	provider.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotRaw = addr, to, msg
		assert.Nil(t, a)
		return nil
	}

	err := provider.Send(context.Background(), Message{
		To:       []string{"ana@example.com"},
		Subject:  "Boarding pass - Reservation ABC123",
		HTMLBody: "<p>hola</p>",
		Attachments: []Attachment{{
			Filename:    "boarding-pass-ABC123.pdf",
			ContentType: "application/pdf",
			Content:     []byte("%PDF-1.3 fake"),
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, []string{"ana@example.com"}, gotTo)

	parsed, err := mail.ReadMessage(strings.NewReader(string(gotRaw)))
	require.NoError(t, err)
	mediaType, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/mixed", mediaType)

	reader := multipart.NewReader(parsed.Body, params["boundary"])
	html, err := reader.NextPart()
	require.NoError(t, err)
	assert.Contains(t, html.Header.Get("Content-Type"), "text/html")

	att, err := reader.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "boarding-pass-ABC123.pdf", att.FileName())
	assert.Equal(t, "application/pdf", att.Header.Get("Content-Type"))

	_, err = reader.NextPart()
	assert.ErrorIs(t, err, io.EOF)
}

func TestSMTPSendRequiresRecipient(t *testing.T) {
	provider := NewSMTP(Config{Host: "smtp.example.com", Port: 587})
	assert.ErrorIs(t, provider.Send(context.Background(), Message{}), ErrNoRecipients)
}

type templatePassenger struct{ name, seat string }

func (p templatePassenger) FullName() string  { return p.name }
func (p templatePassenger) SeatLabel() string { return p.seat }

func TestRenderBoardingPassTemplate(t *testing.T) {
	body, err := RenderTemplate("boarding_pass", map[string]interface{}{
		"PassengerName":   "Ana Rojas",
		"CarrierName":     "AirLink",
		"ReservationCode": "ABC123",
		"FlightNumber":    "AL 42",
		"Origin":          "SCL",
		"Destination":     "LIM",
		"Departure":       "2026-06-01 08:30",
		"Passengers":      []templatePassenger{{name: "Ana Rojas", seat: "12A"}},
		"Instructions":    []string{"Arrive two hours early."},
		"SupportEmail":    "soporte@airlink.com",
	})
	require.NoError(t, err)
	assert.Contains(t, body, "Ana Rojas")
	assert.Contains(t, body, "ABC123")
	assert.Contains(t, body, "seat 12A")
	assert.Contains(t, body, "Arrive two hours early.")
	assert.Contains(t, body, "soporte@airlink.com")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := RenderTemplate("missing", nil)
	assert.Error(t, err)
}
