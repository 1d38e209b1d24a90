package ticket

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
	qrcode "github.com/skip2/go-qrcode"

	"slotify/models"
)

var (
	ErrBadToken = errors.New("ticket: malformed token")
	ErrBadSig   = errors.New("ticket: signature mismatch")
)

// Service signs and renders booking tickets. The token travels inside the
// QR code; verification is a pure HMAC check, no database round trip.
type Service struct {
	secret []byte
}

func NewService(secret string) *Service {
	return &Service{secret: []byte(secret)}
}

// Token returns a signed payload string:
// tenantID|bookingID|slotID|issuedAt|signature.
// Rescheduling clears the stored token, so a ticket printed before the move
// no longer matches and fails verification at the door.
func (s *Service) Token(b *models.Booking) string {
	data := fmt.Sprintf("%s|%s|%s|%d", b.TenantID, b.ID, b.SlotID, time.Now().Unix())
	return data + "|" + s.sign(data)
}

// Verify checks a scanned token's signature and returns the booking id it
// was issued for.
func (s *Service) Verify(token string) (bookingID string, err error) {
	parts := strings.Split(token, "|")
	if len(parts) != 5 {
		return "", ErrBadToken
	}
	if _, err := strconv.ParseInt(parts[3], 10, 64); err != nil {
		return "", ErrBadToken
	}
	data := strings.Join(parts[:4], "|")
	if !hmac.Equal([]byte(s.sign(data)), []byte(parts[4])) {
		return "", ErrBadSig
	}
	return parts[1], nil
}

func (s *Service) sign(data string) string {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(data))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// RenderPDF produces the printable A4 ticket with the signed QR code.
func (s *Service) RenderPDF(b *models.Booking, serviceName string) ([]byte, error) {
	token := b.TicketToken
	if token == "" {
		token = s.Token(b)
	}

	qrPNG, err := qrcode.Encode(token, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Booking Ticket")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Service: %s", serviceName))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Name: %s", b.CustomerName))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Date: %s  %s - %s", b.Date, minutesToClock(b.Start), minutesToClock(b.End)))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Visitors: %d", b.VisitorCount))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Booking ID: %s", b.ID))
	pdf.Ln(12)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 40, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func minutesToClock(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
