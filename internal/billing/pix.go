package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/contractly/contractly/pkg/qrcode"
)

// PixCharge is a placeholder PIX charge for a pending payment: a
// deterministic copy-paste payload plus its QR rendering. It is not a real
// payment rail; settlement still goes through SettlePayment with the payload
// as proof.
type PixCharge struct {
	PaymentID uuid.UUID `json:"payment_id"`
	Code      string    `json:"code"`
	QR        string    `json:"qr"` // base64 PNG data URI
}

// PixCharge builds the placeholder charge for a pending payment. Fails with
// ErrPaymentNotPending for settled or credited payments, which have nothing
// left to collect.
func (s *Service) PixCharge(ctx context.Context, paymentID uuid.UUID) (*PixCharge, error) {
	payment, err := s.ledger.Payment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if !payment.IsPending() {
		return nil, ErrPaymentNotPending
	}

	code := pixPayload(payment)
	qr, err := qrcode.GenerateBase64Image(code, 0)
	if err != nil {
		return nil, err
	}

	return &PixCharge{PaymentID: payment.ID, Code: code, QR: qr}, nil
}

// pixPayload mimics the shape of an EMV "copia e cola" string without being
// one. Deterministic per payment so re-fetching the charge never changes the
// code a user may have already copied.
func pixPayload(p *Payment) string {
	return strings.ToUpper(fmt.Sprintf(
		"PIX00CONTRACTLY53986%s62%s",
		p.Amount.StringFixed(2),
		strings.ReplaceAll(p.ID.String(), "-", ""),
	))
}
