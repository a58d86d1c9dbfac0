package verification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/AymanSha3ban/MUC-Library/internal/domain"
	"github.com/AymanSha3ban/MUC-Library/internal/infrastructure/smtp"
	"github.com/AymanSha3ban/MUC-Library/internal/pkg/email"
	"github.com/AymanSha3ban/MUC-Library/internal/pkg/id"
	"github.com/AymanSha3ban/MUC-Library/internal/pkg/token"
)

const subjectVerification = "MUC Library Verification Code"

var verificationMail = template.Must(template.New("verification").Parse(`<div style="font-family: Arial, sans-serif; text-align: center; padding: 20px;">
  <h2>Your Verification Code</h2>
  <h1 style="color: #2563eb; font-size: 32px; letter-spacing: 5px;">{{.Code}}</h1>
  <p>This code will expire in {{.Minutes}} minutes.</p>
  <p><a href="{{.VerifyURL}}">Or open this link to verify</a></p>
  <hr style="border: 0; border-top: 1px solid #eee; margin: 20px 0;" />
  <img src="{{.QRImage}}" alt="QR Code" width="200" height="200" />
</div>
`))

type mailData struct {
	Code      string
	Minutes   int
	VerifyURL string
	QRImage   template.URL
}

func (s *service) Issue(ctx context.Context, addr string) (*domain.VerificationRecord, error) {
	addr = strings.TrimSpace(addr)
	if !email.HasSuffix(addr, s.emailDomain) {
		return nil, fmt.Errorf("%w: must end with %s", domain.ErrInvalidDomain, s.emailDomain)
	}
	code, err := token.NewCode()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	rec := &domain.VerificationRecord{
		ID:        id.New(),
		Email:     addr,
		Token:     token.NewVerificationToken(),
		Code:      code,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.codes.Put(ctx, rec); err != nil {
		return nil, fmt.Errorf("%w: persist verification: %w", domain.ErrStorage, err)
	}

	// From here on the record exists; any failure leaves it unused and the
	// caller retries by issuing a new one.
	verifyURL := s.frontendURL + "/verify?token=" + url.QueryEscape(rec.Token)
	qrPayload := rec.Code
	if s.qrContent == QRContentLink {
		qrPayload = verifyURL
	}
	img, err := s.qr.Render(ctx, rec.ID, qrPayload, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("%w: render qr: %w", domain.ErrDelivery, err)
	}
	var body bytes.Buffer
	if err := verificationMail.Execute(&body, mailData{
		Code:      rec.Code,
		Minutes:   int(s.ttl.Minutes()),
		VerifyURL: verifyURL,
		QRImage:   template.URL(img),
	}); err != nil {
		return nil, fmt.Errorf("%w: render mail: %w", domain.ErrDelivery, err)
	}
	if err := s.mailer.SendEmail(ctx, smtp.Message{
		To:      addr,
		Subject: subjectVerification,
		HTML:    body.String(),
	}); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDelivery, err)
	}
	return rec, nil
}
