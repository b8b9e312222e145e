package ses

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"finbook/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(region, fromAddress, fromName string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
	}, nil
}

func (s *sesSender) from() string {
	return fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)
}

// SendInvoiceEmail delivers an invoice, building a raw MIME message when a
// PDF attachment is present since the simple SES content type cannot carry
// attachments.
func (s *sesSender) SendInvoiceEmail(ctx context.Context, email port.InvoiceEmail) error {
	if len(email.PDF) == 0 {
		return s.sendSimple(ctx, email.To, email.Cc, email.Subject, email.Body)
	}

	raw, err := buildRawMessage(s.from(), email)
	if err != nil {
		return err
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: awsString(s.from()),
		Destination:      destination(email.To, email.Cc),
		Content: &types.EmailContent{
			Raw: &types.RawMessage{Data: raw},
		},
	}
	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func (s *sesSender) SendOTPEmail(ctx context.Context, toEmail, code string) error {
	subject := "Your Finbook verification code"
	body := fmt.Sprintf("Your Finbook verification code is %s. It expires in a few minutes. Do not share it with anyone.", code)
	return s.sendSimple(ctx, toEmail, nil, subject, body)
}

func (s *sesSender) sendSimple(ctx context.Context, to string, cc []string, subject, body string) error {
	from := s.from()
	input := &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination:      destination(to, cc),
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Text: &types.Content{Data: &body},
				},
			},
		},
	}
	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func destination(to string, cc []string) *types.Destination {
	return &types.Destination{
		ToAddresses: []string{to},
		CcAddresses: cc,
	}
}

func awsString(s string) *string { return &s }

func buildRawMessage(from string, email port.InvoiceEmail) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", email.To)
	if len(email.Cc) > 0 {
		fmt.Fprintf(&buf, "Cc: %s\r\n", strings.Join(email.Cc, ", "))
	}
	fmt.Fprintf(&buf, "Subject: %s\r\n", email.Subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", writer.Boundary())

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", "text/plain; charset=UTF-8")
	textPart, err := writer.CreatePart(textHeader)
	if err != nil {
		return nil, fmt.Errorf("building email body: %w", err)
	}
	if _, err := textPart.Write([]byte(email.Body)); err != nil {
		return nil, fmt.Errorf("building email body: %w", err)
	}

	fileName := email.FileName
	if fileName == "" {
		fileName = "invoice.pdf"
	}
	attachHeader := textproto.MIMEHeader{}
	attachHeader.Set("Content-Type", "application/pdf")
	attachHeader.Set("Content-Transfer-Encoding", "base64")
	attachHeader.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	attachPart, err := writer.CreatePart(attachHeader)
	if err != nil {
		return nil, fmt.Errorf("building email attachment: %w", err)
	}

	encoded := base64.StdEncoding.EncodeToString(email.PDF)
	// Fold base64 to 76-char lines per RFC 2045.
	for len(encoded) > 76 {
		if _, err := attachPart.Write([]byte(encoded[:76] + "\r\n")); err != nil {
			return nil, fmt.Errorf("building email attachment: %w", err)
		}
		encoded = encoded[76:]
	}
	if _, err := attachPart.Write([]byte(encoded + "\r\n")); err != nil {
		return nil, fmt.Errorf("building email attachment: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("building email: %w", err)
	}
	return buf.Bytes(), nil
}
