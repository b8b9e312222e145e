package twilio

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"finbook/internal/config"
	"finbook/internal/port"
)

type twilioSender struct {
	client     *twilio.RestClient
	fromNumber string
}

// NewTwilioSender creates a Twilio-backed SMSSender.
func NewTwilioSender(cfg *config.SMSConfig) port.SMSSender {
	return &twilioSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		}),
		fromNumber: cfg.FromNumber,
	}
}

func (s *twilioSender) SendOTP(_ context.Context, toPhone, code string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(toPhone)
	params.SetFrom(s.fromNumber)
	params.SetBody(fmt.Sprintf("Your Finbook verification code is %s. It expires in a few minutes.", code))

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio CreateMessage: %w", err)
	}
	return nil
}
