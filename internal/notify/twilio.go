package notify

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"github.com/mytrainer/mytrainer-api/internal/logger"
	"github.com/mytrainer/mytrainer-api/internal/validation"
)

// SMSTransport delivers notifications as text messages through Twilio.
type SMSTransport struct {
	client     *twilio.RestClient
	fromNumber string
	logger     *zap.Logger
}

// NewSMSTransport creates the SMS transport from Twilio credentials.
func NewSMSTransport(accountSID, authToken, fromNumber string, log *zap.Logger) *SMSTransport {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &SMSTransport{
		client:     client,
		fromNumber: fromNumber,
		logger:     log,
	}
}

// Name implements Transport.
func (t *SMSTransport) Name() string {
	return "sms"
}

// Available implements Transport. SMS needs a configured phone number.
func (t *SMSTransport) Available(n Notification) bool {
	return n.SMSEnabled && n.PhoneNumber != ""
}

// Send implements Transport. The destination must be a valid E.164 number.
func (t *SMSTransport) Send(ctx context.Context, n Notification) error {
	if err := validation.ValidatePhoneNumber(n.PhoneNumber); err != nil {
		return err
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetBody(n.Message)
	params.SetFrom(t.fromNumber)
	params.SetTo(n.PhoneNumber)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}

	if t.logger != nil {
		sid := ""
		if resp.Sid != nil {
			sid = *resp.Sid
		}
		t.logger.Info("sms_sent",
			zap.String("user_id", n.UserID.String()),
			zap.String("to", logger.MaskPhone(n.PhoneNumber)),
			zap.String("message_sid", sid),
		)
	}
	return nil
}
