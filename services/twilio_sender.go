package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioClient "github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Twilio error codes that mean the destination number itself is unusable.
var twilioRecipientCodes = map[int]bool{
	21211: true, // invalid 'To' phone number
	21614: true, // 'To' number is not a valid mobile number
	63003: true, // channel could not find the recipient
}

// TwilioMessageSender sends the message channel over WhatsApp.
type TwilioMessageSender struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioMessageSender(accountSid, authToken, fromNumber string) *TwilioMessageSender {
	return &TwilioMessageSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
		from: fromNumber,
	}
}

func (s *TwilioMessageSender) Send(ctx context.Context, to, body string) (string, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(whatsappAddress(to))
	params.SetFrom(whatsappAddress(s.from))
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		var restErr *twilioClient.TwilioRestError
		if errors.As(err, &restErr) && twilioRecipientCodes[restErr.Code] {
			return "", fmt.Errorf("%w: twilio %d: %s", ErrInvalidRecipient, restErr.Code, restErr.Message)
		}
		return "", fmt.Errorf("twilio: %w", err)
	}
	if resp.Sid == nil {
		return "", nil
	}
	return *resp.Sid, nil
}

// whatsappAddress turns +447700900123 into whatsapp:+447700900123.
func whatsappAddress(number string) string {
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	if !strings.HasPrefix(number, "+") {
		number = "+" + number
	}
	return "whatsapp:" + number
}
