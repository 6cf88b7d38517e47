package services

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"net/url"
	"strings"
	texttemplate "text/template"

	"ibaclean-backend/models"
)

const messageTemplate = `Hello {{.FirstName}}!

Your cleaning booking has been received.

Date: {{.Date}}
Time: {{.Time}}
Address: {{.Address}}, {{.City}}
Total: {{.Total}}

Booking ID: #{{.BookingID}}

We'll send you a confirmation soon. Thank you for choosing {{.Business}}!`

const emailSubjectTemplate = `Booking Confirmation - {{.Business}}`

const emailTemplate = `<!DOCTYPE html>
<html>
<head>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
    .container { max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background: #667eea; color: white; padding: 30px; text-align: center; border-radius: 10px 10px 0 0; }
    .content { background: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px; }
    .booking-details { background: white; padding: 20px; border-radius: 8px; margin: 20px 0; }
    .detail-row { padding: 10px 0; border-bottom: 1px solid #eee; }
    .detail-label { font-weight: bold; color: #667eea; }
    .button { background: #667eea; color: white; padding: 15px 30px; text-decoration: none; border-radius: 50px; display: inline-block; margin: 20px 0; }
    .footer { text-align: center; color: #999; font-size: 12px; margin-top: 30px; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header"><h1>Booking Received</h1></div>
    <div class="content">
      <p>Dear {{.FirstName}},</p>
      <p>Thank you for choosing <strong>{{.Business}}</strong>! We have received your booking.</p>
      <div class="booking-details">
        <h3>Booking Details:</h3>
        <div class="detail-row"><span class="detail-label">Booking ID:</span> #{{.BookingID}}</div>
        <div class="detail-row"><span class="detail-label">Date:</span> {{.Date}}</div>
        <div class="detail-row"><span class="detail-label">Time:</span> {{.Time}}</div>
        <div class="detail-row"><span class="detail-label">Address:</span> {{.Address}}, {{.City}}, {{.Postcode}}</div>
        {{- range .Lines}}
        <div class="detail-row"><span class="detail-label">{{.Label}}:</span> {{.Amount}}</div>
        {{- end}}
        <div class="detail-row"><span class="detail-label">Total Amount:</span> {{.Total}}</div>
      </div>
      <p><strong>What's Next?</strong></p>
      <ul>
        <li>Our team will contact you 24 hours before your appointment</li>
        <li>Please ensure access to the property at the scheduled time</li>
        <li>If you need to reschedule, contact us at least 48 hours in advance</li>
      </ul>
      {{- if .BookingURL}}
      <div style="text-align: center;"><a href="{{.BookingURL}}" class="button">View Booking</a></div>
      {{- end}}
    </div>
    <div class="footer"><p>{{.Business}}</p></div>
  </div>
</body>
</html>`

type priceLine struct {
	Label  string
	Amount string
}

type confirmationView struct {
	FirstName  string
	Business   string
	BookingID  uint
	Date       string
	Time       string
	Address    string
	City       string
	Postcode   string
	Lines      []priceLine
	Total      string
	BookingURL string
}

// Renderer builds the customer-facing confirmation texts for a booking.
type Renderer struct {
	business  string
	clientURL string
	message   *texttemplate.Template
	subject   *texttemplate.Template
	email     *htmltemplate.Template
}

func NewRenderer(business, clientURL string) *Renderer {
	return &Renderer{
		business:  business,
		clientURL: strings.TrimRight(clientURL, "/"),
		message:   texttemplate.Must(texttemplate.New("message").Parse(messageTemplate)),
		subject:   texttemplate.Must(texttemplate.New("subject").Parse(emailSubjectTemplate)),
		email:     htmltemplate.Must(htmltemplate.New("email").Parse(emailTemplate)),
	}
}

func (r *Renderer) view(b *models.Booking, c *models.Customer) confirmationView {
	v := confirmationView{
		FirstName: c.FirstName,
		Business:  r.business,
		BookingID: b.ID,
		Date:      b.ScheduledDate,
		Time:      b.ScheduledTime,
		Address:   b.Address,
		City:      b.City,
		Postcode:  b.Postcode,
		Total:     b.TotalPrice.String(),
	}
	if r.clientURL != "" {
		v.BookingURL = fmt.Sprintf("%s/bookings/%d", r.clientURL, b.ID)
		if b.Reference != "" {
			v.BookingURL += "?ref=" + url.QueryEscape(b.Reference)
		}
	}

	v.Lines = append(v.Lines, priceLine{Label: "Base price", Amount: b.BasePrice.String()})
	if b.BedroomCharge > 0 {
		v.Lines = append(v.Lines, priceLine{Label: "Extra bedrooms", Amount: b.BedroomCharge.String()})
	}
	if b.BathroomCharge > 0 {
		v.Lines = append(v.Lines, priceLine{Label: "Extra bathrooms", Amount: b.BathroomCharge.String()})
	}
	for _, a := range b.AddOns {
		v.Lines = append(v.Lines, priceLine{Label: a.Name, Amount: a.Price.String()})
	}
	return v
}

// Message renders the plain text body sent on the message channel.
func (r *Renderer) Message(b *models.Booking, c *models.Customer) (string, error) {
	var buf bytes.Buffer
	if err := r.message.Execute(&buf, r.view(b, c)); err != nil {
		return "", fmt.Errorf("render message: %w", err)
	}
	return buf.String(), nil
}

// Email renders the subject and HTML body of the confirmation email.
func (r *Renderer) Email(b *models.Booking, c *models.Customer) (subject, body string, err error) {
	v := r.view(b, c)

	var sb bytes.Buffer
	if err := r.subject.Execute(&sb, v); err != nil {
		return "", "", fmt.Errorf("render email subject: %w", err)
	}
	var bb bytes.Buffer
	if err := r.email.Execute(&bb, v); err != nil {
		return "", "", fmt.Errorf("render email body: %w", err)
	}
	return sb.String(), bb.String(), nil
}
