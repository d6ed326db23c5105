package cloud

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/domain"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/pricing"
)

// SNSAPI is the subset of the SNS client used for sales alerts.
type SNSAPI interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSNotifier sends sales alerts to a topic the sales team subscribes to.
type SNSNotifier struct {
	svc      SNSAPI
	topicArn string
}

func NewSNSNotifier(svc SNSAPI, topicArn string) *SNSNotifier {
	return &SNSNotifier{svc: svc, topicArn: topicArn}
}

func NewSNSClient(cfg aws.Config) *sns.Client { return sns.NewFromConfig(cfg) }

// SendAlert publishes one alert.
func (c *SNSNotifier) SendAlert(ctx context.Context, subject, message string) error {
	res, err := c.svc.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(c.topicArn),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	})
	if err != nil {
		return fmt.Errorf("failed to publish to SNS: %w", err)
	}
	log.Debug().Str("message_id", aws.ToString(res.MessageId)).Str("subject", subject).Msg("alert sent")
	return nil
}

// QuotationAlert formats the alert for a newly submitted partner quotation.
func QuotationAlert(q domain.Quotation) (subject, message string) {
	subject = fmt.Sprintf("New quotation: %d kW for %s", q.SystemSize, q.CustomerName)
	message = fmt.Sprintf(
		"Partner Quotation Submitted\n\n"+
			"Quotation: %s\n"+
			"Partner: %s\n"+
			"Customer: %s <%s> %s\n"+
			"System: %d kW (%s / %s / %s)\n"+
			"Total: %s\n"+
			"Submitted: %s",
		q.ID, q.PartnerID,
		q.CustomerName, q.CustomerEmail, q.CustomerPhone,
		q.SystemSize, q.PanelBrand, q.InverterBrand, q.WiringBrand,
		pricing.FormatINR(q.TotalCost),
		q.DateSubmitted.UTC().Format("2006-01-02 15:04 MST"),
	)
	return subject, message
}

// StatusAlert formats the alert for a quotation status change.
func StatusAlert(q domain.Quotation) (subject, message string) {
	subject = fmt.Sprintf("Quotation %s is now %s", q.ID, q.Status)
	message = fmt.Sprintf("Customer %s (%d kW, %s) moved to %s.",
		q.CustomerName, q.SystemSize, pricing.FormatINR(q.TotalCost), strings.ToUpper(string(q.Status)))
	return subject, message
}

// LeadAlert formats the alert for a quote request from the public site.
func LeadAlert(r domain.QuoteRequest) (subject, message string) {
	subject = fmt.Sprintf("New quote request from %s", r.Name)
	var b strings.Builder
	fmt.Fprintf(&b, "Quote Request (%s)\n\n", r.Source)
	fmt.Fprintf(&b, "Name: %s\nEmail: %s\nPhone: %s\n", r.Name, r.Email, r.Phone)
	if r.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", r.Location)
	}
	if r.MonthlyBill > 0 {
		fmt.Fprintf(&b, "Monthly bill: %s\n", pricing.FormatINR(r.MonthlyBill))
	}
	if r.SystemType != "" {
		fmt.Fprintf(&b, "System type: %s\n", r.SystemType)
	}
	if r.Message != "" {
		fmt.Fprintf(&b, "\n%s\n", r.Message)
	}
	return subject, b.String()
}
