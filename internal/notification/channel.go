// internal/notification/channel.go
package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"

	"hiring-workers/internal/common/metrics"
	"hiring-workers/internal/directory"
	"hiring-workers/internal/models"
)

// Channel delivers a stored notification outside the application.
type Channel interface {
	Name() string
	Deliver(ctx context.Context, n *models.Notification) error
}

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SESChannel emails the recipient: the organization contact address or the
// candidate's profile email.
type SESChannel struct {
	client    SESService
	dir       directory.Directory
	fromEmail string
}

func NewSESChannel(client SESService, dir directory.Directory, fromEmail string) *SESChannel {
	return &SESChannel{client: client, dir: dir, fromEmail: fromEmail}
}

func (c *SESChannel) Name() string { return "email" }

func (c *SESChannel) Deliver(ctx context.Context, n *models.Notification) error {
	to, err := c.address(ctx, n)
	if err != nil {
		return err
	}
	if to == "" {
		return nil
	}

	_, err = c.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &sestypes.Destination{
			ToAddresses: []string{to},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(n.Title)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(n.Body)},
			},
		},
		Source: aws.String(c.fromEmail),
	})
	return err
}

func (c *SESChannel) address(ctx context.Context, n *models.Notification) (string, error) {
	switch n.RecipientKind {
	case models.RecipientOrganization:
		org, err := c.dir.GetOrganization(ctx, n.RecipientID)
		if err != nil {
			return "", fmt.Errorf("resolve organization email: %w", err)
		}
		return org.ContactEmail, nil
	case models.RecipientCandidate:
		p, err := c.dir.GetCandidateProfile(ctx, n.RecipientID)
		if err != nil {
			return "", fmt.Errorf("resolve candidate email: %w", err)
		}
		return p.Email, nil
	}
	return "", fmt.Errorf("unknown recipient kind %q", n.RecipientKind)
}

// SNSChannel texts candidates about accepted and approved applications.
type SNSChannel struct {
	client   SNSService
	dir      directory.Directory
	senderID string
}

func NewSNSChannel(client SNSService, dir directory.Directory, senderID string) *SNSChannel {
	return &SNSChannel{client: client, dir: dir, senderID: senderID}
}

func (c *SNSChannel) Name() string { return "sms" }

func (c *SNSChannel) Deliver(ctx context.Context, n *models.Notification) error {
	if n.RecipientKind != models.RecipientCandidate {
		return nil
	}
	if n.Kind != models.KindApplicationAccepted && n.Kind != models.KindApplicationApproved {
		return nil
	}

	p, err := c.dir.GetCandidateProfile(ctx, n.RecipientID)
	if err != nil {
		return fmt.Errorf("resolve candidate phone: %w", err)
	}
	if p.Phone == "" {
		return nil
	}

	input := &sns.PublishInput{
		PhoneNumber: aws.String(p.Phone),
		Message:     aws.String(n.Body),
	}
	if c.senderID != "" {
		input.MessageAttributes = map[string]snstypes.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {DataType: aws.String("String"), StringValue: aws.String(c.senderID)},
		}
	}
	_, err = c.client.Publish(ctx, input)
	return err
}

// MultiChannel delivers through every channel and joins the failures.
type MultiChannel []Channel

func (m MultiChannel) Name() string { return "multi" }

func (m MultiChannel) Deliver(ctx context.Context, n *models.Notification) error {
	var errs []error
	for _, ch := range m {
		if err := ch.Deliver(ctx, n); err != nil {
			metrics.NotificationDeliveryFailures.WithLabelValues(ch.Name()).Inc()
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), err))
		}
	}
	return errors.Join(errs...)
}
