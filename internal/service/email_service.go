package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"

	"nodeacademy/internal/achievement"
	"nodeacademy/internal/logger"
)

// sesAPI is the part of the SES client the email service uses
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     sesAPI
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
}

// NewEmailService creates a new email service. An empty fromEmail yields a
// disabled service whose sends are no-ops.
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName, appBaseURL string) (*EmailService, error) {
	log := logger.FromContext(ctx)

	if fromEmail == "" {
		log.Info("email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Info("email service enabled", zap.String("from", fromEmail), zap.String("region", awsRegion))
	return newEmailService(sesv2.NewFromConfig(cfg), fromEmail, fromName, appBaseURL), nil
}

func newEmailService(client sesAPI, fromEmail, fromName, appBaseURL string) *EmailService {
	return &EmailService{
		client:     client,
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: strings.TrimRight(appBaseURL, "/"),
		enabled:    true,
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

const emailStyle = `
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #3c873a; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.button { display: inline-block; padding: 12px 30px; background-color: #3c873a; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }`

func wrapHTML(heading, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>%s
	</style>
</head>
<body>
	<div class="container">
		<div class="header"><h1>%s</h1></div>
		<div class="content">%s</div>
		<div class="footer"><p>This is an automated email from Node Academy. Please do not reply.</p></div>
	</div>
</body>
</html>
`, emailStyle, html.EscapeString(heading), content)
}

// SendWelcomeEmail sends a welcome email to a newly registered learner
func (s *EmailService) SendWelcomeEmail(ctx context.Context, toEmail, toName string) error {
	if !s.enabled {
		logger.FromContext(ctx).Debug("skipping welcome email (service disabled)", zap.String("to", toEmail))
		return nil
	}

	link := s.appBaseURL + "/profile"
	subject := "Welcome to Node Academy!"
	htmlBody := wrapHTML("Welcome to Node Academy!", fmt.Sprintf(`
			<p>Hi %s,</p>
			<p>Your account is ready. Work through the lessons, pass the tests and collect achievements along the way.</p>
			<p style="text-align: center;"><a href="%s" class="button">Start Learning</a></p>`,
		html.EscapeString(toName), html.EscapeString(link)))
	textBody := fmt.Sprintf(`Hi %s,

Your account is ready. Work through the lessons, pass the tests and collect achievements along the way.

Start learning: %s
`, toName, link)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// SendAchievementEmail tells a learner about achievements they just earned
func (s *EmailService) SendAchievementEmail(ctx context.Context, toEmail, toName string, earned []achievement.Definition) error {
	if len(earned) == 0 {
		return nil
	}
	if !s.enabled {
		logger.FromContext(ctx).Debug("skipping achievement email (service disabled)", zap.String("to", toEmail))
		return nil
	}

	var items, lines strings.Builder
	for _, d := range earned {
		fmt.Fprintf(&items, "<li>%s <strong>%s</strong>: %s</li>", d.Icon, html.EscapeString(d.Title), html.EscapeString(d.Description))
		fmt.Fprintf(&lines, "- %s: %s\n", d.Title, d.Description)
	}

	link := s.appBaseURL + "/profile"
	subject := fmt.Sprintf("You earned %d new achievement(s)!", len(earned))
	if len(earned) == 1 {
		subject = fmt.Sprintf("Achievement unlocked: %s", earned[0].Title)
	}
	htmlBody := wrapHTML("New achievement!", fmt.Sprintf(`
			<p>Hi %s,</p>
			<p>Great work! You just earned:</p>
			<ul>%s</ul>
			<p style="text-align: center;"><a href="%s" class="button">View Profile</a></p>`,
		html.EscapeString(toName), items.String(), html.EscapeString(link)))
	textBody := fmt.Sprintf(`Hi %s,

Great work! You just earned:
%s
View your profile: %s
`, toName, lines.String(), link)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	log := logger.FromContext(ctx)

	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	fields := []zap.Field{zap.String("to", toEmail), zap.String("subject", subject)}
	if result != nil && result.MessageId != nil {
		fields = append(fields, zap.String("message_id", *result.MessageId))
	}
	log.Info("email sent", fields...)
	return nil
}
