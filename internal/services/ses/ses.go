// Package ses provides email notification services via AWS SES
package ses

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"

	appConfig "lifecycle-intelligence-engine/internal/config"
	"lifecycle-intelligence-engine/internal/models"
	"lifecycle-intelligence-engine/internal/utils"
)

// Service handles SES email operations
type Service struct {
	client    *ses.Client
	fromEmail string
}

// EmailParams represents parameters for sending an email
type EmailParams struct {
	To        string
	Subject   string
	HTMLBody  string
	TextBody  string
	ReplyTo   string
	CC        []string
	BCC       []string
	ConfigSet string
}

// RunSummaryParams contains data for a pipeline run summary email.
type RunSummaryParams struct {
	Recipient        string
	RunID            string
	SnapshotDate     time.Time
	WindowDays       int
	TransactionCount int
	CustomerCount    int
	RiskCounts       map[string]int
	HighPriority     []HighPriorityAction
	DashboardURL     string
}

// HighPriorityAction is one customer requiring immediate attention,
// listed in the summary email.
type HighPriorityAction struct {
	CustomerID   string
	SegmentLabel string
	RiskScore    float64
	Action       string
	EstimatedROI float64
}

// SendEmailResult contains the result of sending an email
type SendEmailResult struct {
	MessageID string
	SentAt    time.Time
}

// NewService creates a new SES service
func NewService(ctx context.Context) (*Service, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	appCfg, err := appConfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load app config: %w", err)
	}

	client := ses.NewFromConfig(cfg)

	return &Service{
		client:    client,
		fromEmail: appCfg.SESSenderEmail,
	}, nil
}

// SendEmail sends a basic email
func (s *Service) SendEmail(ctx context.Context, params EmailParams) (*SendEmailResult, error) {
	input := &ses.SendEmailInput{
		Source: aws.String(s.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{params.To},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(params.Subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{},
		},
	}

	// Add HTML body if provided
	if params.HTMLBody != "" {
		input.Message.Body.Html = &types.Content{
			Data:    aws.String(params.HTMLBody),
			Charset: aws.String("UTF-8"),
		}
	}

	// Add text body if provided
	if params.TextBody != "" {
		input.Message.Body.Text = &types.Content{
			Data:    aws.String(params.TextBody),
			Charset: aws.String("UTF-8"),
		}
	}

	if len(params.CC) > 0 {
		input.Destination.CcAddresses = params.CC
	}

	if len(params.BCC) > 0 {
		input.Destination.BccAddresses = params.BCC
	}

	if params.ReplyTo != "" {
		input.ReplyToAddresses = []string{params.ReplyTo}
	}

	if params.ConfigSet != "" {
		input.ConfigurationSetName = aws.String(params.ConfigSet)
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		utils.Logger.Error("Failed to send email",
			zap.String("to", params.To),
			zap.String("subject", params.Subject),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	utils.Logger.Info("Email sent successfully",
		zap.String("to", params.To),
		zap.String("subject", params.Subject),
		zap.String("messageId", *result.MessageId),
	)

	return &SendEmailResult{
		MessageID: *result.MessageId,
		SentAt:    time.Now(),
	}, nil
}

// SendRunSummary sends a pipeline run summary email to one recipient.
func (s *Service) SendRunSummary(ctx context.Context, params RunSummaryParams) (*SendEmailResult, error) {
	htmlBody, err := s.renderRunSummaryHTML(params)
	if err != nil {
		return nil, fmt.Errorf("failed to render email template: %w", err)
	}

	textBody := s.renderRunSummaryText(params)

	subject := fmt.Sprintf("Customer lifecycle run %s: %d customers scored, %d high risk",
		params.SnapshotDate.Format("2006-01-02"), params.CustomerCount, params.RiskCounts["High"])

	return s.SendEmail(ctx, EmailParams{
		To:       params.Recipient,
		Subject:  subject,
		HTMLBody: htmlBody,
		TextBody: textBody,
	})
}

// SendRunSummaries sends the run summary to every configured recipient.
func (s *Service) SendRunSummaries(ctx context.Context, recipients []string, params RunSummaryParams) ([]SendEmailResult, []error) {
	results := make([]SendEmailResult, 0, len(recipients))
	errors := make([]error, 0)

	for _, recipient := range recipients {
		p := params
		p.Recipient = recipient
		result, err := s.SendRunSummary(ctx, p)
		if err != nil {
			errors = append(errors, fmt.Errorf("failed to send to %s: %w", recipient, err))
			continue
		}
		results = append(results, *result)
	}

	utils.Logger.Info("Run summaries sent",
		zap.Int("total", len(recipients)),
		zap.Int("success", len(results)),
		zap.Int("failed", len(errors)),
	)

	return results, errors
}

// BuildRunSummaryParams assembles summary params from persisted run output.
// High-priority actions are capped to keep the email readable.
func BuildRunSummaryParams(run *models.PipelineRun, profiles []models.CustomerProfile, dashboardURL string) RunSummaryParams {
	const maxHighPriority = 10

	riskCounts := make(map[string]int)
	highPriority := make([]HighPriorityAction, 0, maxHighPriority)

	for _, p := range profiles {
		riskCounts[string(p.RiskLevel)]++
		if p.ActionPriority == models.ActionPriorityHigh && len(highPriority) < maxHighPriority {
			highPriority = append(highPriority, HighPriorityAction{
				CustomerID:   p.CustomerID,
				SegmentLabel: p.SegmentLabel,
				RiskScore:    p.RiskScore,
				Action:       p.RecommendedAction,
				EstimatedROI: p.EstimatedROI,
			})
		}
	}

	return RunSummaryParams{
		RunID:            run.RunID,
		SnapshotDate:     run.SnapshotDate,
		WindowDays:       run.WindowDays,
		TransactionCount: run.TransactionCount,
		CustomerCount:    run.CustomerCount,
		RiskCounts:       riskCounts,
		HighPriority:     highPriority,
		DashboardURL:     dashboardURL,
	}
}

// renderRunSummaryHTML renders the HTML email template
func (s *Service) renderRunSummaryHTML(params RunSummaryParams) (string, error) {
	tmpl := `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 30px; border-radius: 10px 10px 0 0; text-align: center; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { background: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px; }
        .stat-row { display: flex; justify-content: space-between; flex-wrap: wrap; margin: 15px 0; }
        .stat-item { background: white; border-radius: 8px; padding: 15px; margin: 5px; flex: 1; text-align: center; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .stat-label { font-size: 12px; color: #999; }
        .stat-value { font-size: 20px; font-weight: bold; color: #333; }
        .action-card { background: white; border-radius: 8px; padding: 15px 20px; margin: 10px 0; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .action-card h3 { margin: 0 0 5px 0; color: #667eea; font-size: 16px; }
        .action-card .segment { color: #666; font-size: 13px; }
        .risk-badge { display: inline-block; background: #dc3545; color: white; padding: 4px 10px; border-radius: 20px; font-weight: bold; font-size: 13px; }
        .cta-button { display: inline-block; background: #667eea; color: white; padding: 15px 30px; text-decoration: none; border-radius: 8px; font-weight: bold; margin-top: 20px; }
        .footer { text-align: center; margin-top: 30px; color: #999; font-size: 12px; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Customer Lifecycle Run Complete</h1>
        <p>Snapshot {{.SnapshotDate.Format "2006-01-02"}} &middot; {{.WindowDays}}-day window</p>
    </div>
    <div class="content">
        <div class="stat-row">
            <div class="stat-item">
                <div class="stat-label">Transactions</div>
                <div class="stat-value">{{.TransactionCount}}</div>
            </div>
            <div class="stat-item">
                <div class="stat-label">Customers</div>
                <div class="stat-value">{{.CustomerCount}}</div>
            </div>
            <div class="stat-item">
                <div class="stat-label">High Risk</div>
                <div class="stat-value">{{index .RiskCounts "High"}}</div>
            </div>
        </div>

        {{if .HighPriority}}
        <p>Customers requiring immediate attention:</p>
        {{range .HighPriority}}
        <div class="action-card">
            <h3>{{.CustomerID}} <span class="risk-badge">{{printf "%.1f" .RiskScore}}</span></h3>
            <p class="segment">{{.SegmentLabel}}</p>
            <p>{{.Action}} (estimated ROI {{printf "%.2f" .EstimatedROI}})</p>
        </div>
        {{end}}
        {{else}}
        <p>No high-priority actions were assigned in this run.</p>
        {{end}}

        {{if .DashboardURL}}
        <div style="text-align: center;">
            <a href="{{.DashboardURL}}" class="cta-button">View Full Results</a>
        </div>
        {{end}}
    </div>
    <div class="footer">
        <p>This email was sent by Lifecycle Intelligence Engine</p>
        <p>Run ID: {{.RunID}}</p>
    </div>
</body>
</html>`

	t, err := template.New("run_summary").Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, params); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// renderRunSummaryText renders plain text version
func (s *Service) renderRunSummaryText(params RunSummaryParams) string {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Customer lifecycle run complete (run %s).\n\n", params.RunID))
	buf.WriteString(fmt.Sprintf("Snapshot date: %s\n", params.SnapshotDate.Format("2006-01-02")))
	buf.WriteString(fmt.Sprintf("Window: %d days\n", params.WindowDays))
	buf.WriteString(fmt.Sprintf("Transactions processed: %d\n", params.TransactionCount))
	buf.WriteString(fmt.Sprintf("Customers scored: %d\n\n", params.CustomerCount))

	buf.WriteString("Risk distribution:\n")
	for _, level := range []string{"High", "Medium", "Low", "Unknown"} {
		if count, ok := params.RiskCounts[level]; ok {
			buf.WriteString(fmt.Sprintf("  %s: %d\n", level, count))
		}
	}
	buf.WriteString("\n")

	if len(params.HighPriority) > 0 {
		buf.WriteString("Customers requiring immediate attention:\n\n")
		for i, action := range params.HighPriority {
			buf.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, action.CustomerID, action.SegmentLabel))
			buf.WriteString(fmt.Sprintf("   Risk score: %.1f\n", action.RiskScore))
			buf.WriteString(fmt.Sprintf("   Action: %s\n", action.Action))
			buf.WriteString(fmt.Sprintf("   Estimated ROI: %.2f\n\n", action.EstimatedROI))
		}
	} else {
		buf.WriteString("No high-priority actions were assigned in this run.\n\n")
	}

	if params.DashboardURL != "" {
		buf.WriteString(fmt.Sprintf("View full results: %s\n\n", params.DashboardURL))
	}

	buf.WriteString("Lifecycle Intelligence Engine\n")

	return buf.String()
}

// VerifyEmailAddress verifies an email address for sending
func (s *Service) VerifyEmailAddress(ctx context.Context, email string) error {
	input := &ses.VerifyEmailAddressInput{
		EmailAddress: aws.String(email),
	}

	_, err := s.client.VerifyEmailAddress(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to verify email: %w", err)
	}

	utils.Logger.Info("Email verification initiated", zap.String("email", email))
	return nil
}
