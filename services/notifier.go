package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"sort"
	"time"

	"github.com/consultorio-web/consultorio-backend/config"
	"github.com/consultorio-web/consultorio-backend/logger"
	"github.com/consultorio-web/consultorio-backend/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/resend/resend-go/v2"
)

// emailSender is the part of the Resend client used here.
type emailSender interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// JobSubmitter queues background work. *WorkerPool satisfies it.
type JobSubmitter interface {
	Submit(job Job) bool
}

type notifierMetrics struct {
	sendLatency prometheus.Histogram
	errorCount  prometheus.Counter
	sentCount   prometheus.Counter
}

// SubmissionNotifier emails the practice when a visitor submits a form.
type SubmissionNotifier struct {
	config  *config.EmailConfig
	emails  emailSender
	pool    JobSubmitter
	metrics *notifierMetrics
	tmpl    *template.Template
}

func NewSubmissionNotifier(cfg *config.EmailConfig, pool JobSubmitter) *SubmissionNotifier {
	return NewSubmissionNotifierWithRegistry(cfg, pool, prometheus.DefaultRegisterer)
}

func NewSubmissionNotifierWithRegistry(cfg *config.EmailConfig, pool JobSubmitter, reg prometheus.Registerer) *SubmissionNotifier {
	logger.GetLogger().Infow("Initializing submission notifier",
		"from", cfg.FromAddress,
		"to", logger.MaskEmail(cfg.NotifyTo),
		"apikey", logger.MaskSensitiveString(cfg.ResendAPIKey, 3, 0))

	metrics := &notifierMetrics{
		sendLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "submission_email_send_duration_seconds",
			Help:    "Time taken to send submission notification emails",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		}),
		errorCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "submission_email_errors_total",
			Help: "Submission notification emails that failed",
		}),
		sentCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "submission_emails_sent_total",
			Help: "Submission notification emails sent",
		}),
	}
	reg.MustRegister(metrics.sendLatency, metrics.errorCount, metrics.sentCount)

	return &SubmissionNotifier{
		config:  cfg,
		emails:  resend.NewClient(cfg.ResendAPIKey).Emails,
		pool:    pool,
		metrics: metrics,
		tmpl:    template.Must(template.New("submission").Parse(submissionEmailTemplate)),
	}
}

type answerLine struct {
	Label string
	Value string
}

type submissionEmailData struct {
	Servicio   string
	Formulario string
	Fecha      string
	Respuestas []answerLine
}

// Notify queues the email. It never blocks the visitor's request and a
// dropped job is only logged.
func (n *SubmissionNotifier) Notify(sub *types.FormSubmission, svc *types.Service, form *types.FormDefinition) {
	if n == nil || !n.config.Enabled {
		return
	}
	data := buildEmailData(sub, svc, form)
	queued := n.pool.Submit(Job{
		Name: "submission-email:" + sub.ID,
		Execute: func(ctx context.Context) error {
			return n.send(ctx, data)
		},
	})
	if !queued {
		logger.GetLogger().Warnw("Submission email not queued", "submissionID", sub.ID)
	}
}

func (n *SubmissionNotifier) send(ctx context.Context, data submissionEmailData) error {
	start := time.Now()
	defer func() {
		n.metrics.sendLatency.Observe(time.Since(start).Seconds())
	}()
	if err := ctx.Err(); err != nil {
		n.metrics.errorCount.Inc()
		return err
	}

	var html bytes.Buffer
	if err := n.tmpl.Execute(&html, data); err != nil {
		n.metrics.errorCount.Inc()
		return fmt.Errorf("failed to execute template: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", n.config.FromName, n.config.FromAddress),
		To:      []string{n.config.NotifyTo},
		Subject: "Nueva solicitud: " + data.Servicio,
		Html:    html.String(),
	}
	if _, err := n.emails.Send(params); err != nil {
		n.metrics.errorCount.Inc()
		return fmt.Errorf("email send failed: %w", err)
	}

	n.metrics.sentCount.Inc()
	logger.GetLogger().Infow("Submission email sent", "servicio", data.Servicio)
	return nil
}

// buildEmailData lists answers in form field order using field labels;
// answers with no matching field follow in key order.
func buildEmailData(sub *types.FormSubmission, svc *types.Service, form *types.FormDefinition) submissionEmailData {
	data := submissionEmailData{
		Servicio:   "N/A",
		Formulario: "N/A",
		Fecha:      sub.CreatedAt.Format("2006-01-02 15:04"),
	}
	if svc != nil {
		data.Servicio = svc.Title
	}

	used := make(map[string]bool, len(sub.Respuestas))
	if form != nil {
		data.Formulario = form.Nombre
		for _, f := range form.Campos {
			v, ok := sub.Respuestas[f.Name]
			if !ok {
				continue
			}
			label := f.Label
			if label == "" {
				label = f.Name
			}
			data.Respuestas = append(data.Respuestas, answerLine{Label: label, Value: v})
			used[f.Name] = true
		}
	}

	var rest []string
	for k := range sub.Respuestas {
		if !used[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		data.Respuestas = append(data.Respuestas, answerLine{Label: k, Value: sub.Respuestas[k]})
	}
	return data
}

const submissionEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Nueva solicitud</title>
</head>
<body style="font-family: sans-serif; background-color: #f7f7f7; color: #333333; padding: 20px;">
    <div style="max-width: 600px; margin: 0 auto; background-color: #ffffff; padding: 24px; border-radius: 12px;">
        <h2 style="margin-top: 0;">Nueva solicitud para {{.Servicio}}</h2>
        <p>Formulario: <strong>{{.Formulario}}</strong><br>Fecha: {{.Fecha}}</p>
        <table style="width: 100%; border-collapse: collapse;">
            {{range .Respuestas}}
            <tr>
                <td style="padding: 6px 8px; border-bottom: 1px solid #eeeeee; font-weight: bold; vertical-align: top;">{{.Label}}</td>
                <td style="padding: 6px 8px; border-bottom: 1px solid #eeeeee;">{{.Value}}</td>
            </tr>
            {{end}}
        </table>
    </div>
</body>
</html>`
