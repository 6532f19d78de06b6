package email

import (
	"bytes"
	"fmt"
	"html/template"
)

const baseTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Subject}}</title>
</head>
<body style="margin:0;padding:0;background:#f5f5f5;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,Arial,sans-serif;line-height:1.6;color:#333;">
<div style="max-width:600px;margin:0 auto;background:#fff;">
<div style="background:#4f46e5;padding:20px 30px;color:#fff;font-size:20px;font-weight:bold;">CampusConnect</div>
<div style="padding:30px;">{{.Content}}</div>
<div style="padding:20px 30px;background:#1e1b4b;color:#c7d2fe;font-size:12px;">Sent by the CampusConnect website.</div>
</div>
</body>
</html>`

const contactRequestTemplate = `<h2 style="margin-top:0;">New contact request</h2>
<table style="width:100%;border-collapse:collapse;">
<tr><td style="padding:6px 0;color:#666;width:120px;">Name</td><td>{{.Name}}</td></tr>
<tr><td style="padding:6px 0;color:#666;">Email</td><td><a href="mailto:{{.Email}}">{{.Email}}</a></td></tr>
<tr><td style="padding:6px 0;color:#666;">Phone</td><td>{{.Phone}}</td></tr>
<tr><td style="padding:6px 0;color:#666;">Topic</td><td>{{.Topic}}</td></tr>
</table>
{{if .Message}}<p style="margin-top:20px;padding:15px;background:#f9fafb;border-left:4px solid #4f46e5;white-space:pre-line;">{{.Message}}</p>{{end}}
<p style="margin-top:20px;font-size:12px;color:#888;">Request {{.ID}} from {{.IPAddress}} at {{.SubmittedAt}}</p>`

var (
	base           = template.Must(template.New("base").Parse(baseTemplate))
	contactRequest = template.Must(template.New("contact").Parse(contactRequestTemplate))
)

// ContactRequestData is what the support inbox is told about a contact form
// submission
type ContactRequestData struct {
	ID          string
	Name        string
	Email       string
	Phone       string
	Topic       string
	Message     string
	IPAddress   string
	SubmittedAt string
}

// ContactRequestEmail builds the notification sent to inbox. Replies go to
// the person who wrote in.
func ContactRequestEmail(inbox string, data ContactRequestData) (*Email, error) {
	topic := data.Topic
	if topic == "" {
		topic = "General enquiry"
	}
	data.Topic = topic
	subject := fmt.Sprintf("New Contact Request - %s", topic)

	var content bytes.Buffer
	if err := contactRequest.Execute(&content, data); err != nil {
		return nil, fmt.Errorf("render contact request email: %w", err)
	}
	body, err := wrap(content.String(), subject)
	if err != nil {
		return nil, err
	}

	return &Email{
		To:      []string{inbox},
		ReplyTo: data.Email,
		Subject: subject,
		Body:    body,
	}, nil
}

func wrap(content, subject string) (string, error) {
	var out bytes.Buffer
	err := base.Execute(&out, struct {
		Content template.HTML
		Subject string
	}{template.HTML(content), subject})
	if err != nil {
		return "", fmt.Errorf("render email layout: %w", err)
	}
	return out.String(), nil
}
