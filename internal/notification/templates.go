package notification

import (
	"bytes"
	"html/template"

	"github.com/google/uuid"
)

const (
	SubjectRegistrationOTP  = "Welcome to Eatsplorer - OTP for Account Verification"
	SubjectPasswordResetOTP = "Your Password Reset OTP"
	SubjectAnnouncement     = "Announcement"
)

const layout = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>{{.Title}}</title></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
<div style="max-width: 600px; margin: 20px auto; padding: 20px;">
{{block "content" .}}{{end}}
<p>Best regards,<br>The Eatsplorer Team</p>
</div>
</body>
</html>`

var templates = map[Kind]*template.Template{
	KindRegistrationOTP: mustParse(`{{define "content"}}
<h1>Welcome to Eatsplorer!</h1>
<p>Dear User,</p>
<p>Before you start exploring, we need to verify your email address. Use this one time password to complete account verification:</p>
<p><strong>OTP: {{.Code}}</strong></p>
<p>This OTP is valid for a limited time. If you did not request it, please disregard this email.</p>
{{end}}`),
	KindPasswordResetOTP: mustParse(`{{define "content"}}
<h1>Welcome to Eatsplorer!</h1>
<p>Dear User,</p>
<p>We received a request to reset your password. Here is your one time password for verification:</p>
<p><strong>OTP: {{.Code}}</strong></p>
<p>Enter it on the password reset page. If you did not request a reset, please ignore this message.</p>
{{end}}`),
	KindAnnouncement: mustParse(`{{define "content"}}
<h1>Announcement</h1>
<p>{{.Body}}</p>
{{end}}`),
}

func mustParse(content string) *template.Template {
	t := template.Must(template.New("layout").Parse(layout))
	return template.Must(t.Parse(content))
}

type templateData struct {
	Title string
	Code  string
	Body  string
}

func render(kind Kind, to, subject string, data templateData) (Message, error) {
	data.Title = subject
	var buf bytes.Buffer
	if err := templates[kind].Execute(&buf, data); err != nil {
		return Message{}, err
	}
	return Message{
		ID:      uuid.NewString(),
		Kind:    kind,
		To:      to,
		Subject: subject,
		HTML:    buf.String(),
	}, nil
}

// RegistrationOTP renders the account verification email.
func RegistrationOTP(to, code string) (Message, error) {
	return render(KindRegistrationOTP, to, SubjectRegistrationOTP, templateData{Code: code})
}

// PasswordResetOTP renders the password reset email.
func PasswordResetOTP(to, code string) (Message, error) {
	return render(KindPasswordResetOTP, to, SubjectPasswordResetOTP, templateData{Code: code})
}

// Announcement renders an announcement. body is escaped.
func Announcement(to, body string) (Message, error) {
	return render(KindAnnouncement, to, SubjectAnnouncement, templateData{Body: body})
}
