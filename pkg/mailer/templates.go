package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// TemplatePasswordReset is the only templated email this service sends.
const TemplatePasswordReset = "password_reset"

var resetTmpl = template.Must(template.New(TemplatePasswordReset).Parse(`
<p>Hi {{.Name}},</p>
<p>You requested a password reset for your account.</p>
<p>Click <a href="{{.ResetURL}}">here</a> to choose a new password.</p>
<p>This link expires in {{.ExpiresIn}}.</p>
<p>If you did not request this, you can safely ignore this email.</p>
`))

// RenderPasswordReset renders the reset email from job data. Expected
// keys: Name, ResetURL, ExpiresIn.
func RenderPasswordReset(data map[string]any) (subject, text, html string, err error) {
	var buf bytes.Buffer
	if err = resetTmpl.Execute(&buf, data); err != nil {
		return "", "", "", err
	}
	subject = "Reset your password"
	text = fmt.Sprintf("You requested a password reset. Open %v to choose a new password. The link expires in %v.",
		data["ResetURL"], data["ExpiresIn"])
	return subject, text, buf.String(), nil
}
