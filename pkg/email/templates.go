package email

import (
	"bytes"
	"fmt"
	"html/template"
)

type templateData struct {
	Email string
	Link  string
	Token string
}

const layout = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>{{template "title" .}}</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 40px 0;">
  <div style="max-width: 600px; margin: 0 auto; background: #ffffff; border-radius: 8px; padding: 32px;">
    <h1 style="color: #333333; font-size: 24px;">{{template "title" .}}</h1>
    {{template "content" .}}
  </div>
</body>
</html>`

var (
	passwordResetTemplate = template.Must(template.Must(template.New("reset").Parse(layout)).Parse(`
{{define "title"}}Reset your password{{end}}
{{define "content"}}
<p>Hi {{.Email}},</p>
<p>We received a request to reset your password.</p>
<p><a href="{{.Link}}" style="display: inline-block; padding: 12px 32px; background: #EF4444; color: #ffffff; text-decoration: none; border-radius: 6px;">Reset password</a></p>
<p style="color: #666666; font-size: 14px;">Or use this token: <code>{{.Token}}</code></p>
<p style="color: #666666; font-size: 14px;">If you did not ask for this, ignore this email.</p>
{{end}}`))

	passwordChangedTemplate = template.Must(template.Must(template.New("changed").Parse(layout)).Parse(`
{{define "title"}}Password changed{{end}}
{{define "content"}}
<p>Hi {{.Email}},</p>
<p>Your password has just been changed.</p>
<p style="color: #666666; font-size: 14px;">If this was not you, reset your password right away.</p>
{{end}}`))
)

func render(t *template.Template, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s email: %w", t.Name(), err)
	}
	return buf.String(), nil
}
