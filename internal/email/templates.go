package email

import (
	"bytes"
	"fmt"
	"html/template"
)

type escalationEmailData struct {
	Title       string
	Heading     string
	Body        string
	CTALabel    string
	CTAURL      string
	LeadName    string
	DaysOverdue int
}

const escalationTemplate = `<!DOCTYPE html>
<html lang="de">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body style="font-family:Arial,Helvetica,sans-serif;background:#f5f5f5;margin:0;padding:24px;">
  <table role="presentation" width="100%" cellpadding="0" cellspacing="0">
    <tr><td align="center">
      <table role="presentation" width="560" cellpadding="0" cellspacing="0" style="background:#ffffff;border-radius:8px;padding:32px;">
        <tr><td>
          <h1 style="font-size:20px;margin:0 0 16px;">{{.Heading}}</h1>
          <p style="font-size:14px;line-height:1.6;color:#333;">{{.Body}}</p>
          {{if .CTAURL}}<p style="margin:24px 0;">
            <a href="{{.CTAURL}}" style="background:#f59e0b;color:#ffffff;text-decoration:none;padding:12px 24px;border-radius:6px;font-size:14px;">{{.CTALabel}}</a>
          </p>{{end}}
        </td></tr>
      </table>
    </td></tr>
  </table>
</body>
</html>`

var escalationTmpl = template.Must(template.New("escalation").Parse(escalationTemplate))

func renderEmailTemplate(data escalationEmailData) (string, error) {
	var buf bytes.Buffer
	if err := escalationTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute escalation email template: %w", err)
	}
	return buf.String(), nil
}
