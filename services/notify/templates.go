package notify

import (
	htmltemplate "html/template"
	texttemplate "text/template"
)

const htmlBody = `<!DOCTYPE html>
<html>
<head>
  <style>
    body { font-family: 'Segoe UI', Arial, sans-serif; background: #f5f5f5; padding: 20px; }
    .container { max-width: 600px; margin: 0 auto; background: white; border-radius: 12px; overflow: hidden; box-shadow: 0 4px 20px rgba(0,0,0,0.1); }
    .header { background: linear-gradient(135deg, #10b981, #059669); color: white; padding: 30px; text-align: center; }
    .header h1 { margin: 0; font-size: 24px; }
    .content { padding: 30px; }
    .field { margin-bottom: 20px; padding: 15px; background: #f8fafc; border-radius: 8px; border-left: 4px solid #10b981; }
    .field label { font-size: 12px; color: #64748b; text-transform: uppercase; letter-spacing: 1px; }
    .field p { margin: 5px 0 0; font-size: 16px; color: #1e293b; font-weight: 500; }
    .footer { background: #f8fafc; padding: 20px; text-align: center; color: #64748b; font-size: 12px; }
    .badge { display: inline-block; background: #10b981; color: white; padding: 5px 12px; border-radius: 20px; font-size: 12px; margin-top: 10px; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>🎯 New Lead from {{.Brand}} Website</h1>
      <span class="badge">{{.Badge}}</span>
    </div>
    <div class="content">
      <div class="field">
        <label>Full Name</label>
        <p>{{.Name}}</p>
      </div>
      <div class="field">
        <label>Email Address</label>
        <p><a href="mailto:{{.Email}}">{{.Email}}</a></p>
      </div>
      <div class="field">
        <label>Phone Number</label>
        <p><a href="tel:{{.Phone}}">{{.Phone}}</a></p>
      </div>
{{- if .Company}}
      <div class="field">
        <label>Company</label>
        <p>{{.Company}}</p>
      </div>
{{- end}}
{{- if .Demo}}
      <div class="field">
        <label>Demo Requested</label>
        <p>{{.Demo}}</p>
      </div>
{{- end}}
{{- if .Message}}
      <div class="field">
        <label>Message</label>
        <p>{{.Message}}</p>
      </div>
{{- end}}
      <div class="field">
        <label>Submitted At</label>
        <p>{{.SubmittedAt}}</p>
      </div>
    </div>
    <div class="footer">
      This lead was captured from the {{.Brand}} website.<br>
      © {{.Year}} {{.Brand}}
    </div>
  </div>
</body>
</html>
`

const textBody = `New Lead from {{.Brand}} Website ({{.Badge}})

Full Name: {{.Name}}
Email Address: {{.Email}}
Phone Number: {{.Phone}}
{{- if .Company}}
Company: {{.Company}}
{{- end}}
{{- if .Demo}}
Demo Requested: {{.Demo}}
{{- end}}
{{- if .Message}}
Message: {{.Message}}
{{- end}}
Submitted At: {{.SubmittedAt}}

This lead was captured from the {{.Brand}} website.
© {{.Year}} {{.Brand}}
`

var (
	htmlTmpl = htmltemplate.Must(htmltemplate.New("lead.html").Parse(htmlBody))
	textTmpl = texttemplate.Must(texttemplate.New("lead.txt").Parse(textBody))
)
