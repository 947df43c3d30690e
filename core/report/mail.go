package report

import (
	"bytes"
	htmltmpl "html/template"
	"log"
)

// reportMailTmpl is the HTML body sent to parents along with the PDF report.
var reportMailTmpl = htmltmpl.Must(htmltmpl.New("reportMail").Parse(`<!DOCTYPE html>
<html>
<head>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
    .container { max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background: #4a5568; color: white; padding: 30px; text-align: center; border-radius: 10px 10px 0 0; }
    .content { background: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px; }
    .footer { text-align: center; padding: 20px; color: #666; font-size: 12px; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>{{.AppName}}</h1>
      <p>Academic Performance Report</p>
    </div>
    <div class="content">
      <h2>Dear Parent/Guardian,</h2>
      <p>We are pleased to share with you the academic performance report for <strong>{{.StudentName}}</strong>.</p>
      <p><strong>Academic Year:</strong> {{.AcademicYear}}<br>
      <strong>Term:</strong> {{.Term}}</p>
      <p>Please find the detailed report attached to this email as a PDF document.</p>
      <p>We encourage you to review the report carefully and discuss it with your child. If you have any
      questions or concerns, please do not hesitate to contact the school.</p>
      <p><strong>Best regards,</strong><br>The Academic Team</p>
    </div>
    <div class="footer">
      <p>This is an automated message from {{.AppName}}. Please do not reply to this email.</p>
    </div>
  </div>
</body>
</html>
`))

func renderReportMailHTML(appName, studentName, academicYear, term string) string {
	data := struct {
		AppName      string
		StudentName  string
		AcademicYear string
		Term         string
	}{appName, studentName, orNA(academicYear), orNA(term)}

	var buff bytes.Buffer
	if err := reportMailTmpl.Execute(&buff, data); err != nil {
		log.Printf("report: rendering mail template: %v", err)
		return ""
	}
	return buff.String()
}
