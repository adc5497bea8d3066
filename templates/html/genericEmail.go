package templates

import (
	"fmt"
	"html"
	"strings"
)

// RenderGenericEmail wraps a plain text body in the diary's email layout.
// The body is HTML-escaped and newlines become <br> tags.
func RenderGenericEmail(subject, bodyContent string) string {
	escaped := html.EscapeString(bodyContent)
	return renderLayout(subject, strings.ReplaceAll(escaped, "\n", "<br>"))
}

// renderLayout places already escaped HTML inside the branded frame
func renderLayout(subject, htmlBody string) string {
	safeSubject := html.EscapeString(subject)

	return fmt.Sprintf(`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>%s</title>
  <style type="text/css">
    body { font-family: Georgia, 'Times New Roman', serif; margin: 0; padding: 0; background-color: #f4f1ea; }
    .container { max-width: 600px; margin: 0 auto; background-color: #ffffff; }
    .header { background-color: #1f2a44; padding: 32px 28px; text-align: center; }
    .header h1 { color: #f4f1ea; margin: 0; font-size: 22px; }
    .content { padding: 32px 28px; color: #1f2937; line-height: 1.6; font-size: 15px; }
    .content h2 { font-size: 17px; margin: 24px 0 8px; color: #1f2a44; }
    .case { border-left: 3px solid #b08d57; padding: 6px 12px; margin: 8px 0; }
    .case .meta { color: #6b7280; font-size: 13px; }
    .footer { padding: 24px; text-align: center; color: #6b7280; font-size: 12px; border-top: 1px solid #e5e7eb; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>%s</h1>
    </div>
    <div class="content">
      %s
    </div>
    <div class="footer">
      <p>Case Diary</p>
    </div>
  </div>
</body>
</html>`, safeSubject, safeSubject, htmlBody)
}
