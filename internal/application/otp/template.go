package otp

import (
	"fmt"
	"html/template"
	"strings"
)

const (
	Subject  = "Your 2FA Verification Code - RaknaGo"
	FromName = "RaknaGo"
)

var otpHTML = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>2FA Verification Code</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: linear-gradient(135deg, #1E88E5 0%, #1976D2 100%); padding: 30px; text-align: center; border-radius: 10px 10px 0 0;">
		<h1 style="color: white; margin: 0;">RaknaGo</h1>
	</div>
	<div style="background: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px;">
		<h2 style="color: #1E88E5; margin-top: 0;">Two-Factor Authentication</h2>
		<p>Hello,</p>
		<p>You have requested a verification code for your RaknaGo account. Use the code below to complete your login:</p>
		<div style="background: white; border: 2px solid #1E88E5; border-radius: 8px; padding: 20px; text-align: center; margin: 30px 0;">
			<h1 style="color: #1E88E5; font-size: 36px; letter-spacing: 8px; margin: 0; font-family: 'Courier New', monospace;">{{.Code}}</h1>
		</div>
		<p style="color: #666; font-size: 14px;">This code will expire in 5 minutes.</p>
		<p style="color: #666; font-size: 14px;">If you didn't request this code, please ignore this email.</p>
		<hr style="border: none; border-top: 1px solid #ddd; margin: 30px 0;">
		<p style="color: #999; font-size: 12px; text-align: center;">&copy; {{.Year}} RaknaGo. All rights reserved.</p>
	</div>
</body>
</html>`))

// Render builds the OTP email for to. The code is HTML-escaped in the HTML part.
func Render(to, code string, year int) (Message, error) {
	var buf strings.Builder
	data := struct {
		Code string
		Year int
	}{Code: code, Year: year}
	if err := otpHTML.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("failed to execute template: %w", err)
	}

	text := fmt.Sprintf("Your RaknaGo 2FA Verification Code is: %s\n\n"+
		"This code will expire in 5 minutes.\n\n"+
		"If you didn't request this code, please ignore this email.", code)

	return Message{
		To:      to,
		Subject: Subject,
		Text:    text,
		HTML:    buf.String(),
	}, nil
}
