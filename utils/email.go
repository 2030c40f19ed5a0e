package utils

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// sendMail delivers a single HTML email over SMTP using env config.
func sendMail(to, subject, body string) error {
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}

	m := gomail.NewMessage()
	m.SetHeader("From", os.Getenv("SMTP_FROM"))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(os.Getenv("SMTP_HOST"), port, os.Getenv("SMTP_USERNAME"), os.Getenv("SMTP_PASSWORD"))
	return d.DialAndSend(m)
}

// NotifyEnrollment emails a payment/enrollment confirmation. Fire and
// forget: callers run it in a goroutine and the settlement result never
// waits on it; failures are only logged.
func NotifyEnrollment(to string, courseTitles []string, amount float64, reference string) {
	body := "<h2>Your enrollment is confirmed</h2><p>You now have access to:</p><ul>"
	for _, title := range courseTitles {
		body += "<li>" + title + "</li>"
	}
	body += fmt.Sprintf("</ul><p>Amount paid: ₹%.2f<br>Payment reference: %s</p>", amount, reference)

	if err := sendMail(to, "LearnSphere enrollment confirmation", body); err != nil {
		LogError("Failed to send enrollment confirmation to %s: %v", to, err)
	}
}
