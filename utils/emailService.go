package utils

import (
	"fmt"
	"log"
	"time"

	"lms/config"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendEmail delivers a transactional email through SendGrid
func SendEmail(toEmail, toName, subject, htmlBody string) error {
	from := mail.NewEmail("Course Marketplace", config.AppConfig.EmailSender)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, "", htmlBody)

	client := sendgrid.NewSendClient(config.AppConfig.SendGridApiKey)
	resp, err := client.Send(message)
	if err != nil {
		log.Printf("[EMAIL] send failed to %s: %v", toEmail, err)
		return err
	}
	if resp.StatusCode >= 400 {
		log.Printf("[EMAIL] send to %s rejected with status %d: %s", toEmail, resp.StatusCode, resp.Body)
		return fmt.Errorf("email rejected with status %d", resp.StatusCode)
	}
	return nil
}

// getEmailTemplate wraps body content in the standard layout
func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #1A237E; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; }
			.content { padding: 40px 30px; color: #1A237E; line-height: 1.6; }
			.footer { padding: 20px; text-align: center; color: #999999; font-size: 12px; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>%s</h1></div>
			<div class="content">%s</div>
			<div class="footer">You are receiving this email because of your account activity.</div>
		</div>
	</body>
	</html>`, title, bodyContent)
}

// SendPurchaseReceipt emails the buyer after an order settles
func SendPurchaseReceipt(email, name string, orderID uint, amount float64) {
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your order <strong>#%d</strong> was successful.</p><p>Amount paid: <strong>%.2f</strong></p><p>Your courses are ready in your library.</p>",
		name, orderID, amount,
	)
	if err := SendEmail(email, name, "Your purchase was successful", getEmailTemplate("Purchase Receipt", body)); err != nil {
		log.Printf("[EMAIL] purchase receipt for order #%d not delivered: %v", orderID, err)
	}
}

// SendCertificateIssued emails the student a signed link to their certificate
func SendCertificateIssued(email, name, contentName, certificateURL string) {
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Congratulations on completing <strong>%s</strong>!</p><p><a href=\"%s\">Download your certificate</a> (link valid for a limited time).</p>",
		name, contentName, certificateURL,
	)
	if err := SendEmail(email, name, "Your certificate is ready", getEmailTemplate("Certificate Issued", body)); err != nil {
		log.Printf("[EMAIL] certificate email to %s not delivered: %v", email, err)
	}
}

// SendMentorshipReminder emails a student ahead of a booked session
func SendMentorshipReminder(email, name, mentorName string, startTime time.Time) {
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Reminder: your mentorship session with <strong>%s</strong> starts at %s.</p>",
		name, mentorName, startTime.Format("Mon, 02 Jan 2006 15:04 MST"),
	)
	if err := SendEmail(email, name, "Upcoming mentorship session", getEmailTemplate("Session Reminder", body)); err != nil {
		log.Printf("[EMAIL] mentorship reminder to %s not delivered: %v", email, err)
	}
}
