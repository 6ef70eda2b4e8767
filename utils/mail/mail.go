package mail

import (
	"bytes"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"os"
	"strconv"

	gomail "gopkg.in/gomail.v2"

	"github.com/joy095/boardroom/logger"
)

// Email template names inside the embedded templates/email directory.
const (
	bookingCreatedTemplate   = "templates/email/booking_created.html"
	bookingCancelledTemplate = "templates/email/booking_cancelled.html"
)

var templates *template.Template

// BookingEmailData is what the booking email templates render.
type BookingEmailData struct {
	DisplayName string
	Purpose     string
	StartTime   string
	EndTime     string
	Year        int
}

// InitTemplates parses the embedded email templates. Call once at startup.
func InitTemplates(fs embed.FS) {
	var err error
	templates, err = template.ParseFS(fs, "templates/email/*.html")
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to parse email templates: %v", err)
		os.Exit(1)
	}
	logger.InfoLogger.Info("Email templates parsed successfully")
}

// sendEmail renders the named template and sends it over SMTP using gomail.
func sendEmail(toEmail, subject, templatePath string, data interface{}) error {
	if templates == nil {
		return fmt.Errorf("email templates not initialized")
	}

	var body bytes.Buffer
	name := templatePath[len("templates/email/"):]
	if err := templates.ExecuteTemplate(&body, name, data); err != nil {
		logger.ErrorLogger.Errorf("Failed to execute email template %s: %v", templatePath, err)
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	mailer := gomail.NewMessage()
	mailer.SetHeader("From", os.Getenv("FROM_EMAIL"))
	mailer.SetHeader("To", toEmail)
	mailer.SetHeader("Subject", subject)
	mailer.SetBody("text/html", body.String())

	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		logger.ErrorLogger.Errorf("Invalid SMTP port: %v", err)
		return fmt.Errorf("invalid SMTP port: %w", err)
	}

	smtpHost := os.Getenv("SMTP_HOST")
	dialer := gomail.NewDialer(smtpHost, port, os.Getenv("SMTP_USERNAME"), os.Getenv("SMTP_PASSWORD"))
	dialer.TLSConfig = &tls.Config{
		InsecureSkipVerify: false,
		ServerName:         smtpHost,
	}

	if err := dialer.DialAndSend(mailer); err != nil {
		logger.ErrorLogger.Errorf("Failed to send email to %s: %v", toEmail, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	logger.InfoLogger.Infof("Email sent to %s (%s)", toEmail, subject)
	return nil
}

// SendBookingCreatedEmail notifies an external invitee about a new booking.
func SendBookingCreatedEmail(email string, data BookingEmailData) error {
	return sendEmail(email, "You are invited: "+data.Purpose, bookingCreatedTemplate, data)
}

// SendBookingCancelledEmail notifies an external invitee that a booking was
// cancelled.
func SendBookingCancelledEmail(email string, data BookingEmailData) error {
	return sendEmail(email, "Cancelled: "+data.Purpose, bookingCancelledTemplate, data)
}
