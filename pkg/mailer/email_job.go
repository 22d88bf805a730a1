package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for best-effort
// notification emails (welcome, password-changed notice). The password-reset
// email never goes through the queue; it is sent synchronously so a delivery
// failure can roll back the pending reset token.
type EmailJob struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
