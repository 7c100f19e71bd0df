// Package notify turns validated submissions into ready-to-send email
// notifications with a plain-text and an HTML body.
package notify

// Notification is the formatted message derived from exactly one submission.
// It is never mutated after construction.
type Notification struct {
	Subject   string
	PlainBody string
	RichBody  string
	ReplyTo   string // set for discuss-project submissions only
	Recipient string
}
