package mockapi

import (
	"sync"

	"github.com/rs/zerolog"
)

type MailKind string

const (
	MailVerification  MailKind = "verification"
	MailTwoFactor     MailKind = "two_factor"
	MailPasswordReset MailKind = "password_reset"
)

// Mail is a message the API would email to a user.
type Mail struct {
	To   string
	Kind MailKind
	// Code is the verification code, second factor code or reset token
	Code string
}

// Mailer delivers codes to users.
type Mailer interface {
	Send(mail Mail)
}

// LogMailer writes mails to the log instead of sending them.
type LogMailer struct {
	Logger zerolog.Logger
}

func (m LogMailer) Send(mail Mail) {
	m.Logger.Info().
		Str("to", mail.To).
		Str("kind", string(mail.Kind)).
		Str("code", mail.Code).
		Msg("mail sent")
}

// Outbox keeps every mail in memory. Tests read codes from it.
type Outbox struct {
	mu    sync.Mutex
	mails []Mail
}

func (o *Outbox) Send(mail Mail) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.mails = append(o.mails, mail)
}

// Last returns the most recent mail of kind sent to email.
func (o *Outbox) Last(email string, kind MailKind) (Mail, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := len(o.mails) - 1; i >= 0; i-- {
		if o.mails[i].To == normalizeEmail(email) && o.mails[i].Kind == kind {
			return o.mails[i], true
		}
	}
	return Mail{}, false
}
