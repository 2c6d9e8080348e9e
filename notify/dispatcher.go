package notify

import (
	"go.uber.org/zap"
)

// Sender is the outbound email transport. utils.SendMail satisfies it in
// production; tests substitute a recorder.
type Sender interface {
	Send(to, subject, htmlBody string) error
}

// SenderFunc adapts a plain function to the Sender interface.
type SenderFunc func(to, subject, htmlBody string) error

// Send implements Sender.
func (f SenderFunc) Send(to, subject, htmlBody string) error {
	return f(to, subject, htmlBody)
}

// Dispatcher sends notification emails off the request path. Fire and
// forget: no retry, no delivery confirmation, and transport failures are
// logged without ever reaching the user who posted the comment.
type Dispatcher struct {
	sender Sender
	log    *zap.SugaredLogger
}

// NewDispatcher creates a Dispatcher over the given transport.
func NewDispatcher(sender Sender, log *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{sender: sender, log: log}
}

// Dispatch transmits one email in a detached goroutine. The caller gets no
// handle and must not depend on completion or ordering between sends.
func (d *Dispatcher) Dispatch(to, subject, htmlBody string) {
	go func() {
		defer func() {
			if r := recover(); r != nil && d.log != nil {
				d.log.Errorf("notification dispatch panic to=%s: %v", to, r)
			}
		}()
		if err := d.sender.Send(to, subject, htmlBody); err != nil {
			if d.log != nil {
				d.log.Warnf("notification send failed to=%s subject=%q: %v", to, subject, err)
			}
			return
		}
		if d.log != nil {
			d.log.Infof("notification sent to=%s subject=%q", to, subject)
		}
	}()
}

// DispatchComment renders the right template for each planned recipient of a
// comment and sends it. isReply switches the comment/reply label in both
// templates.
func (d *Dispatcher) DispatchComment(recipients []Recipient, m CommentMail) {
	for _, r := range recipients {
		var subject, body string
		switch r.Reason {
		case ReasonMention:
			subject, body = mentionEmail(r.Username, m)
		default:
			subject, body = ownerCommentEmail(r.Username, m)
		}
		d.Dispatch(r.Email, subject, body)
	}
}
