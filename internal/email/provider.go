package email

// Email is a plain outgoing message.
type Email struct {
	To      []string
	Subject string
	Body    string
	IsHTML  bool
}

// Provider sends email. The core only cares that the verification mail went
// out; transport details stay behind this interface.
type Provider interface {
	Send(email *Email) error
	SendVerification(to string, token string) error
	Close() error
}
