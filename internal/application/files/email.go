package files

import (
	"mime"
	"net/mail"
	"strings"
	"time"
)

// emailHeaders pulls Subject and Date out of a pasted RFC 822 message.
// Plain pasted text without a header block yields zero values.
func emailHeaders(raw string) (subject string, date *time.Time) {
	msg, err := mail.ReadMessage(strings.NewReader(strings.TrimLeft(raw, " \t\r\n")))
	if err != nil {
		return "", nil
	}
	if msg.Header.Get("From") == "" && msg.Header.Get("Subject") == "" {
		return "", nil
	}

	subject = strings.TrimSpace(msg.Header.Get("Subject"))
	dec := new(mime.WordDecoder)
	if decoded, err := dec.DecodeHeader(subject); err == nil {
		subject = decoded
	}
	if d, err := msg.Header.Date(); err == nil {
		d = d.UTC()
		date = &d
	}
	return subject, date
}
