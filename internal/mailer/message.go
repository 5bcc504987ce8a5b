package mailer

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"strings"
)

// Message is a multipart/alternative email with a plain text and an html body.
type Message struct {
	From      string
	To        []string
	Subject   string
	PlainBody string
	HTMLBody  string

	// Boundary source; nil means crypto/rand. Tests set it for stable output.
	Rand io.Reader
}

// Write encodes the message in RFC 5322 form.
func (m *Message) Write(w io.Writer) error {
	_, err := fmt.Fprintf(w,
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\n",
		m.From, strings.Join(m.To, ", "), mime.QEncoding.Encode("utf-8", m.Subject))
	if err != nil {
		return err
	}

	boundary, err := randomBoundary(m.Rand)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", boundary); err != nil {
		return err
	}

	writer := multipart.NewWriter(w)
	if err := writer.SetBoundary(boundary); err != nil {
		return err
	}

	if m.PlainBody != "" {
		if err := addQuotedPrintablePart(writer, "text/plain; charset=utf-8", m.PlainBody); err != nil {
			return err
		}
	}
	if m.HTMLBody != "" {
		if err := addQuotedPrintablePart(writer, "text/html; charset=utf-8", m.HTMLBody); err != nil {
			return err
		}
	}
	return writer.Close()
}

func addQuotedPrintablePart(writer *multipart.Writer, contentType, content string) error {
	headers := textproto.MIMEHeader{
		"Content-Transfer-Encoding": {"quoted-printable"},
		"Content-Type":              {contentType},
	}

	buf := bytes.NewBuffer(nil)
	qp := quotedprintable.NewWriter(buf)
	if _, err := qp.Write([]byte(content)); err != nil {
		return err
	}
	if err := qp.Close(); err != nil {
		return err
	}

	part, err := writer.CreatePart(headers)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, buf)
	return err
}

func randomBoundary(r io.Reader) (string, error) {
	if r == nil {
		r = rand.Reader
	}
	var buf [30]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return "", fmt.Errorf("failed to generate boundary: %w", err)
	}
	return fmt.Sprintf("%x", buf[:]), nil
}
