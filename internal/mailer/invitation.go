package mailer

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"github.com/dustin/go-humanize"
)

//go:embed templates/*
var templateFS embed.FS

var (
	invitationText = map[string]*texttemplate.Template{}
	invitationHTML = map[string]*htmltemplate.Template{}
	subjects       = map[string]string{
		"en": "%s invited you to join %s",
		"es": "%s te invitó a unirte a %s",
	}
)

func init() {
	for locale := range subjects {
		invitationText[locale] = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/invitation."+locale+".txt"))
		invitationHTML[locale] = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/invitation."+locale+".html"))
	}
}

// Invitation holds what a personal invitation email shows.
type Invitation struct {
	To               string
	FirstName        string
	InviterName      string
	OrganizationName string
	RoleName         string
	InvitationURL    string
	ExpiresAt        time.Time
	Locale           string
}

// ComposeInvitation renders the invitation email in the requested locale,
// falling back to English.
func ComposeInvitation(from string, inv Invitation, now time.Time) (Message, error) {
	locale := inv.Locale
	if _, ok := subjects[locale]; !ok {
		locale = "en"
	}

	variables := struct {
		Invitation
		ExpiresIn string
		ExpiresOn string
	}{
		Invitation: inv,
		ExpiresIn:  humanize.RelTime(inv.ExpiresAt, now, "ago", "from now"),
		ExpiresOn:  inv.ExpiresAt.UTC().Format("2006-01-02 15:04 MST"),
	}

	text := bytes.NewBuffer(nil)
	if err := invitationText[locale].Execute(text, variables); err != nil {
		return Message{}, fmt.Errorf("render text invitation: %w", err)
	}

	html := bytes.NewBuffer(nil)
	if err := invitationHTML[locale].Execute(html, variables); err != nil {
		return Message{}, fmt.Errorf("render html invitation: %w", err)
	}

	return Message{
		From:      from,
		To:        []string{inv.To},
		Subject:   fmt.Sprintf(subjects[locale], inv.InviterName, inv.OrganizationName),
		PlainBody: text.String(),
		HTMLBody:  html.String(),
	}, nil
}
