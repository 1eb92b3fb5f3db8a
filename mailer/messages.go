// mailer/messages.go
package mailer

import (
	"fmt"
	"html"
	"strings"
)

// EventInfo is the part of an event that appears in mail.
type EventInfo struct {
	Name        string
	Date        string
	Location    string
	Description string
}

// RegistrationConfirmed tells a student they are registered and gives the
// token a coordinator scans to mark attendance.
func RegistrationConfirmed(to, studentName string, ev EventInfo, token string) Message {
	text := fmt.Sprintf(`Hello %s,

You have successfully registered for:

  Event:    %s
  Date:     %s
  Location: %s

Show this attendance code at the event:

  %s
`, studentName, ev.Name, ev.Date, ev.Location, token)

	e := html.EscapeString
	htmlBody := fmt.Sprintf(`<h3>Registration Confirmed!</h3>
<p>Hello %s,</p>
<p>You have successfully registered for:</p>
<ul>
  <li><strong>Event:</strong> %s</li>
  <li><strong>Date:</strong> %s</li>
  <li><strong>Location:</strong> %s</li>
</ul>
<p>Show this attendance code at the event:</p>
<p style="font-family:monospace;font-size:1.2em">%s</p>
`, e(studentName), e(ev.Name), e(ev.Date), e(ev.Location), e(token))

	return Message{
		To:       []string{to},
		Subject:  "Event Registration Successful",
		TextBody: text,
		HTMLBody: htmlBody,
	}
}

// EventAnnouncement invites a student to register for a new event.
func EventAnnouncement(to string, ev EventInfo) Message {
	var b strings.Builder
	b.WriteString("A new event has been added!\n\n")
	fmt.Fprintf(&b, "Event Name: %s\nDate: %s\nLocation: %s\n", ev.Name, ev.Date, ev.Location)
	if ev.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", ev.Description)
	}
	b.WriteString("\nLogin to register now!\n")
	return Message{
		To:       []string{to},
		Subject:  "New Event Announcement!",
		TextBody: b.String(),
	}
}

// Welcome confirms a new student account.
func Welcome(to, name, regNo string) Message {
	return Message{
		To:      []string{to},
		Subject: "Welcome to the campus event desk",
		TextBody: fmt.Sprintf("Hello %s,\n\nYour account is ready. Sign in with your register number %s.\n",
			name, regNo),
	}
}
