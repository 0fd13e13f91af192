// Package twiml renders dialogue directives as Twilio voice markup.
package twiml

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/tablevox/tablevox/dialog"
)

const header = `<?xml version="1.0" encoding="UTF-8"?>`

// Render turns a directive into a TwiML document.
func Render(d dialog.Directive) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("<Response>")

	if d.Text != "" {
		fmt.Fprintf(&b, "<Say>%s</Say>", escape(d.Text))
	}

	switch d.Kind {
	case dialog.DirectiveGather:
		if d.Mode == dialog.GatherDigits {
			fmt.Fprintf(&b, `<Gather input="dtmf" numDigits="1" action="%s"/>`, escape(d.Action))
		} else {
			fmt.Fprintf(&b, `<Gather input="speech" speechTimeout="auto" action="%s"/>`, escape(d.Action))
		}
	case dialog.DirectiveHangup:
		b.WriteString("<Hangup/>")
	}

	b.WriteString("</Response>")
	return b.String()
}

// Empty is the response for callbacks that have nothing to say back.
func Empty() string {
	return header + "<Response></Response>"
}

func escape(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}
