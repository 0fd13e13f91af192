package dialog

// DirectiveKind says what the telephony layer should do next.
type DirectiveKind string

const (
	// DirectiveSpeak plays text and keeps the line open.
	DirectiveSpeak DirectiveKind = "speak"
	// DirectiveGather plays text and collects the caller's next input.
	DirectiveGather DirectiveKind = "gather"
	// DirectiveHangup plays text and ends the call.
	DirectiveHangup DirectiveKind = "hangup"
)

// GatherMode selects what kind of input a gather collects.
type GatherMode string

const (
	GatherSpeech GatherMode = "speech"
	GatherDigits GatherMode = "digits"
)

// Directive is the controller's instruction for the next call leg.
type Directive struct {
	Kind   DirectiveKind
	Text   string
	Action string // callback path the gathered input is posted to
	Mode   GatherMode
}

// Speak plays text without gathering input.
func Speak(text string) Directive {
	return Directive{Kind: DirectiveSpeak, Text: text}
}

// GatherSpeechAt plays text and gathers the caller's speech.
func GatherSpeechAt(text, action string) Directive {
	return Directive{Kind: DirectiveGather, Text: text, Action: action, Mode: GatherSpeech}
}

// GatherDigitsAt plays text and gathers a single keypad digit.
func GatherDigitsAt(text, action string) Directive {
	return Directive{Kind: DirectiveGather, Text: text, Action: action, Mode: GatherDigits}
}

// Hangup plays text and ends the call.
func Hangup(text string) Directive {
	return Directive{Kind: DirectiveHangup, Text: text}
}
