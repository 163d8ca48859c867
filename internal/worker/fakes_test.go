package worker

import (
	"context"

	"coachrelay/internal/gateway/evolution"
)

type sentMsg struct {
	Phone string
	Text  string
	Att   *evolution.Attachment
}

// fakeSender records every attempt and answers from a scripted outcome list
// (falling back to ok once the script runs out).
type fakeSender struct {
	ok       bool
	outcomes []bool
	sent     []sentMsg
}

func (f *fakeSender) Send(ctx context.Context, phoneRaw, text string, att *evolution.Attachment) bool {
	f.sent = append(f.sent, sentMsg{Phone: phoneRaw, Text: text, Att: att})
	if len(f.outcomes) > 0 {
		out := f.outcomes[0]
		f.outcomes = f.outcomes[1:]
		return out
	}
	return f.ok
}
