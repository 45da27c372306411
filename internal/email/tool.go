package email

import (
	"context"

	"costumedesk/internal/assistant/toolkit"
)

// SendEmailTool lets the poet mail its poem to a fixed recipient. The model
// chooses subject and body only.
type SendEmailTool struct {
	sender    Sender
	recipient string
}

func NewSendEmailTool(sender Sender, recipient string) *SendEmailTool {
	return &SendEmailTool{sender: sender, recipient: recipient}
}

func (t *SendEmailTool) Definition() toolkit.Definition {
	return toolkit.Definition{
		Name:        "sendEmail",
		Description: "Sends an email with the given subject and body to the user.",
		Parameters: []toolkit.Parameter{
			{Name: "subject", Description: "Subject line of the email"},
			{Name: "body", Description: "Plain text body of the email"},
		},
	}
}

func (t *SendEmailTool) Call(ctx context.Context, args toolkit.Args) (toolkit.Result, error) {
	subject, err := args.String("subject")
	if err != nil {
		return nil, err
	}
	body, err := args.String("body")
	if err != nil {
		return nil, err
	}
	if err := t.sender.Send(ctx, Message{To: t.recipient, Subject: subject, Body: body}); err != nil {
		return nil, err
	}
	return toolkit.Result{"sent": true, "to": t.recipient}, nil
}
