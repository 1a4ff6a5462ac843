// Package notify tells users about invitations waiting for them.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mikepea/wishwell/pkg/wishwell/models"
	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// Invite describes a new invitation
type Invite struct {
	Group   models.Group
	Invitee models.User
	Inviter models.User
}

// Text renders the invitation message
func (i Invite) Text() string {
	return fmt.Sprintf("%s invited you to join %q on wishwell. Due %s.",
		i.Inviter.DisplayName, i.Group.Name, i.Group.DueDate.Format("2 Jan 2006"))
}

// Notifier delivers invitation notices. Failures never undo the invite.
type Notifier interface {
	InviteSent(ctx context.Context, invite Invite) error
}

// LogNotifier only records invitations in the log
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) InviteSent(ctx context.Context, invite Invite) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "invite sent",
		"group_id", invite.Group.GroupID,
		"invitee", invite.Invitee.UserID,
		"inviter", invite.Inviter.UserID)
	return nil
}

// Sender is the part of the Telegram bot API used to deliver messages
type Sender interface {
	SendMessage(params *telego.SendMessageParams) (*telego.Message, error)
}

// Telegram messages invitees that linked a Telegram chat and falls back to
// Fallback for everyone else.
type Telegram struct {
	Bot      Sender
	Fallback Notifier
}

// NewTelegram creates a Telegram notifier from a bot token
func NewTelegram(token string, fallback Notifier) (*Telegram, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Telegram{Bot: bot, Fallback: fallback}, nil
}

func (n *Telegram) InviteSent(ctx context.Context, invite Invite) error {
	if invite.Invitee.TelegramChatID == nil {
		return n.Fallback.InviteSent(ctx, invite)
	}
	if _, err := n.Bot.SendMessage(tu.Message(tu.ID(*invite.Invitee.TelegramChatID), invite.Text())); err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	return nil
}
