// Package linehook serves the LINE webhook of the altarf bot: users link
// their LINE account to an altarf user by chatting with the bot.
package linehook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/jacentio/constellation/model/altarf"
	"github.com/jacentio/constellation/service"
)

const (
	welcomeText = "Welcome! Send \"/teacher <name>\" or \"/student <name>\" to register."
	helpText    = "Commands: /teacher <name>, /student <name>, /me"
)

// Replier sends reply messages. *messaging_api.MessagingApiAPI implements it.
type Replier interface {
	ReplyMessage(req *messaging_api.ReplyMessageRequest) (*messaging_api.ReplyMessageResponse, error)
}

// Bot handles LINE webhook callbacks.
type Bot struct {
	channelSecret string
	replier       Replier
	users         *service.AltarfUserService
	logger        *slog.Logger
}

// New creates a Bot. A nil replier disables replies.
func New(channelSecret string, replier Replier, users *service.AltarfUserService, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		channelSecret: channelSecret,
		replier:       replier,
		users:         users,
		logger:        logger,
	}
}

// Callback verifies and handles one webhook delivery.
func (b *Bot) Callback(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 25*time.Second)
	defer cancel()

	cb, err := webhook.ParseRequest(b.channelSecret, req)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			b.logger.Warn("received a request with invalid signature", "error", err)
			w.WriteHeader(http.StatusBadRequest)
		} else {
			b.logger.Warn("failed to parse the request", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}

	for _, event := range cb.Events {
		replyToken, text := b.handleEvent(ctx, event)
		if replyToken == "" || text == "" {
			continue
		}
		if err := b.reply(replyToken, text); err != nil {
			b.logger.Error("failed to reply message", "error", err)
		}
	}
	w.WriteHeader(http.StatusOK)
}

// handleEvent returns the reply token and text to answer event with.
func (b *Bot) handleEvent(ctx context.Context, event webhook.EventInterface) (string, string) {
	switch e := event.(type) {
	case webhook.FollowEvent:
		return e.ReplyToken, welcomeText
	case webhook.MessageEvent:
		s, ok := e.Source.(webhook.UserSource)
		if !ok {
			b.logger.Debug("ignoring message from non-user source")
			return "", ""
		}
		m, ok := e.Message.(webhook.TextMessageContent)
		if !ok {
			return "", ""
		}
		b.logger.Info("handling user message", "userId", s.UserId)
		return e.ReplyToken, b.handleCommand(ctx, s.UserId, m.Text)
	default:
		b.logger.Debug("ignoring event", "eventType", event.GetType())
		return "", ""
	}
}

func (b *Bot) handleCommand(ctx context.Context, lineUserID, text string) string {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(text), " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/teacher":
		return b.register(ctx, lineUserID, arg, altarf.RoleTeacher)
	case "/student":
		return b.register(ctx, lineUserID, arg, altarf.RoleStudent)
	case "/me":
		user, err := b.users.GetUserByLineID(ctx, lineUserID)
		if err != nil {
			b.logger.Error("failed to look up user", "userId", lineUserID, "error", err)
			return "Something went wrong, please try again later."
		}
		if user == nil {
			return "You are not registered yet. " + helpText
		}
		return fmt.Sprintf("You are %s (%s), id %s.", user.Name, user.Role, user.CreationID)
	default:
		return helpText
	}
}

func (b *Bot) register(ctx context.Context, lineUserID, name string, role altarf.Role) string {
	user, err := b.users.Register(ctx, lineUserID, name, role)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			return err.Error()
		}
		b.logger.Error("failed to register user", "userId", lineUserID, "error", err)
		return "Something went wrong, please try again later."
	}
	return fmt.Sprintf("Registered %s as %s.", user.Name, user.Role)
}

func (b *Bot) reply(replyToken, text string) error {
	if b.replier == nil {
		return nil
	}
	_, err := b.replier.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages: []messaging_api.MessageInterface{
			messaging_api.TextMessage{Text: text},
		},
	})
	return err
}
