package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/raine/reseller-lens/internal/llm"
	"github.com/raine/reseller-lens/internal/profit"
	"github.com/rs/zerolog/log"
)

// BotAPI defines the interface for Telegram bot API operations.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Bot is the main Telegram bot handler.
type Bot struct {
	tg    BotAPI
	state *BotState
	store AccessStore
	gate  *AccessGate

	// Handlers
	listingHandler *ListingHandler
	coachHandler   *CoachHandler
	bulkHandler    *BulkHandler
}

// NewBot creates a new Bot instance. store restores unlocks for returning
// users and may be nil.
func NewBot(tg BotAPI, store AccessStore, generator llm.Generator, gate *AccessGate, batchLimit int) *Bot {
	bot := &Bot{
		tg:    tg,
		store: store,
		gate:  gate,
	}

	images := &imageFetcher{tg: tg, downloader: NewImageDownloader()}
	bot.state = bot.NewBotState()
	bot.listingHandler = NewListingHandler(images, generator)
	bot.coachHandler = NewCoachHandler(images, generator)
	bot.bulkHandler = NewBulkHandler(images, generator, batchLimit)

	return bot
}

// Shutdown stops every session worker.
func (b *Bot) Shutdown() {
	b.state.Shutdown()
}

// HandleUpdate is the main message router.
// It dispatches messages to the appropriate session worker for sequential processing.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	b.dispatchUpdate(ctx, update, false)
}

// handleUpdateSync is like HandleUpdate but waits for message processing to complete.
// Used in tests where we need synchronous behavior.
func (b *Bot) handleUpdateSync(ctx context.Context, update tgbotapi.Update) {
	b.dispatchUpdate(ctx, update, true)
}

// dispatchUpdate routes updates to the appropriate session worker.
// If sync is true, it waits for message processing to complete.
func (b *Bot) dispatchUpdate(ctx context.Context, update tgbotapi.Update, sync bool) {
	message := update.Message
	if message == nil || message.From == nil {
		return
	}

	session := b.state.getUserSession(message.From.ID)

	msg := SessionMessage{Type: "text", Ctx: ctx, Message: message, Text: message.Text}
	if _, ok := imageFileID(message); ok {
		msg.Type = "photo"
	}

	log.Info().
		Int64("userId", message.From.ID).
		Str("type", msg.Type).
		Str("caption", message.Caption).
		Msg("got message")

	if sync {
		session.SendSync(msg)
	} else {
		session.Send(msg)
	}
}

// HandleSessionMessage implements MessageHandler interface.
// This is called by the session worker goroutine for sequential processing.
func (b *Bot) HandleSessionMessage(ctx context.Context, session *UserSession, msg SessionMessage) {
	switch msg.Type {
	case "photo":
		b.handlePhotoMessage(ctx, session, msg.Message)
	case "text":
		b.handleTextMessage(ctx, session, msg.Message)
	}
}

// handlePhotoMessage processes photo messages.
// Called from session worker - no locking needed.
func (b *Bot) handlePhotoMessage(ctx context.Context, session *UserSession, message *tgbotapi.Message) {
	if !session.IsUnlocked() {
		session.reply(MsgAccessPrompt)
		return
	}

	if session.IsInBulkMode() {
		b.bulkHandler.HandlePhoto(session, message)
		return
	}

	if session.mode == ModeCoach {
		b.coachHandler.HandlePhoto(ctx, session, message)
		return
	}

	b.listingHandler.HandlePhoto(ctx, session, message)
}

// handleTextMessage processes text messages.
// Called from session worker - no locking needed.
func (b *Bot) handleTextMessage(ctx context.Context, session *UserSession, message *tgbotapi.Message) {
	if !session.IsUnlocked() {
		// Commands never count as a code attempt
		if strings.HasPrefix(message.Text, "/") {
			session.reply(MsgAccessPrompt)
			return
		}
		b.gate.HandleAttempt(session, message.Text)
		return
	}

	b.handleCommand(ctx, session, message)
}

// handleCommand processes bot commands.
// Called from session worker - no locking needed.
func (b *Bot) handleCommand(ctx context.Context, session *UserSession, message *tgbotapi.Message) {
	command, args := parseCommand(message.Text)
	switch command {
	case "/start":
		session.reply(MsgStartPrompt, randomMotivation())
	case "/sell":
		session.mode = ModeSell
		session.reply(MsgSellEnabled)
	case "/coach":
		session.mode = ModeCoach
		session.reply(MsgCoachEnabled)
	case "/cost":
		b.handleCostCommand(session, args)
	case "/bulk":
		b.bulkHandler.HandleBulkCommand(session)
	case "/done":
		b.bulkHandler.HandleDone(ctx, session, args)
	case "/cancel":
		if session.IsInBulkMode() {
			b.bulkHandler.HandleCancel(session)
			return
		}
		session.mode = ModeSell
		session.reply(MsgOk)
	case "/version":
		session.reply(MsgVersionInfo, Version, BuildTime)
	default:
		if session.IsInBulkMode() {
			session.reply(MsgBulkSendPhotosOrDo)
			return
		}
		session.reply(MsgUnknownCommand)
	}
}

// handleCostCommand handles /cost: show, set or clear the session cost.
func (b *Bot) handleCostCommand(session *UserSession, args []string) {
	if len(args) == 0 {
		if cost, ok := session.Cost(); ok {
			session.reply(MsgCostCurrent, profit.FormatMoney(cost))
		} else {
			session.reply(MsgCostNotSet)
		}
		return
	}

	switch strings.ToLower(args[0]) {
	case "clear", "off", "none", "reset":
		session.setCost(nil)
		session.reply(MsgCostCleared)
		return
	}

	cost, err := profit.ParseCost(strings.Join(args, " "))
	if err != nil {
		log.Debug().Err(err).Int64("userId", session.userId).Msg("invalid cost")
		session.reply(MsgCostInvalid)
		return
	}
	session.setCost(&cost)
	session.reply(MsgCostSet, profit.FormatMoney(cost))
}
