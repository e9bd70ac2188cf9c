package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// SessionMessage represents a message to be processed by the session worker.
type SessionMessage struct {
	Type string
	Ctx  context.Context
	Done chan struct{} // Closed when processing is complete (for synchronous dispatch)

	Message *tgbotapi.Message
	Text    string
}

// MessageSender abstracts the ability to send Telegram messages.
// This interface decouples UserSession from the full Bot struct,
// improving testability.
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// MessageHandler is the interface for processing session messages.
// This allows the session to dispatch to external handlers without circular dependencies.
type MessageHandler interface {
	HandleSessionMessage(ctx context.Context, session *UserSession, msg SessionMessage)
}

// Mode selects what a photo is used for.
type Mode int

const (
	ModeSell  Mode = iota // Photo becomes a listing
	ModeCoach             // Photo gets a photography critique
)

func (m Mode) String() string {
	if m == ModeCoach {
		return "coach"
	}
	return "sell"
}

// UserSession represents a user's session with the bot.
//
// Threading model:
//   - Each session has a dedicated worker goroutine that processes messages sequentially
//   - Message handlers are called only from the worker and can access session
//     state without locks
//   - Public accessors use the mutex for external callers
type UserSession struct {
	userId int64
	sender MessageSender
	mu     sync.Mutex

	// Worker channel for sequential message processing
	inbox   chan SessionMessage
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	handler MessageHandler // Set after construction to avoid circular deps

	unlocked bool
	mode     Mode
	cost     *float64 // What the user paid; nil when unknown
	bulk     *BulkSession
}

// --- Thread-safe accessors ---

// IsUnlocked returns true if the user has passed the access gate.
func (s *UserSession) IsUnlocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unlocked
}

// Cost returns the session cost, if set.
func (s *UserSession) Cost() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cost == nil {
		return 0, false
	}
	return *s.cost, true
}

// PendingBulkCount returns the number of photos waiting in the bulk batch.
func (s *UserSession) PendingBulkCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bulk == nil {
		return 0
	}
	return len(s.bulk.Photos)
}

// --- Worker-only state changes ---

func (s *UserSession) setUnlocked() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unlocked = true
}

func (s *UserSession) setCost(cost *float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cost = cost
}

// IsInBulkMode returns true if the session is collecting a batch.
// Called from session worker - no locking needed.
func (s *UserSession) IsInBulkMode() bool {
	return s.bulk != nil
}

// StartBulkSession starts collecting photos for a batch.
func (s *UserSession) StartBulkSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bulk = NewBulkSession()
	s.mode = ModeSell
	log.Info().Int64("userId", s.userId).Msg("started bulk session")
}

// EndBulkSession drops the pending batch.
func (s *UserSession) EndBulkSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bulk == nil {
		return
	}
	s.bulk = nil
	log.Info().Int64("userId", s.userId).Msg("ended bulk session")
}

// --- Replies ---

func (s *UserSession) replyWithError(err error) tgbotapi.Message {
	log.Error().Stack().Err(err).Send()
	return s._reply(formatReplyText(MsgUnexpectedErr, escapeMarkdown(err.Error())), false)
}

// sendTypingAction sends a "typing" chat action to show the user that the bot is processing.
// The typing indicator automatically expires after ~5 seconds in Telegram.
func (s *UserSession) sendTypingAction() {
	action := tgbotapi.NewChatAction(s.userId, tgbotapi.ChatTyping)
	// Use Request instead of Send because sendChatAction returns a boolean, not a Message
	_, err := s.sender.Request(action)
	if err != nil {
		log.Debug().Err(err).Int64("userId", s.userId).Msg("failed to send typing action")
	}
}

// startTypingLoop sends a typing action every 4 seconds until the context is cancelled.
// Run this in a goroutine and cancel the context when done.
func (s *UserSession) startTypingLoop(ctx context.Context) {
	s.sendTypingAction()

	ticker := time.NewTicker(4 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sendTypingAction()
		}
	}
}

func (s *UserSession) replyWithMessage(msg tgbotapi.MessageConfig) tgbotapi.Message {
	msg.ChatID = s.userId
	sent, err := s.sender.Send(msg)
	if err != nil {
		log.Error().Stack().
			Interface("msg", msg).
			Err(fmt.Errorf("failed to send reply message: %w", err)).Send()
	} else {
		log.Debug().Int64("userId", s.userId).Int("messageId", sent.MessageID).Msg("sent message")
	}

	return sent
}

func (s *UserSession) _reply(text string, removeReplyKeyboard bool) tgbotapi.Message {
	msg := tgbotapi.MessageConfig{
		Text:      text,
		ParseMode: tgbotapi.ModeMarkdown,
	}

	if removeReplyKeyboard {
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	}

	return s.replyWithMessage(msg)
}

func (s *UserSession) reply(text string, a ...any) tgbotapi.Message {
	return s._reply(formatReplyText(text, a...), false)
}

// editReply replaces the text of an earlier bot message.
func (s *UserSession) editReply(messageID int, text string, a ...any) {
	edit := tgbotapi.NewEditMessageText(s.userId, messageID, formatReplyText(text, a...))
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := s.sender.Request(edit); err != nil {
		log.Warn().Err(err).Int64("userId", s.userId).Int("messageId", messageID).Msg("failed to edit message")
	}
}

// sendDocument uploads an in-memory file to the chat.
func (s *UserSession) sendDocument(name string, data []byte, caption string) error {
	doc := tgbotapi.NewDocument(s.userId, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = caption
	if _, err := s.sender.Send(doc); err != nil {
		return fmt.Errorf("failed to send document: %w", err)
	}
	log.Info().Int64("userId", s.userId).Str("file", name).Int("bytes", len(data)).Msg("sent document")
	return nil
}

// --- Worker methods ---

// StartWorker starts the session's message processing worker goroutine.
// Must be called after setting the handler.
func (s *UserSession) StartWorker() {
	s.wg.Add(1)
	go s.runWorker()
}

// SetHandler sets the message handler for this session.
func (s *UserSession) SetHandler(handler MessageHandler) {
	s.handler = handler
}

// runWorker is the main worker loop that processes messages sequentially.
func (s *UserSession) runWorker() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			// Drain any remaining messages and signal completion
			for {
				select {
				case msg := <-s.inbox:
					if msg.Done != nil {
						close(msg.Done)
					}
				default:
					return
				}
			}
		case msg := <-s.inbox:
			s.processMessage(msg)
		}
	}
}

// processMessage handles a single message from the inbox.
func (s *UserSession) processMessage(msg SessionMessage) {
	defer func() {
		// Recover from any panics to keep the worker running
		if r := recover(); r != nil {
			log.Error().
				Int64("userId", s.userId).
				Interface("panic", r).
				Msg("recovered from panic in session worker")
		}
		if msg.Done != nil {
			close(msg.Done)
		}
	}()

	if s.handler == nil {
		log.Error().Int64("userId", s.userId).Msg("session handler not set")
		return
	}

	ctx := msg.Ctx
	if ctx == nil {
		ctx = s.ctx
	}
	s.handler.HandleSessionMessage(ctx, s, msg)
}

// Send queues a message for processing by the worker.
// This is non-blocking unless the inbox is full.
func (s *UserSession) Send(msg SessionMessage) {
	select {
	case s.inbox <- msg:
	case <-s.ctx.Done():
		if msg.Done != nil {
			close(msg.Done)
		}
	}
}

// SendSync queues a message and waits for it to be processed.
func (s *UserSession) SendSync(msg SessionMessage) {
	msg.Done = make(chan struct{})
	s.Send(msg)
	<-msg.Done
}

// Stop stops the worker and waits for it to finish.
func (s *UserSession) Stop() {
	s.cancel()
	s.wg.Wait()
}
