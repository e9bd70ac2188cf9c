package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/raine/reseller-lens/internal/llm"
	"github.com/rs/zerolog/log"
)

const coachPrompt = "Act as a harsh but helpful pro photographer. Give 3 specific commands to improve this product photo, covering lighting, background and angle. Keep it short."

// CoachHandler critiques product photos. The answer is shown as is.
type CoachHandler struct {
	images    *imageFetcher
	generator llm.Generator
}

// NewCoachHandler creates a new CoachHandler.
func NewCoachHandler(images *imageFetcher, generator llm.Generator) *CoachHandler {
	return &CoachHandler{images: images, generator: generator}
}

// HandlePhoto sends the photo critique.
// Called from session worker - no locking needed.
func (h *CoachHandler) HandlePhoto(ctx context.Context, session *UserSession, message *tgbotapi.Message) {
	fileID, ok := imageFileID(message)
	if !ok {
		session.reply(MsgUnsupportedImage)
		return
	}

	typingCtx, cancelTyping := context.WithCancel(ctx)
	defer cancelTyping()
	go session.startTypingLoop(typingCtx)

	img, err := h.images.fetch(ctx, fileID)
	if err != nil {
		replyFetchError(session, err)
		return
	}

	session.reply(MsgCoachChecking)
	gen, err := h.generator.Generate(ctx, coachPrompt, []llm.Image{img})
	if err != nil {
		log.Error().Err(err).Int64("userId", session.userId).Msg("photo critique failed")
		session.reply(MsgAnalysisFailed, escapeMarkdown(err.Error()))
		return
	}

	session.reply(MsgCoachFeedback, escapeMarkdown(gen.Text))
}
