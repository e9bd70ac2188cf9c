package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/raine/reseller-lens/internal/listing"
	"github.com/raine/reseller-lens/internal/llm"
	"github.com/raine/reseller-lens/internal/profit"
	"github.com/rs/zerolog/log"
)

// imageFileID returns the file to analyze from a photo message or an image
// sent as a document.
func imageFileID(message *tgbotapi.Message) (string, bool) {
	if len(message.Photo) > 0 {
		// Telegram lists sizes from smallest to largest
		return message.Photo[len(message.Photo)-1].FileID, true
	}
	if message.Document != nil && strings.HasPrefix(message.Document.MimeType, "image/") {
		return message.Document.FileID, true
	}
	return "", false
}

// imageFetcher resolves Telegram file IDs to model-ready images.
type imageFetcher struct {
	tg         BotAPI
	downloader *ImageDownloader
}

func (f *imageFetcher) fetch(ctx context.Context, fileID string) (llm.Image, error) {
	img, err := f.downloader.DownloadFromTelegramFileID(ctx, f.tg.GetFileDirectURL, fileID)
	if err != nil {
		return llm.Image{}, err
	}
	return llm.Image{Data: img.Data, MIMEType: img.MIMEType}, nil
}

// replyFetchError tells the user why a photo could not be used.
func replyFetchError(session *UserSession, err error) {
	if errors.Is(err, errUnsupportedImage) {
		session.reply(MsgUnsupportedImage)
		return
	}
	session.replyWithError(err)
}

// ListingHandler turns a single product photo into a listing.
type ListingHandler struct {
	images    *imageFetcher
	generator llm.Generator
	contract  listing.Contract
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(images *imageFetcher, generator llm.Generator) *ListingHandler {
	return &ListingHandler{
		images:    images,
		generator: generator,
		contract:  listing.ListingContract(),
	}
}

// HandlePhoto generates and displays a listing for one photo. A numeric
// caption is taken as the cost of this item and overrides the session cost.
// Called from session worker - no locking needed.
func (h *ListingHandler) HandlePhoto(ctx context.Context, session *UserSession, message *tgbotapi.Message) {
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

	session.reply(MsgAnalyzing)
	gen, err := h.generator.Generate(ctx, h.contract.Prompt(), []llm.Image{img})
	if err != nil {
		log.Error().Err(err).Int64("userId", session.userId).Msg("listing generation failed")
		session.reply(MsgAnalysisFailed, escapeMarkdown(err.Error()))
		return
	}
	cancelTyping()

	rec := h.contract.Parse(gen.Text)
	log.Info().
		Int64("userId", session.userId).
		Bool("cached", gen.Cached).
		Int("fields", rec.CanonicalCount()).
		Str("title", rec.Title()).
		Msg("listing generated")

	if rec.IsEmpty() {
		session.reply(MsgNothingParsed)
		return
	}

	session.reply("%s", formatListing(rec))

	cost, hasCost := costForPhoto(session, message.Caption)
	if !hasCost {
		return
	}
	summary := profit.Compute(cost, rec.Price)
	session.reply("%s", "📊 "+profit.FormatSummary(summary))
	if summary.Favorable() {
		session.reply(MsgCelebrate)
	}
}

// costForPhoto returns the caption cost if the caption is an amount,
// otherwise the session cost.
func costForPhoto(session *UserSession, caption string) (float64, bool) {
	if strings.TrimSpace(caption) != "" {
		if cost, err := profit.ParseCost(caption); err == nil {
			return cost, true
		}
	}
	return session.Cost()
}

// formatListing renders the present fields of a record. Absent fields are
// left out rather than shown empty.
func formatListing(rec listing.Record) string {
	var b strings.Builder
	if v, ok := rec.Get(listing.FieldCaption); ok {
		fmt.Fprintf(&b, "📱 *Story caption*\n%s\n\n", escapeMarkdown(v))
	}
	if v, ok := rec.Get(listing.FieldTitle); ok {
		fmt.Fprintf(&b, "🏷 *Title:* %s\n", escapeMarkdown(v))
	}
	if v, ok := rec.Get(listing.FieldPrice); ok {
		fmt.Fprintf(&b, "💰 *Price:* %s\n", escapeMarkdown(v))
	}
	if v, ok := rec.Get(listing.FieldDescription); ok {
		fmt.Fprintf(&b, "📝 *Description:* %s\n", escapeMarkdown(v))
	}
	if v, ok := rec.Get(listing.FieldTip); ok {
		fmt.Fprintf(&b, "\n💡 *Pro flip tip:* %s\n", escapeMarkdown(v))
	}
	if missing := rec.Missing(); len(missing) > 0 {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf(MsgPriceHint, strings.Join(missing, ", ")))
	}
	return strings.TrimSpace(b.String())
}
