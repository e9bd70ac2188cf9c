package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/raine/reseller-lens/internal/batch"
	"github.com/raine/reseller-lens/internal/export"
	"github.com/raine/reseller-lens/internal/listing"
	"github.com/raine/reseller-lens/internal/llm"
	"github.com/raine/reseller-lens/internal/profit"
	"github.com/rs/zerolog/log"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// BulkPhoto is a photo waiting in a batch. Only the file ID is kept; the
// image is downloaded when the batch runs.
type BulkPhoto struct {
	FileID    string
	MessageID int
}

// BulkSession collects photos until the user asks for the export.
type BulkSession struct {
	ID        string
	Photos    []BulkPhoto
	StartedAt time.Time
}

// NewBulkSession creates an empty batch with a fresh ID.
func NewBulkSession() *BulkSession {
	return &BulkSession{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
	}
}

// BulkHandler runs many photos through the batch contract and exports the
// results as a spreadsheet.
type BulkHandler struct {
	images    *imageFetcher
	generator llm.Generator
	contract  listing.Contract
	limit     int
	now       func() time.Time
}

// NewBulkHandler creates a new BulkHandler accepting up to limit photos per batch.
func NewBulkHandler(images *imageFetcher, generator llm.Generator, limit int) *BulkHandler {
	return &BulkHandler{
		images:    images,
		generator: generator,
		contract:  listing.BatchContract(),
		limit:     limit,
		now:       time.Now,
	}
}

// HandleBulkCommand starts bulk mode.
func (h *BulkHandler) HandleBulkCommand(session *UserSession) {
	if session.IsInBulkMode() {
		session.reply(MsgBulkAlreadyActive)
		return
	}
	session.StartBulkSession()
	session.reply(MsgBulkStarted, h.limit)
}

// HandlePhoto adds a photo to the pending batch.
// Called from session worker - no locking needed.
func (h *BulkHandler) HandlePhoto(session *UserSession, message *tgbotapi.Message) {
	fileID, ok := imageFileID(message)
	if !ok {
		session.reply(MsgUnsupportedImage)
		return
	}

	session.mu.Lock()
	bs := session.bulk
	full := len(bs.Photos) >= h.limit
	if !full {
		bs.Photos = append(bs.Photos, BulkPhoto{FileID: fileID, MessageID: message.MessageID})
	}
	count := len(bs.Photos)
	session.mu.Unlock()

	if full {
		session.reply(MsgBulkLimitReached, h.limit)
		return
	}
	session.reply(MsgBulkPhotoAdded, pluralize(count, "photo", "photos"))
}

// HandleCancel discards the pending batch.
func (h *BulkHandler) HandleCancel(session *UserSession) {
	session.EndBulkSession()
	session.reply(MsgBulkCancelled)
}

// HandleDone processes the pending batch, edits a progress message after
// every item and sends the export document.
// Called from session worker - no locking needed.
func (h *BulkHandler) HandleDone(ctx context.Context, session *UserSession, args []string) {
	if !session.IsInBulkMode() {
		session.reply(MsgBulkNotActive)
		return
	}

	format := FormatCSV
	if len(args) > 0 {
		format = strings.ToLower(strings.TrimPrefix(args[0], "."))
	}
	if format != FormatCSV && format != FormatXLSX {
		session.reply(MsgBulkFormatInvalid, args[0])
		return
	}

	bs := session.bulk
	if len(bs.Photos) == 0 {
		session.reply(MsgBulkEmpty)
		return
	}
	// The batch is consumed whatever the outcome
	defer session.EndBulkSession()

	items := make([]batch.Item, len(bs.Photos))
	for i, p := range bs.Photos {
		items[i] = batch.Item{ID: p.FileID}
	}

	progressMsg := session.reply(MsgBulkProgress, 0, len(items))
	opts := []batch.Option{
		batch.WithProgress(func(p batch.Progress) {
			session.editReply(progressMsg.MessageID, MsgBulkProgress, p.Completed, p.Total)
		}),
	}
	cost, hasCost := session.Cost()
	if hasCost {
		opts = append(opts, batch.WithCost(cost))
	}

	typingCtx, cancelTyping := context.WithCancel(ctx)
	go session.startTypingLoop(typingCtx)
	result := batch.Process(ctx, items, h.request, h.contract, opts...)
	cancelTyping()

	log.Info().
		Int64("userId", session.userId).
		Str("batchID", bs.ID).
		Int("attempted", result.Attempted).
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed()).
		Int("rejected", result.Rejected()).
		Msg("bulk batch finished")

	if result.Succeeded == 0 {
		session.reply(MsgBulkNothingKept, pluralize(result.Attempted, "photo", "photos"))
		return
	}

	data, err := encodeExport(result, format)
	if err != nil {
		session.reply(MsgBulkExportFailed, escapeMarkdown(err.Error()))
		return
	}

	name := export.BuildFilename("listings", bs.ID, format, h.now())
	if err := session.sendDocument(name, data, fmt.Sprintf("%d listings", result.Succeeded)); err != nil {
		session.replyWithError(err)
		return
	}

	session.reply("%s", formatBatchSummary(result, hasCost))
	if total := result.TotalProfit(); hasCost && total.Valid && total.Value > 0 {
		session.reply(MsgCelebrate)
	}
}

// request downloads one batch photo and asks the generator for its listing.
func (h *BulkHandler) request(ctx context.Context, item batch.Item) (string, error) {
	img, err := h.images.fetch(ctx, item.ID)
	if err != nil {
		return "", err
	}
	gen, err := h.generator.Generate(ctx, h.contract.Prompt(), []llm.Image{img})
	if err != nil {
		return "", err
	}
	return gen.Text, nil
}

func encodeExport(result batch.Result, format string) ([]byte, error) {
	if format == FormatXLSX {
		return export.EncodeXLSX(result)
	}
	return export.EncodeCSV(result)
}

// formatBatchSummary lists how many items made it into the export, which
// photos were skipped and, with a cost, the total profit.
func formatBatchSummary(result batch.Result, hasCost bool) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf(MsgBulkSummary, result.Succeeded, result.Attempted))

	var skipped []string
	for _, o := range result.Outcomes {
		if o.Status != batch.StatusOK {
			skipped = append(skipped, fmt.Sprintf("#%d", o.Index+1))
		}
	}
	if len(skipped) > 0 {
		fmt.Fprintf(&b, "\nSkipped: %s", strings.Join(skipped, ", "))
	}

	if hasCost {
		if total := result.TotalProfit(); total.Valid {
			b.WriteString("\n")
			b.WriteString(fmt.Sprintf(MsgBulkSummaryProfit, profit.FormatMoney(total.Value)))
		}
	}
	return b.String()
}
