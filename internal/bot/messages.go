package bot

// =============================================================================
// General messages
// =============================================================================

const (
	MsgOk            = `Ok!`
	MsgUnexpectedErr = `Unexpected error: %s`
	MsgStartPrompt   = `
		%s

		*How to turn photos into cash:*
		1. Send a photo of any item (shoe, watch, shirt).
		2. Wait a few seconds while I write your listing.
		3. Copy and paste it to Instagram, WhatsApp or OLX.

		/cost 500 sets what you paid, so I can show your profit.
		/bulk lists many items at once and exports a spreadsheet.
		/coach reviews your photo quality.`
	MsgUnknownCommand = "Send a photo to get a listing, or /start for help."
	MsgVersionInfo    = "Version: %s\nBuilt: %s"
)

// =============================================================================
// Access gate messages
// =============================================================================

const (
	MsgAccessPrompt  = "🔐 *Member access*\n\nEnter your access code to unlock the bot."
	MsgAccessGranted = "🚀 Unlocked! Send a photo to get started."
	MsgAccessDenied  = "❌ Access denied. Incorrect code."
)

// =============================================================================
// Listing messages
// =============================================================================

const (
	MsgAnalyzing        = "🧠 Analyzing brand, condition and price..."
	MsgAnalysisFailed   = "AI brain freeze: %s"
	MsgNothingParsed    = "I couldn't read a listing from that photo. Try another angle or better light."
	MsgCelebrate        = "🎉 Nice flip! That's a profit."
	MsgUnsupportedImage = "Please send a JPEG, PNG or WebP image."
	MsgPriceHint        = "_Missing: %s_"
)

// =============================================================================
// Cost messages
// =============================================================================

const (
	MsgCostSet     = "💵 Cost set to %s. I'll show your profit with every listing."
	MsgCostCleared = "Cost cleared."
	MsgCostCurrent = "Current cost: %s\n\nUse `/cost <amount>` to change it or `/cost clear` to remove it."
	MsgCostNotSet  = "No cost set. Use `/cost <amount>`, e.g. `/cost 500`."
	MsgCostInvalid = "That doesn't look like an amount. Try `/cost 500`."
)

// =============================================================================
// Photo coach messages
// =============================================================================

const (
	MsgCoachEnabled  = "📸 *Photo lab*\n\nBad photos cost you money. Send a shot and I'll critique it.\n\nUse /sell to go back to listings."
	MsgCoachChecking = "Checking lighting and angles..."
	MsgCoachFeedback = "📸 *Director's feedback:*\n\n%s"
	MsgSellEnabled   = "🔥 Back to instant sell. Send a product photo."
)

// =============================================================================
// Bulk mode messages
// =============================================================================

const (
	MsgBulkStarted        = "📦 *Bulk mode*\n\nSend up to %d photos, one item per photo.\nWhen you're done, send /done (or `/done xlsx` for Excel). /cancel discards the batch."
	MsgBulkAlreadyActive  = "Bulk mode is already on. Send photos, then /done."
	MsgBulkNotActive      = "Bulk mode is not on. Start it with /bulk."
	MsgBulkPhotoAdded     = "Added %s."
	MsgBulkLimitReached   = "This batch is full (%d photos). Send /done to process it."
	MsgBulkEmpty          = "No photos yet. Send some photos first, or /cancel."
	MsgBulkCancelled      = "Batch discarded."
	MsgBulkProgress       = "⏳ Processing %d/%d..."
	MsgBulkFormatInvalid  = "Unknown format %q. Use `/done csv` or `/done xlsx`."
	MsgBulkNothingKept    = "None of the %s produced a usable listing, so there is nothing to export."
	MsgBulkExportFailed   = "Failed to build the export: %s"
	MsgBulkSummary        = "✅ Done: %d of %d items exported."
	MsgBulkSummaryProfit  = "Total profit: %s"
	MsgBulkSendPhotosOrDo = "Send more photos, or /done to process the batch."
)

// motivationalQuotes are shown on /start.
var motivationalQuotes = []string{
	"💰 One man's trash is another man's treasure.",
	"🚀 List it today, cash it tomorrow.",
	"✨ Good photos = Fast money.",
	"🔥 The hustle never stops.",
	"💎 You are sitting on a goldmine. Sell it.",
	"📸 Snap. List. Profit. Repeat.",
}
