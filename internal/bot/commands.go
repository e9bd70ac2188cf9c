package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// Set at build time with -ldflags "-X github.com/raine/reseller-lens/internal/bot.Version=..."
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// Command defines a bot command with its handler key and Telegram menu description.
type Command struct {
	Name        string // Command name without slash (e.g., "start")
	Description string // Description shown in Telegram command menu
}

// botCommands defines all available bot commands.
// This is the single source of truth for command definitions.
var botCommands = []Command{
	{Name: "start", Description: "How it works"},
	{Name: "sell", Description: "Turn photos into listings"},
	{Name: "coach", Description: "Get feedback on your photos"},
	{Name: "cost", Description: "Set what you paid, e.g. /cost 500"},
	{Name: "bulk", Description: "List many items at once"},
	{Name: "done", Description: "Process the batch (csv or xlsx)"},
	{Name: "cancel", Description: "Discard the current batch"},
	{Name: "version", Description: "Show version info"},
}

// RegisterCommands sets the bot's command menu in Telegram.
// This should be called once at startup.
func RegisterCommands(tg BotAPI) {
	commands := make([]tgbotapi.BotCommand, len(botCommands))
	for i, cmd := range botCommands {
		commands[i] = tgbotapi.BotCommand{
			Command:     cmd.Name,
			Description: cmd.Description,
		}
	}

	config := tgbotapi.NewSetMyCommands(commands...)
	if _, err := tg.Request(config); err != nil {
		log.Error().Err(err).Msg("failed to set bot commands")
	} else {
		log.Info().Int("count", len(commands)).Msg("registered bot commands")
	}
}
