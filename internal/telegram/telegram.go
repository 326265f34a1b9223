package telegram

import (
	"context"
	"fmt"

	"github.com/fscqa/fsc-qa/internal/config"
	"github.com/fscqa/fsc-qa/internal/telegram/bot"
	"github.com/fscqa/fsc-qa/internal/telegram/handlers"
	"github.com/fscqa/fsc-qa/internal/telegram/state"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Bot is the main telegram bot interface
type Bot interface {
	Start(ctx context.Context) error
	Stop() error
}

// NewBot authorizes against the Bot API and wires the handlers to the relay.
func NewBot(
	cfg *config.TelegramConfig,
	usecase handlers.QueryUsecase,
	defaultCorpora []string,
	logger *zap.Logger,
) (Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
		zap.Int64("id", api.Self.ID),
	)

	return newBot(api, cfg, usecase, defaultCorpora, logger), nil
}

func newBot(
	api bot.API,
	cfg *config.TelegramConfig,
	usecase handlers.QueryUsecase,
	defaultCorpora []string,
	logger *zap.Logger,
) *bot.Bot {
	chats := state.NewStore(cfg.SelectionTTL, defaultCorpora)
	b := bot.New(api, cfg, usecase, chats, logger)

	registerHandlers(b, logger)

	logger.Info("telegram bot initialized successfully")
	return b
}

// registerHandlers registers all handlers with the bot
func registerHandlers(b *bot.Bot, logger *zap.Logger) {
	api := b.GetAPI()
	chats := b.GetChats()
	usecase := b.GetUsecase()
	kb := b.GetKeyboard()

	questionHandler := handlers.NewQuestionHandler(api, usecase, chats, kb, logger)
	b.RegisterHandler(questionHandler)

	callbackHandler := handlers.NewCallbackHandler(api, usecase, chats, kb, questionHandler, logger)
	b.RegisterHandler(callbackHandler)

	logger.Info("telegram handlers registered",
		zap.Int("handler_count", 2),
	)
}
