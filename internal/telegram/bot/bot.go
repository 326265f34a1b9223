package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fscqa/fsc-qa/internal/config"
	"github.com/fscqa/fsc-qa/internal/entity"
	"github.com/fscqa/fsc-qa/internal/pkg/logger"
	"github.com/fscqa/fsc-qa/internal/telegram/handlers"
	"github.com/fscqa/fsc-qa/internal/telegram/keyboard"
	"github.com/fscqa/fsc-qa/internal/telegram/middleware"
	"github.com/fscqa/fsc-qa/internal/telegram/render"
	"github.com/fscqa/fsc-qa/internal/telegram/state"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// API is the subset of *tgbotapi.BotAPI the bot uses.
type API interface {
	handlers.BotAPI
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot represents the Telegram bot
type Bot struct {
	api         API
	cfg         *config.TelegramConfig
	usecase     handlers.QueryUsecase
	chats       *state.Store
	handlers    map[string]handlers.Handler
	keyboard    *keyboard.Builder
	logger      *zap.Logger
	loggingMW   *middleware.LoggingMiddleware
	recoveryMW  *middleware.RecoveryMiddleware
	rateLimitMW *middleware.RateLimiterMiddleware
	updatesChan tgbotapi.UpdatesChannel
	stopChan    chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

// New creates a new Telegram bot on top of an authorized API client
func New(
	api API,
	cfg *config.TelegramConfig,
	usecase handlers.QueryUsecase,
	chats *state.Store,
	logger *zap.Logger,
) *Bot {
	bot := &Bot{
		api:      api,
		cfg:      cfg,
		usecase:  usecase,
		chats:    chats,
		keyboard: keyboard.NewBuilder(entity.Catalog(usecase.Corpora())),
		logger:   logger,
		handlers: make(map[string]handlers.Handler),
		stopChan: make(chan struct{}),
	}

	bot.loggingMW = middleware.NewLoggingMiddleware(logger)
	bot.recoveryMW = middleware.NewRecoveryMiddleware(logger, api)
	bot.rateLimitMW = middleware.NewRateLimiterMiddleware(
		cfg.RateLimitPerMinute,
		cfg.RateLimitBurst,
		logger,
		api,
	)

	return bot
}

// Start starts the bot
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("starting telegram bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout

	b.updatesChan = b.api.GetUpdatesChan(u)

	ctx = ctxzap.ToContext(ctx, b.logger)

	go b.processUpdates(ctx)

	b.logger.Info("telegram bot started successfully")
	return nil
}

// Stop stops the bot gracefully with timeout
func (b *Bot) Stop() error {
	b.logger.Info("stopping telegram bot")

	b.stopOnce.Do(func() {
		close(b.stopChan)
		b.api.StopReceivingUpdates()
	})

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	shutdownTimeout := time.Duration(b.cfg.ShutdownTimeout) * time.Second
	select {
	case <-done:
		b.logger.Info("all handlers completed gracefully")
	case <-time.After(shutdownTimeout):
		b.logger.Warn("shutdown timeout exceeded, some handlers may not have completed",
			zap.Duration("timeout", shutdownTimeout),
		)
		return fmt.Errorf("shutdown timeout exceeded")
	}

	b.logger.Info("telegram bot stopped successfully")
	return nil
}

// processUpdates processes incoming updates
func (b *Bot) processUpdates(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			ctxzap.Info(ctx, "context cancelled, stopping update processing")
			return
		case <-b.stopChan:
			ctxzap.Info(ctx, "stop signal received, stopping update processing")
			return
		case update, ok := <-b.updatesChan:
			if !ok {
				ctxzap.Info(ctx, "updates channel closed, stopping update processing")
				return
			}
			b.wg.Add(1)
			go func(u tgbotapi.Update) {
				defer b.wg.Done()
				b.handleUpdateWithMiddleware(u)
			}(update)
		}
	}
}

// handleUpdateWithMiddleware processes update through middleware chain
func (b *Bot) handleUpdateWithMiddleware(update tgbotapi.Update) {
	b.rateLimitMW.Handle(update, func(u tgbotapi.Update) {
		b.loggingMW.Handle(u, func(u2 tgbotapi.Update) {
			b.recoveryMW.Handle(u2, func(u3 tgbotapi.Update) {
				b.handleUpdate(u3)
			})
		})
	})
}

// handleUpdate routes update to appropriate handler
func (b *Bot) handleUpdate(update tgbotapi.Update) {
	ctx := ctxzap.ToContext(context.Background(), b.logger.With(zap.Int("update_id", update.UpdateID)))

	if update.CallbackQuery != nil {
		b.handleCallbackQuery(ctx, update.CallbackQuery)
		return
	}

	if update.Message != nil {
		b.handleMessage(ctx, update.Message)
		return
	}
}

// handleMessage handles incoming messages
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	ctx = logger.WithChat(ctx, message.Chat.ID)

	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	chatID := message.Chat.ID
	if message.Text == "" {
		b.sendError(chatID, render.MsgUnsupportedType)
		return
	}

	handler, exists := b.handlers[handlers.HandlerStateQuestion]
	if !exists {
		ctxzap.Warn(ctx, "question handler not registered")
		b.sendError(chatID, render.ErrGeneric)
		return
	}

	msg := &handlers.Message{
		ChatID:    chatID,
		MessageID: message.MessageID,
		Text:      message.Text,
	}
	if message.From != nil {
		msg.UserID = message.From.ID
	}

	if err := handler.Handle(ctx, msg); err != nil {
		ctxzap.Error(ctx, "handler error", zap.Error(err))
		b.sendError(chatID, render.ErrGeneric)
	}
}

// handleCommand handles bot commands
func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	command := message.Command()
	chatID := message.Chat.ID

	ctxzap.Info(ctx, "command received", zap.String("command", command))

	switch command {
	case "start":
		b.sendCorpusMenu(ctx, chatID, render.MsgWelcome)
	case "corpora":
		b.sendCorpusMenu(ctx, chatID, render.MsgCorpora)
	case "examples":
		b.handleExamplesCommand(ctx, chatID)
	case "help":
		if _, err := b.sendMessage(chatID, render.MsgHelp, nil); err != nil {
			ctxzap.Error(ctx, "failed to send help message", zap.Error(err))
		}
	default:
		b.sendError(chatID, render.MsgUnknownCommand)
	}
}

// sendCorpusMenu posts the selection summary with the corpus toggle keyboard.
func (b *Bot) sendCorpusMenu(ctx context.Context, chatID int64, header string) {
	selected := b.chats.Chat(chatID).Corpora()
	text := header + "\n\n" + render.RenderSelection(entity.Catalog(b.usecase.Corpora()), selected)

	if _, err := b.sendMessage(chatID, text, b.keyboard.CorpusKeyboard(selected)); err != nil {
		ctxzap.Error(ctx, "failed to send corpus menu", zap.Error(err))
	}
}

func (b *Bot) handleExamplesCommand(ctx context.Context, chatID int64) {
	examples := b.usecase.Examples()
	if len(examples) == 0 {
		b.sendError(chatID, render.MsgNoExamples)
		return
	}
	if _, err := b.sendMessage(chatID, render.MsgExamples, b.keyboard.ExamplesKeyboard(examples)); err != nil {
		ctxzap.Error(ctx, "failed to send examples", zap.Error(err))
	}
}

// handleCallbackQuery handles callback button clicks
func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query.Message == nil {
		b.answerCallback(query.ID, render.ErrInvalidCallback)
		return
	}

	ctxzap.Info(ctx, "callback query received",
		zap.String("data", query.Data),
		zap.Int64("user_id", query.From.ID),
	)

	handler, exists := b.handlers[handlers.HandlerStateCallback]
	if !exists {
		ctxzap.Warn(ctx, "callback handler not registered")
		b.answerCallback(query.ID, render.ErrGeneric)
		return
	}

	chatID := query.Message.Chat.ID
	ctx = logger.WithChat(ctx, chatID)
	msg := &handlers.Message{
		ChatID:       chatID,
		UserID:       query.From.ID,
		MessageID:    query.Message.MessageID,
		CallbackData: query.Data,
		CallbackID:   query.ID,
	}

	if err := handler.Handle(ctx, msg); err != nil {
		ctxzap.Error(ctx, "callback handler error", zap.Error(err))
	}
}

// sendMessage sends a message to chat
func (b *Bot) sendMessage(chatID int64, text string, replyMarkup interface{}) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	if replyMarkup != nil {
		msg.ReplyMarkup = replyMarkup
	}
	return b.api.Send(msg)
}

// sendError sends an error message
func (b *Bot) sendError(chatID int64, text string) {
	if _, err := b.sendMessage(chatID, text, nil); err != nil {
		b.logger.Error("failed to send error message",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}

// answerCallback answers a callback query
func (b *Bot) answerCallback(callbackID string, text string) {
	callback := tgbotapi.NewCallback(callbackID, text)
	if _, err := b.api.Request(callback); err != nil {
		b.logger.Error("failed to answer callback",
			zap.Error(err),
			zap.String("callback_id", callbackID),
		)
	}
}

// RegisterHandler registers a handler for an update kind
func (b *Bot) RegisterHandler(handler handlers.Handler) {
	state := handler.GetState()

	if !handlers.IsValidState(state) {
		b.logger.Fatal("invalid handler state",
			zap.String("state", state),
		)
	}

	b.handlers[state] = handler
	b.logger.Info("handler registered",
		zap.String("state", state),
	)
}

// GetAPI returns the bot API instance (for handlers)
func (b *Bot) GetAPI() API {
	return b.api
}

// GetChats returns the per-chat state store (for handlers)
func (b *Bot) GetChats() *state.Store {
	return b.chats
}

// GetKeyboard returns the keyboard builder (for handlers)
func (b *Bot) GetKeyboard() *keyboard.Builder {
	return b.keyboard
}

// GetUsecase returns the query relay (for handlers)
func (b *Bot) GetUsecase() handlers.QueryUsecase {
	return b.usecase
}
