package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/fscqa/fsc-qa/internal/entity"
	"github.com/fscqa/fsc-qa/internal/pkg/logger"
	"github.com/fscqa/fsc-qa/internal/telegram/keyboard"
	"github.com/fscqa/fsc-qa/internal/telegram/render"
	"github.com/fscqa/fsc-qa/internal/telegram/state"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// QuestionHandler answers free-text messages with the chat's corpus selection.
type QuestionHandler struct {
	BaseHandler
	bot      BotAPI
	usecase  QueryUsecase
	chats    *state.Store
	keyboard *keyboard.Builder
	logger   *zap.Logger
}

// NewQuestionHandler creates a new question handler
func NewQuestionHandler(
	bot BotAPI,
	usecase QueryUsecase,
	chats *state.Store,
	kb *keyboard.Builder,
	logger *zap.Logger,
) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler: BaseHandler{
			stateName:     HandlerStateQuestion,
			messageSender: NewMessageSender(bot, logger),
		},
		bot:      bot,
		usecase:  usecase,
		chats:    chats,
		keyboard: kb,
		logger:   logger,
	}
}

// Handle implements Handler
func (h *QuestionHandler) Handle(ctx context.Context, msg *Message) error {
	return h.Ask(ctx, msg.ChatID, msg.Text)
}

// Ask relays question for chatID and posts the answer or a readable error.
// Relay failures are reported in the chat and never returned.
func (h *QuestionHandler) Ask(ctx context.Context, chatID int64, question string) error {
	chat := h.chats.Chat(chatID)
	if !chat.TryBegin() {
		h.sendMessage(chatID, render.RenderError(entity.ErrQueryInFlight), nil)
		return nil
	}
	defer chat.Done()

	corpora := chat.Corpora()
	ctx = logger.AddFields(logger.WithChat(ctx, chatID), zap.Strings("corpora", corpora))

	typing := NewTypingNotifier(h.bot, chatID, h.logger)
	typing.Start(ctx)
	defer typing.Stop()

	start := time.Now()
	result, err := h.usecase.Ask(ctx, entity.QueryRequest{
		Question: question,
		Corpora:  corpora,
	})
	typing.Stop()

	if err != nil {
		ctxzap.Warn(ctx, "question not answered",
			zap.Error(err),
			zap.String("error_code", entity.ErrorCode(err)),
			zap.Duration("duration", time.Since(start)),
		)
		if errors.Is(err, entity.ErrNoCorpusSelected) || errors.Is(err, entity.ErrUnknownCorpus) {
			h.sendMessage(chatID, render.RenderError(err), h.keyboard.CorpusKeyboard(corpora))
			return nil
		}
		h.sendMessage(chatID, render.RenderError(err), nil)
		return nil
	}

	ctxzap.Info(ctx, "question answered",
		zap.String("result_id", result.ID),
		zap.Int("citations", len(result.Citations)),
		zap.Duration("duration", time.Since(start)),
	)

	return h.messageSender.SendLong(chatID, render.RenderAnswer(result))
}
