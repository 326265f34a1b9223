package handlers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fscqa/fsc-qa/internal/entity"
	"github.com/fscqa/fsc-qa/internal/telegram/keyboard"
	"github.com/fscqa/fsc-qa/internal/telegram/render"
	"github.com/fscqa/fsc-qa/internal/telegram/state"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// CallbackHandler handles all callback button clicks
type CallbackHandler struct {
	BaseHandler
	bot       BotAPI
	usecase   QueryUsecase
	chats     *state.Store
	keyboard  *keyboard.Builder
	questions *QuestionHandler
	logger    *zap.Logger
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(
	bot BotAPI,
	usecase QueryUsecase,
	chats *state.Store,
	kb *keyboard.Builder,
	questions *QuestionHandler,
	logger *zap.Logger,
) *CallbackHandler {
	return &CallbackHandler{
		BaseHandler: BaseHandler{
			stateName:     HandlerStateCallback,
			messageSender: NewMessageSender(bot, logger),
		},
		bot:       bot,
		usecase:   usecase,
		chats:     chats,
		keyboard:  kb,
		questions: questions,
		logger:    logger,
	}
}

// Handle routes callback queries to appropriate actions
func (h *CallbackHandler) Handle(ctx context.Context, msg *Message) error {
	data, err := keyboard.ParseCallback(msg.CallbackData)
	if err != nil {
		h.answer(msg.CallbackID, render.ErrInvalidCallback)
		return fmt.Errorf("parse callback: %w", err)
	}

	switch data.Action {
	case keyboard.ActionCorpus:
		return h.handleToggleCorpus(ctx, msg, data.Value)
	case keyboard.ActionExample:
		return h.handleExample(ctx, msg, data.Value)
	case keyboard.ActionShow:
		h.answer(msg.CallbackID, "")
		return h.ShowExamples(msg.ChatID)
	default:
		h.answer(msg.CallbackID, render.ErrInvalidCallback)
		return fmt.Errorf("unknown callback action: %s", data.Action)
	}
}

// ShowExamples posts the example question buttons.
func (h *CallbackHandler) ShowExamples(chatID int64) error {
	examples := h.usecase.Examples()
	if len(examples) == 0 {
		return h.messageSender.Send(chatID, render.MsgNoExamples, nil)
	}
	return h.messageSender.Send(chatID, render.MsgExamples, h.keyboard.ExamplesKeyboard(examples))
}

func (h *CallbackHandler) handleToggleCorpus(ctx context.Context, msg *Message, key string) error {
	catalog := entity.Catalog(h.usecase.Corpora())
	if _, ok := catalog.Get(key); !ok {
		h.answer(msg.CallbackID, render.ErrInvalidCallback)
		return fmt.Errorf("%w: %s", entity.ErrUnknownCorpus, key)
	}

	selected := h.chats.Chat(msg.ChatID).Toggle(key, catalog.Keys())
	h.answer(msg.CallbackID, "")

	ctxzap.Info(ctx, "corpus selection changed",
		zap.Int64("chat_id", msg.ChatID),
		zap.Strings("corpora", selected),
	)

	text := render.MsgCorpora + "\n\n" + render.RenderSelection(catalog, selected)
	edit := tgbotapi.NewEditMessageTextAndMarkup(msg.ChatID, msg.MessageID, text, h.keyboard.CorpusKeyboard(selected))
	if _, err := h.bot.Send(edit); err != nil {
		return fmt.Errorf("edit corpus keyboard: %w", err)
	}
	return nil
}

func (h *CallbackHandler) handleExample(ctx context.Context, msg *Message, value string) error {
	examples := h.usecase.Examples()
	idx, err := strconv.Atoi(value)
	if err != nil || idx < 0 || idx >= len(examples) {
		h.answer(msg.CallbackID, render.ErrUnknownExample)
		return nil
	}

	h.answer(msg.CallbackID, render.MsgSearching)

	question := examples[idx]
	h.sendMessage(msg.ChatID, "❓ "+question, nil)
	return h.questions.Ask(ctx, msg.ChatID, question)
}

// answer acknowledges the button press so the client stops its spinner.
func (h *CallbackHandler) answer(callbackID, text string) {
	if callbackID == "" {
		return
	}
	if _, err := h.bot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		h.logger.Error("failed to answer callback",
			zap.Error(err),
			zap.String("callback_id", callbackID),
		)
	}
}
