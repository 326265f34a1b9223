package handlers

import (
	"context"

	"github.com/fscqa/fsc-qa/internal/entity"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// QueryUsecase is the relay as seen by the bot.
type QueryUsecase interface {
	Ask(ctx context.Context, req entity.QueryRequest) (*entity.QueryResult, error)
	Corpora() []entity.Corpus
	Examples() []string
}

// BotAPI is the subset of *tgbotapi.BotAPI the handlers use.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}
