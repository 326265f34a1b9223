package keyboard

import (
	"strconv"

	"github.com/fscqa/fsc-qa/internal/entity"
	"github.com/fscqa/fsc-qa/internal/pkg/textutil"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	checkedMark   = "✅ "
	uncheckedMark = "⬜ "
	// Button captions are cut so long example questions stay on one line.
	exampleButtonRunes = 40
)

// Builder creates inline keyboards
type Builder struct {
	catalog entity.Catalog
}

// NewBuilder creates a keyboard builder for the given catalog
func NewBuilder(catalog entity.Catalog) *Builder {
	return &Builder{catalog: catalog}
}

// CorpusKeyboard shows one toggle button per corpus plus a shortcut to the examples.
func (b *Builder) CorpusKeyboard(selected []string) tgbotapi.InlineKeyboardMarkup {
	isSelected := make(map[string]bool, len(selected))
	for _, key := range selected {
		isSelected[key] = true
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(b.catalog)+1)
	for _, corpus := range b.catalog {
		mark := uncheckedMark
		if isSelected[corpus.Key] {
			mark = checkedMark
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				mark+corpus.Label(),
				EncodeCallback(ActionCorpus, corpus.Key),
			),
		))
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("💡 範例問題", EncodeCallback(ActionShow, ActionExample)),
	))

	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// ExamplesKeyboard shows one button per example question.
func (b *Builder) ExamplesKeyboard(examples []string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(examples))
	for i, example := range examples {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				textutil.Ellipsize(example, exampleButtonRunes),
				EncodeCallback(ActionExample, strconv.Itoa(i)),
			),
		))
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}
