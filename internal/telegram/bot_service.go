// Package telegram connects Campus Cart accounts to Telegram chats and pushes
// notifications to them.
package telegram

import (
	"campuscart/backend/internal/localization"
	"campuscart/backend/internal/models"
	"campuscart/backend/internal/storage"
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// BotAPI is the subset of *tgbotapi.BotAPI the bot loop uses.
type BotAPI interface {
	Sender
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// BotStorage is what the bot reads and writes.
type BotStorage interface {
	storage.Users
	storage.TelegramLinks
}

var supportedLanguages = map[string]string{
	"en": "English",
	"uk": "Українська",
}

// BotService is responsible for receiving Telegram updates: account linking and
// notification preferences.
type BotService struct {
	BotAPI    BotAPI
	Storage   BotStorage
	Localizer *localization.Localizer
	log       *zap.Logger
}

// NewBotAPI authorizes against Telegram with token.
func NewBotAPI(token string) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	return bot, nil
}

func NewBotService(bot BotAPI, s BotStorage, loc *localization.Localizer, log *zap.Logger) *BotService {
	return &BotService{
		BotAPI:    bot,
		Storage:   s,
		Localizer: loc,
		log:       log.Named("telegram"),
	}
}

// Run is the main loop for receiving Telegram updates. It returns when ctx is done.
func (s *BotService) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := s.BotAPI.GetUpdatesChan(u)
	defer s.BotAPI.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			s.HandleUpdate(ctx, update)
		}
	}
}

func (s *BotService) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil && update.Message.IsCommand():
		msg := update.Message
		switch msg.Command() {
		case "start":
			s.handleStart(ctx, msg.Chat.ID, msg.CommandArguments())
		case "stop":
			s.handleStop(ctx, msg.Chat.ID)
		case "language":
			s.handleLanguageCommand(ctx, msg.Chat.ID)
		}
	case update.CallbackQuery != nil:
		s.handleCallbackQuery(ctx, update.CallbackQuery)
	}
}

// handleStart links the chat when a code is given, otherwise explains how to get one.
func (s *BotService) handleStart(ctx context.Context, chatID int64, code string) {
	code = strings.TrimSpace(code)
	if code == "" {
		s.reply(chatID, s.chatLanguage(ctx, chatID), "telegram.welcome")
		return
	}

	userID, err := s.Storage.ConsumeTelegramLinkCode(ctx, code)
	if errors.Is(err, storage.ErrNotFound) {
		s.reply(chatID, localization.DefaultLanguage, "telegram.link_invalid")
		return
	}
	if err != nil {
		s.log.Error("consume link code", zap.Int64("chat_id", chatID), zap.Error(err))
		s.reply(chatID, localization.DefaultLanguage, "telegram.error")
		return
	}

	user, err := s.Storage.GetUserByID(ctx, userID)
	if err == nil {
		err = s.Storage.SetTelegramChatID(ctx, userID, &chatID)
	}
	if err != nil {
		s.log.Error("link telegram chat", zap.String("user_id", userID), zap.Int64("chat_id", chatID), zap.Error(err))
		s.reply(chatID, localization.DefaultLanguage, "telegram.error")
		return
	}
	s.log.Info("telegram chat linked", zap.String("user_id", userID), zap.Int64("chat_id", chatID))
	s.reply(chatID, user.Language, "telegram.linked")
}

func (s *BotService) handleStop(ctx context.Context, chatID int64) {
	user, ok := s.linkedUser(ctx, chatID)
	if !ok {
		return
	}
	if err := s.Storage.SetTelegramChatID(ctx, user.ID, nil); err != nil {
		s.log.Error("unlink telegram chat", zap.String("user_id", user.ID), zap.Error(err))
		s.reply(chatID, user.Language, "telegram.error")
		return
	}
	s.reply(chatID, user.Language, "telegram.unlinked")
}

// handleLanguageCommand sends a message with a keyboard to choose a language.
func (s *BotService) handleLanguageCommand(ctx context.Context, chatID int64) {
	user, ok := s.linkedUser(ctx, chatID)
	if !ok {
		return
	}

	msg := tgbotapi.NewMessage(chatID, s.Localizer.GetString(user.Language, "telegram.choose_language"))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(supportedLanguages["en"], "set_lang_en"),
			tgbotapi.NewInlineKeyboardButtonData(supportedLanguages["uk"], "set_lang_uk"),
		),
	)
	if _, err := s.BotAPI.Send(msg); err != nil {
		s.log.Warn("send language keyboard", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (s *BotService) handleCallbackQuery(ctx context.Context, q *tgbotapi.CallbackQuery) {
	// Respond to the callback query to remove the "loading" state
	if _, err := s.BotAPI.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		s.log.Warn("answer callback", zap.Error(err))
	}
	if q.Message == nil || !strings.HasPrefix(q.Data, "set_lang_") {
		return
	}

	chatID := q.Message.Chat.ID
	lang := strings.TrimPrefix(q.Data, "set_lang_")
	if _, ok := supportedLanguages[lang]; !ok {
		return
	}
	user, ok := s.linkedUser(ctx, chatID)
	if !ok {
		return
	}
	if err := s.Storage.SetUserLanguage(ctx, user.ID, lang); err != nil {
		s.log.Error("set language", zap.String("user_id", user.ID), zap.Error(err))
		s.reply(chatID, user.Language, "telegram.error")
		return
	}
	s.reply(chatID, lang, "telegram.language_set")
}

// linkedUser resolves the account linked to chatID and tells the chat when there is none.
func (s *BotService) linkedUser(ctx context.Context, chatID int64) (*models.User, bool) {
	user, err := s.Storage.GetUserByTelegramChatID(ctx, chatID)
	if errors.Is(err, storage.ErrNotFound) {
		s.reply(chatID, localization.DefaultLanguage, "telegram.not_linked")
		return nil, false
	}
	if err != nil {
		s.log.Error("lookup telegram chat", zap.Int64("chat_id", chatID), zap.Error(err))
		s.reply(chatID, localization.DefaultLanguage, "telegram.error")
		return nil, false
	}
	return user, true
}

func (s *BotService) chatLanguage(ctx context.Context, chatID int64) string {
	if user, err := s.Storage.GetUserByTelegramChatID(ctx, chatID); err == nil {
		return user.Language
	}
	return localization.DefaultLanguage
}

func (s *BotService) reply(chatID int64, lang, key string) {
	msg := tgbotapi.NewMessage(chatID, s.Localizer.GetString(lang, key))
	if _, err := s.BotAPI.Send(msg); err != nil {
		s.log.Warn("send reply", zap.Int64("chat_id", chatID), zap.String("key", key), zap.Error(err))
	}
}
