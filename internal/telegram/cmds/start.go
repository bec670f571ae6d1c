package cmds

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"spirit-bot/internal/localization"
)

const (
	LanguageCallbackPrefix    = "lang_"
	DisclaimerAcceptCallback  = "disclaimer_accept"
	DisclaimerDeclineCallback = "disclaimer_decline"

	MenuCatalogCallback  = "catalog"
	MenuOrderCallback    = "order_start"
	MenuMyOrdersCallback = "menu_my_orders"
	MenuInfoCallback     = "menu_info"
	MenuLegalCallback    = "menu_legal"
	MenuContactsCallback = "menu_contacts"
	MenuLanguageCallback = "menu_language"
)

var languageButtons = map[string]string{
	"ru": "🇷🇺 Русский",
	"en": "🇬🇧 English",
	"th": "🇹🇭 ไทย",
}

// StartCommand covers the onboarding screens: language, age disclaimer and the main menu.
type StartCommand struct {
	bot  botApi
	l10n localizer
}

func NewStartCommand(bot botApi, l10n localizer) *StartCommand {
	return &StartCommand{
		bot:  bot,
		l10n: l10n,
	}
}

func (c *StartCommand) AskLanguage(chatID int64, lang string) error {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(localization.Languages))
	for _, code := range localization.Languages {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(languageButtons[code], LanguageCallbackPrefix+code))
	}

	msg := tgbotapi.NewMessage(chatID, c.l10n.Get(lang, "start.choose_language", nil))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(row)
	_, err := c.bot.Send(msg)
	return err
}

func (c *StartCommand) LanguageChanged(chatID int64, lang string) error {
	_, err := c.bot.Send(tgbotapi.NewMessage(chatID, c.l10n.Get(lang, "start.language_changed", nil)))
	return err
}

func (c *StartCommand) AskDisclaimer(chatID int64, lang string) error {
	msg := tgbotapi.NewMessage(chatID, c.l10n.Get(lang, "start.disclaimer", nil))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(c.l10n.Get(lang, "start.accept_disclaimer", nil), DisclaimerAcceptCallback),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(c.l10n.Get(lang, "start.decline_disclaimer", nil), DisclaimerDeclineCallback),
		),
	)
	_, err := c.bot.Send(msg)
	return err
}

func (c *StartCommand) DisclaimerDeclined(chatID int64, lang string) error {
	_, err := c.bot.Send(tgbotapi.NewMessage(chatID, c.l10n.Get(lang, "start.disclaimer_declined", nil)))
	return err
}

// MainMenu shows the welcome screen. Admins get an extra panel button.
func (c *StartCommand) MainMenu(chatID int64, lang string, isAdmin bool) error {
	button := func(key, data string) tgbotapi.InlineKeyboardButton {
		return tgbotapi.NewInlineKeyboardButtonData(c.l10n.Get(lang, key, nil), data)
	}

	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(button("menu.catalog", MenuCatalogCallback), button("menu.order", MenuOrderCallback)),
		tgbotapi.NewInlineKeyboardRow(button("menu.my_orders", MenuMyOrdersCallback), button("menu.info", MenuInfoCallback)),
		tgbotapi.NewInlineKeyboardRow(button("menu.legal", MenuLegalCallback), button("menu.contacts", MenuContactsCallback)),
		tgbotapi.NewInlineKeyboardRow(button("menu.language", MenuLanguageCallback)),
	}
	if isAdmin {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button("admin.panel_button", AdminPanelCallback)))
	}

	msg := tgbotapi.NewMessage(chatID, c.l10n.Get(lang, "start.welcome", nil))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, err := c.bot.Send(msg)
	return err
}

func (c *StartCommand) Help(chatID int64, lang string) error {
	_, err := c.bot.Send(tgbotapi.NewMessage(chatID, c.l10n.Get(lang, "common.help", nil)))
	return err
}
