package cmds

import (
	"strings"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"spirit-bot/internal/config"
)

type InfoCommand struct {
	bot  botApi
	l10n localizer
	shop *config.ShopConfig
}

func NewInfoCommand(bot botApi, l10n localizer, shop *config.ShopConfig) *InfoCommand {
	return &InfoCommand{
		bot:  bot,
		l10n: l10n,
		shop: shop,
	}
}

// About sends the shop card followed by its location pin.
func (c *InfoCommand) About(chatID int64, lang string) error {
	text := c.l10n.Get(lang, "shop.info", map[string]interface{}{
		"address": c.shop.Address.In(lang),
		"hours":   c.shop.Hours.In(lang),
		"phone":   c.shop.Phone,
	})
	if _, err := c.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return err
	}

	venue := tgbotapi.NewVenue(chatID, c.shop.Name, c.shop.Address.In(lang), c.shop.Latitude, c.shop.Longitude)
	_, err := c.bot.Send(venue)
	return err
}

func (c *InfoCommand) Legal(chatID int64, lang string) error {
	_, err := c.bot.Send(tgbotapi.NewMessage(chatID, c.l10n.Get(lang, "shop.legal_info", nil)))
	return err
}

func (c *InfoCommand) Contacts(chatID int64, lang string) error {
	msg := tgbotapi.NewMessage(chatID, c.l10n.Get(lang, "shop.contacts_info", map[string]interface{}{
		"phone":    c.shop.Phone,
		"whatsapp": c.shop.WhatsApp,
		"line":     c.shop.LineID,
	}))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(c.l10n.Get(lang, "shop.contact_whatsapp", nil), "https://wa.me/"+digits(c.shop.WhatsApp)),
			tgbotapi.NewInlineKeyboardButtonURL(c.l10n.Get(lang, "shop.contact_line", nil), "https://line.me/R/ti/p/"+c.shop.LineID),
		),
	)
	_, err := c.bot.Send(msg)
	return err
}

func digits(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}
