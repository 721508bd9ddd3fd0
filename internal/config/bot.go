package config

type Bot struct {
	Token string `env:"BOT_TOKEN" json:"-"`
	// AdminID is the only Telegram user allowed to drive the console.
	AdminID int64 `env:"BOT_ADMIN_ID"`
	// ChatID receives new-deal notifications; defaults to the admin's private chat.
	ChatID int64 `env:"BOT_CHAT_ID"`
}

func (b Bot) Enabled() bool {
	return b.Token != "" && b.AdminID != 0
}

func (b Bot) NotifyChatID() int64 {
	if b.ChatID != 0 {
		return b.ChatID
	}

	return b.AdminID
}
