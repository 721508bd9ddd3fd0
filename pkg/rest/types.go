// Wire types of the SmartDeals backend REST API.
package rest

import jsoniter "github.com/json-iterator/go"

// LoginResponse is the body of POST /auth/login. AccessToken is empty when the
// credentials were refused.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Config is GET/PUT /config. Known fields never use omitempty: a member missing
// from the marshaled form would otherwise be taken from Extra.
type Config struct {
	Mode              string         `json:"mode"               validate:"required,oneof=MANUAL AUTO"`
	ApprovalThreshold float64        `json:"approval_threshold" validate:"gte=0,lte=100"`
	SeedKeywords      []string       `json:"seed_keywords"`
	Amazon            AmazonConfig   `json:"amazon"`
	Telegram          TelegramConfig `json:"telegram"`
	WhatsApp          WhatsAppConfig `json:"whatsapp"`
	Extra             RawFields      `json:"-"`
}

type AmazonConfig struct {
	ManualLinks []string  `json:"manual_links"`
	Extra       RawFields `json:"-"`
}

type TelegramConfig struct {
	BotToken string    `json:"bot_token"`
	ChatID   string    `json:"chat_id"`
	Extra    RawFields `json:"-"`
}

type WhatsAppConfig struct {
	Provider string    `json:"provider" validate:"omitempty,oneof=draft cloud_api"`
	Extra    RawFields `json:"-"`
}

type Deal struct {
	ID           int64    `json:"id"`
	Source       string   `json:"source"`
	ProductID    string   `json:"product_id"`
	Title        string   `json:"title"`
	URL          string   `json:"url"`
	CurrentPrice float64  `json:"current_price"`
	OldPrice     *float64 `json:"old_price"`
	Score        *int     `json:"score"`
	Verdict      *string  `json:"verdict"`
	Reasons      []string `json:"reasons"`
	Status       string   `json:"status"`
	CreatedAt    string   `json:"created_at"`
	PostedAt     *string  `json:"posted_at"`
}

type Run struct {
	ID         int64               `json:"id"`
	StartedAt  string              `json:"started_at"`
	FinishedAt *string             `json:"finished_at"`
	Status     string              `json:"status"`
	Message    *string             `json:"message"`
	Stats      jsoniter.RawMessage `json:"stats"`
}

// Error is the FastAPI-style error body.
type Error struct {
	Detail string `json:"detail"`
}
