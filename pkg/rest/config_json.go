package rest

import "fmt"

func (c *Config) UnmarshalJSON(data []byte) error {
	type plain Config

	var known plain

	extra, err := decodeObject(data, &known)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	*c = Config(known)
	c.Extra = extra

	return nil
}

func (c Config) MarshalJSON() ([]byte, error) {
	type plain Config

	return encodeObject(plain(c), c.Extra)
}

func (c *AmazonConfig) UnmarshalJSON(data []byte) error {
	type plain AmazonConfig

	var known plain

	extra, err := decodeObject(data, &known)
	if err != nil {
		return fmt.Errorf("amazon: %w", err)
	}

	*c = AmazonConfig(known)
	c.Extra = extra

	return nil
}

func (c AmazonConfig) MarshalJSON() ([]byte, error) {
	type plain AmazonConfig

	return encodeObject(plain(c), c.Extra)
}

func (c *TelegramConfig) UnmarshalJSON(data []byte) error {
	type plain TelegramConfig

	var known plain

	extra, err := decodeObject(data, &known)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}

	*c = TelegramConfig(known)
	c.Extra = extra

	return nil
}

func (c TelegramConfig) MarshalJSON() ([]byte, error) {
	type plain TelegramConfig

	return encodeObject(plain(c), c.Extra)
}

func (c *WhatsAppConfig) UnmarshalJSON(data []byte) error {
	type plain WhatsAppConfig

	var known plain

	extra, err := decodeObject(data, &known)
	if err != nil {
		return fmt.Errorf("whatsapp: %w", err)
	}

	*c = WhatsAppConfig(known)
	c.Extra = extra

	return nil
}

func (c WhatsAppConfig) MarshalJSON() ([]byte, error) {
	type plain WhatsAppConfig

	return encodeObject(plain(c), c.Extra)
}
