package value

import "fmt"

// Mode selects whether scored deals wait for an operator or are approved by threshold.
type Mode string

const (
	ModeManual Mode = "MANUAL"
	ModeAuto   Mode = "AUTO"
)

func (m Mode) String() string {
	return string(m)
}

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeManual, ModeAuto:
		return m, nil
	default:
		return "", fmt.Errorf("mode %q: expected %s or %s", s, ModeManual, ModeAuto)
	}
}

// WhatsAppProvider is how the backend delivers WhatsApp posts.
type WhatsAppProvider string

const (
	WhatsAppDraft    WhatsAppProvider = "draft"
	WhatsAppCloudAPI WhatsAppProvider = "cloud_api"
)

func (p WhatsAppProvider) String() string {
	return string(p)
}

func ParseWhatsAppProvider(s string) (WhatsAppProvider, error) {
	switch p := WhatsAppProvider(s); p {
	case WhatsAppDraft, WhatsAppCloudAPI:
		return p, nil
	default:
		return "", fmt.Errorf("whatsapp provider %q: expected %s or %s", s, WhatsAppDraft, WhatsAppCloudAPI)
	}
}
