package tui

import (
	"github.com/rivo/tview"
	"github.com/samber/lo"

	"smartdeals/internal/domain/value"
	"smartdeals/internal/editor"
)

var (
	modeOptions     = []string{value.ModeManual.String(), value.ModeAuto.String()}            //nolint:gochecknoglobals
	providerOptions = []string{value.WhatsAppDraft.String(), value.WhatsAppCloudAPI.String()} //nolint:gochecknoglobals
)

// configView edits the draft held by the editor. Every change goes straight
// into the draft; Save sends it.
type configView struct {
	form   *tview.Form
	editor *editor.Editor

	save    func()
	onError func(error)

	// rebuilding mutes change callbacks fired while the form is refilled.
	rebuilding bool
}

func newConfigView(ed *editor.Editor, save func(), onError func(error)) *configView {
	v := &configView{
		form:    tview.NewForm(),
		editor:  ed,
		save:    save,
		onError: onError,
	}

	v.form.SetBorder(true).SetTitle(" Config ")
	v.Rebuild()

	return v
}

func (v *configView) Widget() tview.Primitive {
	return v.form
}

// Rebuild refills the form from the draft.
func (v *configView) Rebuild() {
	v.rebuilding = true
	defer func() { v.rebuilding = false }()

	v.form.Clear(true)

	if !v.editor.Ready() {
		v.form.SetTitle(" Config (not loaded) ")
		v.form.AddButton("Refresh with u", nil)

		return
	}

	title := " Config "
	if v.editor.Dirty() {
		title = " Config [yellow](edited)[-] "
	}

	v.form.SetTitle(title)

	v.form.
		AddDropDown("Mode", modeOptions, lo.IndexOf(modeOptions, v.get(editor.FieldMode)),
			func(option string, _ int) { v.set(editor.FieldMode, option) }).
		AddInputField("Approval threshold", v.get(editor.FieldApprovalThreshold), 10, tview.InputFieldFloat,
			func(text string) { v.set(editor.FieldApprovalThreshold, text) }).
		AddTextArea("Seed keywords", v.get(editor.FieldSeedKeywords), 40, 4, 0,
			func(text string) { v.set(editor.FieldSeedKeywords, text) }).
		AddTextArea("Amazon links", v.get(editor.FieldManualLinks), 40, 4, 0,
			func(text string) { v.set(editor.FieldManualLinks, text) }).
		AddPasswordField("Telegram bot token", v.get(editor.FieldTelegramBotToken), 40, '*',
			func(text string) { v.set(editor.FieldTelegramBotToken, text) }).
		AddInputField("Telegram chat id", v.get(editor.FieldTelegramChatID), 20, nil,
			func(text string) { v.set(editor.FieldTelegramChatID, text) }).
		AddDropDown("WhatsApp provider", providerOptions, lo.IndexOf(providerOptions, v.get(editor.FieldWhatsAppProvider)),
			func(option string, _ int) { v.set(editor.FieldWhatsAppProvider, option) }).
		AddButton("Save", v.save).
		AddButton("Discard", func() {
			v.editor.Discard()
			v.Rebuild()
		})
}

func (v *configView) get(field string) string {
	text, err := v.editor.Get(field)
	if err != nil {
		v.onError(err)
	}

	return text
}

func (v *configView) set(field, text string) {
	if v.rebuilding {
		return
	}

	// A half typed number is not an error yet.
	if field == editor.FieldApprovalThreshold && (text == "" || text == "-" || text == ".") {
		return
	}

	if err := v.editor.Set(field, text); err != nil {
		v.onError(err)
	}
}
