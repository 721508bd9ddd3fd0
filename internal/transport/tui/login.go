package tui

import (
	"github.com/rivo/tview"
)

const (
	labelUsername = "Username"
	labelPassword = "Password"
)

// loginView is the form shown while the session is not authenticated.
type loginView struct {
	form    *tview.Form
	message *tview.TextView
	layout  *tview.Flex

	username string
	password string
}

func newLoginView(submit func(username, password string), quit func()) *loginView {
	v := &loginView{
		message: tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignCenter),
	}

	v.form = tview.NewForm().
		AddInputField(labelUsername, "", 30, nil, func(text string) { v.username = text }).
		AddPasswordField(labelPassword, "", 30, '*', func(text string) { v.password = text }).
		AddButton("Login", func() { submit(v.username, v.password) }).
		AddButton("Quit", quit)

	v.form.SetBorder(true).SetTitle(" SmartDeals console ")

	v.layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().
			AddItem(nil, 0, 1, false).
			AddItem(v.form, 44, 0, true).
			AddItem(nil, 0, 1, false), 9, 0, true).
		AddItem(v.message, 2, 0, false).
		AddItem(nil, 0, 1, false)

	return v
}

func (v *loginView) Widget() tview.Primitive {
	return v.layout
}

func (v *loginView) SetMessage(text string) {
	v.message.SetText(text)
}

// Reset clears the password so it never outlives a login attempt.
func (v *loginView) Reset() {
	v.password = ""

	if item, ok := v.form.GetFormItemByLabel(labelPassword).(*tview.InputField); ok {
		item.SetText("")
	}
}
