package ui

import (
	"errors"
	"log/slog"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-chaldean-clock/internal/command"
	"github.com/tartampluch/go-chaldean-clock/internal/config"
)

// HourEntry is an Entry that only accepts digits.
type HourEntry struct {
	widget.Entry
}

// NewHourEntry creates a digit-only entry.
func NewHourEntry() *HourEntry {
	entry := &HourEntry{}
	entry.ExtendBaseWidget(entry)
	return entry
}

// TypedRune drops anything but 0-9. Pasted text bypasses this filter and is
// caught by the Validator.
func (e *HourEntry) TypedRune(r rune) {
	if r >= '0' && r <= '9' {
		e.Entry.TypedRune(r)
	}
}

// Keyboard requests the numeric keypad on mobile devices.
func (e *HourEntry) Keyboard() mobile.KeyboardType {
	return mobile.NumberKeyboard
}

// controlsWidgets holds the interactive elements of the controls window.
type controlsWidgets struct {
	langSelect   *widget.Select
	hourEntry    *HourEntry
	applyButton  *widget.Button
	commandEntry *widget.Entry
	runButton    *widget.Button
}

// ShowControlsWindow opens the clock controls: interface language, a direct
// hour setter and a plugin command line. Every action goes through the
// command layer so it behaves like a game script would.
func (app *ClockApp) ShowControlsWindow() {
	if app.controlsWindow != nil {
		app.controlsWindow.RequestFocus()
		return
	}

	slog.Info(config.MsgOpenWin, config.LogKeyComponent, config.CompUI)
	w := app.App.NewWindow(app.GetMsg(config.TKeyWinControls))
	app.controlsWindow = w
	cw := &controlsWidgets{}
	app.controls = cw

	cw.langSelect = widget.NewSelect(app.SupportedLanguages, nil)
	cw.langSelect.SetSelected(app.Preferences.StringWithFallback(config.PrefLanguage, app.Session.Params.Language))
	cw.langSelect.OnChanged = app.SetLanguage

	cw.hourEntry = NewHourEntry()
	cw.hourEntry.SetText(strconv.Itoa(app.Session.CurrentHour()))
	cw.hourEntry.Validator = func(s string) error {
		if n, err := strconv.Atoi(s); err != nil || n < 1 {
			return errors.New(app.GetMsg(config.TKeyErrHourNum))
		}
		return nil
	}
	cw.applyButton = widget.NewButton(app.GetMsg(config.TKeyBtnApply), func() {
		if err := cw.hourEntry.Validate(); err != nil {
			dialog.ShowError(err, w)
			return
		}
		n, _ := strconv.Atoi(cw.hourEntry.Text)
		app.execute(w, command.Command{Kind: command.KindSetHour, N: n})
	})

	cw.commandEntry = widget.NewEntry()
	cw.commandEntry.SetPlaceHolder(command.KindAdvanceHour.String() + " 1")
	cw.runButton = widget.NewButton(app.GetMsg(config.TKeyBtnRun), func() {
		cmd, err := command.Parse(cw.commandEntry.Text)
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		if app.execute(w, cmd) {
			cw.commandEntry.SetText("")
		}
	})
	cw.commandEntry.OnSubmitted = func(string) { cw.runButton.OnTapped() }

	form := widget.NewForm(
		widget.NewFormItem(app.GetMsg(config.TKeyLblLanguage), cw.langSelect),
		widget.NewFormItem(app.GetMsg(config.TKeyLblSetHour),
			container.NewBorder(nil, nil, nil, cw.applyButton, cw.hourEntry)),
		widget.NewFormItem(app.GetMsg(config.TKeyLblCommand),
			container.NewBorder(nil, nil, nil, cw.runButton, cw.commandEntry)),
	)

	w.SetContent(container.NewPadded(form))
	w.Resize(fyne.NewSize(config.ControlWinWidth, config.ControlWinHeight))
	w.SetOnClosed(func() {
		app.controlsWindow = nil
		app.controls = nil
	})
	w.Show()
}

// execute runs cmd against the session and reports a rejection in a dialog.
func (app *ClockApp) execute(w fyne.Window, cmd command.Command) bool {
	if err := command.Execute(app.Session, cmd); err != nil {
		dialog.ShowError(err, w)
		return false
	}
	return true
}
