package ui

import (
	"log/slog"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-chaldean-clock/internal/config"
)

// ShowScheduleWindow lists the upcoming planetary hours as projected in the
// published feed. If the window is already open, it requests focus.
// The table follows every republication of the feed.
func (app *ClockApp) ShowScheduleWindow() {
	if app.scheduleWindow != nil {
		app.scheduleWindow.RequestFocus()
		return
	}

	w := app.App.NewWindow(app.GetMsg(config.TKeyWinSchedule))
	app.scheduleWindow = w
	w.Resize(fyne.NewSize(config.ScheduleWinWidth, config.ScheduleWinHeight))

	slog.Info(config.MsgOpenWin,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyCount, len(app.scheduleEntries))

	table := widget.NewTable(
		func() (int, int) {
			return len(app.scheduleEntries), config.ColCount
		},
		func() fyne.CanvasObject {
			return widget.NewLabel(config.TablePlaceholder)
		},
		func(id widget.TableCellID, o fyne.CanvasObject) {
			label := o.(*widget.Label)
			if id.Row >= len(app.scheduleEntries) {
				return
			}
			label.SetText(app.scheduleCell(id.Row, id.Col))
		},
	)

	table.ShowHeaderRow = true
	table.CreateHeader = func() fyne.CanvasObject {
		return widget.NewLabel(config.TablePlaceholder)
	}
	table.UpdateHeader = func(id widget.TableCellID, o fyne.CanvasObject) {
		o.(*widget.Label).SetText(app.scheduleHeader(id.Col))
	}

	table.SetColumnWidth(config.ColIDDay, config.ColWidthDay)
	table.SetColumnWidth(config.ColIDHour, config.ColWidthHour)
	table.SetColumnWidth(config.ColIDRuler, config.ColWidthRuler)
	table.SetColumnWidth(config.ColIDStart, config.ColWidthStart)
	app.scheduleTable = table

	w.SetContent(container.NewBorder(nil, nil, nil, nil, table))
	w.SetOnClosed(func() {
		app.scheduleWindow = nil
		app.scheduleTable = nil
	})
	w.Show()
}

func (app *ClockApp) scheduleHeader(col int) string {
	switch col {
	case config.ColIDDay:
		return app.GetMsg(config.TKeyColDay)
	case config.ColIDHour:
		return app.GetMsg(config.TKeyColHour)
	case config.ColIDRuler:
		return app.GetMsg(config.TKeyColRuler)
	default:
		return app.GetMsg(config.TKeyColStart)
	}
}

func (app *ClockApp) scheduleCell(row, col int) string {
	e := app.scheduleEntries[row]
	switch col {
	case config.ColIDDay:
		return strconv.Itoa(e.Day)
	case config.ColIDHour:
		return strconv.Itoa(e.Hour)
	case config.ColIDRuler:
		return app.PlanetName(e.Ruler)
	default:
		format := app.GetMsg(config.TKeyFormatTime)
		if format == config.TKeyFormatTime {
			format = config.TimeFormatDisplay
		}
		return e.Start.Local().Format(format)
	}
}
