package ui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-chaldean-clock/internal/config"
	"github.com/tartampluch/go-chaldean-clock/internal/engine"
	"github.com/tartampluch/go-chaldean-clock/internal/script"
	"github.com/tartampluch/go-chaldean-clock/internal/server"
	"github.com/tartampluch/go-chaldean-clock/internal/session"
)

// feedKey identifies the clock state a published feed was rendered from.
type feedKey struct {
	day, hour int
	paused    bool
}

// ClockApp is the desktop host of a session. It implements session.Host by
// driving the frame hooks from a fixed-rate ticker on the Fyne main goroutine,
// and session.Display by rendering the clock panel inside the scene window.
type ClockApp struct {
	App         fyne.App
	Window      fyne.Window
	Preferences fyne.Preferences
	I18nBundle  *i18n.Bundle
	Localizer   *i18n.Localizer
	Ctx         context.Context

	Session   *session.Session
	Script    *script.Engine // optional
	Server    *server.ScheduleServer
	Generator *engine.ScheduleGenerator

	SupportedLanguages []string

	panel      *widget.Card
	timeLabel  *widget.Label
	rulerLabel *widget.Label

	mainMenu     *fyne.MainMenu
	menuSchedule *fyne.MenuItem
	menuControls *fyne.MenuItem

	initHooks  []func()
	frameHooks []func()
	started    bool

	published       *feedKey
	scheduleEntries []engine.HourEntry
	scheduleTable   *widget.Table
	scheduleWindow  fyne.Window
	controlsWindow  fyne.Window
	controls        *controlsWidgets
}

// NewClockApp wires the session to the desktop host. Script may be nil.
func NewClockApp(a fyne.App, ctx context.Context, s *session.Session, eng *script.Engine, srv *server.ScheduleServer) *ClockApp {
	app := &ClockApp{
		App:                a,
		Preferences:        a.Preferences(),
		Ctx:                ctx,
		Session:            s,
		Script:             eng,
		Server:             srv,
		SupportedLanguages: config.SupportedLanguages,
	}
	app.Generator = &engine.ScheduleGenerator{
		Clock:             engine.RealClock{},
		FormatSummary:     app.buildSummaryFormatter(),
		FormatDescription: app.PlanetMeaning,
	}

	s.SetDisplay(app)
	s.SetEventRunner(app.runEvent)
	s.Clock.AddListener(app.onHourAdvanced)
	s.Install(app)
	return app
}

// Setup loads translations and builds the scene window.
func (app *ClockApp) Setup() {
	app.SetupI18n()
	app.buildScene()
}

// Run launches the feed server and the frame loop, then blocks in the Fyne
// event loop until the scene window closes.
func (app *ClockApp) Run() {
	app.Setup()

	go func() {
		if err := app.Server.Start(app.Ctx); err != nil {
			slog.Error(config.ErrServerStartup,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)

			app.App.SendNotification(fyne.NewNotification(
				config.TitleStartupError,
				fmt.Sprintf(config.MsgPortBusy, app.Server.Port)))
		}
	}()

	app.start()
	stopFrames := app.startFrames(app.Ctx)
	app.Window.ShowAndRun()

	// Once the event loop returns, fyne.Do runs callbacks on the calling
	// goroutine. Frames must stop before the caller touches the session.
	stopFrames()
}

// -----------------------------------------------------------------------------
// session.Host
// -----------------------------------------------------------------------------

// OnSessionInit implements session.Host.
func (app *ClockApp) OnSessionInit(hook func()) {
	app.initHooks = append(app.initHooks, hook)
}

// OnFrameTick implements session.Host.
func (app *ClockApp) OnFrameTick(hook func()) {
	app.frameHooks = append(app.frameHooks, hook)
}

func (app *ClockApp) start() {
	if app.started {
		return
	}
	app.started = true
	for _, h := range app.initHooks {
		h()
	}
	app.publishSchedule(true)
}

func (app *ClockApp) runFrameHooks() {
	for _, h := range app.frameHooks {
		h()
	}
}

// startFrames launches the frame loop. The returned function cancels it and
// blocks until no frame hook can run any more.
func (app *ClockApp) startFrames(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		app.frameLoop(ctx)
	}()
	return func() {
		cancel()
		<-done
	}
}

// frameLoop posts one frame per tick to the main goroutine, so the session
// keeps a single writer. It stops when ctx is cancelled.
func (app *ClockApp) frameLoop(ctx context.Context) {
	log := slog.With(config.LogKeyComponent, config.CompUI)

	ticker := time.NewTicker(config.FrameInterval)
	defer ticker.Stop()

	log.Info(config.MsgFrameLoopStart, config.LogKeyInterval, config.FrameInterval)

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgFrameLoopStop)
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				continue
			}
			fyne.DoAndWait(app.runFrameHooks)
		}
	}
}

// -----------------------------------------------------------------------------
// session.Display
// -----------------------------------------------------------------------------

// Show implements session.Display.
func (app *ClockApp) Show() {
	if app.panel != nil {
		app.panel.Show()
	}
}

// Hide implements session.Display.
func (app *ClockApp) Hide() {
	if app.panel != nil {
		app.panel.Hide()
	}
}

// Refresh implements session.Display. Labels are only rewritten when their
// text changes; the feed is republished when the hour or pause state moves.
func (app *ClockApp) Refresh() {
	if app.panel == nil {
		return
	}
	app.refreshLabels()
	app.publishSchedule(false)
}

// -----------------------------------------------------------------------------
// Scene
// -----------------------------------------------------------------------------

func (app *ClockApp) buildScene() {
	w := app.App.NewWindow(app.GetMsg(config.TKeyWinTitle))
	app.Window = w

	app.timeLabel = widget.NewLabel("")
	app.rulerLabel = widget.NewLabel("")
	app.panel = widget.NewCard("", "", container.NewVBox(app.timeLabel, app.rulerLabel))
	app.refreshLabels()

	// The scene has no layout so the panel keeps its configured position.
	p := app.Session.Params
	app.panel.Move(fyne.NewPos(float32(p.DisplayX), float32(p.DisplayY)))
	app.panel.Resize(fyne.NewSize(config.ClockPanelWidth, app.panel.MinSize().Height))
	app.panel.Hide()

	app.menuSchedule = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuSchedule), app.ShowScheduleWindow)
	app.menuControls = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuControls), app.ShowControlsWindow)
	app.mainMenu = fyne.NewMainMenu(fyne.NewMenu(config.AppName, app.menuSchedule, app.menuControls))

	w.SetMainMenu(app.mainMenu)
	w.SetContent(container.NewWithoutLayout(app.panel))
	w.Resize(fyne.NewSize(config.SceneWidth, config.SceneHeight))
	w.SetFixedSize(true)
	w.SetMaster()
}

func (app *ClockApp) refreshLabels() {
	c := app.Session.Clock
	day, hour, ruler := c.CurrentDay(), c.CurrentHour(), c.Ruler()

	timeText := app.localize(config.TKeyClockTime, map[string]any{"Day": day, "Hour": hour})
	if timeText == "" {
		timeText = fmt.Sprintf(config.FallbackClockTime, day, hour)
	}
	rulerText := app.localize(config.TKeyClockRuler, map[string]any{"Ruler": app.PlanetName(ruler)})
	if rulerText == "" {
		rulerText = fmt.Sprintf(config.FallbackClockRuler, ruler)
	}

	if app.timeLabel.Text != timeText {
		app.timeLabel.SetText(timeText)
	}
	if app.rulerLabel.Text != rulerText {
		app.rulerLabel.SetText(rulerText)
	}
}

// SetLanguage switches the interface language and re-renders every label.
func (app *ClockApp) SetLanguage(lang string) {
	app.Preferences.SetString(config.PrefLanguage, lang)
	app.UpdateLocalizer()

	if app.Window != nil {
		app.Window.SetTitle(app.GetMsg(config.TKeyWinTitle))
		app.menuSchedule.Label = app.GetMsg(config.TKeyMenuSchedule)
		app.menuControls.Label = app.GetMsg(config.TKeyMenuControls)
		app.mainMenu.Refresh()
		app.refreshLabels()
	}
	app.publishSchedule(true)

	slog.Info(config.MsgLanguageChanged,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyLang, lang,
	)
}

// -----------------------------------------------------------------------------
// Feed & Events
// -----------------------------------------------------------------------------

// publishSchedule renders the upcoming hours and hands them to the server.
func (app *ClockApp) publishSchedule(force bool) {
	c := app.Session.Clock
	key := feedKey{day: c.CurrentDay(), hour: c.CurrentHour(), paused: c.Paused()}
	if !force && app.published != nil && *app.published == key {
		return
	}
	app.published = &key

	feed, entries, err := app.Generator.Generate(app.Ctx, c, app.Session.Params.ScheduleHours)
	if err != nil {
		slog.Error(config.ErrScheduleFailed,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyError, err,
		)
		return
	}

	app.scheduleEntries = entries
	if app.scheduleTable != nil {
		app.scheduleTable.Refresh()
	}

	if app.Server != nil {
		app.Server.Update(feed, app.status())
	}
	slog.Debug(config.MsgScheduleUpdated,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyDay, key.day,
		config.LogKeyHour, key.hour,
		config.LogKeyCount, len(entries),
	)
}

// onHourAdvanced republishes the feed as soon as the hour rolls over, before
// any common event of that hour runs.
func (app *ClockApp) onHourAdvanced(_, _ int, _ engine.Planet) {
	app.publishSchedule(false)
}

func (app *ClockApp) status() server.Status {
	c := app.Session.Clock
	ruler := c.Ruler()
	return server.Status{
		Day:       c.CurrentDay(),
		Hour:      c.CurrentHour(),
		Ruler:     ruler.String(),
		Meaning:   ruler.Meaning(),
		Paused:    c.Paused(),
		DayPeriod: c.IsDayPeriod(),
	}
}

// runEvent executes a reserved common event: its Lua definition if any, then
// a desktop notification naming the ruling planet.
func (app *ClockApp) runEvent(eventID int) {
	if app.Script != nil {
		app.Script.Runner()(eventID)
	}

	ruler := app.Session.Clock.Ruler()
	title := app.localize(config.TKeyNotifEvtTitle, nil)
	if title == "" {
		title = config.FallbackEvtTitle
	}
	body := app.localize(config.TKeyNotifEvtBody, map[string]any{
		"ID":      eventID,
		"Ruler":   app.PlanetName(ruler),
		"Meaning": app.PlanetMeaning(ruler),
	})
	if body == "" {
		body = fmt.Sprintf(config.FallbackEvtBody, eventID, ruler, ruler.Meaning())
	}
	app.App.SendNotification(fyne.NewNotification(title, body))
}
