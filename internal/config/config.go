package config

import (
	"io/fs"
	"math"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client fetching remote scripts.
var UserAgent = "Go-Chaldean-Clock/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Chaldean Clock"
	AppID             = "com.github.tartampluch.go-chaldean-clock"
	CLIName           = "go-chaldean-clock"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	ConfigFileName    = "config.yaml"
	StateFileName     = "state.yaml"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion = "version"
	FlagDebug   = "debug"
	FlagConfig  = "config"
	FlagFrames  = "frames"
	FlagScript  = "script"
	FlagCommand = "command"
	FlagHours   = "hours"
	FlagState   = "state"

	FlagDescVersion = "Show application version and exit"
	FlagDescDebug   = "Enable debug logging to stderr"
	FlagDescConfig  = "Path to the YAML configuration file"
	FlagDescFrames  = "Number of frames to simulate"
	FlagDescScript  = "Lua script file or http(s) URL executed once the session is initialized"
	FlagDescCommand = "Plugin command executed before the simulation (repeatable)"
	FlagDescHours   = "Number of planetary hours to export"
	FlagDescState   = "Snapshot file loaded at startup and written on exit"

	CmdUseRun        = "run"
	CmdUseSimulate   = "simulate"
	CmdUseSchedule   = "schedule"
	CmdShortRoot     = "Chaldean planetary-hour game clock"
	CmdShortRun      = "Open the clock window and drive it at the frame rate"
	CmdShortSimulate = "Advance a headless clock by a number of frames"
	CmdShortSchedule = "Print the upcoming planetary hours as iCalendar"

	MsgVersionOutput = "%s version %s (%s/%s)\n"
	MsgStateOutput   = "Day %d - Hour %d\nRuler: %s\nPaused: %t\nTicks: %d/%d\n"
)

// -----------------------------------------------------------------------------
// Clock Parameters & Defaults
// -----------------------------------------------------------------------------

const (
	// TicksPerSecond is the fixed host frame rate driving the clock.
	TicksPerSecond = 60

	// ReferenceHoursPerDay is the day length the Chaldean sequence is defined
	// over. It does not follow the configured HoursPerDay.
	ReferenceHoursPerDay = 24

	// PlanetCount is the length of the Chaldean sequence.
	PlanetCount = 7

	DefaultStartingHour   = 1
	DefaultStartingDay    = 1
	DefaultHoursPerDay    = 24
	DefaultShowDisplay    = true
	DefaultSecondsPerHour = 60
	DefaultDisplayX       = 0
	DefaultDisplayY       = 0
	DefaultLanguage       = "en"
	DefaultPort           = "18081"
	DefaultScheduleHours  = 24
	DefaultSimFrames      = 0

	MaxScheduleHours = 24 * 7
	MinPort          = 1
	MaxPort          = 65535

	// Upper bounds keep tick counts and elapsed hour totals inside 32 bits.
	MaxSecondsPerHour = math.MaxInt32 / TicksPerSecond
	MaxHoursPerDay    = 24 * 60
	MaxDay            = (math.MaxInt32 - MaxHoursPerDay) / ReferenceHoursPerDay
)

// SupportedLanguages defines the list of available UI languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Environment Variables
// -----------------------------------------------------------------------------

const (
	EnvPrefix = "CHALDEAN_"
)

// -----------------------------------------------------------------------------
// UI Constants & Preferences
// -----------------------------------------------------------------------------

const (
	// Scene dimensions mirror a classic 816x624 RPG map screen.
	SceneWidth  = 816
	SceneHeight = 624

	ClockPanelWidth = 240

	ScheduleWinWidth  = 520
	ScheduleWinHeight = 420
	ControlWinWidth   = 420
	ControlWinHeight  = 260

	// Upcoming hours table columns.
	ColIDDay   = 0
	ColIDHour  = 1
	ColIDRuler = 2
	ColIDStart = 3
	ColCount   = 4

	ColWidthDay   = 70
	ColWidthHour  = 70
	ColWidthRuler = 140
	ColWidthStart = 200

	TablePlaceholder  = "Placeholder Text"
	TimeFormatDisplay = "15:04:05"

	// FrameInterval is the wall-clock period between two host frames.
	FrameInterval = time.Second / TicksPerSecond

	PrefLastRun  = "last_run_version"
	PrefLanguage = "language"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyWinTitle       = "win_title"
	TKeyClockTime      = "clock_line_time"  // Requires Day, Hour
	TKeyClockRuler     = "clock_line_ruler" // Requires Ruler
	TKeyNotifEvtTitle  = "notif_event_title"
	TKeyNotifEvtBody   = "notif_event_body" // Requires ID, Ruler, Meaning
	TKeyEvtSummary     = "event_summary"    // Requires Day, Hour, Ruler
	TKeyMenuSchedule   = "menu_schedule"
	TKeyMenuControls   = "menu_controls"
	TKeyWinSchedule    = "win_schedule"
	TKeyWinControls    = "win_controls"
	TKeyColDay         = "col_day"
	TKeyColHour        = "col_hour"
	TKeyColRuler       = "col_ruler"
	TKeyColStart       = "col_start"
	TKeyFormatTime     = "format_time"
	TKeyLblLanguage    = "lbl_language"
	TKeyLblSetHour     = "lbl_set_hour"
	TKeyLblCommand     = "lbl_command"
	TKeyBtnApply       = "btn_apply"
	TKeyBtnRun         = "btn_run"
	TKeyErrHourNum     = "err_hour_number"
	TKeyPlanetPrefix   = "planet_"
	TKeyMeaningPrefix  = "meaning_"
	TKeyPlanetSaturn   = "planet_saturn"
	TKeyPlanetJupiter  = "planet_jupiter"
	TKeyPlanetMars     = "planet_mars"
	TKeyPlanetSun      = "planet_sun"
	TKeyPlanetVenus    = "planet_venus"
	TKeyPlanetMercury  = "planet_mercury"
	TKeyPlanetMoon     = "planet_moon"
	TKeyMeaningSaturn  = "meaning_saturn"
	TKeyMeaningJupiter = "meaning_jupiter"
	TKeyMeaningMars    = "meaning_mars"
	TKeyMeaningSun     = "meaning_sun"
	TKeyMeaningVenus   = "meaning_venus"
	TKeyMeaningMercury = "meaning_mercury"
	TKeyMeaningMoon    = "meaning_moon"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar
// -----------------------------------------------------------------------------

const (
	ICalVersion = "2.0"
	ICalProdid  = "-//Chaldean Clock//Engine//EN"
	ICalCalName = "Planetary Hours"
	ICalMethod  = "PUBLISH"
	ICalScale   = "GREGORIAN"
	ICalDomain  = "chaldeanclock"

	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDescription = "DESCRIPTION"
	PropDTStart     = "DTSTART"
	PropDTEnd       = "DTEND"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	// FormatUID expects day, hour and the domain.
	FormatUID = "day%d-hour%d@%s"

	DefaultICalRefresh = 1 * time.Hour
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	ShutdownTimeout    = 5 * time.Second
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 30 * time.Second
	ServerIdleTimeout  = 60 * time.Second
	RetryAfterSeconds  = "10"
	AllowedMethods     = "GET, HEAD"
	RouteRoot          = "/"
	RouteStatus        = "/status"
	AddrSeparator      = ":"

	HTTPTimeout   = 30 * time.Second
	SchemeHTTP    = "http"
	SchemeHTTPS   = "https"
	MaxScriptSize = 1 * 1024 * 1024 // 1MB
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"
	HeaderUserAgent       = "User-Agent"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrInvalidConfiguration = "invalid configuration"
	ErrInvalidLabel         = "invalid planetary label"
	ErrOutOfRangeSet        = "value out of range"
	ErrConfigOutOfRange     = "configuration value out of range"
	ErrUnknownCommand       = "unknown command"
	ErrMissingArgument      = "missing command argument"
	ErrInvalidArgument      = "invalid command argument"
	ErrConfigRead           = "failed to read configuration file"
	ErrConfigParse          = "failed to parse configuration file"
	ErrConfigEnv            = "failed to parse environment overrides"
	ErrStateRead            = "failed to read state file"
	ErrStateParse           = "failed to parse state file"
	ErrStateWrite           = "failed to write state file"
	ErrStateEncode          = "failed to encode state"
	ErrICalEncode           = "failed to encode iCalendar data"
	ErrScriptLoad           = "failed to run script"
	ErrScriptEvent          = "common event script failed"
	ErrCommandRejected      = "plugin command rejected"
	ErrServerStartup        = "server startup failed"
	ErrServerShutdown       = "server shutdown failed"
	ErrPortRequired         = "server port is required"
	ErrLogFile              = "failed to open log file"
	ErrCacheDir             = "could not determine user cache dir"
	ErrCreateDir            = "could not create app cache dir"
	ErrConfigDir            = "could not determine user config dir"
	ErrAppFailed            = "application failed unexpectedly"
	ErrWriteResp            = "failed to write response body"
	ErrStatusEncode         = "failed to encode clock status"
	ErrLocalesAccess        = "failed to access embedded locales"
	ErrLocaleLoad           = "failed to load locale file"
	ErrScheduleFailed       = "failed to generate schedule"
	ErrInvalidURL           = "invalid script URL"
	ErrProtocol             = "unsupported protocol scheme"
	ErrFetchRequest         = "failed to create request"
	ErrFetchNetwork         = "network error during fetch"
	ErrFetchStatus          = "server returned unexpected status"
	ErrFetchRead            = "failed to read remote script"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Schedule initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Fallbacks & Messages
// -----------------------------------------------------------------------------

const (
	FallbackClockTime  = "Day %d - Hour %d"
	FallbackClockRuler = "Ruler: %s"
	FallbackSummary    = "Day %d, Hour %d: %s"
	FallbackEvtTitle   = "Planetary Event"
	FallbackEvtBody    = "Event %d under %s: %s"

	// StubVCalendar is the minimal valid iCalendar object used when no hours are projected.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	TitleStartupError = "Startup Error"
	MsgPortBusy       = "Port %s is busy or unavailable."

	MsgAppStarting      = "Starting application"
	MsgAppStop          = "Application stopped gracefully"
	MsgCtxCancel        = "Context cancelled, shutting down UI"
	MsgConfigLoaded     = "Configuration loaded"
	MsgConfigMissing    = "Configuration file not found, using defaults"
	MsgConfigAdjusted   = "Configuration value adjusted"
	MsgSessionInit      = "Session initialized"
	MsgHourAdvanced     = "Hour advanced"
	MsgEventDispatched  = "Planetary event dispatched"
	MsgEventReserved    = "Common event reserved"
	MsgEventRun         = "Common event executed"
	MsgEventUndefined   = "Common event has no script definition"
	MsgEventDefined     = "Common event script defined"
	MsgScriptLoaded     = "Script loaded"
	MsgReentrantAdvance = "Refusing clock advance during dispatch"
	MsgClockPaused      = "Clock paused"
	MsgClockResumed     = "Clock resumed"
	MsgSetRejected      = "Rejected out of range value"
	MsgHandlerSet       = "Planetary handler registered"
	MsgHandlerRemoved   = "Planetary handler removed"
	MsgCommandExec      = "Plugin command executed"
	MsgStateSaved       = "Clock state saved"
	MsgStateLoaded      = "Clock state loaded"
	MsgGenSuccess       = "Schedule generation successful"
	MsgScheduleUpdated  = "Schedule feed republished"
	MsgFrameLoopStart   = "Frame loop started"
	MsgFrameLoopStop    = "Frame loop stopping due to context cancellation"
	MsgDisplayShown     = "Clock display shown"
	MsgDisplayHidden    = "Clock display hidden"
	MsgOpenWin          = "Opening window"
	MsgLanguageChanged  = "Interface language changed"
	MsgServerListen     = "HTTP server listening"
	MsgServerStop       = "Shutting down HTTP server..."
	MsgCacheUpdated     = "Schedule cache updated"
	MsgLocaleSkip       = "Skipping non-locale file"
	MsgLocaleBadName    = "Skipping malformed locale filename"
	MsgLocaleLoaded     = "Locale loaded successfully"
	MsgTransMissing     = "Missing translation key"
	MsgLogWarning       = "Warning: %s at %s: %v\n"
	MsgSimulationDone   = "Simulation finished"
	MsgFetchStart       = "Initiating script download"
	MsgFetchStatus      = "Server returned error status"
	MsgFetchDone        = "Script downloading"
)

// -----------------------------------------------------------------------------
// Logging Keys
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyField     = "field"
	LogKeyOld       = "old"
	LogKeyNew       = "new"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyValue     = "value"
	LogKeyCount     = "count"
	LogKeyDay       = "day"
	LogKeyHour      = "hour"
	LogKeyRuler     = "ruler"
	LogKeyEventID   = "event_id"
	LogKeyCommand   = "command"
	LogKeyFrames    = "frames"
	LogKeyInterval  = "interval"
	LogKeyDuration  = "duration_ms"
	LogKeyURL       = "url"
	LogKeyStatus    = "status"
	LogKeyLength    = "content_length"

	// Startup groups
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyCommit  = "commit"
	LogKeyDate    = "date"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompUI      = "ui"
	CompClock   = "clock"
	CompEngine  = "engine"
	CompSession = "session"
	CompCommand = "command"
	CompScript  = "script"
	CompFetcher = "fetcher"
	CompServer  = "server"
	CompConfig  = "config"
	CompMain    = "main"
	CompI18n    = "i18n"
)
