package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tartampluch/go-chaldean-clock/internal/config"
)

// Status is the clock summary served as JSON next to the feed.
type Status struct {
	Day       int    `json:"day"`
	Hour      int    `json:"hour"`
	Ruler     string `json:"ruler"`
	Meaning   string `json:"meaning"`
	Paused    bool   `json:"paused"`
	DayPeriod bool   `json:"day_period"`
}

// cacheItem stores one rendered resource and its metadata for HTTP caching.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

func newCacheItem(data []byte, now time.Time) *cacheItem {
	hash := sha256.Sum256(data)
	return &cacheItem{
		data:         data,
		etag:         fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:])),
		lastModified: now.UTC().Format(http.TimeFormat),
	}
}

// ScheduleServer serves the planetary-hour feed and the clock status over
// local HTTP.
type ScheduleServer struct {
	// The frame loop publishes, HTTP clients read: atomic pointers keep the
	// GET path lock-free.
	feed   atomic.Pointer[cacheItem]
	status atomic.Pointer[cacheItem]
	Port   string
}

// NewScheduleServer creates a server bound to 127.0.0.1:port once started.
func NewScheduleServer(port string) *ScheduleServer {
	return &ScheduleServer{
		Port: port,
	}
}

// Handler returns the routes of the server.
func (s *ScheduleServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteRoot, s.handleFeedRequest)
	mux.HandleFunc(config.RouteStatus, s.handleStatusRequest)
	return mux
}

// Start initializes the HTTP server and blocks until the context is cancelled.
func (s *ScheduleServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Update atomically replaces the served feed and status.
func (s *ScheduleServer) Update(feed []byte, status Status) {
	now := time.Now()

	item := newCacheItem(feed, now)
	s.feed.Store(item)

	if data, err := json.Marshal(status); err == nil {
		s.status.Store(newCacheItem(data, now))
	} else {
		slog.Error(config.ErrStatusEncode,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(feed),
		config.LogKeyETag, item.etag,
	)
}

func (s *ScheduleServer) handleFeedRequest(w http.ResponseWriter, r *http.Request) {
	serveCached(w, r, s.feed.Load(), config.MimeTextCalendar)
}

func (s *ScheduleServer) handleStatusRequest(w http.ResponseWriter, r *http.Request) {
	serveCached(w, r, s.status.Load(), config.MimeJSON)
}

// serveCached writes item with HTTP caching support.
func serveCached(w http.ResponseWriter, r *http.Request, item *cacheItem, mime string) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return
	}

	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set(config.HeaderContentType, mime)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, item.lastModified); err == nil {
				// Not newer than the client copy.
				if !serverTime.After(clientTime) {
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
		}
	}

	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}
