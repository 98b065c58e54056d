package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/libget/internal/models"
	"github.com/desertthunder/libget/internal/shared"
	"github.com/desertthunder/libget/internal/tasks"
)

// PlayerControl is the player engine as the command endpoints drive it.
type PlayerControl interface {
	Play(track models.Track) error
	Pause() error
	Resume() error
	Seek(position float64) error
	Stop() error
	Snapshot() models.PlayerSnapshot
}

// LyricsControl runs the lyrics resolution pipeline for a track.
type LyricsControl interface {
	Download(ctx context.Context, trackID int64) (string, error)
	Save(ctx context.Context, trackID int64, plain, synced string) (string, error)
	Apply(ctx context.Context, trackID int64, raw models.RawLyrics) (string, error)
}

// LyricsLookup queries the lyrics database without touching the library.
type LyricsLookup interface {
	GetLyrics(ctx context.Context, params models.LookupParams) (*models.RawLyrics, error)
	SearchLyrics(ctx context.Context, params models.LookupParams) ([]models.RawLyrics, error)
}

// TrackGetter loads tracks by id.
type TrackGetter interface {
	GetTrackByID(ctx context.Context, id int64) (*models.Track, error)
}

// Publisher runs a publish attempt.
type Publisher interface {
	Run(ctx context.Context, req models.PublishRequest) (models.PublishProgress, error)
}

// CommandsOpts configures [Commands]. Player and Tracks are required; the lyrics, lookup and
// publish routes are only registered when their collaborator is set.
type CommandsOpts struct {
	Player    PlayerControl
	Tracks    TrackGetter
	Lyrics    LyricsControl
	Lookup    LyricsLookup
	Publisher Publisher
	Logger    *log.Logger
}

// Commands exposes the player and lyrics operations as JSON endpoints for UI clients.
// State changes are observed through the event hub; responses carry only the direct result.
type Commands struct {
	player    PlayerControl
	tracks    TrackGetter
	lyrics    LyricsControl
	lookup    LyricsLookup
	publisher Publisher
	logger    *log.Logger
}

type commandRequest struct {
	TrackID      int64             `json:"trackId"`
	Position     float64           `json:"position"`
	PlainLyrics  string            `json:"plainLyrics"`
	SyncedLyrics string            `json:"syncedLyrics"`
	Lyrics       *models.RawLyrics `json:"lyrics"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error    string                  `json:"error"`
	Progress *models.PublishProgress `json:"progress,omitempty"`
}

// NewCommands creates the command endpoints.
func NewCommands(opts CommandsOpts) *Commands {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Commands{
		player:    opts.Player,
		tracks:    opts.Tracks,
		lyrics:    opts.Lyrics,
		lookup:    opts.Lookup,
		publisher: opts.Publisher,
		logger:    opts.Logger,
	}
}

// Register adds every endpoint to r.
func (c *Commands) Register(r Router) {
	r.Handle(http.MethodGet, "/player/state", http.HandlerFunc(c.state))
	r.Handle(http.MethodPost, "/player/play", http.HandlerFunc(c.play))
	r.Handle(http.MethodPost, "/player/pause", c.playerOp(c.player.Pause))
	r.Handle(http.MethodPost, "/player/resume", c.playerOp(c.player.Resume))
	r.Handle(http.MethodPost, "/player/stop", c.playerOp(c.player.Stop))
	r.Handle(http.MethodPost, "/player/seek", http.HandlerFunc(c.seek))

	if c.lyrics != nil {
		r.Handle(http.MethodPost, "/lyrics/download", http.HandlerFunc(c.download))
		r.Handle(http.MethodPost, "/lyrics/save", http.HandlerFunc(c.save))
		r.Handle(http.MethodPost, "/lyrics/apply", http.HandlerFunc(c.apply))
	}
	if c.lookup != nil {
		r.Handle(http.MethodGet, "/lyrics/retrieve", http.HandlerFunc(c.retrieve))
		r.Handle(http.MethodGet, "/lyrics/search", http.HandlerFunc(c.search))
	}
	if c.publisher != nil {
		r.Handle(http.MethodPost, "/lyrics/publish", http.HandlerFunc(c.publish))
	}
}

func (c *Commands) state(w http.ResponseWriter, r *http.Request) {
	c.writeJSON(w, http.StatusOK, c.player.Snapshot())
}

func (c *Commands) play(w http.ResponseWriter, r *http.Request) {
	req, ok := c.decode(w, r)
	if !ok {
		return
	}
	track, err := c.tracks.GetTrackByID(r.Context(), req.TrackID)
	if err != nil {
		c.writeError(w, err)
		return
	}
	if err := c.player.Play(*track); err != nil {
		c.writeError(w, err)
		return
	}
	c.writeJSON(w, http.StatusOK, c.player.Snapshot())
}

func (c *Commands) seek(w http.ResponseWriter, r *http.Request) {
	req, ok := c.decode(w, r)
	if !ok {
		return
	}
	if err := c.player.Seek(req.Position); err != nil {
		c.writeError(w, err)
		return
	}
	c.writeJSON(w, http.StatusOK, c.player.Snapshot())
}

func (c *Commands) playerOp(fn func() error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := fn(); err != nil {
			c.writeError(w, err)
			return
		}
		c.writeJSON(w, http.StatusOK, c.player.Snapshot())
	})
}

func (c *Commands) download(w http.ResponseWriter, r *http.Request) {
	req, ok := c.decode(w, r)
	if !ok {
		return
	}
	msg, err := c.lyrics.Download(r.Context(), req.TrackID)
	if err != nil {
		c.writeError(w, err)
		return
	}
	c.writeJSON(w, http.StatusOK, messageResponse{Message: msg})
}

func (c *Commands) save(w http.ResponseWriter, r *http.Request) {
	req, ok := c.decode(w, r)
	if !ok {
		return
	}
	msg, err := c.lyrics.Save(r.Context(), req.TrackID, req.PlainLyrics, req.SyncedLyrics)
	if err != nil {
		c.writeError(w, err)
		return
	}
	c.writeJSON(w, http.StatusOK, messageResponse{Message: msg})
}

func (c *Commands) apply(w http.ResponseWriter, r *http.Request) {
	req, ok := c.decode(w, r)
	if !ok {
		return
	}
	if req.Lyrics == nil {
		c.writeError(w, fmt.Errorf("%w: lyrics", shared.ErrMissingArgument))
		return
	}
	msg, err := c.lyrics.Apply(r.Context(), req.TrackID, *req.Lyrics)
	if err != nil {
		c.writeError(w, err)
		return
	}
	c.writeJSON(w, http.StatusOK, messageResponse{Message: msg})
}

func (c *Commands) retrieve(w http.ResponseWriter, r *http.Request) {
	params, err := lookupParams(r, true)
	if err != nil {
		c.writeError(w, err)
		return
	}
	raw, err := c.lookup.GetLyrics(r.Context(), params)
	if err != nil {
		c.writeError(w, err)
		return
	}
	c.writeJSON(w, http.StatusOK, raw)
}

func (c *Commands) search(w http.ResponseWriter, r *http.Request) {
	params, err := lookupParams(r, false)
	if err != nil {
		c.writeError(w, err)
		return
	}
	results, err := c.lookup.SearchLyrics(r.Context(), params)
	if err != nil {
		c.writeError(w, err)
		return
	}
	if results == nil {
		results = []models.RawLyrics{}
	}
	c.writeJSON(w, http.StatusOK, results)
}

// lookupParams reads title, artist, album and duration from the query string.
// A retrieve needs both title and duration; a search only the title.
func lookupParams(r *http.Request, needDuration bool) (models.LookupParams, error) {
	q := r.URL.Query()
	params := models.LookupParams{
		Title:      q.Get("title"),
		ArtistName: q.Get("artist"),
		AlbumName:  q.Get("album"),
	}
	if params.Title == "" {
		return params, fmt.Errorf("%w: title", shared.ErrMissingArgument)
	}

	raw := q.Get("duration")
	if raw == "" {
		if needDuration {
			return params, fmt.Errorf("%w: duration", shared.ErrMissingArgument)
		}
		return params, nil
	}
	duration, err := strconv.ParseFloat(raw, 64)
	if err != nil || duration < 0 {
		return params, fmt.Errorf("%w: duration %q", shared.ErrInvalidArgument, raw)
	}
	params.Duration = duration
	return params, nil
}

func (c *Commands) publish(w http.ResponseWriter, r *http.Request) {
	req, ok := c.decode(w, r)
	if !ok {
		return
	}
	track, err := c.tracks.GetTrackByID(r.Context(), req.TrackID)
	if err != nil {
		c.writeError(w, err)
		return
	}
	publishReq, err := tasks.NewPublishRequest(*track)
	if err != nil {
		c.writeError(w, err)
		return
	}

	progress, err := c.publisher.Run(r.Context(), publishReq)
	if err != nil {
		c.logger.Warn("publish failed", "track", req.TrackID, "attempt", progress.AttemptID, "error", err)
		c.writeJSON(w, statusFor(err), errorResponse{Error: err.Error(), Progress: &progress})
		return
	}
	c.writeJSON(w, http.StatusOK, progress)
}

func (c *Commands) decode(w http.ResponseWriter, r *http.Request) (commandRequest, bool) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeError(w, fmt.Errorf("%w: malformed request body: %v", shared.ErrInvalidInput, err))
		return req, false
	}
	return req, true
}

func (c *Commands) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		c.logger.Warn("failed to write response", "error", err)
	}
}

func (c *Commands) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		c.logger.Error("command failed", "error", err)
	}
	c.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrInvalidInput), errors.Is(err, shared.ErrInvalidArgument), errors.Is(err, shared.ErrMissingArgument):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrTrackNotFound), errors.Is(err, shared.ErrLyricsNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, shared.ErrTimeout), errors.Is(err, shared.ErrSolverTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, shared.ErrNetwork), errors.Is(err, shared.ErrInvalidChallenge):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
