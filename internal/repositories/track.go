package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/libget/internal/models"
	"github.com/desertthunder/libget/internal/shared"
)

const selectTrack = `
	SELECT t.id, t.file_path, t.file_name, t.title, t.album_id, COALESCE(al.name, ''),
		t.artist_id, COALESCE(ar.name, ''), t.duration, t.lrc_lyrics, t.txt_lyrics, t.instrumental
	FROM tracks t
	LEFT JOIN albums al ON al.id = t.album_id
	LEFT JOIN artists ar ON ar.id = t.artist_id
`

// TrackRepository persists library tracks and their lyrics.
type TrackRepository struct {
	db *sql.DB
}

// NewTrackRepository creates a new TrackRepository with the given database connection
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// Create inserts track, creating its artist and album rows when they don't exist yet.
// The generated id and foreign keys are written back to track.
func (r *TrackRepository) Create(ctx context.Context, track *models.Track) error {
	if track.FilePath == "" {
		return fmt.Errorf("%w: file path is required", shared.ErrInvalidInput)
	}
	if track.Title == "" {
		return fmt.Errorf("%w: title is required", shared.ErrInvalidInput)
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var artistID, albumID *int64

		if track.ArtistName != "" {
			id, err := findOrCreate(ctx, tx,
				"SELECT id FROM artists WHERE name = ?",
				"INSERT INTO artists (name) VALUES (?)",
				track.ArtistName)
			if err != nil {
				return fmt.Errorf("failed to resolve artist: %w", err)
			}
			artistID = &id
		}

		if track.AlbumName != "" {
			id, err := findOrCreate(ctx, tx,
				"SELECT id FROM albums WHERE name = ? AND artist_id IS ?",
				"INSERT INTO albums (name, artist_id) VALUES (?, ?)",
				track.AlbumName, artistID)
			if err != nil {
				return fmt.Errorf("failed to resolve album: %w", err)
			}
			albumID = &id
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO tracks (file_path, file_name, title, album_id, artist_id, duration, lrc_lyrics, txt_lyrics, instrumental)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, track.FilePath, track.FileName, track.Title, albumID, artistID, track.Duration,
			track.SyncedLyrics, track.PlainLyrics, track.Instrumental)
		if err != nil {
			return fmt.Errorf("failed to insert track: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get track id: %w", err)
		}

		track.ID = id
		track.ArtistID = artistID
		track.AlbumID = albumID
		return nil
	})
}

// GetTrackByID retrieves a track with its album and artist names.
func (r *TrackRepository) GetTrackByID(ctx context.Context, id int64) (*models.Track, error) {
	row := r.db.QueryRowContext(ctx, selectTrack+" WHERE t.id = ?", id)

	track, err := scanTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", shared.ErrTrackNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan track: %w", err)
	}
	return track, nil
}

// List retrieves every track ordered by title.
func (r *TrackRepository) List(ctx context.Context) ([]models.Track, error) {
	rows, err := r.db.QueryContext(ctx, selectTrack+" ORDER BY t.title COLLATE NOCASE ASC, t.id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []models.Track
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		tracks = append(tracks, *track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}

// ListNoLyricsIDs returns the ids of tracks a bulk download should visit.
//
// With skipNotNeeded, tracks already holding synced lyrics or marked instrumental are left out;
// otherwise every track is returned.
func (r *TrackRepository) ListNoLyricsIDs(ctx context.Context, skipNotNeeded bool) ([]int64, error) {
	query := "SELECT id FROM tracks"
	if skipNotNeeded {
		query += " WHERE (lrc_lyrics IS NULL OR lrc_lyrics = '') AND instrumental = 0"
	}
	query += " ORDER BY id ASC"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query track ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan track id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return ids, nil
}

// UpdateSyncedLyrics stores synced and plain lyrics and clears the instrumental flag.
func (r *TrackRepository) UpdateSyncedLyrics(ctx context.Context, id int64, synced, plain string) error {
	return r.updateLyrics(ctx, id, &synced, &plain, false)
}

// UpdatePlainLyrics stores plain lyrics and clears synced lyrics and the instrumental flag.
func (r *TrackRepository) UpdatePlainLyrics(ctx context.Context, id int64, plain string) error {
	return r.updateLyrics(ctx, id, nil, &plain, false)
}

// UpdateInstrumental marks the track instrumental and clears both lyrics fields.
func (r *TrackRepository) UpdateInstrumental(ctx context.Context, id int64) error {
	return r.updateLyrics(ctx, id, nil, nil, true)
}

// UpdateNullLyrics clears both lyrics fields and the instrumental flag.
func (r *TrackRepository) UpdateNullLyrics(ctx context.Context, id int64) error {
	return r.updateLyrics(ctx, id, nil, nil, false)
}

// updateLyrics writes all lyrics columns in one statement so no update is ever partial.
func (r *TrackRepository) updateLyrics(ctx context.Context, id int64, synced, plain *string, instrumental bool) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE tracks
		SET lrc_lyrics = ?, txt_lyrics = ?, instrumental = ?, updated_at = ?
		WHERE id = ?
	`, synced, plain, instrumental, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: failed to update track %d: %v", shared.ErrStorage, id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to get affected rows: %v", shared.ErrStorage, err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %w: %d", shared.ErrStorage, shared.ErrTrackNotFound, id)
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanTrack scans one row of [selectTrack] into a [models.Track]
func scanTrack(row scanner) (*models.Track, error) {
	var (
		track    models.Track
		albumID  sql.NullInt64
		artistID sql.NullInt64
		synced   sql.NullString
		plain    sql.NullString
	)

	err := row.Scan(&track.ID, &track.FilePath, &track.FileName, &track.Title, &albumID, &track.AlbumName,
		&artistID, &track.ArtistName, &track.Duration, &synced, &plain, &track.Instrumental)
	if err != nil {
		return nil, err
	}

	if albumID.Valid {
		track.AlbumID = &albumID.Int64
	}
	if artistID.Valid {
		track.ArtistID = &artistID.Int64
	}
	if synced.Valid {
		track.SyncedLyrics = &synced.String
	}
	if plain.Valid {
		track.PlainLyrics = &plain.String
	}

	return &track, nil
}
