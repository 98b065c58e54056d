// package formatter renders library reports in various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/libget/internal/models"
	"github.com/desertthunder/libget/internal/shared"
)

// Format names a report format.
type Format string

const (
	CSV      Format = "csv"
	Markdown Format = "md"
	Text     Format = "txt"
)

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "csv":
		return CSV, nil
	case "md", "markdown":
		return Markdown, nil
	case "txt", "text":
		return Text, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, s)
	}
}

// LyricsState describes what lyrics a track holds: instrumental, synced, plain or none.
func LyricsState(t models.Track) string {
	switch {
	case t.Instrumental:
		return "instrumental"
	case t.HasSyncedLyrics():
		return "synced"
	case t.HasPlainLyrics():
		return "plain"
	default:
		return "none"
	}
}

// ExportToCSV converts tracks to CSV format with columns: ID, Title, Artist, Album, Duration, Lyrics, File
func ExportToCSV(tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Album", "Duration", "Lyrics", "File"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range tracks {
		record := []string{
			strconv.FormatInt(track.ID, 10),
			track.Title,
			track.ArtistName,
			track.AlbumName,
			strconv.FormatFloat(track.Duration, 'f', -1, 64),
			LyricsState(track),
			track.FilePath,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts tracks to a Markdown report with a lyrics coverage summary.
func ExportToMarkdown(title string, tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n", len(tracks)))

	counts := coverage(tracks)
	buf.WriteString(fmt.Sprintf("**Lyrics**: %d synced, %d plain, %d instrumental, %d missing\n\n",
		counts["synced"], counts["plain"], counts["instrumental"], counts["none"]))

	buf.WriteString("## Tracks\n\n")
	for i, track := range tracks {
		duration := shared.FormatDuration(track.Duration)
		albumPart := ""
		if track.AlbumName != "" {
			albumPart = fmt.Sprintf(" (%s)", track.AlbumName)
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s [%s] `%s`\n", i+1, artistOrUnknown(track), track.Title, albumPart, duration, LyricsState(track)))
	}

	return buf.Bytes(), nil
}

// ExportToText converts tracks to plain text format
func ExportToText(title string, tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%s\n", title))
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", len(tracks)))

	for i, track := range tracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s [%s]\n", i+1, artistOrUnknown(track), track.Title, LyricsState(track)))
	}

	return buf.Bytes(), nil
}

// Export renders tracks in format.
func Export(format Format, title string, tracks []models.Track) ([]byte, error) {
	switch format {
	case CSV:
		return ExportToCSV(tracks)
	case Markdown:
		return ExportToMarkdown(title, tracks)
	case Text:
		return ExportToText(title, tracks)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, format)
	}
}

// WriteExport renders tracks and writes the report to path, creating parent directories.
//
// The format is taken from the file extension when format is empty.
func WriteExport(path string, format Format, title string, tracks []models.Track) (Format, error) {
	if format == "" {
		f, err := ParseFormat(filepath.Ext(path))
		if err != nil {
			return "", err
		}
		format = f
	}

	data, err := Export(format, title, tracks)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", format, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", format, err)
	}

	return format, nil
}

func coverage(tracks []models.Track) map[string]int {
	counts := make(map[string]int, 4)
	for _, t := range tracks {
		counts[LyricsState(t)]++
	}
	return counts
}

func artistOrUnknown(t models.Track) string {
	if t.ArtistName == "" {
		return "Unknown Artist"
	}
	return t.ArtistName
}
