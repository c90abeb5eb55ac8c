// package formatter renders stored users for the command line (CSV, plain text, tables)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/spotauth/internal/models"
)

var headers = []string{"ID", "Spotify ID", "Display Name", "Profile Image", "Created At"}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func record(u *models.User) []string {
	return []string{
		u.ID(),
		u.SpotifyID(),
		deref(u.DisplayName()),
		deref(u.ProfileImage()),
		formatTime(u.CreatedAt()),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// UsersToCSV converts users to CSV with columns: ID, Spotify ID, Display Name, Profile Image, Created At
func UsersToCSV(users []*models.User) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, u := range users {
		if err := writer.Write(record(u)); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// UsersToTable renders users as a bordered terminal table.
func UsersToTable(users []*models.User) string {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, record(u))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)

	return t.String()
}

// UserToText renders a single user as labelled lines.
func UserToText(u *models.User) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "ID:            %s\n", u.ID())
	fmt.Fprintf(&buf, "Spotify ID:    %s\n", u.SpotifyID())
	if name := u.DisplayName(); name != nil {
		fmt.Fprintf(&buf, "Display Name:  %s\n", *name)
	}
	if image := u.ProfileImage(); image != nil {
		fmt.Fprintf(&buf, "Profile Image: %s\n", *image)
	}
	fmt.Fprintf(&buf, "Created At:    %s\n", formatTime(u.CreatedAt()))
	fmt.Fprintf(&buf, "Updated At:    %s\n", formatTime(u.UpdatedAt()))

	return buf.Bytes()
}

// WriteCSVExport writes users as CSV to path, creating parent directories, and returns the written path.
//
// An empty path writes users.csv in the working directory.
func WriteCSVExport(users []*models.User, path string) (string, error) {
	if path == "" {
		path = "users.csv"
	}

	data, err := UsersToCSV(users)
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return path, nil
}
