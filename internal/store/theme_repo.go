package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"courtiq-landing/internal/theme"
)

var _ theme.Store = (*Repository)(nil)

// Preference is one stored row.
type Preference struct {
	Subject   string `db:"subject"`
	Mode      string `db:"mode"`
	UpdatedAt string `db:"updated_at"`
}

// LoadMode implements theme.Store. It returns theme.ErrNoPreference when the
// subject never toggled.
func (repo *Repository) LoadMode(ctx context.Context, subject string) (theme.Mode, error) {
	pref, err := repo.GetPreference(ctx, subject)
	if err != nil {
		return "", err
	}

	mode, err := theme.ParseMode(pref.Mode)
	if err != nil {
		return "", fmt.Errorf("stored mode for %s: %w", subject, err)
	}
	return mode, nil
}

// SaveMode implements theme.Store, overwriting any previous value.
func (repo *Repository) SaveMode(ctx context.Context, subject string, mode theme.Mode) error {
	if _, err := theme.ParseMode(mode.String()); err != nil {
		return err
	}

	query := `INSERT INTO theme_preferences (subject, mode, updated_at)
		VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		ON CONFLICT(subject) DO UPDATE SET mode = excluded.mode, updated_at = excluded.updated_at`
	if _, err := repo.dbConn.ExecContext(ctx, query, subject, mode.String()); err != nil {
		return fmt.Errorf("saving theme for %s: %w", subject, err)
	}
	return nil
}

// GetPreference returns the full row for subject.
func (repo *Repository) GetPreference(ctx context.Context, subject string) (Preference, error) {
	var pref Preference
	query := `SELECT subject, mode, updated_at FROM theme_preferences WHERE subject = ?`
	err := repo.dbConn.GetContext(ctx, &pref, query, subject)
	if errors.Is(err, sql.ErrNoRows) {
		return Preference{}, fmt.Errorf("%w: %s", theme.ErrNoPreference, subject)
	}
	if err != nil {
		return Preference{}, fmt.Errorf("getting theme for %s: %w", subject, err)
	}
	return pref, nil
}

// DeletePreference forgets subject's preference so the platform default applies again.
func (repo *Repository) DeletePreference(ctx context.Context, subject string) error {
	if _, err := repo.dbConn.ExecContext(ctx, `DELETE FROM theme_preferences WHERE subject = ?`, subject); err != nil {
		return fmt.Errorf("deleting theme for %s: %w", subject, err)
	}
	return nil
}
