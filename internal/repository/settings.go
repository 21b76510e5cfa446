package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"
)

// GetSettingDecimal reads an amount override. A missing key yields fallback.
func (r *Repository) GetSettingDecimal(ctx context.Context, key string, fallback decimal.Decimal) (decimal.Decimal, error) {
	var raw string
	err := r.db.GetContext(ctx, &raw, "SELECT value FROM settings WHERE key = $1", key)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fallback, nil
	case err != nil:
		return decimal.Zero, err
	}
	return decimal.NewFromString(raw)
}

// PutSetting stores an override, replacing any earlier value for key.
func (r *Repository) PutSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value)
	return err
}

type settingRow struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

// ListSettings returns every stored override keyed by name.
func (r *Repository) ListSettings(ctx context.Context) (map[string]string, error) {
	var rows []settingRow
	if err := r.db.SelectContext(ctx, &rows, "SELECT key, value FROM settings ORDER BY key"); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}
