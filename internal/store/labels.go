package store

import (
	"context"
	"time"
)

// EnsureSystemLabel finds or creates a system-owned label by name, used
// by the Auto-Tag Engine (spec §4.10) which must never duplicate its
// own tags across runs.
func (r *sqliteRepo) EnsureSystemLabel(ctx context.Context, name, icon, color string) (int64, error) {
	existing, err := r.GetLabelByNameType(ctx, name, LabelSystemTag)
	if err != nil && err != ErrNoRows {
		return 0, err
	}
	if existing != nil {
		return existing.ID, nil
	}

	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO labels(name, type, icon, color, system, created_at, updated_at) VALUES(?, ?, ?, ?, 1, ?, ?)",
		name, LabelSystemTag, icon, color, now, now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *sqliteRepo) GetLabelByNameType(ctx context.Context, name, typ string) (*Label, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, name, type, icon, color, system, created_at, updated_at FROM labels WHERE name = ? AND type = ?",
		name, typ)
	return scanLabel(row)
}

func (r *sqliteRepo) CreateLabel(ctx context.Context, name, typ string, icon, color *string) (int64, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO labels(name, type, icon, color, system, created_at, updated_at) VALUES(?, ?, ?, ?, 0, ?, ?)",
		name, typ, nullString(icon), nullString(color), now, now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *sqliteRepo) DeleteLabel(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM labels WHERE id = ?", id)
	return err
}

func (r *sqliteRepo) ListLabels(ctx context.Context) ([]Label, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, type, icon, color, system, created_at, updated_at FROM labels ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Label
	for rows.Next() {
		l, err := scanLabel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func (r *sqliteRepo) ListLabelsForGame(ctx context.Context, gameID int64) ([]Label, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT l.id, l.name, l.type, l.icon, l.color, l.system, l.created_at, l.updated_at
FROM labels l
JOIN game_labels gl ON gl.label_id = l.id
WHERE gl.game_id = ?
ORDER BY l.name`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Label
	for rows.Next() {
		l, err := scanLabel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func scanLabel(row interface{ Scan(...any) error }) (*Label, error) {
	var l Label
	if err := row.Scan(&l.ID, &l.Name, &l.Type, &l.Icon, &l.Color, &l.System, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *sqliteRepo) AddGameLabel(ctx context.Context, gameID, labelID int64, auto bool) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO game_labels(label_id, game_id, auto, added_at) VALUES(?, ?, ?, ?) ON CONFLICT(label_id, game_id) DO NOTHING",
		labelID, gameID, boolToInt(auto), time.Now().UTC())
	return err
}

func (r *sqliteRepo) RemoveGameLabel(ctx context.Context, gameID, labelID int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM game_labels WHERE game_id = ? AND label_id = ?", gameID, labelID)
	return err
}

// ReplaceAutoSystemLabel implements the Auto-Tag Engine's rule (spec
// §4.10) that a game may hold at most one automatically-applied label
// per system tag family: the manual/auto distinction means a user's
// manual application of the same label survives a later auto-removal,
// so this only ever touches rows where auto = 1.
func (r *sqliteRepo) ReplaceAutoSystemLabel(ctx context.Context, gameID, labelID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM game_labels WHERE game_id = ? AND auto = 1 AND label_id IN (
		   SELECT id FROM labels WHERE type = ?)`, gameID, LabelSystemTag); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO game_labels(label_id, game_id, auto, added_at) VALUES(?, ?, 1, ?) ON CONFLICT(label_id, game_id) DO NOTHING",
		labelID, gameID, time.Now().UTC()); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *sqliteRepo) DeleteAutoSystemLabels(ctx context.Context, gameID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM game_labels WHERE game_id = ? AND auto = 1 AND label_id IN (
		   SELECT id FROM labels WHERE type = ?)`, gameID, LabelSystemTag)
	return err
}
