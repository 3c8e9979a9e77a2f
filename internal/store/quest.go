package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/quests/internal/model"
)

type QuestStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewQuestStore(db *sql.DB) *QuestStore {
	return &QuestStore{db: db, now: time.Now}
}

func scanQuest(scanner interface{ Scan(...any) error }) (*model.Quest, error) {
	var q model.Quest
	var status int
	if err := scanner.Scan(&q.ID, &q.Name, &q.Description, &status, &q.CreatedAt, &q.UpdatedAt); err != nil {
		return nil, err
	}
	q.Status = status != 0
	return &q, nil
}

const questCols = `id, name, description, status, created_at, updated_at`

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Create inserts an incomplete quest stamped with the current time.
func (s *QuestStore) Create(name, description string) (*model.Quest, error) {
	return s.Insert(model.Quest{Name: name, Description: description, CreatedAt: s.now()})
}

// Insert stores q as given, including status and created_at. A zero
// CreatedAt is replaced with the current time.
func (s *QuestStore) Insert(q model.Quest) (*model.Quest, error) {
	createdAt := q.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	createdAt = createdAt.UTC()

	result, err := s.db.Exec(
		`INSERT INTO quests (name, description, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		q.Name, q.Description, boolInt(q.Status), createdAt, createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert quest: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *QuestStore) GetByID(id int64) (*model.Quest, error) {
	row := s.db.QueryRow(`SELECT `+questCols+` FROM quests WHERE id = ?`, id)
	q, err := scanQuest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get quest: %w", err)
	}
	return q, nil
}

// List returns all quests, newest first.
func (s *QuestStore) List() ([]model.Quest, error) {
	return s.list(`SELECT ` + questCols + ` FROM quests ORDER BY created_at DESC, id DESC`)
}

// ListCompleted returns completed quests, newest first.
func (s *QuestStore) ListCompleted() ([]model.Quest, error) {
	return s.list(`SELECT ` + questCols + ` FROM quests WHERE status = 1 ORDER BY created_at DESC, id DESC`)
}

func (s *QuestStore) list(query string, args ...any) ([]model.Quest, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list quests: %w", err)
	}
	defer rows.Close()

	var quests []model.Quest
	for rows.Next() {
		q, err := scanQuest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quest: %w", err)
		}
		quests = append(quests, *q)
	}
	return quests, rows.Err()
}

// SetStatus changes only the completion flag. It returns (nil, nil) when
// the quest does not exist.
func (s *QuestStore) SetStatus(id int64, status bool) (*model.Quest, error) {
	result, err := s.db.Exec(
		`UPDATE quests SET status = ?, updated_at = ? WHERE id = ?`,
		boolInt(status), s.now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("set quest status: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	} else if n == 0 {
		return nil, nil
	}
	return s.GetByID(id)
}

// Update rewrites name, description and status. It returns (nil, nil) when
// the quest does not exist.
func (s *QuestStore) Update(id int64, name, description string, status bool) (*model.Quest, error) {
	result, err := s.db.Exec(
		`UPDATE quests SET name = ?, description = ?, status = ?, updated_at = ? WHERE id = ?`,
		name, description, boolInt(status), s.now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update quest: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	} else if n == 0 {
		return nil, nil
	}
	return s.GetByID(id)
}

// Delete removes a quest and reports whether a row was deleted.
func (s *QuestStore) Delete(id int64) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM quests WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete quest: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// DeleteAll removes every quest and returns the number deleted.
func (s *QuestStore) DeleteAll() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM quests`)
	if err != nil {
		return 0, fmt.Errorf("delete all quests: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func (s *QuestStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM quests`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count quests: %w", err)
	}
	return n, nil
}

// Ping runs a trivial query to prove the database answers.
func (s *QuestStore) Ping(ctx context.Context) error {
	var one int
	if err := s.db.QueryRowContext(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("select 1: %w", err)
	}
	return nil
}
