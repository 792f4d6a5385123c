package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/spec-kit/board-service/internal/domain"
)

type sqliteBoardRepository struct {
	db *sql.DB
}

// NewSQLiteBoardRepository returns a SQLite-backed implementation.
func NewSQLiteBoardRepository(db *sql.DB) BoardRepository {
	return &sqliteBoardRepository{db: db}
}

func (r *sqliteBoardRepository) Create(ctx context.Context, board *domain.Board) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO boards (user_id, title, content, state, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		board.UserID,
		board.Title,
		board.Content,
		string(board.State),
		now.Format(time.RFC3339Nano),
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting board: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading board id: %w", err)
	}
	board.ID = id
	board.CreatedAt = now
	board.UpdatedAt = now
	return nil
}

func (r *sqliteBoardRepository) Update(ctx context.Context, board *domain.Board) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE boards SET title=?, content=?, updated_at=? WHERE id=?`,
		board.Title, board.Content, now.Format(time.RFC3339Nano), board.ID)
	if err != nil {
		return fmt.Errorf("updating board: %w", err)
	}
	return affectedOne(res)
}

func (r *sqliteBoardRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM boards WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("deleting board: %w", err)
	}
	return affectedOne(res)
}

const sqliteBoardWithWriter = `
		SELECT b.id, b.user_id, b.title, b.content, b.state, b.created_at, b.updated_at,
		       u.id, u.name, u.age, u.email, u.role, u.state
		FROM boards b JOIN users u ON u.id = b.user_id`

func (r *sqliteBoardRepository) GetActiveByID(ctx context.Context, id int64) (*domain.Board, error) {
	board, err := scanSQLiteBoard(r.db.QueryRowContext(ctx,
		sqliteBoardWithWriter+` WHERE b.id = ? AND b.state = ?`, id, string(domain.StateActive)))
	if err != nil {
		return nil, notFound(err)
	}
	return board, nil
}

func (r *sqliteBoardRepository) List(ctx context.Context, limit, offset int) ([]domain.Board, error) {
	rows, err := r.db.QueryContext(ctx,
		sqliteBoardWithWriter+` WHERE b.state = ? ORDER BY b.id DESC LIMIT ? OFFSET ?`,
		string(domain.StateActive), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing boards: %w", err)
	}
	defer rows.Close()

	var boards []domain.Board
	for rows.Next() {
		board, err := scanSQLiteBoard(rows)
		if err != nil {
			return nil, err
		}
		boards = append(boards, *board)
	}
	return boards, rows.Err()
}

func scanSQLiteBoard(row rowScanner) (*domain.Board, error) {
	var board domain.Board
	var writer domain.User
	var state, createdAt, updatedAt, role, writerState string
	if err := row.Scan(
		&board.ID,
		&board.UserID,
		&board.Title,
		&board.Content,
		&state,
		&createdAt,
		&updatedAt,
		&writer.ID,
		&writer.Name,
		&writer.Age,
		&writer.Email,
		&role,
		&writerState,
	); err != nil {
		return nil, err
	}
	board.State = domain.EntityState(state)
	writer.Role = domain.Role(role)
	writer.State = domain.EntityState(writerState)

	var err error
	if board.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if board.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	board.Writer = &writer
	return &board, nil
}

func affectedOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
