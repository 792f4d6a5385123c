package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/board-service/internal/domain"
)

// BoardRepository defines persistence access for boards.
type BoardRepository interface {
	Create(ctx context.Context, board *domain.Board) error
	Update(ctx context.Context, board *domain.Board) error
	Delete(ctx context.Context, id int64) error
	GetActiveByID(ctx context.Context, id int64) (*domain.Board, error)
	List(ctx context.Context, limit, offset int) ([]domain.Board, error)
}

type boardRepository struct {
	pool *pgxpool.Pool
}

// NewBoardRepository returns a Postgres-backed implementation.
func NewBoardRepository(pool *pgxpool.Pool) BoardRepository {
	return &boardRepository{pool: pool}
}

func (r *boardRepository) Create(ctx context.Context, board *domain.Board) error {
	const query = `
        INSERT INTO boards (user_id, title, content, state)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		board.UserID,
		board.Title,
		board.Content,
		board.State,
	).Scan(&board.ID, &board.CreatedAt, &board.UpdatedAt)
}

func (r *boardRepository) Update(ctx context.Context, board *domain.Board) error {
	const query = `
        UPDATE boards SET title=$1, content=$2, updated_at=NOW()
        WHERE id=$3`

	cmd, err := r.pool.Exec(ctx, query, board.Title, board.Content, board.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *boardRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM boards WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const boardWithWriter = `
        SELECT b.id, b.user_id, b.title, b.content, b.state, b.created_at, b.updated_at,
               u.id, u.name, u.age, u.email, u.role, u.state
        FROM boards b JOIN users u ON u.id = b.user_id`

func (r *boardRepository) GetActiveByID(ctx context.Context, id int64) (*domain.Board, error) {
	query := boardWithWriter + ` WHERE b.id=$1 AND b.state=$2`

	board, err := scanBoard(r.pool.QueryRow(ctx, query, id, domain.StateActive))
	if err != nil {
		return nil, notFound(err)
	}
	return board, nil
}

func (r *boardRepository) List(ctx context.Context, limit, offset int) ([]domain.Board, error) {
	query := boardWithWriter + ` WHERE b.state=$1 ORDER BY b.id DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, domain.StateActive, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var boards []domain.Board
	for rows.Next() {
		board, err := scanBoard(rows)
		if err != nil {
			return nil, err
		}
		boards = append(boards, *board)
	}
	return boards, rows.Err()
}

func scanBoard(row pgx.Row) (*domain.Board, error) {
	var board domain.Board
	var writer domain.User
	if err := row.Scan(
		&board.ID,
		&board.UserID,
		&board.Title,
		&board.Content,
		&board.State,
		&board.CreatedAt,
		&board.UpdatedAt,
		&writer.ID,
		&writer.Name,
		&writer.Age,
		&writer.Email,
		&writer.Role,
		&writer.State,
	); err != nil {
		return nil, err
	}
	board.Writer = &writer
	return &board, nil
}
