package service

import (
	"context"
	"errors"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spec-kit/board-service/internal/domain"
	"github.com/spec-kit/board-service/internal/repository"
	apperrors "github.com/spec-kit/board-service/pkg/util"
)

// MaxContentLength bounds board content, counted in characters.
const MaxContentLength = 500

// Paging defaults for board listings.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// BoardInput carries the editable board fields.
type BoardInput struct {
	Title   string
	Content string
}

// BoardService implements board CRUD on behalf of authenticated users.
type BoardService struct {
	boards repository.BoardRepository
	users  repository.UserRepository
	logger *zap.Logger
}

// NewBoardService builds the service.
func NewBoardService(boards repository.BoardRepository, users repository.UserRepository, logger *zap.Logger) *BoardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BoardService{boards: boards, users: users, logger: logger}
}

// SaveBoard creates a board owned by userID.
func (s *BoardService) SaveBoard(ctx context.Context, userID int64, in BoardInput) (*domain.Board, error) {
	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := validateContent(in.Content); err != nil {
		return nil, err
	}

	board := &domain.Board{
		UserID:  user.ID,
		Title:   in.Title,
		Content: in.Content,
		State:   domain.StateActive,
		Writer:  user,
	}
	if err := s.boards.Create(ctx, board); err != nil {
		return nil, apperrors.Wrap(apperrors.DatabaseInsertError, err)
	}
	s.logger.Debug("board created", zap.Int64("board_id", board.ID), zap.Int64("user_id", user.ID))
	return board, nil
}

// UpdateBoard edits a board; only its writer may do so.
func (s *BoardService) UpdateBoard(ctx context.Context, userID, boardID int64, in BoardInput) error {
	board, err := s.ownedBoard(ctx, userID, boardID)
	if err != nil {
		return err
	}
	if err := validateContent(in.Content); err != nil {
		return err
	}

	board.Title = in.Title
	board.Content = in.Content
	if err := s.boards.Update(ctx, board); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.Wrap(apperrors.NonExistArticle, err)
		}
		return apperrors.Wrap(apperrors.DatabaseUpdateError, err)
	}
	return nil
}

// DeleteBoard removes a board; only its writer may do so.
func (s *BoardService) DeleteBoard(ctx context.Context, userID, boardID int64) error {
	if _, err := s.ownedBoard(ctx, userID, boardID); err != nil {
		return err
	}
	if err := s.boards.Delete(ctx, boardID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.Wrap(apperrors.NonExistArticle, err)
		}
		return apperrors.Wrap(apperrors.DatabaseDeleteError, err)
	}
	return nil
}

// ViewBoards returns one zero-based page of active boards, newest first.
func (s *BoardService) ViewBoards(ctx context.Context, page, size int) ([]domain.Board, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	boards, err := s.boards.List(ctx, size, page*size)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.DatabaseSelectError, err)
	}
	return boards, nil
}

// ViewSingleBoard returns an active board with its writer.
func (s *BoardService) ViewSingleBoard(ctx context.Context, boardID int64) (*domain.Board, error) {
	return s.activeBoard(ctx, boardID)
}

func (s *BoardService) ownedBoard(ctx context.Context, userID, boardID int64) (*domain.Board, error) {
	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	board, err := s.activeBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if board.UserID != user.ID {
		return nil, apperrors.New(apperrors.NoAuth)
	}
	return board, nil
}

func (s *BoardService) activeUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Wrap(apperrors.NonExistUser, err)
		}
		return nil, apperrors.Wrap(apperrors.DatabaseSelectError, err)
	}
	if user.State != domain.StateActive {
		return nil, apperrors.New(apperrors.NonExistUser)
	}
	return user, nil
}

func (s *BoardService) activeBoard(ctx context.Context, boardID int64) (*domain.Board, error) {
	board, err := s.boards.GetActiveByID(ctx, boardID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Wrap(apperrors.NonExistArticle, err)
		}
		return nil, apperrors.Wrap(apperrors.DatabaseSelectError, err)
	}
	return board, nil
}

func validateContent(content string) error {
	if n := utf8.RuneCountInString(content); n == 0 || n > MaxContentLength {
		return apperrors.New(apperrors.ContextLengthError)
	}
	return nil
}
