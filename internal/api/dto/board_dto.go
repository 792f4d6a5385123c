package dto

import (
	"time"

	"github.com/spec-kit/board-service/internal/domain"
)

// PostBoardRequest payload for creating or editing a board.
type PostBoardRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// GetBoardResponse is the public view of a board.
type GetBoardResponse struct {
	Writer    GetUserResponse `json:"writer"`
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewGetBoardResponse maps a domain board.
func NewGetBoardResponse(b *domain.Board) GetBoardResponse {
	return GetBoardResponse{
		Writer:    NewGetUserResponse(b.Writer),
		Title:     b.Title,
		Content:   b.Content,
		CreatedAt: b.CreatedAt,
	}
}

// NewGetBoardResponses maps a page of boards.
func NewGetBoardResponses(boards []domain.Board) []GetBoardResponse {
	out := make([]GetBoardResponse, 0, len(boards))
	for i := range boards {
		out = append(out, NewGetBoardResponse(&boards[i]))
	}
	return out
}
