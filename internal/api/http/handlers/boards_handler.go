package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/board-service/internal/api/dto"
	"github.com/spec-kit/board-service/internal/auth"
	"github.com/spec-kit/board-service/internal/service"
	apperrors "github.com/spec-kit/board-service/pkg/util"
)

// BoardsHandler exposes board CRUD for authenticated callers.
type BoardsHandler struct {
	boards *service.BoardService
}

// NewBoardsHandler constructs handler.
func NewBoardsHandler(boards *service.BoardService) *BoardsHandler {
	return &BoardsHandler{boards: boards}
}

// Create handles POST /board/add.
func (h *BoardsHandler) Create(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.PostBoardRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Wrap(apperrors.InvalidRequest, err)
	}

	if _, err := h.boards.SaveBoard(c.UserContext(), principal.UserID, service.BoardInput{
		Title:   req.Title,
		Content: req.Content,
	}); err != nil {
		return err
	}
	return c.JSON(apperrors.OK("게시물을 등록하였습니다."))
}

// Update handles PATCH /board?boardId=.
func (h *BoardsHandler) Update(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	boardID, err := boardIDParam(c)
	if err != nil {
		return err
	}
	var req dto.PostBoardRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Wrap(apperrors.InvalidRequest, err)
	}

	if err := h.boards.UpdateBoard(c.UserContext(), principal.UserID, boardID, service.BoardInput{
		Title:   req.Title,
		Content: req.Content,
	}); err != nil {
		return err
	}
	return c.JSON(apperrors.OK("게시물을 수정하였습니다."))
}

// Delete handles DELETE /board?boardId=.
func (h *BoardsHandler) Delete(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	boardID, err := boardIDParam(c)
	if err != nil {
		return err
	}

	if err := h.boards.DeleteBoard(c.UserContext(), principal.UserID, boardID); err != nil {
		return err
	}
	return c.JSON(apperrors.OK("게시물을 삭제하였습니다."))
}

// List handles GET /?page=&size=.
func (h *BoardsHandler) List(c *fiber.Ctx) error {
	if _, err := currentPrincipal(c); err != nil {
		return err
	}
	boards, err := h.boards.ViewBoards(c.UserContext(), c.QueryInt("page", 0), c.QueryInt("size", service.DefaultPageSize))
	if err != nil {
		return err
	}
	return c.JSON(apperrors.OK(dto.NewGetBoardResponses(boards)))
}

// Get handles GET /board?boardId=.
func (h *BoardsHandler) Get(c *fiber.Ctx) error {
	if _, err := currentPrincipal(c); err != nil {
		return err
	}
	boardID, err := boardIDParam(c)
	if err != nil {
		return err
	}

	board, err := h.boards.ViewSingleBoard(c.UserContext(), boardID)
	if err != nil {
		return err
	}
	return c.JSON(apperrors.OK(dto.NewGetBoardResponse(board)))
}

func currentPrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.New(apperrors.NoAuth)
	}
	return principal, nil
}

func boardIDParam(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Query("boardId"), 10, 64)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.InvalidRequest, err)
	}
	return id, nil
}
