package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type CommentHTTP struct {
	Svc *service.CommentService
}

func (h *CommentHTTP) Tree(c echo.Context) error {
	productID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	tree, err := h.Svc.Tree(c.Request().Context(), productID)
	if err != nil {
		return respondError(c, "comment_tree_failed", err)
	}
	return c.JSON(http.StatusOK, tree)
}

func (h *CommentHTTP) Create(c echo.Context) error {
	user, err := mustUser(c)
	if err != nil {
		return err
	}
	productID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req transport.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "create_comment_error", "invalid body", err)
	}

	comment, err := h.Svc.Create(c.Request().Context(), user.ID, productID, req.Text, req.ParentID)
	if err != nil {
		return respondError(c, "create_comment_failed", err)
	}
	return c.JSON(http.StatusCreated, comment)
}

func (h *CommentHTTP) Delete(c echo.Context) error {
	user, err := mustUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	n, err := h.Svc.Delete(c.Request().Context(), user.ID, id)
	if err != nil {
		return respondError(c, "delete_comment_failed", err)
	}
	return c.JSON(http.StatusOK, transport.DeleteCommentResponse{Deleted: n})
}
