package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CommentService struct {
	Repo   *repo.GormRepo
	Events EventPublisher
}

// CommentNode is a comment with its replies, built from parent ids.
type CommentNode struct {
	models.Comment
	Replies []*CommentNode `json:"replies"`
}

func (s *CommentService) Create(ctx context.Context, userID, productID uint, text string, parentID *uint) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", ErrValidation)
	}
	if err := tooLong("text", text, models.MaxCommentLen); err != nil {
		return nil, err
	}

	c := &models.Comment{UserID: userID, ProductID: productID, ParentID: parentID, Text: text}
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		ok, err := tx.ProductExists(ctx, productID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: product %d", ErrNotFound, productID)
		}
		if parentID != nil {
			parent, err := tx.GetComment(ctx, *parentID)
			if err != nil {
				if repo.IsNotFound(err) {
					return fmt.Errorf("%w: parent comment %d", ErrNotFound, *parentID)
				}
				return err
			}
			if parent.ProductID != productID {
				return fmt.Errorf("%w: parent comment %d belongs to another product", ErrNotFound, *parentID)
			}
		}
		return tx.CreateComment(ctx, c)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		logging.FromContext(ctx).Error("create_comment_error", "svc", "comment.create", "error", err)
		return nil, internalErr(err)
	}

	publish(ctx, s.Events, TopicComment, strconv.FormatUint(uint64(productID), 10), map[string]any{
		"type":      "comment_created",
		"commentID": c.ID,
		"productID": productID,
		"userID":    userID,
		"parentID":  parentID,
	})
	return c, nil
}

// Tree returns the product's top-level comments with nested replies, each
// level ordered by id.
func (s *CommentService) Tree(ctx context.Context, productID uint) ([]*CommentNode, error) {
	ok, err := s.Repo.ProductExists(ctx, productID)
	if err != nil {
		return nil, internalErr(err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, productID)
	}

	items, err := s.Repo.ListComments(ctx, productID)
	if err != nil {
		return nil, internalErr(err)
	}
	return BuildCommentTree(items), nil
}

// BuildCommentTree indexes comments by parent id. Replies whose parent is not
// in items are treated as roots.
func BuildCommentTree(items []models.Comment) []*CommentNode {
	nodes := make(map[uint]*CommentNode, len(items))
	for _, c := range items {
		nodes[c.ID] = &CommentNode{Comment: c, Replies: []*CommentNode{}}
	}

	roots := make([]*CommentNode, 0)
	for _, c := range items {
		n := nodes[c.ID]
		if c.ParentID != nil {
			if parent, ok := nodes[*c.ParentID]; ok {
				parent.Replies = append(parent.Replies, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	return roots
}

// Delete removes a comment and all of its replies. Only the author may delete.
func (s *CommentService) Delete(ctx context.Context, userID, commentID uint) (int64, error) {
	var (
		deleted   int64
		productID uint
	)
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		c, err := tx.GetComment(ctx, commentID)
		if err != nil {
			if repo.IsNotFound(err) {
				return fmt.Errorf("%w: comment %d", ErrNotFound, commentID)
			}
			return err
		}
		if c.UserID != userID {
			return fmt.Errorf("%w: comment %d belongs to another user", ErrForbidden, commentID)
		}
		productID = c.ProductID

		ids, err := tx.CommentSubtreeIDs(ctx, commentID)
		if err != nil {
			return err
		}
		deleted, err = tx.DeleteComments(ctx, ids)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) {
			return 0, err
		}
		logging.FromContext(ctx).Error("delete_comment_error", "svc", "comment.delete", "error", err)
		return 0, internalErr(err)
	}

	publish(ctx, s.Events, TopicComment, strconv.FormatUint(uint64(productID), 10), map[string]any{
		"type":      "comment_deleted",
		"commentID": commentID,
		"productID": productID,
		"removed":   deleted,
	})
	return deleted, nil
}
