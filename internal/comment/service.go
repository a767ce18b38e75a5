package comment

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rehaber/rehaber-backend/internal/content"
	"github.com/rehaber/rehaber-backend/internal/engagement"
	apperrors "github.com/rehaber/rehaber-backend/internal/errors"
	"github.com/rehaber/rehaber-backend/internal/logger"
	"github.com/rehaber/rehaber-backend/internal/notification"
	"golang.org/x/sync/errgroup"
)

const previewLength = 80

// Service defines the business logic interface for comment threads
type Service interface {
	// List returns top-level comments newest first, each with its replies oldest first.
	// Replies whose parent was deleted are listed at the top level and flagged orphaned,
	// unless Config.HideOrphans drops them.
	List(ctx context.Context, ref content.Ref, viewer uuid.UUID) ([]*Comment, error)
	Add(ctx context.Context, userID uuid.UUID, ref content.Ref, body string, parentID *uuid.UUID) (*Comment, error)
	Delete(ctx context.Context, userID, commentID uuid.UUID) (bool, error)
	ToggleLike(ctx context.Context, userID, commentID uuid.UUID) (bool, error)
}

// Notifier receives best-effort notifications for replies and likes
type Notifier interface {
	Append(ctx context.Context, n *notification.Notification) error
}

type serviceImpl struct {
	repo        Repository
	engagements engagement.Service
	notifier    Notifier
	config      Config
	logger      logger.Logger
	now         func() time.Time
}

// Option configures the comment service
type Option func(*serviceImpl)

// WithNotifier enables reply and like notifications as allowed by Config
func WithNotifier(n Notifier) Option {
	return func(s *serviceImpl) {
		s.notifier = n
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *serviceImpl) {
		s.now = now
	}
}

// NewService creates a new comment service
func NewService(repo Repository, engagements engagement.Service, config Config, log logger.Logger, opts ...Option) Service {
	s := &serviceImpl{
		repo:        repo,
		engagements: engagements,
		config:      config,
		logger:      log,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func validateThreadRef(ref content.Ref) error {
	if err := ref.Validate(); err != nil {
		return err
	}
	if !ref.Type.Capabilities().Commentable {
		return apperrors.NewValidationError("contentType", fmt.Sprintf("%s content cannot be commented on", ref.Type))
	}
	return nil
}

func (s *serviceImpl) List(ctx context.Context, ref content.Ref, viewer uuid.UUID) ([]*Comment, error) {
	if err := validateThreadRef(ref); err != nil {
		return nil, err
	}

	comments, err := s.repo.ListByContent(ctx, ref)
	if err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return []*Comment{}, nil
	}

	if err := s.decorate(ctx, comments, viewer); err != nil {
		return nil, err
	}
	return buildThreads(comments, s.config.HideOrphans), nil
}

// decorate fills like counts and the viewer's like state from the engagements table
func (s *serviceImpl) decorate(ctx context.Context, comments []*Comment, viewer uuid.UUID) error {
	ids := make([]uuid.UUID, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}

	var (
		counts map[uuid.UUID]int64
		liked  map[uuid.UUID]bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		counts, err = s.engagements.Counts(gctx, content.TypeComment, engagement.KindLike, ids)
		return err
	})
	if viewer != uuid.Nil {
		g.Go(func() (err error) {
			liked, err = s.engagements.EngagedIDs(gctx, viewer, content.TypeComment, engagement.KindLike, ids)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, c := range comments {
		c.LikeCount = counts[c.ID]
		c.Liked = liked[c.ID]
	}
	return nil
}

// buildThreads expects comments in creation order
func buildThreads(comments []*Comment, hideOrphans bool) []*Comment {
	byID := make(map[uuid.UUID]*Comment, len(comments))
	for _, c := range comments {
		if !c.IsReply() {
			byID[c.ID] = c
		}
	}

	top := make([]*Comment, 0, len(byID))
	for _, c := range comments {
		if !c.IsReply() {
			top = append(top, c)
			continue
		}
		if parent, ok := byID[*c.ParentID]; ok {
			parent.Replies = append(parent.Replies, c)
			continue
		}
		if hideOrphans {
			continue
		}
		c.Orphaned = true
		top = append(top, c)
	}

	sort.SliceStable(top, func(i, j int) bool {
		return top[i].CreatedAt.After(top[j].CreatedAt)
	})
	return top
}

func (s *serviceImpl) Add(ctx context.Context, userID uuid.UUID, ref content.Ref, body string, parentID *uuid.UUID) (*Comment, error) {
	if userID == uuid.Nil {
		return nil, apperrors.ErrUnauthenticated
	}
	if err := validateThreadRef(ref); err != nil {
		return nil, err
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewKindError(apperrors.ErrEmptyBody, "body", apperrors.ErrMsgEmptyBody)
	}
	if s.config.MaxBodyLength > 0 && utf8.RuneCountInString(body) > s.config.MaxBodyLength {
		return nil, apperrors.NewValidationError("body", fmt.Sprintf("comment body must be at most %d characters", s.config.MaxBodyLength))
	}

	var parent *Comment
	if parentID != nil {
		var err error
		parent, err = s.repo.GetByID(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent.IsReply() {
			return nil, apperrors.NewKindError(apperrors.ErrInvalidParent, "parentId", apperrors.ErrMsgReplyToReply)
		}
		if parent.Ref() != ref {
			return nil, apperrors.NewKindError(apperrors.ErrInvalidParent, "parentId", apperrors.ErrMsgParentElsewhere)
		}
	}

	c := &Comment{
		ID:          uuid.New(),
		ContentID:   ref.ID,
		ContentType: ref.Type,
		UserID:      userID,
		ParentID:    parentID,
		Body:        body,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	if parent != nil && s.config.NotifyOnReply {
		s.notify(ctx, userID, notification.New(parent.UserID, notification.TypeComment,
			"New reply to your comment", preview(body), &c.ID))
	}
	return c, nil
}

func (s *serviceImpl) Delete(ctx context.Context, userID, commentID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, apperrors.ErrUnauthenticated
	}

	c, err := s.repo.GetByID(ctx, commentID)
	if err != nil {
		return false, err
	}
	if c.UserID != userID {
		return false, apperrors.NewKindError(apperrors.ErrForbidden, "id", apperrors.ErrMsgNotAuthor)
	}

	removed, err := s.repo.Delete(ctx, commentID, s.config.CascadeDelete)
	if err != nil {
		return false, err
	}

	refs := make([]content.Ref, len(removed))
	for i, id := range removed {
		refs[i] = content.NewRef(id, content.TypeComment)
	}
	if _, err := s.engagements.Purge(ctx, refs...); err != nil {
		s.logger.LogWarn("Failed to purge likes of deleted comments", map[string]interface{}{
			"commentId": commentID.String(),
			"error":     err.Error(),
		})
	}

	s.logger.LogInfo("Comment deleted", map[string]interface{}{
		"commentId": commentID.String(),
		"removed":   len(removed),
	})
	return true, nil
}

func (s *serviceImpl) ToggleLike(ctx context.Context, userID, commentID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, apperrors.ErrUnauthenticated
	}

	c, err := s.repo.GetByID(ctx, commentID)
	if err != nil {
		return false, err
	}

	liked, err := s.engagements.Toggle(ctx, userID, c.LikeRef(), engagement.KindLike)
	if err != nil {
		return false, err
	}

	if liked && s.config.NotifyOnLike {
		s.notify(ctx, userID, notification.New(c.UserID, notification.TypeLike,
			"Someone liked your comment", preview(c.Body), &c.ID))
	}
	return liked, nil
}

// notify appends n unless the actor is the recipient. Failures are logged only.
func (s *serviceImpl) notify(ctx context.Context, actor uuid.UUID, n *notification.Notification) {
	if s.notifier == nil || n.UserID == actor {
		return
	}
	if err := s.notifier.Append(ctx, n); err != nil {
		s.logger.LogWarn("Failed to append comment notification", map[string]interface{}{
			"recipient": n.UserID.String(),
			"type":      string(n.Type),
			"error":     err.Error(),
		})
	}
}

func preview(body string) string {
	if utf8.RuneCountInString(body) <= previewLength {
		return body
	}
	runes := []rune(body)
	return string(runes[:previewLength-3]) + "..."
}
