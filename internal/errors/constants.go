package errors

import stderrors "errors"

// Sentinel errors shared by every engagement service
var (
	ErrUnauthenticated  = stderrors.New("unauthenticated")
	ErrNotFound         = stderrors.New("not found")
	ErrForbidden        = stderrors.New("forbidden")
	ErrEmptyBody        = stderrors.New("comment body is empty")
	ErrInvalidParent    = stderrors.New("invalid parent comment")
	ErrInvalidInput     = stderrors.New("invalid input")
	ErrStoreUnavailable = stderrors.New("store unavailable")
)

// Error message constants
const (
	ErrMsgUserRequired    = "a signed-in user is required"
	ErrMsgEmptyBody       = "comment body must not be blank"
	ErrMsgReplyToReply    = "replies cannot have replies"
	ErrMsgParentElsewhere = "parent comment belongs to different content"
	ErrMsgNotAuthor       = "only the author may delete this comment"
	ErrMsgNotRecipient    = "notification belongs to another user"
)
