package auth

import (
	"context"

	"blog-server/internal/apperr"
	"blog-server/internal/domain"
)

// Default denial texts for resources without a more specific message.
const (
	MsgNotPostOwner    = "You can only modify your own posts"
	MsgNotCommentOwner = "You can only modify your own comments"
)

// RequireOwner lets the request through only when the verified user is
// ownerID. An empty ownerID never matches.
func RequireOwner(ctx context.Context, ownerID, deniedMsg string) (*domain.User, error) {
	actor, err := Actor(ctx)
	if err != nil {
		return nil, err
	}
	if ownerID == "" || actor.ID != ownerID {
		return nil, apperr.Forbidden(deniedMsg)
	}
	return actor, nil
}
