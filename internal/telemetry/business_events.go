package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// BusinessEvents provides helper methods for tracing domain-specific operations
// These are higher-level events beyond HTTP/DB tracing (e.g., "user followed another user")
type BusinessEvents struct {
	tracer trace.Tracer
}

// NewBusinessEvents creates a new business events tracer
func NewBusinessEvents() *BusinessEvents {
	return &BusinessEvents{
		tracer: otel.Tracer("business-events"),
	}
}

// TraceCreatePost creates a span for post creation
func (be *BusinessEvents) TraceCreatePost(ctx context.Context, userID uint, visibility string) (context.Context, trace.Span) {
	return be.tracer.Start(ctx, "social.create_post",
		trace.WithAttributes(
			attribute.Int64("user.id", int64(userID)),
			attribute.String("post.visibility", visibility),
		),
	)
}

// TraceFollowTransition creates a span for a follow state change
// (requested, accepted, rejected, unfollowed)
func (be *BusinessEvents) TraceFollowTransition(ctx context.Context, followerID, followedID uint, transition string) (context.Context, trace.Span) {
	return be.tracer.Start(ctx, "social.follow."+transition,
		trace.WithAttributes(
			attribute.Int64("follow.follower_id", int64(followerID)),
			attribute.Int64("follow.followed_id", int64(followedID)),
			attribute.String("follow.transition", transition),
		),
	)
}

// TraceFeed creates a span for building the followed-users feed
func (be *BusinessEvents) TraceFeed(ctx context.Context, userID uint, page int) (context.Context, trace.Span) {
	return be.tracer.Start(ctx, "feed.get",
		trace.WithAttributes(
			attribute.Int64("user.id", int64(userID)),
			attribute.Int("feed.page", page),
		),
	)
}

// TracePurge creates a span for the non-admin purge
func (be *BusinessEvents) TracePurge(ctx context.Context, dryRun bool, keepCount int) (context.Context, trace.Span) {
	return be.tracer.Start(ctx, "admin.purge_non_admin_users",
		trace.WithAttributes(
			attribute.Bool("purge.dry_run", dryRun),
			attribute.Int("purge.keep_count", keepCount),
		),
	)
}

var globalBusinessEvents *BusinessEvents

// GetBusinessEvents returns the global business events tracer
func GetBusinessEvents() *BusinessEvents {
	if globalBusinessEvents == nil {
		globalBusinessEvents = NewBusinessEvents()
	}
	return globalBusinessEvents
}
