package social

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/venuekit/venuekit/pkg/audit"
	"github.com/venuekit/venuekit/pkg/queue"
	"github.com/venuekit/venuekit/pkg/statemachine"
	"github.com/venuekit/venuekit/svc/provider"
)

// PlatformResult is the outcome of one platform's publish attempt. The full
// result list is written to the audit log; the post's summary fields only
// keep the aggregate status and the first error.
type PlatformResult struct {
	Platform   provider.Provider `json:"platform"`
	Success    bool              `json:"success"`
	ExternalID string            `json:"external_id,omitempty"`
	URL        string            `json:"url,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// Pipeline publishes posts to the requested platforms. One platform's
// failure never aborts the others; the job fails as a whole only when the
// post itself cannot be loaded.
type Pipeline struct {
	posts    PostStore
	accounts provider.AccountStore
	registry *provider.Registry
	tokens   *provider.TokenService
	machine  *statemachine.Machine[PostStatus]
	audit    audit.Logger
	log      *slog.Logger
}

func NewPipeline(
	posts PostStore,
	accounts provider.AccountStore,
	registry *provider.Registry,
	tokens *provider.TokenService,
	auditLog audit.Logger,
	log *slog.Logger,
) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		posts:    posts,
		accounts: accounts,
		registry: registry,
		tokens:   tokens,
		machine:  newPostMachine(),
		audit:    auditLog,
		log:      log,
	}
}

// newPostMachine builds the publish-owned edges of the post lifecycle. Draft
// and scheduled edges written by the admin surface are outside this table.
func newPostMachine() *statemachine.Machine[PostStatus] {
	return statemachine.New(
		statemachine.Transition[PostStatus]{From: StatusDraft, To: StatusPublishing, Event: EventPublishStart},
		statemachine.Transition[PostStatus]{From: StatusScheduled, To: StatusPublishing, Event: EventPublishStart},
		statemachine.Transition[PostStatus]{From: StatusPublishing, To: StatusPublished, Event: EventPublishSucceed},
		statemachine.Transition[PostStatus]{From: StatusPublishing, To: StatusFailed, Event: EventPublishFail},
	)
}

// Handler returns the queue handler bound to PublishPayload.
func (p *Pipeline) Handler() queue.Handler {
	return queue.NewJobHandler(p.handlePublish)
}

func (p *Pipeline) handlePublish(ctx context.Context, payload PublishPayload) error {
	post, err := p.posts.GetPost(ctx, payload.PostID)
	if err != nil {
		// Escalates to the engine for whole-job retry.
		return fmt.Errorf("load post %s: %w", payload.PostID, err)
	}

	next, err := p.machine.Fire(ctx, post.Status, EventPublishStart, nil)
	switch {
	case err == nil:
		post.Status = next
		if err := p.posts.UpdatePost(ctx, post); err != nil {
			return fmt.Errorf("mark post publishing: %w", err)
		}
	case errors.Is(err, statemachine.ErrNoTransition) && post.Status == StatusPublishing:
		// Crash-recovery redelivery of an in-flight job, carry on.
	default:
		// The post moved to a terminal state before the job fired.
		p.log.InfoContext(ctx, "skipping publish, post already settled",
			slog.String("post_id", post.ID.String()),
			slog.String("status", string(post.Status)))
		return nil
	}

	accounts, err := p.accounts.ListAccounts(ctx, post.BusinessID, payload.Platforms)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}
	byProvider := make(map[provider.Provider]provider.Account, len(accounts))
	for _, a := range accounts {
		byProvider[a.Provider] = a
	}

	content := provider.PostContent{Text: payload.Content, MediaURLs: payload.MediaURLs}
	results := make([]PlatformResult, 0, len(payload.Platforms))
	for _, platform := range payload.Platforms {
		results = append(results, p.publishToPlatform(ctx, platform, byProvider, content))
	}

	settled, err := p.settle(ctx, post, results)
	if err != nil {
		return err
	}

	p.recordAudit(ctx, settled, results)
	return nil
}

// publishToPlatform runs one platform attempt. Every failure path is caught
// and folded into the result so sibling platforms keep going.
func (p *Pipeline) publishToPlatform(
	ctx context.Context,
	platform provider.Provider,
	byProvider map[provider.Provider]provider.Account,
	content provider.PostContent,
) PlatformResult {
	account, ok := byProvider[platform]
	if !ok {
		return PlatformResult{Platform: platform, Error: "no connected account"}
	}

	fresh, err := p.tokens.EnsureFresh(ctx, account)
	if err != nil {
		return PlatformResult{Platform: platform, Error: err.Error()}
	}

	adapter, err := p.registry.Adapter(platform)
	if err != nil {
		return PlatformResult{Platform: platform, Error: err.Error()}
	}

	res, err := adapter.CreatePost(ctx, fresh, content)
	if err != nil {
		p.log.WarnContext(ctx, "platform publish failed",
			slog.String("platform", string(platform)),
			slog.Any("error", err))
		return PlatformResult{Platform: platform, Error: err.Error()}
	}

	return PlatformResult{Platform: platform, Success: true, ExternalID: res.ExternalID, URL: res.URL}
}

// settle aggregates the per-platform results onto the post. All successes
// publish the post; any failure fails it with the first failing platform's
// error as the summary message.
func (p *Pipeline) settle(ctx context.Context, post Post, results []PlatformResult) (Post, error) {
	allOK := true
	firstError := ""
	externalIDs := make([]string, 0, len(results))
	for _, r := range results {
		if r.Success {
			externalIDs = append(externalIDs, r.ExternalID)
			continue
		}
		allOK = false
		if firstError == "" {
			firstError = r.Error
		}
	}

	event := EventPublishFail
	if allOK {
		event = EventPublishSucceed
	}
	next, err := p.machine.Fire(ctx, post.Status, event, nil)
	if err != nil {
		return Post{}, fmt.Errorf("settle post %s: %w", post.ID, err)
	}

	post.Status = next
	if allOK {
		now := time.Now()
		post.PublishedAt = &now
		post.ExternalIDs = externalIDs
		post.ErrorMessage = ""
	} else {
		post.ErrorMessage = firstError
	}

	if err := p.posts.UpdatePost(ctx, post); err != nil {
		return Post{}, fmt.Errorf("update post %s: %w", post.ID, err)
	}
	return post, nil
}

func (p *Pipeline) recordAudit(ctx context.Context, post Post, results []PlatformResult) {
	meta := map[string]any{"results": results}
	opts := []audit.EventOption{
		audit.WithResource("social_post", post.ID.String()),
		audit.WithBusinessID(post.BusinessID),
		audit.WithMetadata(meta),
	}

	var err error
	if post.ErrorMessage != "" {
		err = p.audit.LogError(ctx, "social.post.publish", errors.New(post.ErrorMessage), opts...)
	} else {
		err = p.audit.Log(ctx, "social.post.publish", opts...)
	}
	if err != nil {
		p.log.ErrorContext(ctx, "audit write failed", slog.Any("error", err))
	}
}
