package tracker

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/arenahub/trackboard/internal/model"
	"github.com/arenahub/trackboard/internal/remote"
	"github.com/arenahub/trackboard/internal/store"
)

// TagResolver maps tag names to tag ids, auto-creating tags the first
// time a new name is used. Matching is case-sensitive.
//
// Lookup and create are two separate remote calls; within this process
// concurrent resolutions of the same name are coalesced through an
// in-flight table so only one create is issued. Two separate console
// processes can still race and produce duplicate names — deduplication
// would have to move server-side (unique constraint plus upsert) to
// close that fully.
type TagResolver struct {
	remote   Remote
	snapshot *store.SnapshotStore
	log      *logrus.Logger

	mu       sync.Mutex
	inflight map[string]*pendingTag
}

// pendingTag is a resolution in progress; waiters block on done.
type pendingTag struct {
	done chan struct{}
	tag  *model.Tag
	err  error
}

// NewTagResolver creates a tag resolver. snapshot may be nil.
func NewTagResolver(r Remote, snapshot *store.SnapshotStore, log *logrus.Logger) *TagResolver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &TagResolver{
		remote:   r,
		snapshot: snapshot,
		log:      log,
		inflight: make(map[string]*pendingTag),
	}
}

// Resolve returns the tag with the given name, creating it with the
// default color if no exact match exists.
func (r *TagResolver) Resolve(ctx context.Context, name string) (*model.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &model.ValidationError{Field: "tag", Message: "must not be empty"}
	}

	r.mu.Lock()
	if p, ok := r.inflight[name]; ok {
		r.mu.Unlock()
		select {
		case <-p.done:
			return p.tag, p.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	p := &pendingTag{done: make(chan struct{})}
	r.inflight[name] = p
	r.mu.Unlock()

	p.tag, p.err = r.lookupOrCreate(ctx, name)
	close(p.done)

	r.mu.Lock()
	delete(r.inflight, name)
	r.mu.Unlock()

	return p.tag, p.err
}

// ResolveAll resolves a list of names, deduplicating them first so a
// ticket never carries the same tag twice.
func (r *TagResolver) ResolveAll(ctx context.Context, names []string) ([]string, error) {
	seen := make(map[string]bool, len(names))
	var ids []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		tag, err := r.Resolve(ctx, name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, tag.ID)
	}
	return ids, nil
}

// Tags lists all known tags from the remote store, refreshing the local
// snapshot on success.
func (r *TagResolver) Tags(ctx context.Context) ([]model.Tag, error) {
	tags, err := r.remote.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	if r.snapshot != nil {
		if err := r.snapshot.ReplaceTags(ctx, tags); err != nil {
			r.log.WithError(err).Warn("persisting tag snapshot failed")
		}
	}
	return tags, nil
}

func (r *TagResolver) lookupOrCreate(ctx context.Context, name string) (*model.Tag, error) {
	tags, err := r.remote.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving tag %q: %w", name, err)
	}
	for _, tag := range tags {
		if tag.Name == name {
			t := tag
			return &t, nil
		}
	}

	tag, err := r.remote.CreateTag(ctx, remote.TagCreate{
		Name:  name,
		Color: model.DefaultTagColor,
	})
	if err != nil {
		return nil, fmt.Errorf("creating tag %q: %w", name, err)
	}

	if r.snapshot != nil {
		if err := r.snapshot.UpsertTag(ctx, *tag); err != nil {
			r.log.WithError(err).WithField("tag", tag.ID).
				Warn("persisting tag snapshot failed")
		}
	}
	return tag, nil
}
