package tracker_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/arenahub/trackboard/internal/model"
	"github.com/arenahub/trackboard/internal/tracker"
	"github.com/arenahub/trackboard/tests/testutil"
)

func TestResolveReusesExistingTag(t *testing.T) {
	fake := testutil.NewFakeRemote()
	r := tracker.NewTagResolver(fake, nil, nil)
	ctx := context.Background()

	first, err := r.Resolve(ctx, "scrim")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	second, err := r.Resolve(ctx, "scrim")
	if err != nil {
		t.Fatalf("Resolve again: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("second resolve created a new tag: %q vs %q", first.ID, second.ID)
	}
	if fake.CreateTagCalls != 1 {
		t.Errorf("CreateTag called %d times, want 1", fake.CreateTagCalls)
	}
}

func TestResolveTrimsAndValidates(t *testing.T) {
	fake := testutil.NewFakeRemote()
	r := tracker.NewTagResolver(fake, nil, nil)
	ctx := context.Background()

	tag, err := r.Resolve(ctx, "  travel  ")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if tag.Name != "travel" {
		t.Errorf("name = %q, want trimmed", tag.Name)
	}
	if tag.Color != model.DefaultTagColor {
		t.Errorf("color = %q, want default %q", tag.Color, model.DefaultTagColor)
	}

	_, err = r.Resolve(ctx, "   ")
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Resolve(blank) error = %v, want ValidationError", err)
	}
}

func TestResolveIsCaseSensitive(t *testing.T) {
	fake := testutil.NewFakeRemote()
	r := tracker.NewTagResolver(fake, nil, nil)
	ctx := context.Background()

	a, err := r.Resolve(ctx, "VOD")
	if err != nil {
		t.Fatalf("Resolve(VOD): %v", err)
	}
	b, err := r.Resolve(ctx, "vod")
	if err != nil {
		t.Fatalf("Resolve(vod): %v", err)
	}
	if a.ID == b.ID {
		t.Error("differently-cased names resolved to the same tag")
	}
}

// gatedRemote delays ListTags until released, so concurrent resolutions
// overlap deterministically.
type gatedRemote struct {
	*testutil.FakeRemote
	gate    chan struct{}
	release sync.Once
}

func (g *gatedRemote) ListTags(ctx context.Context) ([]model.Tag, error) {
	<-g.gate
	return g.FakeRemote.ListTags(ctx)
}

func TestConcurrentResolveSingleCreate(t *testing.T) {
	gated := &gatedRemote{FakeRemote: testutil.NewFakeRemote(), gate: make(chan struct{})}
	r := tracker.NewTagResolver(gated, nil, nil)
	ctx := context.Background()

	const workers = 8
	results := make(chan *model.Tag, workers)
	errs := make(chan error, workers)

	var started sync.WaitGroup
	started.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			started.Done()
			tag, err := r.Resolve(ctx, "playoffs")
			if err != nil {
				errs <- err
				return
			}
			results <- tag
		}()
	}

	started.Wait()
	close(gated.gate)

	var ids []string
	for i := 0; i < workers; i++ {
		select {
		case tag := <-results:
			ids = append(ids, tag.ID)
		case err := <-errs:
			t.Fatalf("Resolve: %v", err)
		}
	}

	for _, id := range ids {
		if id != ids[0] {
			t.Fatalf("resolutions disagree: %v", ids)
		}
	}
	if gated.CreateTagCalls != 1 {
		t.Errorf("CreateTag called %d times, want 1", gated.CreateTagCalls)
	}
}

func TestResolveAllDeduplicates(t *testing.T) {
	fake := testutil.NewFakeRemote()
	r := tracker.NewTagResolver(fake, nil, nil)

	ids, err := r.ResolveAll(context.Background(),
		[]string{"scrim", " scrim ", "travel", "", "scrim"})
	if err != nil {
		t.Fatalf("ResolveAll: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("ResolveAll returned %d ids, want 2: %v", len(ids), ids)
	}
	if ids[0] == ids[1] {
		t.Error("duplicate tag id in result")
	}
}
