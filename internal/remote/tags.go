package remote

import (
	"context"
	"fmt"

	"github.com/arenahub/trackboard/internal/model"
)

// ListTags retrieves all tags, globally scoped across boards.
func (c *Client) ListTags(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	if err := c.get(ctx, "/tags", &tags); err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	return tags, nil
}

// CreateTag creates a new tag and returns the server entity.
func (c *Client) CreateTag(ctx context.Context, in TagCreate) (*model.Tag, error) {
	var tag model.Tag
	if err := c.post(ctx, "/tags", in, &tag); err != nil {
		return nil, fmt.Errorf("creating tag: %w", err)
	}
	return &tag, nil
}
