package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/event-planner/internal/apperr"
	"github.com/iliyamo/event-planner/internal/appctx"
	"github.com/iliyamo/event-planner/internal/model"
	"github.com/iliyamo/event-planner/internal/repository"
)

// TagService owns the global tag vocabulary events reference.
type TagService struct {
	tags repository.TagRepository
}

// NewTagService wires the tag service.
func NewTagService(tags repository.TagRepository) *TagService {
	return &TagService{tags: tags}
}

// Create adds a tag to the vocabulary. Names are normalized to lower
// case and creation is idempotent: an existing tag is returned as-is.
func (s *TagService) Create(ctx context.Context, actx appctx.Context, name, color string, description *string) (*model.Tag, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, apperr.New(apperr.KindMissingField, "name is required")
	}

	existing, err := s.tags.GetByName(ctx, name)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if existing != nil {
		return existing, nil
	}

	tag := &model.Tag{ID: uuid.New(), Name: name, Color: color, Description: description}
	if err := s.tags.Create(ctx, tag); err != nil {
		return nil, apperr.Internal(err)
	}
	actx.Infof("tag %q created", tag.Name)
	return tag, nil
}

// List returns the whole vocabulary.
func (s *TagService) List(ctx context.Context) ([]model.Tag, error) {
	tags, err := s.tags.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return tags, nil
}
