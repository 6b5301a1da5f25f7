package topic

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/belajarku/backend/core"
)

var (
	// errors
	ErrTopicNotFound    = errors.New("topic not found")
	ErrMaterialNotFound = errors.New("material not found")
)

type (
	Repository interface {
		CreateTopic(ctx context.Context, t Topic) (Topic, error)
		GetTopic(ctx context.Context, id string) (Topic, error)
		// QueryTopics does a case-insensitive match of QueryFilter.Search on
		// Topic.Name or Topic.Description.
		QueryTopics(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Topic, error)
		UpdateTopic(ctx context.Context, t Topic) (Topic, error)
		DeleteTopicsByID(ctx context.Context, ids ...string) (int, error)

		CreateMaterial(ctx context.Context, m Material) (Material, error)
		GetMaterial(ctx context.Context, id string) (Material, error)
		// QueryMaterialsByTopic returns the topic's materials ordered by position.
		QueryMaterialsByTopic(ctx context.Context, topicID string) ([]Material, error)
		UpdateMaterial(ctx context.Context, m Material) (Material, error)
		DeleteMaterialsByID(ctx context.Context, ids ...string) (int, error)
	}

	Service interface {
		CreateTopic(ctx context.Context, nt NewTopic) (Topic, error)
		GetTopic(ctx context.Context, id string) (Topic, error)
		// GetTopicDetail returns the topic with its materials loaded.
		GetTopicDetail(ctx context.Context, id string) (Topic, error)
		QueryTopics(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Topic, error)
		UpdateTopic(ctx context.Context, id string, ut UpdateTopic) (Topic, error)
		DeleteTopics(ctx context.Context, ids ...string) error

		CreateMaterial(ctx context.Context, nm NewMaterial) (Material, error)
		GetMaterial(ctx context.Context, id string) (Material, error)
		QueryMaterialsByTopic(ctx context.Context, topicID string) ([]Material, error)
		UpdateMaterial(ctx context.Context, id string, um UpdateMaterial) (Material, error)
		DeleteMaterials(ctx context.Context, ids ...string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CreateTopic(ctx context.Context, nt NewTopic) (Topic, error) {
	now := time.Now().UTC()
	t := Topic{
		ID:          uuid.New().String(),
		Name:        nt.Name,
		Description: nt.Description,
		Image:       nt.Image,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateTopic(ctx, t)
}

func (svc *service) GetTopic(ctx context.Context, id string) (Topic, error) {
	return svc.repo.GetTopic(ctx, id)
}

func (svc *service) GetTopicDetail(ctx context.Context, id string) (Topic, error) {
	t, err := svc.repo.GetTopic(ctx, id)
	if err != nil {
		return Topic{}, err
	}
	mats, err := svc.repo.QueryMaterialsByTopic(ctx, id)
	if err != nil {
		return Topic{}, err
	}
	t.Materials = mats
	return t, nil
}

func (svc *service) QueryTopics(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Topic, error) {
	return svc.repo.QueryTopics(ctx, filter, ordering)
}

func (svc *service) UpdateTopic(ctx context.Context, id string, ut UpdateTopic) (Topic, error) {
	t, err := svc.repo.GetTopic(ctx, id)
	if err != nil {
		return Topic{}, err
	}
	t.Name = ut.Name
	t.Description = ut.Description
	t.Image = ut.Image
	t.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTopic(ctx, t)
}

func (svc *service) DeleteTopics(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteTopicsByID(ctx, ids...)
	return err
}

func (svc *service) CreateMaterial(ctx context.Context, nm NewMaterial) (Material, error) {
	if _, err := svc.repo.GetTopic(ctx, nm.TopicID); err != nil {
		return Material{}, err
	}
	now := time.Now().UTC()
	m := Material{
		ID:        uuid.New().String(),
		TopicID:   nm.TopicID,
		Title:     nm.Title,
		Content:   nm.Content,
		PageCount: nm.PageCount,
		Position:  nm.Position,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateMaterial(ctx, m)
}

func (svc *service) GetMaterial(ctx context.Context, id string) (Material, error) {
	return svc.repo.GetMaterial(ctx, id)
}

func (svc *service) QueryMaterialsByTopic(ctx context.Context, topicID string) ([]Material, error) {
	return svc.repo.QueryMaterialsByTopic(ctx, topicID)
}

func (svc *service) UpdateMaterial(ctx context.Context, id string, um UpdateMaterial) (Material, error) {
	m, err := svc.repo.GetMaterial(ctx, id)
	if err != nil {
		return Material{}, err
	}
	m.Title = um.Title
	m.Content = um.Content
	m.PageCount = um.PageCount
	if um.Position != nil {
		m.Position = *um.Position
	}
	m.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateMaterial(ctx, m)
}

func (svc *service) DeleteMaterials(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteMaterialsByID(ctx, ids...)
	return err
}
