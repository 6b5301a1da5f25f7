package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/belajarku/backend/core"
	"github.com/belajarku/backend/core/topic"
)

type topicRepository struct {
	db *topicTable
}

var _ topic.Repository = (*topicRepository)(nil) // interface compliance check

func NewTopicRepository(db *DB) topic.Repository {
	return &topicRepository{db: db.topic}
}

func (repo *topicRepository) CreateTopic(ctx context.Context, t topic.Topic) (topic.Topic, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.topics[t.ID] = &t
	return t, nil
}

func (repo *topicRepository) GetTopic(ctx context.Context, id string) (topic.Topic, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if t, ok := repo.db.topics[id]; ok {
		return *t, nil
	}
	return topic.Topic{}, topic.ErrTopicNotFound
}

func (repo *topicRepository) QueryTopics(ctx context.Context, filter *topic.QueryFilter, ordering []core.DBOrdering) ([]topic.Topic, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	topics := make([]topic.Topic, 0, len(repo.db.topics))
	for _, t := range repo.db.topics {
		topics = append(topics, *t)
	}
	if filter != nil && filter.Search != "" {
		search := strings.ToLower(filter.Search)
		var filtered []topic.Topic
		for _, t := range topics {
			if strings.Contains(strings.ToLower(t.Name), search) ||
				strings.Contains(strings.ToLower(t.Description), search) {
				filtered = append(filtered, t)
			}
		}
		topics = filtered
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].Name < topics[j].Name })
	return topics, nil
}

func (repo *topicRepository) UpdateTopic(ctx context.Context, t topic.Topic) (topic.Topic, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.topics[t.ID]
	if !ok {
		return topic.Topic{}, topic.ErrTopicNotFound
	}
	*orig = t
	return *orig, nil
}

func (repo *topicRepository) DeleteTopicsByID(ctx context.Context, ids ...string) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.topics[id]; ok {
			delete(repo.db.topics, id)
			n++
		}
	}
	return n, nil
}

func (repo *topicRepository) CreateMaterial(ctx context.Context, m topic.Material) (topic.Material, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.materials[m.ID] = &m
	return m, nil
}

func (repo *topicRepository) GetMaterial(ctx context.Context, id string) (topic.Material, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if m, ok := repo.db.materials[id]; ok {
		return *m, nil
	}
	return topic.Material{}, topic.ErrMaterialNotFound
}

func (repo *topicRepository) QueryMaterialsByTopic(ctx context.Context, topicID string) ([]topic.Material, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var mats []topic.Material
	for _, m := range repo.db.materials {
		if m.TopicID == topicID {
			mats = append(mats, *m)
		}
	}
	sort.Slice(mats, func(i, j int) bool { return mats[i].Position < mats[j].Position })
	return mats, nil
}

func (repo *topicRepository) UpdateMaterial(ctx context.Context, m topic.Material) (topic.Material, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.materials[m.ID]
	if !ok {
		return topic.Material{}, topic.ErrMaterialNotFound
	}
	*orig = m
	return *orig, nil
}

func (repo *topicRepository) DeleteMaterialsByID(ctx context.Context, ids ...string) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.materials[id]; ok {
			delete(repo.db.materials, id)
			n++
		}
	}
	return n, nil
}
