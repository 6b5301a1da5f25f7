package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/belajarku/backend/core"
	"github.com/belajarku/backend/core/topic"
)

type topicRepository struct {
	db *sqlx.DB
}

var _ topic.Repository = (*topicRepository)(nil) // interface compliance check

func NewTopicRepository(db *sqlx.DB) topic.Repository {
	return &topicRepository{db: db}
}

const (
	topicColumns    = "topic_id, nama, deskripsi, gambar, created_at, updated_at"
	materialColumns = "material_id, topic_id, judul, konten, page_count, position, created_at, updated_at"
)

func (repo *topicRepository) CreateTopic(ctx context.Context, t topic.Topic) (topic.Topic, error) {
	const q = `
	INSERT INTO topics (` + topicColumns + `)
	VALUES (:topic_id, :nama, :deskripsi, :gambar, :created_at, :updated_at)`

	if _, err := repo.db.NamedExecContext(ctx, q, t); err != nil {
		return topic.Topic{}, errors.Wrap(err, "inserting topic")
	}
	return t, nil
}

func (repo *topicRepository) GetTopic(ctx context.Context, id string) (topic.Topic, error) {
	var t topic.Topic
	err := repo.db.GetContext(ctx, &t, "SELECT "+topicColumns+" FROM topics WHERE topic_id = $1", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return topic.Topic{}, topic.ErrTopicNotFound
		}
		return topic.Topic{}, errors.Wrap(err, "getting topic")
	}
	return t, nil
}

func (repo *topicRepository) QueryTopics(ctx context.Context, filter *topic.QueryFilter, ordering []core.DBOrdering) ([]topic.Topic, error) {
	q := "SELECT " + topicColumns + " FROM topics"
	var args []interface{}
	if filter != nil && filter.Search != "" {
		q += " WHERE (nama ILIKE $1 OR deskripsi ILIKE $1)"
		args = append(args, "%"+filter.Search+"%")
	}
	q += orderBy(ordering, "nama ASC")

	topics := make([]topic.Topic, 0)
	if err := repo.db.SelectContext(ctx, &topics, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying topics")
	}
	return topics, nil
}

func (repo *topicRepository) UpdateTopic(ctx context.Context, t topic.Topic) (topic.Topic, error) {
	const q = `
	UPDATE topics
	SET nama = :nama, deskripsi = :deskripsi, gambar = :gambar, updated_at = :updated_at
	WHERE topic_id = :topic_id`

	res, err := repo.db.NamedExecContext(ctx, q, t)
	if err != nil {
		return topic.Topic{}, errors.Wrap(err, "updating topic")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return topic.Topic{}, topic.ErrTopicNotFound
	}
	return t, nil
}

func (repo *topicRepository) DeleteTopicsByID(ctx context.Context, ids ...string) (int, error) {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM topics WHERE topic_id = ANY($1)", pq.Array(ids))
	if err != nil {
		return 0, errors.Wrap(err, "deleting topics")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting topics")
	}
	return int(n), nil
}

func (repo *topicRepository) CreateMaterial(ctx context.Context, m topic.Material) (topic.Material, error) {
	const q = `
	INSERT INTO materials (` + materialColumns + `)
	VALUES (:material_id, :topic_id, :judul, :konten, :page_count, :position, :created_at, :updated_at)`

	if _, err := repo.db.NamedExecContext(ctx, q, m); err != nil {
		return topic.Material{}, errors.Wrap(err, "inserting material")
	}
	return m, nil
}

func (repo *topicRepository) GetMaterial(ctx context.Context, id string) (topic.Material, error) {
	var m topic.Material
	err := repo.db.GetContext(ctx, &m, "SELECT "+materialColumns+" FROM materials WHERE material_id = $1", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return topic.Material{}, topic.ErrMaterialNotFound
		}
		return topic.Material{}, errors.Wrap(err, "getting material")
	}
	return m, nil
}

func (repo *topicRepository) QueryMaterialsByTopic(ctx context.Context, topicID string) ([]topic.Material, error) {
	mats := make([]topic.Material, 0)
	q := "SELECT " + materialColumns + " FROM materials WHERE topic_id = $1 ORDER BY position ASC"
	if err := repo.db.SelectContext(ctx, &mats, q, topicID); err != nil {
		return nil, errors.Wrap(err, "querying materials")
	}
	return mats, nil
}

func (repo *topicRepository) UpdateMaterial(ctx context.Context, m topic.Material) (topic.Material, error) {
	const q = `
	UPDATE materials
	SET judul = :judul, konten = :konten, page_count = :page_count, position = :position, updated_at = :updated_at
	WHERE material_id = :material_id`

	res, err := repo.db.NamedExecContext(ctx, q, m)
	if err != nil {
		return topic.Material{}, errors.Wrap(err, "updating material")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return topic.Material{}, topic.ErrMaterialNotFound
	}
	return m, nil
}

func (repo *topicRepository) DeleteMaterialsByID(ctx context.Context, ids ...string) (int, error) {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM materials WHERE material_id = ANY($1)", pq.Array(ids))
	if err != nil {
		return 0, errors.Wrap(err, "deleting materials")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting materials")
	}
	return int(n), nil
}
