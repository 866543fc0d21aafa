package script

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"reel/internal/model/script"
)

// ErrNotFound 文档不存在
var ErrNotFound = errors.New("script not found")

// ListFilter 列表查询条件
type ListFilter struct {
	Status script.Status
	Limit  int64
	Offset int64
}

// ScriptRepository 脚本文档仓库接口
type ScriptRepository interface {
	Create(ctx context.Context, doc *script.Document) error
	FindByID(ctx context.Context, id string) (*script.Document, error)
	Replace(ctx context.Context, doc *script.Document) error
	List(ctx context.Context, filter ListFilter) ([]*script.Document, int64, error)
}

// ScriptRepo 脚本文档仓库实现
type ScriptRepo struct {
	coll *mongo.Collection
}

// NewScriptRepo 创建脚本文档仓库
func NewScriptRepo(db *mongo.Database) *ScriptRepo {
	var d script.Document
	return &ScriptRepo{coll: db.Collection(d.Collection())}
}

// Create 插入新文档
func (r *ScriptRepo) Create(ctx context.Context, doc *script.Document) error {
	now := time.Now()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if doc.Status == "" {
		doc.Status = script.StatusNormalized
	}
	_, err := r.coll.InsertOne(ctx, doc)
	return err
}

// FindByID 根据ID查询
func (r *ScriptRepo) FindByID(ctx context.Context, id string) (*script.Document, error) {
	var doc script.Document
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Replace 整体替换文档，保留创建时间
func (r *ScriptRepo) Replace(ctx context.Context, doc *script.Document) error {
	doc.UpdatedAt = time.Now()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": doc.ID}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// List 按更新时间倒序分页，结果不含章节内容
func (r *ScriptRepo) List(ctx context.Context, filter ListFilter) ([]*script.Document, int64, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetProjection(bson.M{"sections": 0}).
		SetSkip(filter.Offset)
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	docs := make([]*script.Document, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}
