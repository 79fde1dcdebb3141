package repository

import (
	"context"
	"time"

	"github.com/parlor-chat/parlor/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoMessageRepo struct {
	col *mongo.Collection
}

func NewMongoMessageRepo(db *mongo.Database) MessageRepository {
	col := db.Collection("messages")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "channel_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return &mongoMessageRepo{col: col}
}

func normalize(m *models.Message) *models.Message {
	if m.Reactions == nil {
		m.Reactions = map[string][]string{}
	}
	return m
}

func (r *mongoMessageRepo) Create(ctx context.Context, m *models.Message) error {
	if m.Reactions == nil {
		m.Reactions = map[string][]string{}
	}
	_, err := r.col.InsertOne(ctx, m)
	if isDuplicateKey(err) {
		return ErrDuplicate
	}
	return err
}

func (r *mongoMessageRepo) FindByID(ctx context.Context, id string) (*models.Message, error) {
	var m models.Message
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return normalize(&m), nil
}

func (r *mongoMessageRepo) ListByChannel(ctx context.Context, channelID string, limit int64, before time.Time) ([]*models.Message, error) {
	filter := bson.M{"channel_id": channelID}
	if !before.IsZero() {
		filter["created_at"] = bson.M{"$lt": before}
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []*models.Message{}
	for cur.Next(ctx) {
		var m models.Message
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, normalize(&m))
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	// stored newest-first for the index; callers want chronological order
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (r *mongoMessageRepo) UpdateContent(ctx context.Context, id, content string, now time.Time) (*models.Message, error) {
	res := r.col.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"content": content, "edited": true, "updated_at": now}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var m models.Message
	if err := res.Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return normalize(&m), nil
}

func (r *mongoMessageRepo) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoMessageRepo) DeleteByChannel(ctx context.Context, channelID string) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"channel_id": channelID})
	return err
}

func (r *mongoMessageRepo) AddReaction(ctx context.Context, id, emoji, userID string) (*models.Message, error) {
	return r.reactionUpdate(ctx, id, bson.M{
		"$addToSet": bson.M{"reactions." + emoji: userID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
}

func (r *mongoMessageRepo) RemoveReaction(ctx context.Context, id, emoji, userID string) (*models.Message, error) {
	return r.reactionUpdate(ctx, id, bson.M{
		"$pull": bson.M{"reactions." + emoji: userID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

func (r *mongoMessageRepo) reactionUpdate(ctx context.Context, id string, update bson.M) (*models.Message, error) {
	res := r.col.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var m models.Message
	if err := res.Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return normalize(&m), nil
}
