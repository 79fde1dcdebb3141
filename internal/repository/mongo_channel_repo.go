package repository

import (
	"context"
	"time"

	"github.com/parlor-chat/parlor/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoChannelRepo struct {
	col *mongo.Collection
}

func NewMongoChannelRepo(db *mongo.Database) ChannelRepository {
	col := db.Collection("channels")
	// direct_key is the unordered participant pair; the unique sparse
	// index collapses concurrent creates onto one document. Group names
	// are unique under a case-insensitive collation, so concurrent
	// creates of "Team" and "team" also collapse.
	_, _ = col.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "direct_key", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{
			Keys: bson.D{{Key: "name", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetCollation(&options.Collation{Locale: "en", Strength: 2}).
				SetPartialFilterExpression(bson.M{"kind": models.ChannelGroup}),
		},
		{Keys: bson.D{{Key: "participants", Value: 1}}},
	})
	return &mongoChannelRepo{col: col}
}

func (r *mongoChannelRepo) Create(ctx context.Context, c *models.Channel) error {
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	if c.Nicknames == nil {
		c.Nicknames = map[string]string{}
	}
	_, err := r.col.InsertOne(ctx, c)
	if isDuplicateKey(err) {
		return ErrDuplicate
	}
	return err
}

func (r *mongoChannelRepo) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*models.Channel, error) {
	var c models.Channel
	err := r.col.FindOne(ctx, filter, opts...).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if c.Nicknames == nil {
		c.Nicknames = map[string]string{}
	}
	return &c, nil
}

func (r *mongoChannelRepo) FindByID(ctx context.Context, id string) (*models.Channel, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoChannelRepo) FindByName(ctx context.Context, name string) (*models.Channel, error) {
	// case-insensitive: "Team" and "team" are the same group channel
	opts := options.FindOne().SetCollation(&options.Collation{Locale: "en", Strength: 2})
	return r.findOne(ctx, bson.M{"name": name, "kind": models.ChannelGroup}, opts)
}

func (r *mongoChannelRepo) FindDirect(ctx context.Context, directKey string) (*models.Channel, error) {
	return r.findOne(ctx, bson.M{"direct_key": directKey})
}

func (r *mongoChannelRepo) ListForUser(ctx context.Context, userID string) ([]*models.Channel, error) {
	filter := bson.M{"$or": []bson.M{
		{"participants": userID},
		{"is_private": false, "kind": models.ChannelGroup},
	}}
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []*models.Channel{}
	for cur.Next(ctx) {
		var c models.Channel
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		if c.Nicknames == nil {
			c.Nicknames = map[string]string{}
		}
		out = append(out, &c)
	}
	return out, cur.Err()
}

func (r *mongoChannelRepo) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoChannelRepo) update(ctx context.Context, channelID string, update bson.M) error {
	res, err := r.col.UpdateByID(ctx, channelID, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoChannelRepo) AddParticipant(ctx context.Context, channelID, userID string) error {
	return r.update(ctx, channelID, bson.M{
		"$addToSet": bson.M{"participants": userID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
}

func (r *mongoChannelRepo) RemoveParticipant(ctx context.Context, channelID, userID string) error {
	return r.update(ctx, channelID, bson.M{
		"$pull":  bson.M{"participants": userID},
		"$unset": bson.M{"nicknames." + userID: ""},
		"$set":   bson.M{"updated_at": time.Now().UTC()},
	})
}

func (r *mongoChannelRepo) SetNickname(ctx context.Context, channelID, userID, nickname string) error {
	return r.update(ctx, channelID, bson.M{
		"$set": bson.M{"nicknames." + userID: nickname, "updated_at": time.Now().UTC()},
	})
}

func (r *mongoChannelRepo) ClearNickname(ctx context.Context, channelID, userID string) error {
	return r.update(ctx, channelID, bson.M{
		"$unset": bson.M{"nicknames." + userID: ""},
		"$set":   bson.M{"updated_at": time.Now().UTC()},
	})
}
