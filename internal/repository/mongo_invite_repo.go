package repository

import (
	"context"
	"time"

	"github.com/parlor-chat/parlor/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoInviteRepo struct {
	col *mongo.Collection
}

func NewMongoInviteRepo(db *mongo.Database) InviteRepository {
	col := db.Collection("admin_invites")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "token", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return &mongoInviteRepo{col: col}
}

func (r *mongoInviteRepo) Create(ctx context.Context, inv *models.AdminInvite) error {
	inv.CreatedAt = time.Now().UTC()
	_, err := r.col.InsertOne(ctx, inv)
	if isDuplicateKey(err) {
		return ErrDuplicate
	}
	return err
}

func (r *mongoInviteRepo) FindByToken(ctx context.Context, token string) (*models.AdminInvite, error) {
	var inv models.AdminInvite
	err := r.col.FindOne(ctx, bson.M{"token": token}).Decode(&inv)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *mongoInviteRepo) Consume(ctx context.Context, token string, now time.Time) (*models.AdminInvite, error) {
	res := r.col.FindOneAndUpdate(
		ctx,
		bson.M{"token": token, "used": false, "expires_at": bson.M{"$gt": now}},
		bson.M{"$set": bson.M{"used": true, "used_at": now}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var inv models.AdminInvite
	if err := res.Decode(&inv); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}
