package store

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/medipoint/medipointbackend/database"
	"github.com/medipoint/medipointbackend/models"
	"github.com/medipoint/medipointbackend/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Mongo keeps one collection per role. All token mutations are single
// $push/$pull/$set updates so revocation needs no in-process locking;
// two concurrent logouts for one identity are last-write-wins.
type Mongo struct{}

func NewMongo() *Mongo {
	return &Mongo{}
}

func (s *Mongo) col(role *models.Role) *mongo.Collection {
	return database.OpenCollection(role.Collection)
}

func idFilter(id string) (bson.M, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return bson.M{"_id": oid}, nil
}

func (s *Mongo) Insert(ctx context.Context, role *models.Role, ident *models.Identity) error {
	if ident.ID.IsZero() {
		ident.ID = bson.NewObjectID()
	}
	now := time.Now().UTC()
	ident.CreatedAt = now
	ident.UpdatedAt = now
	ident.NameKey = utils.NormalizeName(ident.Name)
	if ident.Tokens == nil {
		ident.Tokens = []string{}
	}

	if _, err := s.col(role).InsertOne(ctx, ident); err != nil {
		if utils.IsDuplicateKey(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (s *Mongo) findOne(ctx context.Context, role *models.Role, filter bson.M) (*models.Identity, error) {
	var ident models.Identity
	if err := s.col(role).FindOne(ctx, filter).Decode(&ident); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ident, nil
}

func (s *Mongo) FindByID(ctx context.Context, role *models.Role, id string) (*models.Identity, error) {
	filter, err := idFilter(id)
	if err != nil {
		return nil, err
	}
	return s.findOne(ctx, role, filter)
}

func (s *Mongo) FindByEmail(ctx context.Context, role *models.Role, email string) (*models.Identity, error) {
	return s.findOne(ctx, role, bson.M{"email": email})
}

func (s *Mongo) FindByIDWithToken(ctx context.Context, role *models.Role, id, token string) (*models.Identity, error) {
	filter, err := idFilter(id)
	if err != nil {
		return nil, err
	}
	filter["tokens"] = token
	return s.findOne(ctx, role, filter)
}

func (s *Mongo) FindByResetCode(ctx context.Context, role *models.Role, code string) (*models.Identity, error) {
	return s.findOne(ctx, role, bson.M{"passwordResetToken": code})
}

func (s *Mongo) List(ctx context.Context, role *models.Role, q Query) ([]models.Identity, error) {
	filter := bson.M{}
	if q.Name != "" {
		filter["nameKey"] = utils.NormalizeName(q.Name)
	}
	if q.Specialization != "" {
		filter["specialization"] = bson.M{"$regex": "^" + regexp.QuoteMeta(q.Specialization) + "$", "$options": "i"}
	}
	if q.Status != nil {
		filter["status"] = *q.Status
	}

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	if q.Skip > 0 {
		opts.SetSkip(int64(q.Skip))
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cursor, err := s.col(role).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	idents := []models.Identity{}
	if err := cursor.All(ctx, &idents); err != nil {
		return nil, err
	}
	return idents, nil
}

func (s *Mongo) Update(ctx context.Context, role *models.Role, id string, fields map[string]any) error {
	filter, err := idFilter(id)
	if err != nil {
		return err
	}

	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}
	if name, ok := set["name"].(string); ok {
		set["nameKey"] = utils.NormalizeName(name)
	}
	set["updatedAt"] = time.Now().UTC()

	res, err := s.col(role).UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		if utils.IsDuplicateKey(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Mongo) tokensUpdate(ctx context.Context, role *models.Role, id string, update bson.M) error {
	filter, err := idFilter(id)
	if err != nil {
		return err
	}
	res, err := s.col(role).UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Mongo) AppendToken(ctx context.Context, role *models.Role, id, token string) error {
	return s.tokensUpdate(ctx, role, id, bson.M{
		"$push": bson.M{"tokens": token},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (s *Mongo) RemoveToken(ctx context.Context, role *models.Role, id, token string) error {
	return s.tokensUpdate(ctx, role, id, bson.M{
		"$pull": bson.M{"tokens": token},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (s *Mongo) ClearTokens(ctx context.Context, role *models.Role, id string) error {
	return s.tokensUpdate(ctx, role, id, bson.M{
		"$set": bson.M{"tokens": []string{}, "updatedAt": time.Now().UTC()},
	})
}

func (s *Mongo) Delete(ctx context.Context, role *models.Role, id string) error {
	filter, err := idFilter(id)
	if err != nil {
		return err
	}
	res, err := s.col(role).DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
