package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campus-chat/chat-service/internal/core/domain"
)

const collectionUsers = "users"

// upsertAttempts bounds retries of a login upsert that lost a race on the
// unique userId index.
const upsertAttempts = 2

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

type userDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"userId"`
	Name      string             `bson:"name"`
	UserType  string             `bson:"userType"`
	Email     string             `bson:"email,omitempty"`
	LastSeen  time.Time          `bson:"lastSeen"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d *userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:        d.UserID,
		Name:      d.Name,
		Role:      domain.Role(d.UserType),
		Email:     d.Email,
		LastSeen:  d.LastSeen.UTC(),
		CreatedAt: d.CreatedAt.UTC(),
	}
}

// UpsertLogin creates or refreshes a user in one findAndModify driven by an
// update pipeline. lastSeen becomes max(u.LastSeen, stored lastSeen + 1ms)
// inside the server, so concurrent logins for one user always get distinct,
// increasing values and a delayed request never moves it backwards.
func (r *UserRepository) UpsertLogin(ctx context.Context, u *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := loginPipeline(u)
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var (
		doc userDocument
		err error
	)
	for attempt := 0; attempt < upsertAttempts; attempt++ {
		err = r.col.FindOneAndUpdate(ctx, bson.M{"userId": u.ID}, update, opts).Decode(&doc)
		if err == nil || !mongo.IsDuplicateKeyError(err) {
			break
		}
	}
	if err != nil {
		return nil, classify("upsert user", err)
	}
	return doc.toDomain(), nil
}

// loginPipeline builds the single $set stage of a login upsert. Profile
// fields keep their stored value unless u carries a new one.
func loginPipeline(u *domain.User) mongo.Pipeline {
	keep := func(field, value string) interface{} {
		if value == "" {
			return "$" + field
		}
		return bson.M{"$literal": value}
	}
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "userId", Value: u.ID},
			{Key: "name", Value: keep("name", u.Name)},
			{Key: "userType", Value: keep("userType", string(u.Role))},
			{Key: "email", Value: keep("email", u.Email)},
			{Key: "lastSeen", Value: bson.M{"$max": bson.A{
				u.LastSeen,
				bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$lastSeen", time.Unix(0, 0).UTC()}}, 1}},
			}}},
			{Key: "createdAt", Value: bson.M{"$ifNull": bson.A{"$createdAt", u.CreatedAt}}},
		}}},
	}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDocument
	if err := r.col.FindOne(ctx, bson.M{"userId": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, classify("find user", err)
	}
	return doc.toDomain(), nil
}

// ListByRole returns users with the given role ordered by name ascending.
func (r *UserRepository) ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"userType": string(role)}, opts)
	if err != nil {
		return nil, classify("list users", err)
	}
	defer cur.Close(ctx)

	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, classify("decode users", err)
	}
	users := make([]*domain.User, 0, len(docs))
	for i := range docs {
		users = append(users, docs[i].toDomain())
	}
	return users, nil
}

// FindFirstByRole returns the earliest inserted user with the role.
func (r *UserRepository) FindFirstByRole(ctx context.Context, role domain.Role) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})
	var doc userDocument
	if err := r.col.FindOne(ctx, bson.M{"userType": string(role)}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, classify("find user by role", err)
	}
	return doc.toDomain(), nil
}

// EnsureIndexes creates the unique userId index and the role listing index.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userType", Value: 1}, {Key: "name", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
