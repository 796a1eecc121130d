package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"chainride/internal/domain"
	"chainride/internal/repository"
)

// UserRepository is a MongoDB implementation of repository.UserRepository.
type UserRepository struct {
	col *mongo.Collection
}

// Ensure UserRepository implements the interface.
var _ repository.UserRepository = (*UserRepository)(nil)

// NewUserRepository creates a new MongoDB user repository.
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(usersCollection)}
}

// userDoc is the stored shape of a user.
type userDoc struct {
	ID              string    `bson:"_id"`
	Username        string    `bson:"username"`
	Email           string    `bson:"email"`
	Contact         string    `bson:"contact"`
	CurrentLocation string    `bson:"current_location"`
	ImageURL        string    `bson:"image_url,omitempty"`
	Role            string    `bson:"role"`
	LedgerAddress   string    `bson:"ledger_address"`
	CreatedAt       time.Time `bson:"created_at"`
}

func toUserDoc(user *domain.User) userDoc {
	return userDoc{
		ID:              user.ID,
		Username:        user.Username,
		Email:           user.Email,
		Contact:         user.Contact,
		CurrentLocation: user.CurrentLocation,
		ImageURL:        user.ImageURL,
		Role:            string(user.Role),
		LedgerAddress:   user.LedgerAddress,
		CreatedAt:       user.CreatedAt,
	}
}

func (d userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:              d.ID,
		Username:        d.Username,
		Email:           d.Email,
		Contact:         d.Contact,
		CurrentLocation: d.CurrentLocation,
		ImageURL:        d.ImageURL,
		Role:            domain.UserRole(d.Role),
		LedgerAddress:   d.LedgerAddress,
		CreatedAt:       d.CreatedAt,
	}
}

// Create persists a new user.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.col.InsertOne(ctx, toUserDoc(user))
	return err
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByEmail retrieves a user by email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc userDoc
	err := r.col.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}
