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

// RideRepository is a MongoDB implementation of repository.RideRepository.
type RideRepository struct {
	col *mongo.Collection
}

// Ensure RideRepository implements the interface.
var _ repository.RideRepository = (*RideRepository)(nil)

// NewRideRepository creates a new MongoDB ride repository.
func NewRideRepository(db *mongo.Database) *RideRepository {
	return &RideRepository{col: db.Collection(ridesCollection)}
}

// rideDoc is the stored shape of a ride.
type rideDoc struct {
	ID        string    `bson:"_id"`
	RiderID   string    `bson:"rider_id"`
	DriverID  string    `bson:"driver_id,omitempty"`
	Route     string    `bson:"route"`
	Fare      float64   `bson:"fare"`
	TimeOfDay string    `bson:"time_of_day"`
	Status    string    `bson:"status"`
	CreatedAt time.Time `bson:"created_at"`
}

func toRideDoc(ride *domain.Ride) rideDoc {
	return rideDoc{
		ID:        ride.ID,
		RiderID:   ride.RiderID,
		DriverID:  ride.DriverID,
		Route:     ride.Route,
		Fare:      ride.Fare,
		TimeOfDay: ride.TimeOfDay,
		Status:    string(ride.Status),
		CreatedAt: ride.CreatedAt,
	}
}

func (d rideDoc) toDomain() *domain.Ride {
	return &domain.Ride{
		ID:        d.ID,
		RiderID:   d.RiderID,
		DriverID:  d.DriverID,
		Route:     d.Route,
		Fare:      d.Fare,
		TimeOfDay: d.TimeOfDay,
		Status:    domain.RideStatus(d.Status),
		CreatedAt: d.CreatedAt,
	}
}

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	_, err := r.col.InsertOne(ctx, toRideDoc(ride))
	return err
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	var doc rideDoc
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// ListByStatus retrieves all rides with the given status, insertion order.
func (r *RideRepository) ListByStatus(ctx context.Context, status domain.RideStatus) ([]*domain.Ride, error) {
	return r.list(ctx, bson.M{"status": string(status)})
}

// ListByRider retrieves all rides requested by the given user.
func (r *RideRepository) ListByRider(ctx context.Context, riderID string) ([]*domain.Ride, error) {
	return r.list(ctx, bson.M{"rider_id": riderID})
}

// ListByDriver retrieves all rides accepted by the given driver.
func (r *RideRepository) ListByDriver(ctx context.Context, driverID string) ([]*domain.Ride, error) {
	return r.list(ctx, bson.M{"driver_id": driverID})
}

func (r *RideRepository) list(ctx context.Context, filter bson.M) ([]*domain.Ride, error) {
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rides []*domain.Ride
	for cur.Next(ctx) {
		var doc rideDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		rides = append(rides, doc.toDomain())
	}
	return rides, cur.Err()
}

// AcceptIfRequested conditionally moves the ride to accepted. The filter
// matches only while the status is still "requested", so exactly one of
// any number of concurrent acceptors wins.
func (r *RideRepository) AcceptIfRequested(ctx context.Context, id, driverID string) error {
	filter := bson.M{
		"_id":    id,
		"status": string(domain.RideStatusRequested),
	}
	update := bson.M{
		"$set": bson.M{
			"status":    string(domain.RideStatusAccepted),
			"driver_id": driverID,
		},
	}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotMatched
	}
	return nil
}

// UpdateStatus blindly overwrites the ride's status.
func (r *RideRepository) UpdateStatus(ctx context.Context, id string, status domain.RideStatus) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": string(status)}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
