package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/hatchlog/internal/domain/models"
	"github.com/mamadbah2/hatchlog/internal/repository/store"
)

// MongoDBRepository implements store.Store on top of a MongoDB database.
type MongoDBRepository struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger

	incubations     *collection[models.Incubation]
	medications     *collection[models.Medication]
	feedings        *collection[models.Feeding]
	users           *collection[models.User]
	devices         *collection[models.Device]
	activityLogs    *collection[models.ActivityLog]
	activationCodes *collection[models.ActivationCode]
}

var _ store.Store = (*MongoDBRepository)(nil)

// NewMongoDBRepository connects to uri and binds every record collection of dbName.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(dbName)
	return &MongoDBRepository{
		client:          client,
		db:              db,
		logger:          logger,
		incubations:     newCollection[models.Incubation](db, store.KindIncubations, logger),
		medications:     newCollection[models.Medication](db, store.KindMedications, logger),
		feedings:        newCollection[models.Feeding](db, store.KindFeedings, logger),
		users:           newCollection[models.User](db, store.KindUsers, logger),
		devices:         newCollection[models.Device](db, store.KindDevices, logger),
		activityLogs:    newCollection[models.ActivityLog](db, store.KindActivityLogs, logger),
		activationCodes: newCollection[models.ActivationCode](db, store.KindActivationCodes, logger),
	}, nil
}

func (r *MongoDBRepository) Incubations() store.Collection[models.Incubation] { return r.incubations }
func (r *MongoDBRepository) Medications() store.Collection[models.Medication] { return r.medications }
func (r *MongoDBRepository) Feedings() store.Collection[models.Feeding]       { return r.feedings }
func (r *MongoDBRepository) Users() store.Collection[models.User]             { return r.users }
func (r *MongoDBRepository) Devices() store.Collection[models.Device]         { return r.devices }

func (r *MongoDBRepository) ActivityLogs() store.Collection[models.ActivityLog] {
	return r.activityLogs
}

func (r *MongoDBRepository) ActivationCodes() store.Collection[models.ActivationCode] {
	return r.activationCodes
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
