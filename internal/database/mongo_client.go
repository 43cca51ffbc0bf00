package database

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/locvowork/asset_management/internal/domain"
	"github.com/locvowork/asset_management/internal/logger"
)

const employeesCollection = "employees"

// MongoClient holds a connected client and the database the repositories use.
type MongoClient struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoClient connects to uri and verifies the connection with a ping.
func NewMongoClient(ctx context.Context, uri, database string) (*MongoClient, error) {
	clientOptions := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(20 * time.Second).
		SetServerSelectionTimeout(15 * time.Second).
		SetMaxPoolSize(50)

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to create MongoDB client: %w", err)
	}

	pingCtx, cancelPing := context.WithTimeout(ctx, 10*time.Second)
	defer cancelPing()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.InfoLog(ctx, "Connected to MongoDB database %s", database)
	return &MongoClient{client: client, db: client.Database(database)}, nil
}

// Disconnect closes the client, logging rather than failing on error.
func (m *MongoClient) Disconnect(ctx context.Context) {
	if m == nil || m.client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := m.client.Disconnect(ctx); err != nil {
		logger.WarnLog(ctx, "MongoDB disconnect warning", err)
	}
}

// Assets returns the AssetRepository view of the database.
func (m *MongoClient) Assets() *MongoAssetRepository {
	return &MongoAssetRepository{db: m.db}
}

// Employees returns the EmployeeRepository view of the database.
func (m *MongoClient) Employees() *MongoEmployeeRepository {
	return &MongoEmployeeRepository{coll: m.db.Collection(employeesCollection)}
}

// MongoAssetRepository keeps one collection per asset kind.
type MongoAssetRepository struct {
	db *mongo.Database
}

func (r *MongoAssetRepository) collection(kind domain.AssetKind) (*mongo.Collection, error) {
	if !kind.Valid() {
		return nil, domain.InvalidKind(string(kind))
	}
	return r.db.Collection(kind.Table()), nil
}

// ownerFilter matches the asset only while it is owned by expectedOwner.
// Unowned documents have no assignedTo field or a null one.
func ownerFilter(id, expectedOwner string) bson.M {
	if expectedOwner == "" {
		return bson.M{"_id": id, "assignedTo": bson.M{"$in": bson.A{nil, ""}}}
	}
	return bson.M{"_id": id, "assignedTo": expectedOwner}
}

// patchUpdate renders an AssetPatch as a $set/$unset document.
func patchUpdate(patch domain.AssetPatch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	update := bson.M{}
	if patch.AssignedTo != nil {
		if *patch.AssignedTo == "" {
			update["$unset"] = bson.M{"assignedTo": ""}
		} else {
			set["assignedTo"] = *patch.AssignedTo
		}
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.AssignmentStatus != nil {
		set["assignmentStatus"] = *patch.AssignmentStatus
	}
	update["$set"] = set
	return update
}

func assetCountFilter(filter domain.AssetFilter) bson.M {
	f := bson.M{}
	if filter.AssignedTo != "" {
		f["assignedTo"] = filter.AssignedTo
	}
	if filter.InstalledIn != "" {
		f["installedIn"] = filter.InstalledIn
	}
	return f
}

func (r *MongoAssetRepository) FindByID(ctx context.Context, kind domain.AssetKind, id string) (*domain.Asset, error) {
	coll, err := r.collection(kind)
	if err != nil {
		return nil, err
	}
	var a domain.Asset
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errors.Wrapf(domain.ErrNoSuchDocument, "%s %s", kind, id)
		}
		return nil, err
	}
	a.Kind = kind
	return &a, nil
}

func (r *MongoAssetRepository) FindAllByKind(ctx context.Context, kind domain.AssetKind) ([]domain.Asset, error) {
	coll, err := r.collection(kind)
	if err != nil {
		return nil, err
	}
	cursor, err := coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var assets []domain.Asset
	if err := cursor.All(ctx, &assets); err != nil {
		return nil, err
	}
	for i := range assets {
		assets[i].Kind = kind
	}
	return assets, nil
}

func (r *MongoAssetRepository) CountByFilter(ctx context.Context, kind domain.AssetKind, filter domain.AssetFilter) (int64, error) {
	coll, err := r.collection(kind)
	if err != nil {
		return 0, err
	}
	return coll.CountDocuments(ctx, assetCountFilter(filter))
}

// UpdateConditional is a single FindOneAndUpdate whose filter carries the
// owner guard. A miss is resolved into not-found or precondition-failed
// with a follow-up read.
func (r *MongoAssetRepository) UpdateConditional(ctx context.Context, kind domain.AssetKind, id, expectedOwner string, patch domain.AssetPatch) (*domain.Asset, error) {
	coll, err := r.collection(kind)
	if err != nil {
		return nil, err
	}

	var a domain.Asset
	err = coll.FindOneAndUpdate(ctx,
		ownerFilter(id, expectedOwner),
		patchUpdate(patch, time.Now()),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&a)
	if err == nil {
		a.Kind = kind
		return &a, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	n, err := coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, errors.Wrapf(domain.ErrNoSuchDocument, "%s %s", kind, id)
	}
	return nil, errors.Wrapf(domain.ErrPreconditionFailed, "%s %s", kind, id)
}

func (r *MongoAssetRepository) Save(ctx context.Context, a *domain.Asset) error {
	coll, err := r.collection(a.Kind)
	if err != nil {
		return err
	}
	a.UpdatedAt = time.Now()
	_, err = coll.ReplaceOne(ctx, bson.M{"_id": a.ID}, a, options.Replace().SetUpsert(true))
	return err
}

func (r *MongoAssetRepository) Delete(ctx context.Context, kind domain.AssetKind, id string) error {
	coll, err := r.collection(kind)
	if err != nil {
		return err
	}
	_, err = coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// MongoEmployeeRepository stores employees in a single collection.
type MongoEmployeeRepository struct {
	coll *mongo.Collection
}

func employeeCountFilter(filter domain.EmployeeFilter) bson.M {
	f := bson.M{}
	if filter.Manager != "" {
		f["manager"] = filter.Manager
	}
	if filter.Email != "" {
		f["email"] = filter.Email
	}
	if filter.EmployeeID != "" {
		f["employeeId"] = filter.EmployeeID
	}
	return f
}

func (r *MongoEmployeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	var e domain.Employee
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errors.Wrapf(domain.ErrNoSuchDocument, "employee %s", id)
		}
		return nil, err
	}
	return &e, nil
}

func (r *MongoEmployeeRepository) List(ctx context.Context) ([]domain.Employee, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var employees []domain.Employee
	if err := cursor.All(ctx, &employees); err != nil {
		return nil, err
	}
	return employees, nil
}

func (r *MongoEmployeeRepository) CountByFilter(ctx context.Context, filter domain.EmployeeFilter) (int64, error) {
	return r.coll.CountDocuments(ctx, employeeCountFilter(filter))
}

func (r *MongoEmployeeRepository) Save(ctx context.Context, e *domain.Employee) error {
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": e.ID}, e, options.Replace().SetUpsert(true))
	return err
}

func (r *MongoEmployeeRepository) Delete(ctx context.Context, id string) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
