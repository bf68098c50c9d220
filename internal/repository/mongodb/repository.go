package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/dairycoop/internal/domain/calendar"
	"github.com/mamadbah2/dairycoop/internal/domain/models"
	"github.com/mamadbah2/dairycoop/internal/repository"
)

// snapshotID keys the single inventory document.
const snapshotID = "current"

// MongoDBRepository implements repository.Store on MongoDB. External identifiers are stored
// as _id so the server enforces their uniqueness.
type MongoDBRepository struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ repository.Store = (*MongoDBRepository)(nil)

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	r := &MongoDBRepository{
		client: client,
		db:     client.Database(dbName),
	}
	if err := r.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *MongoDBRepository) ensureIndexes(ctx context.Context) error {
	byDate := mongo.IndexModel{Keys: bson.D{{Key: "date", Value: 1}}}
	indexes := map[repository.Collection][]mongo.IndexModel{
		repository.Cows:       {{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "is_active", Value: 1}}}},
		repository.MilkIn:     {byDate, {Keys: bson.D{{Key: "cow_id", Value: 1}, {Key: "date", Value: 1}}}},
		repository.MilkOut:    {byDate},
		repository.MilkSpoilt: {byDate},
	}
	for coll, idx := range indexes {
		if _, err := r.coll(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

func (r *MongoDBRepository) coll(c repository.Collection) *mongo.Collection {
	return r.db.Collection(string(c))
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// ListIDs returns every _id stored in a collection.
func (r *MongoDBRepository) ListIDs(ctx context.Context, collection repository.Collection) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1}).SetSort(bson.M{"_id": 1})
	cursor, err := r.coll(collection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list ids in %s: %w", collection, err)
	}
	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode ids in %s: %w", collection, err)
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

// NextSequence advances the counter document of the collection in one pipeline update, so
// concurrent callers always receive distinct values. The counter never drops below floor.
func (r *MongoDBRepository) NextSequence(ctx context.Context, collection repository.Collection, floor int) (int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "seq", Value: bson.M{"$add": bson.A{bson.M{"$max": bson.A{bson.M{"$ifNull": bson.A{"$seq", 0}}, floor}}, 1}}},
		}}},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var counter struct {
		Seq int `bson:"seq"`
	}
	err := r.coll(repository.Counters).FindOneAndUpdate(ctx, bson.M{"_id": string(collection)}, pipeline, opts).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to advance %s sequence: %w", collection, err)
	}
	return counter.Seq, nil
}

// =============================================================================
// COWS
// =============================================================================

func (r *MongoDBRepository) InsertCow(ctx context.Context, cow models.Cow) error {
	return r.insert(ctx, repository.Cows, cow)
}

func (r *MongoDBRepository) GetCow(ctx context.Context, cowID string) (*models.Cow, error) {
	var cow models.Cow
	if err := r.findByID(ctx, repository.Cows, cowID, "cow", &cow); err != nil {
		return nil, err
	}
	return &cow, nil
}

func (r *MongoDBRepository) ListCows(ctx context.Context, filter repository.CowFilter) ([]models.Cow, error) {
	query := bson.M{}
	if filter.OwnerID != "" {
		query["owner_id"] = filter.OwnerID
	}
	if filter.ActiveOnly {
		query["is_active"] = true
	}
	var cows []models.Cow
	if err := r.findAll(ctx, repository.Cows, query, bson.D{{Key: "_id", Value: 1}}, &cows); err != nil {
		return nil, err
	}
	return cows, nil
}

func (r *MongoDBRepository) UpdateCow(ctx context.Context, cow models.Cow) error {
	return r.replace(ctx, repository.Cows, cow.CowID, "cow", cow)
}

func (r *MongoDBRepository) ArchiveCowsByOwner(ctx context.Context, ownerID, reason string, at time.Time) (int, error) {
	res, err := r.coll(repository.Cows).UpdateMany(ctx,
		bson.M{"owner_id": ownerID, "is_active": true},
		bson.M{"$set": bson.M{"is_active": false, "archive_reason": reason, "archive_date": at}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to archive cows of %s: %w", ownerID, err)
	}
	return int(res.ModifiedCount), nil
}

// =============================================================================
// MEMBERS & CUSTOMERS
// =============================================================================

func (r *MongoDBRepository) InsertMember(ctx context.Context, member models.Member) error {
	return r.insert(ctx, repository.Members, member)
}

func (r *MongoDBRepository) GetMember(ctx context.Context, memberID string) (*models.Member, error) {
	var member models.Member
	if err := r.findByID(ctx, repository.Members, memberID, "member", &member); err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *MongoDBRepository) ListMembers(ctx context.Context, activeOnly bool) ([]models.Member, error) {
	query := bson.M{}
	if activeOnly {
		query["is_active"] = true
	}
	var members []models.Member
	if err := r.findAll(ctx, repository.Members, query, bson.D{{Key: "_id", Value: 1}}, &members); err != nil {
		return nil, err
	}
	return members, nil
}

func (r *MongoDBRepository) UpdateMember(ctx context.Context, member models.Member) error {
	return r.replace(ctx, repository.Members, member.MemberID, "member", member)
}

func (r *MongoDBRepository) InsertCustomer(ctx context.Context, customer models.Customer) error {
	return r.insert(ctx, repository.Customers, customer)
}

// FindCustomerByName matches the whole name, case-insensitively.
func (r *MongoDBRepository) FindCustomerByName(ctx context.Context, name string) (*models.Customer, error) {
	pattern := primitive.Regex{Pattern: "^" + regexp.QuoteMeta(name) + "$", Options: "i"}
	var customer models.Customer
	err := r.coll(repository.Customers).FindOne(ctx, bson.M{"name": pattern}).Decode(&customer)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &models.NotFoundError{Kind: "customer", ID: name}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find customer %q: %w", name, err)
	}
	return &customer, nil
}

func (r *MongoDBRepository) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	if err := r.findAll(ctx, repository.Customers, bson.M{}, bson.D{{Key: "_id", Value: 1}}, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

// =============================================================================
// FACTS
// =============================================================================

var byDateThenID = bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}}

func (r *MongoDBRepository) InsertMilkIn(ctx context.Context, entry models.MilkInEntry) error {
	return r.insert(ctx, repository.MilkIn, entry)
}

func (r *MongoDBRepository) GetMilkIn(ctx context.Context, entryID string) (*models.MilkInEntry, error) {
	var entry models.MilkInEntry
	if err := r.findByID(ctx, repository.MilkIn, entryID, "milk-in entry", &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *MongoDBRepository) ListMilkIn(ctx context.Context, filter repository.MilkInFilter) ([]models.MilkInEntry, error) {
	query := dateQuery(filter.Range)
	if filter.CowID != "" {
		query["cow_id"] = filter.CowID
	}
	var entries []models.MilkInEntry
	if err := r.findAll(ctx, repository.MilkIn, query, byDateThenID, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *MongoDBRepository) DeleteMilkIn(ctx context.Context, entryID string) error {
	return r.deleteByID(ctx, repository.MilkIn, entryID, "milk-in entry")
}

func (r *MongoDBRepository) InsertMilkOut(ctx context.Context, entry models.MilkOutEntry) error {
	return r.insert(ctx, repository.MilkOut, entry)
}

func (r *MongoDBRepository) GetMilkOut(ctx context.Context, saleID string) (*models.MilkOutEntry, error) {
	var entry models.MilkOutEntry
	if err := r.findByID(ctx, repository.MilkOut, saleID, "sale", &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *MongoDBRepository) ListMilkOut(ctx context.Context, rng repository.DateRange) ([]models.MilkOutEntry, error) {
	var entries []models.MilkOutEntry
	if err := r.findAll(ctx, repository.MilkOut, dateQuery(rng), byDateThenID, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *MongoDBRepository) DeleteMilkOut(ctx context.Context, saleID string) error {
	return r.deleteByID(ctx, repository.MilkOut, saleID, "sale")
}

func (r *MongoDBRepository) InsertSpoilt(ctx context.Context, entry models.MilkSpoiltEntry) error {
	return r.insert(ctx, repository.MilkSpoilt, entry)
}

func (r *MongoDBRepository) GetSpoilt(ctx context.Context, spoiltID string) (*models.MilkSpoiltEntry, error) {
	var entry models.MilkSpoiltEntry
	if err := r.findByID(ctx, repository.MilkSpoilt, spoiltID, "spoilage entry", &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *MongoDBRepository) ListSpoilt(ctx context.Context, rng repository.DateRange) ([]models.MilkSpoiltEntry, error) {
	var entries []models.MilkSpoiltEntry
	if err := r.findAll(ctx, repository.MilkSpoilt, dateQuery(rng), byDateThenID, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *MongoDBRepository) DeleteSpoilt(ctx context.Context, spoiltID string) error {
	return r.deleteByID(ctx, repository.MilkSpoilt, spoiltID, "spoilage entry")
}

// =============================================================================
// INVENTORY SNAPSHOT & REPORTS
// =============================================================================

func (r *MongoDBRepository) GetSnapshot(ctx context.Context) (*models.InventorySnapshot, error) {
	var snap models.InventorySnapshot
	if err := r.findByID(ctx, repository.Inventory, snapshotID, "inventory snapshot", &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (r *MongoDBRepository) SaveSnapshot(ctx context.Context, snapshot models.InventorySnapshot) error {
	_, err := r.coll(repository.Inventory).UpdateOne(ctx,
		bson.M{"_id": snapshotID},
		bson.M{"$set": snapshot},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save inventory snapshot: %w", err)
	}
	return nil
}

// ApplyDelta adjusts the cached stock in a single pipeline update so concurrent writers
// cannot interleave a read and a write.
func (r *MongoDBRepository) ApplyDelta(ctx context.Context, delta float64, at time.Time) (*models.InventorySnapshot, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "current_stock", Value: bson.M{"$max": bson.A{0, bson.M{"$add": bson.A{"$current_stock", delta}}}}},
			{Key: "last_updated", Value: at},
		}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var snap models.InventorySnapshot
	err := r.coll(repository.Inventory).FindOneAndUpdate(ctx, bson.M{"_id": snapshotID}, pipeline, opts).Decode(&snap)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &models.NotFoundError{Kind: "inventory snapshot", ID: snapshotID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to apply inventory delta: %w", err)
	}
	return &snap, nil
}

// SaveDailyReport upserts the report keyed by its date, so re-running a day overwrites it.
func (r *MongoDBRepository) SaveDailyReport(ctx context.Context, report models.DailyReport) error {
	_, err := r.coll(repository.DailyReport).ReplaceOne(ctx,
		bson.M{"_id": report.Date},
		report,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save daily report: %w", err)
	}
	return nil
}

func (r *MongoDBRepository) GetDailyReport(ctx context.Context, date time.Time) (*models.DailyReport, error) {
	var report models.DailyReport
	err := r.coll(repository.DailyReport).FindOne(ctx, bson.M{"_id": date}).Decode(&report)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &models.NotFoundError{Kind: "daily report", ID: calendar.Format(date)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily report: %w", err)
	}
	return &report, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (r *MongoDBRepository) insert(ctx context.Context, c repository.Collection, doc any) error {
	if _, err := r.coll(c).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("insert into %s: %w", c, models.ErrDuplicateID)
		}
		return fmt.Errorf("failed to insert into %s: %w", c, err)
	}
	return nil
}

func (r *MongoDBRepository) findByID(ctx context.Context, c repository.Collection, id, kind string, out any) error {
	err := r.coll(c).FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &models.NotFoundError{Kind: kind, ID: id}
	}
	if err != nil {
		return fmt.Errorf("failed to get %s %s: %w", kind, id, err)
	}
	return nil
}

func (r *MongoDBRepository) findAll(ctx context.Context, c repository.Collection, query bson.M, sort bson.D, out any) error {
	cursor, err := r.coll(c).Find(ctx, query, options.Find().SetSort(sort))
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", c, err)
	}
	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", c, err)
	}
	return nil
}

func (r *MongoDBRepository) replace(ctx context.Context, c repository.Collection, id, kind string, doc any) error {
	res, err := r.coll(c).ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return fmt.Errorf("failed to update %s %s: %w", kind, id, err)
	}
	if res.MatchedCount == 0 {
		return &models.NotFoundError{Kind: kind, ID: id}
	}
	return nil
}

func (r *MongoDBRepository) deleteByID(ctx context.Context, c repository.Collection, id, kind string) error {
	res, err := r.coll(c).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", kind, id, err)
	}
	if res.DeletedCount == 0 {
		return &models.NotFoundError{Kind: kind, ID: id}
	}
	return nil
}

func dateQuery(rng repository.DateRange) bson.M {
	bounds := bson.M{}
	if !rng.From.IsZero() {
		bounds["$gte"] = rng.From
	}
	if !rng.To.IsZero() {
		bounds["$lte"] = rng.To
	}
	if len(bounds) == 0 {
		return bson.M{}
	}
	return bson.M{"date": bounds}
}
