package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/salesdesk/internal/domain/models"
	"github.com/mamadbah2/salesdesk/internal/repository"
)

const (
	catalogCollection  = "bottle_types"
	clientCollection   = "clients"
	saleCollection     = "sales"
	locationCollection = "locations"
	leadCollection     = "leads"
)

// MongoDBRepository implements repository.Store on MongoDB. Sale items are
// embedded in their sale document.
type MongoDBRepository struct {
	client *mongo.Client
	dbName string
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

	r := &MongoDBRepository{client: client, dbName: dbName}
	if err := r.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *MongoDBRepository) ensureIndexes(ctx context.Context) error {
	unique := map[string]string{
		catalogCollection:  "label",
		clientCollection:   "name",
		locationCollection: "name",
	}
	for coll, field := range unique {
		model := mongo.IndexModel{Keys: bson.D{{Key: field, Value: 1}}, Options: options.Index().SetUnique(true)}
		if _, err := r.collection(coll).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("failed to create %s index: %w", coll, err)
		}
	}
	return nil
}

func (r *MongoDBRepository) collection(name string) *mongo.Collection {
	return r.client.Database(r.dbName).Collection(name)
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func translate(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w", op, repository.ErrDuplicate)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func containsFilter(field, query string) bson.M {
	query = strings.TrimSpace(query)
	if query == "" {
		return bson.M{}
	}
	return bson.M{field: bson.M{"$regex": regexp.QuoteMeta(query), "$options": "i"}}
}

func (r *MongoDBRepository) findAll(ctx context.Context, coll string, filter interface{}, sort bson.D, out interface{}, op string) error {
	cursor, err := r.collection(coll).Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return translate(err, op)
	}
	if err := cursor.All(ctx, out); err != nil {
		return translate(err, op)
	}
	return nil
}

func (r *MongoDBRepository) findOne(ctx context.Context, coll string, filter interface{}, out interface{}, op string) error {
	return translate(r.collection(coll).FindOne(ctx, filter).Decode(out), op)
}

func (r *MongoDBRepository) upsert(ctx context.Context, coll, id string, doc interface{}, op string) error {
	_, err := r.collection(coll).ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	return translate(err, op)
}

func (r *MongoDBRepository) deleteByID(ctx context.Context, coll, id, op string) error {
	res, err := r.collection(coll).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err, op)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListCatalogItems returns bottle types ordered by quantity.
func (r *MongoDBRepository) ListCatalogItems(ctx context.Context, query string) ([]models.CatalogItem, error) {
	items := []models.CatalogItem{}
	sort := bson.D{{Key: "quantity_ltr", Value: 1}, {Key: "label", Value: 1}}
	if err := r.findAll(ctx, catalogCollection, containsFilter("label", query), sort, &items, "list bottle types"); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *MongoDBRepository) GetCatalogItem(ctx context.Context, id string) (models.CatalogItem, error) {
	var item models.CatalogItem
	err := r.findOne(ctx, catalogCollection, bson.M{"_id": id}, &item, "get bottle type")
	return item, err
}

func (r *MongoDBRepository) FindCatalogItemByLabel(ctx context.Context, label string) (models.CatalogItem, error) {
	var item models.CatalogItem
	err := r.findOne(ctx, catalogCollection, bson.M{"label": label}, &item, "find bottle type")
	return item, err
}

func (r *MongoDBRepository) SaveCatalogItem(ctx context.Context, item models.CatalogItem) error {
	return r.upsert(ctx, catalogCollection, item.ID, item, "save bottle type")
}

func (r *MongoDBRepository) DeleteCatalogItem(ctx context.Context, id string) error {
	return r.deleteByID(ctx, catalogCollection, id, "delete bottle type")
}

func (r *MongoDBRepository) ListClients(ctx context.Context, query string) ([]models.Client, error) {
	clients := []models.Client{}
	sort := bson.D{{Key: "name", Value: 1}}
	if err := r.findAll(ctx, clientCollection, containsFilter("name", query), sort, &clients, "list clients"); err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *MongoDBRepository) GetClient(ctx context.Context, id string) (models.Client, error) {
	var c models.Client
	err := r.findOne(ctx, clientCollection, bson.M{"_id": id}, &c, "get client")
	return c, err
}

func (r *MongoDBRepository) SaveClient(ctx context.Context, client models.Client) error {
	return r.upsert(ctx, clientCollection, client.ID, client, "save client")
}

func (r *MongoDBRepository) DeleteClient(ctx context.Context, id string) error {
	return r.deleteByID(ctx, clientCollection, id, "delete client")
}

// ListSales returns sales newest first.
func (r *MongoDBRepository) ListSales(ctx context.Context) ([]models.Sale, error) {
	sales := []models.Sale{}
	sort := bson.D{{Key: "date", Value: -1}, {Key: "created_at", Value: -1}}
	if err := r.findAll(ctx, saleCollection, bson.M{}, sort, &sales, "list sales"); err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *MongoDBRepository) GetSale(ctx context.Context, id string) (models.Sale, error) {
	var sale models.Sale
	err := r.findOne(ctx, saleCollection, bson.M{"_id": id}, &sale, "get sale")
	return sale, err
}

// SaveSale replaces the whole sale document, items included.
func (r *MongoDBRepository) SaveSale(ctx context.Context, sale models.Sale) error {
	sale.Items = append([]models.SaleItem(nil), sale.Items...)
	for i := range sale.Items {
		sale.Items[i].Position = i
	}
	return r.upsert(ctx, saleCollection, sale.ID, sale, "save sale")
}

func (r *MongoDBRepository) DeleteSale(ctx context.Context, id string) error {
	return r.deleteByID(ctx, saleCollection, id, "delete sale")
}

func (r *MongoDBRepository) ListLocations(ctx context.Context) ([]models.Location, error) {
	locations := []models.Location{}
	sort := bson.D{{Key: "name", Value: 1}}
	if err := r.findAll(ctx, locationCollection, bson.M{}, sort, &locations, "list locations"); err != nil {
		return nil, err
	}
	return locations, nil
}

func (r *MongoDBRepository) GetLocation(ctx context.Context, id string) (models.Location, error) {
	var loc models.Location
	err := r.findOne(ctx, locationCollection, bson.M{"_id": id}, &loc, "get location")
	return loc, err
}

func (r *MongoDBRepository) FindLocationByName(ctx context.Context, name string) (models.Location, error) {
	var loc models.Location
	err := r.findOne(ctx, locationCollection, bson.M{"name": name}, &loc, "find location")
	return loc, err
}

func (r *MongoDBRepository) SaveLocation(ctx context.Context, location models.Location) error {
	return r.upsert(ctx, locationCollection, location.ID, location, "save location")
}

// DeleteLocation removes the location and every lead attached to it.
func (r *MongoDBRepository) DeleteLocation(ctx context.Context, id string) error {
	if err := r.deleteByID(ctx, locationCollection, id, "delete location"); err != nil {
		return err
	}
	if _, err := r.collection(leadCollection).DeleteMany(ctx, bson.M{"location_id": id}); err != nil {
		return translate(err, "delete location leads")
	}
	return nil
}

// ListLeads returns leads newest first with their location names resolved.
func (r *MongoDBRepository) ListLeads(ctx context.Context, filter models.LeadFilter) ([]models.Lead, error) {
	query := bson.M{}
	if filter.LocationID != "" {
		query["location_id"] = filter.LocationID
	}
	if len(filter.DealStatuses) > 0 {
		query["deal_status"] = bson.M{"$in": filter.DealStatuses}
	}

	leads := []models.Lead{}
	sort := bson.D{{Key: "created_at", Value: -1}}
	if err := r.findAll(ctx, leadCollection, query, sort, &leads, "list leads"); err != nil {
		return nil, err
	}
	if err := r.resolveLocationNames(ctx, leads); err != nil {
		return nil, err
	}
	return leads, nil
}

func (r *MongoDBRepository) resolveLocationNames(ctx context.Context, leads []models.Lead) error {
	if len(leads) == 0 {
		return nil
	}
	locations, err := r.ListLocations(ctx)
	if err != nil {
		return err
	}
	names := make(map[string]string, len(locations))
	for _, loc := range locations {
		names[loc.ID] = loc.Name
	}
	for i := range leads {
		leads[i].LocationName = names[leads[i].LocationID]
	}
	return nil
}

func (r *MongoDBRepository) GetLead(ctx context.Context, id string) (models.Lead, error) {
	var lead models.Lead
	if err := r.findOne(ctx, leadCollection, bson.M{"_id": id}, &lead, "get lead"); err != nil {
		return lead, err
	}
	leads := []models.Lead{lead}
	if err := r.resolveLocationNames(ctx, leads); err != nil {
		return lead, err
	}
	return leads[0], nil
}

func (r *MongoDBRepository) SaveLead(ctx context.Context, lead models.Lead) error {
	return r.upsert(ctx, leadCollection, lead.ID, lead, "save lead")
}

func (r *MongoDBRepository) DeleteLead(ctx context.Context, id string) error {
	return r.deleteByID(ctx, leadCollection, id, "delete lead")
}
