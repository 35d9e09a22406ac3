package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shopcrawl/internal/logger"
	"shopcrawl/internal/models"
	"shopcrawl/internal/scrape"
)

const (
	databaseName       = "shopcrawl"
	productsCollection = "products"
)

// Store is the document sink. The connection is lazy: nothing is dialed until
// the first write or read. Write failures retry with backoff a small fixed
// number of times, then escalate as a fatal storage error.
type Store struct {
	uri    string
	logger *logger.Logger
	retry  scrape.RetryPolicy

	client   *mongo.Client
	products *mongo.Collection
}

func NewStore(uri string, logger *logger.Logger) *Store {
	return &Store{
		uri:    uri,
		logger: logger,
		retry:  scrape.RetryPolicy{MaxRetries: 3, Base: time.Second},
	}
}

// Upsert writes p keyed by (store_domain, product_id), stamping scraped_at
// and store_url on every write, updates included.
func (s *Store) Upsert(ctx context.Context, p *models.Product) error {
	return s.retry.Do(ctx, s.logger, "upsert product "+p.ProductID, func() error {
		if err := s.connect(ctx); err != nil {
			return err
		}

		filter, update := prepareUpsert(p, time.Now().UTC())
		_, err := s.products.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
		if err != nil {
			return scrape.Storage("upsert product", err)
		}
		return nil
	})
}

// List returns products for the API, newest scrape first, optionally filtered
// by store domain.
func (s *Store) List(ctx context.Context, storeDomain string, page, limit int) ([]models.Product, int64, error) {
	if err := s.connect(ctx); err != nil {
		return nil, 0, err
	}

	filter := bson.M{}
	if storeDomain != "" {
		filter["store_domain"] = storeDomain
	}

	total, err := s.products.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, scrape.Storage("count products", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "scraped_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := s.products.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, scrape.Storage("list products", err)
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, scrape.Storage("decode products", err)
	}
	return products, total, nil
}

// Get returns one product by identifier, optionally narrowed to a store.
func (s *Store) Get(ctx context.Context, productID, storeDomain string) (*models.Product, error) {
	if err := s.connect(ctx); err != nil {
		return nil, err
	}

	filter := bson.M{"product_id": productID}
	if storeDomain != "" {
		filter["store_domain"] = storeDomain
	}

	var p models.Product
	if err := s.products.FindOne(ctx, filter).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, err
		}
		return nil, scrape.Storage("get product", err)
	}
	return &p, nil
}

func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	err := s.client.Disconnect(ctx)
	s.client = nil
	s.products = nil
	return err
}

// prepareUpsert stamps the write-time fields and builds the keyed filter and
// update document. scraped_at and store_url are refreshed on every write,
// inserts and updates alike.
func prepareUpsert(p *models.Product, now time.Time) (bson.M, bson.M) {
	p.ScrapedAt = &now
	p.StoreURL = "https://" + p.StoreDomain

	filter := bson.M{"store_domain": p.StoreDomain, "product_id": p.ProductID}
	return filter, bson.M{"$set": p}
}

func (s *Store) connect(ctx context.Context) error {
	if s.client != nil {
		return nil
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(s.uri))
	if err != nil {
		return scrape.Storage("connect", fmt.Errorf("failed to connect to %s: %w", s.uri, err))
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return scrape.Storage("connect", fmt.Errorf("failed to ping %s: %w", s.uri, err))
	}

	coll := client.Database(databaseName).Collection(productsCollection)
	if err := ensureIndexes(ctx, coll); err != nil {
		client.Disconnect(ctx)
		return scrape.Storage("connect", err)
	}

	s.client = client
	s.products = coll
	s.logger.Info("connected to document store at %s", s.uri)
	return nil
}

// ensureIndexes creates the unique identity index and the advisory secondary
// indexes that speed up the read API.
func ensureIndexes(ctx context.Context, coll *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "store_domain", Value: 1}, {Key: "product_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "handle", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "store_url", Value: 1}}},
	}
	if _, err := coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
