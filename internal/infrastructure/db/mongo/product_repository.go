package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/momocakes/commerce-api/internal/core/domain"
	"github.com/momocakes/commerce-api/internal/core/ports"
)

const productsCollection = "products"

// caseInsensitive is the collation used for name lookups and the unique name
// index; strength 2 ignores case and diacritics.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

type ProductRepository struct {
	coll *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{coll: db.Collection(productsCollection)}
}

type mongoProduct struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	Name              string             `bson:"name"`
	Price             float64            `bson:"price"`
	Image             string             `bson:"image,omitempty"`
	Description       string             `bson:"description,omitempty"`
	QuantityAvailable int64              `bson:"quantity_available"`
	IsActive          bool               `bson:"is_active"`
	CreatedAt         time.Time          `bson:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at"`
}

func (mp mongoProduct) toDomain() domain.Product {
	return domain.Product{
		ID:                mp.ID.Hex(),
		Name:              mp.Name,
		Price:             mp.Price,
		Image:             mp.Image,
		Description:       mp.Description,
		QuantityAvailable: mp.QuantityAvailable,
		IsActive:          mp.IsActive,
		CreatedAt:         mp.CreatedAt,
		UpdatedAt:         mp.UpdatedAt,
	}
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoProduct{
		Name:              p.Name,
		Price:             p.Price,
		Image:             p.Image,
		Description:       p.Description,
		QuantityAvailable: p.QuantityAvailable,
		IsActive:          p.IsActive,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateProductName
		}
		return nil, fmt.Errorf("insert product: %w", err)
	}

	created := *p
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrProductNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mp mongoProduct
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&mp); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}

	product := mp.toDomain()
	return &product, nil
}

// FindByName matches ignoring case via the collection collation. Returns
// (nil, nil) when no product matches.
func (r *ProductRepository) FindByName(ctx context.Context, name, excludeID string) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"name": name}
	if excludeID != "" {
		if oid, err := primitive.ObjectIDFromHex(excludeID); err == nil {
			filter["_id"] = bson.M{"$ne": oid}
		}
	}

	opts := options.FindOne().SetCollation(caseInsensitive)
	var mp mongoProduct
	if err := r.coll.FindOne(ctx, filter, opts).Decode(&mp); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find product by name: %w", err)
	}

	product := mp.toDomain()
	return &product, nil
}

func (r *ProductRepository) ListActive(ctx context.Context) ([]domain.Product, error) {
	return r.list(ctx, bson.M{"is_active": true, "quantity_available": bson.M{"$gt": 0}})
}

func (r *ProductRepository) List(ctx context.Context, includeInactive bool) ([]domain.Product, error) {
	filter := bson.M{}
	if !includeInactive {
		filter["is_active"] = true
	}
	return r.list(ctx, filter)
}

func (r *ProductRepository) list(ctx context.Context, filter bson.M) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer cur.Close(ctx)

	var products []domain.Product
	for cur.Next(ctx) {
		var mp mongoProduct
		if err := cur.Decode(&mp); err != nil {
			return nil, fmt.Errorf("decode product: %w", err)
		}
		products = append(products, mp.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

func (r *ProductRepository) Update(ctx context.Context, id string, update ports.ProductUpdate) (*domain.Product, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Price != nil {
		set["price"] = *update.Price
	}
	if update.Image != nil {
		set["image"] = *update.Image
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.IsActive != nil {
		set["is_active"] = *update.IsActive
	}

	return r.findOneAndUpdate(ctx, id, bson.M{}, bson.M{"$set": set})
}

func (r *ProductRepository) SetQuantity(ctx context.Context, id string, quantity int64) (*domain.Product, error) {
	set := bson.M{"quantity_available": quantity, "updated_at": time.Now().UTC()}
	return r.findOneAndUpdate(ctx, id, bson.M{}, bson.M{"$set": set})
}

// IncrementQuantity applies an atomic $inc. Negative deltas carry a filter
// guard so a concurrent decrement can never drive the quantity below zero.
func (r *ProductRepository) IncrementQuantity(ctx context.Context, id string, delta int64) (*domain.Product, error) {
	extra := bson.M{}
	if delta < 0 {
		extra["quantity_available"] = bson.M{"$gte": -delta}
	}

	update := bson.M{
		"$inc": bson.M{"quantity_available": delta},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	product, err := r.findOneAndUpdate(ctx, id, extra, update)
	if err == nil || !errors.Is(err, domain.ErrProductNotFound) || delta >= 0 {
		return product, err
	}

	// Guarded decrement matched nothing: distinguish a missing product
	// from one that lost the race below the requested amount.
	if _, findErr := r.FindByID(ctx, id); findErr != nil {
		return nil, findErr
	}
	return nil, domain.ErrInsufficientQuantity
}

func (r *ProductRepository) SetActive(ctx context.Context, id string, active bool) (*domain.Product, error) {
	set := bson.M{"is_active": active, "updated_at": time.Now().UTC()}
	return r.findOneAndUpdate(ctx, id, bson.M{}, bson.M{"$set": set})
}

// findOneAndUpdate applies update to the product with the given id (plus any
// extra filter terms) and returns the post-update document.
func (r *ProductRepository) findOneAndUpdate(ctx context.Context, id string, extra, update bson.M) (*domain.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrProductNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": oid}
	for k, v := range extra {
		filter[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var mp mongoProduct
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&mp); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateProductName
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	product := mp.toDomain()
	return &product, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrProductNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// Stats runs the four dashboard counts independently.
func (r *ProductRepository) Stats(ctx context.Context) (*domain.ProductStats, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	active, err := r.coll.CountDocuments(ctx, bson.M{"is_active": true})
	if err != nil {
		return nil, fmt.Errorf("count active products: %w", err)
	}
	outOfStock, err := r.coll.CountDocuments(ctx, bson.M{"quantity_available": 0})
	if err != nil {
		return nil, fmt.Errorf("count out-of-stock products: %w", err)
	}
	lowStock, err := r.coll.CountDocuments(ctx, bson.M{
		"quantity_available": bson.M{"$gt": 0, "$lte": domain.LowStockThreshold},
	})
	if err != nil {
		return nil, fmt.Errorf("count low-stock products: %w", err)
	}

	return &domain.ProductStats{
		Total:      total,
		Active:     active,
		OutOfStock: outOfStock,
		LowStock:   lowStock,
	}, nil
}

// EnsureIndexes creates the unique case-insensitive name index (the backstop
// for the read-then-write uniqueness check) plus the list-query indexes.
func (r *ProductRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetCollation(caseInsensitive),
		},
		{Keys: bson.D{{Key: "is_active", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
