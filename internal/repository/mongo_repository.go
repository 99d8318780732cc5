package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cotne998/eCommerce-product-page/internal/domain"
)

const receiptsCollection = "receipts"

// receiptDocument is the stored shape. Money is kept as decimal strings
// because decimal.Decimal has no BSON encoding.
type receiptDocument struct {
	ID        string    `bson:"_id"`
	SessionID string    `bson:"session_id"`
	Title     string    `bson:"title"`
	UnitPrice string    `bson:"unit_price"`
	Quantity  int       `bson:"quantity"`
	Total     string    `bson:"total"`
	Currency  string    `bson:"currency"`
	CreatedAt time.Time `bson:"created_at"`
}

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: db.Collection(receiptsCollection)}
}

// CreateIndexes creates the per-session lookup index
func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "created_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (m *MongoRepository) SaveReceipt(ctx context.Context, receipt *domain.Receipt) error {
	if err := receipt.Validate(); err != nil {
		return err
	}
	doc := receiptDocument{
		ID:        receipt.ID,
		SessionID: receipt.SessionID,
		Title:     receipt.Title,
		UnitPrice: receipt.UnitPrice.String(),
		Quantity:  receipt.Quantity,
		Total:     receipt.Total.String(),
		Currency:  receipt.Currency,
		CreatedAt: receipt.CreatedAt.UTC(),
	}
	if _, err := m.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", ErrDuplicateReceipt, err)
		}
		return fmt.Errorf("failed to insert receipt: %w", err)
	}
	return nil
}

func (m *MongoRepository) GetReceipt(ctx context.Context, id string) (*domain.Receipt, error) {
	var doc receiptDocument
	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrReceiptNotFound
		}
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	return doc.toDomain()
}

func (m *MongoRepository) ListReceipts(ctx context.Context, sessionID string) ([]*domain.Receipt, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := m.collection.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find receipts: %w", err)
	}
	defer cursor.Close(ctx)

	var receipts []*domain.Receipt
	for cursor.Next(ctx) {
		var doc receiptDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode receipt: %w", err)
		}
		receipt, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, receipt)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return receipts, nil
}

func (m *MongoRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.collection.Database().Client().Disconnect(ctx)
}

func (d receiptDocument) toDomain() (*domain.Receipt, error) {
	unitPrice, err := decimal.NewFromString(d.UnitPrice)
	if err != nil {
		return nil, fmt.Errorf("invalid unit price %q: %w", d.UnitPrice, err)
	}
	total, err := decimal.NewFromString(d.Total)
	if err != nil {
		return nil, fmt.Errorf("invalid total %q: %w", d.Total, err)
	}
	return &domain.Receipt{
		ID:        d.ID,
		SessionID: d.SessionID,
		Title:     d.Title,
		UnitPrice: unitPrice,
		Quantity:  d.Quantity,
		Total:     total,
		Currency:  d.Currency,
		CreatedAt: d.CreatedAt,
	}, nil
}
