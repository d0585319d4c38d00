// Package mongo provides the MongoDB implementation of the append-only
// transaction log. Decimal amounts are stored as strings because the driver
// has no codec for arbitrary-precision decimals; string round-trips are
// exact and keep the documents human-readable.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gft-fund-ledger/internal/domain/transaction"
)

const (
	// TransactionCollectionName is the name of the transaction log collection in MongoDB
	TransactionCollectionName = "transactions"
)

// transactionDoc is the stored shape of a transaction record
type transactionDoc struct {
	ID                    string    `bson:"_id"`
	BusinessTransactionID string    `bson:"business_transaction_id"`
	ClientID              string    `bson:"client_id"`
	FundID                string    `bson:"fund_id"`
	FundName              string    `bson:"fund_name"`
	Type                  string    `bson:"type"`
	Amount                string    `bson:"amount"`
	Date                  time.Time `bson:"date"`
	ClientBalanceBefore   string    `bson:"client_balance_before"`
	ClientBalanceAfter    string    `bson:"client_balance_after"`
	Status                string    `bson:"status"`
	ErrorMessage          string    `bson:"error_message,omitempty"`
}

// TransactionRepository implements the transaction.Repository interface for MongoDB
type TransactionRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewTransactionRepository creates a new MongoDB transaction log repository
func NewTransactionRepository(logger *slog.Logger, db *mongo.Database) transaction.Repository {
	return &TransactionRepository{
		db:     db,
		logger: logger,
	}
}

// Append persists an immutable transaction record. Records are never updated
// or deleted after this point.
func (r *TransactionRepository) Append(ctx context.Context, tx *transaction.Transaction) error {
	collection := r.db.Collection(TransactionCollectionName)

	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}

	_, err := collection.InsertOne(ctx, toDoc(tx))
	if err != nil {
		r.logger.Error("Failed to append transaction record",
			"business_transaction_id", tx.BusinessTransactionID,
			"error", err)
		return fmt.Errorf("failed to append transaction record: %w", err)
	}

	return nil
}

// GetByBusinessID retrieves a transaction record by its business transaction ID.
// Returns ErrTransactionNotFound if no record exists.
func (r *TransactionRepository) GetByBusinessID(ctx context.Context, businessTxID string) (*transaction.Transaction, error) {
	collection := r.db.Collection(TransactionCollectionName)

	filter := bson.M{"business_transaction_id": businessTxID}
	var doc transactionDoc
	err := collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, transaction.ErrTransactionNotFound{BusinessTransactionID: businessTxID}
		}
		r.logger.Error("Failed to get transaction record",
			"business_transaction_id", businessTxID,
			"error", err)
		return nil, fmt.Errorf("failed to get transaction record: %w", err)
	}

	return fromDoc(&doc)
}

// ListByClient retrieves all transaction records for a client.
// Results are sorted by date in descending order (newest first).
func (r *TransactionRepository) ListByClient(ctx context.Context, clientID string) ([]*transaction.Transaction, error) {
	collection := r.db.Collection(TransactionCollectionName)

	filter := bson.M{"client_id": clientID}
	opts := options.Find().
		SetSort(bson.M{"date": -1}) // Sort by date in descending order

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to list transaction records",
			"client_id", clientID,
			"error", err)
		return nil, fmt.Errorf("failed to list transaction records: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*transactionDoc
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode transaction records",
			"client_id", clientID,
			"error", err)
		return nil, fmt.Errorf("failed to decode transaction records: %w", err)
	}

	records := make([]*transaction.Transaction, 0, len(docs))
	for _, doc := range docs {
		record, err := fromDoc(doc)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

func toDoc(tx *transaction.Transaction) *transactionDoc {
	return &transactionDoc{
		ID:                    tx.ID,
		BusinessTransactionID: tx.BusinessTransactionID,
		ClientID:              tx.ClientID,
		FundID:                tx.FundID,
		FundName:              tx.FundName,
		Type:                  string(tx.Type),
		Amount:                tx.Amount.String(),
		Date:                  tx.Date,
		ClientBalanceBefore:   tx.ClientBalanceBefore.String(),
		ClientBalanceAfter:    tx.ClientBalanceAfter.String(),
		Status:                string(tx.Status),
		ErrorMessage:          tx.ErrorMessage,
	}
}

func fromDoc(doc *transactionDoc) (*transaction.Transaction, error) {
	amount, err := decimal.NewFromString(doc.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount for transaction %s: %w", doc.BusinessTransactionID, err)
	}
	before, err := decimal.NewFromString(doc.ClientBalanceBefore)
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance before for transaction %s: %w", doc.BusinessTransactionID, err)
	}
	after, err := decimal.NewFromString(doc.ClientBalanceAfter)
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance after for transaction %s: %w", doc.BusinessTransactionID, err)
	}

	return &transaction.Transaction{
		ID:                    doc.ID,
		BusinessTransactionID: doc.BusinessTransactionID,
		ClientID:              doc.ClientID,
		FundID:                doc.FundID,
		FundName:              doc.FundName,
		Type:                  transaction.Type(doc.Type),
		Amount:                amount,
		Date:                  doc.Date,
		ClientBalanceBefore:   before,
		ClientBalanceAfter:    after,
		Status:                transaction.Status(doc.Status),
		ErrorMessage:          doc.ErrorMessage,
	}, nil
}
