package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iho/gobank/internal/domain"
)

// AccountsCollection is the collection holding account documents.
const AccountsCollection = "accounts"

type accountDocument struct {
	AccountNumber string    `bson:"account_number"`
	HolderName    string    `bson:"holder_name"`
	CPF           string    `bson:"cpf"`
	Balance       string    `bson:"balance"`
	Status        string    `bson:"status"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

// AccountRepository implements usecase.AccountRepository on a Mongo collection.
type AccountRepository struct {
	coll *mongo.Collection
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(coll *mongo.Collection) *AccountRepository {
	return &AccountRepository{coll: coll}
}

// EnsureIndexes creates the unique indexes on account_number and cpf.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "account_number", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_account_number"),
		},
		{
			Keys:    bson.D{{Key: "cpf", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_cpf"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create account indexes: %w", err)
	}

	return nil
}

// Save upserts the account keyed by account_number. There is no version check.
func (r *AccountRepository) Save(ctx context.Context, account *domain.Account) error {
	doc := toDocument(account)

	_, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "account_number", Value: doc.AccountNumber}},
		bson.D{{Key: "$set", Value: doc}},
		options.Update().SetUpsert(true),
	)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %s", domain.ErrCPFAlreadyRegistered, account.CPF)
	}

	if err != nil {
		return fmt.Errorf("failed to save account %s: %w", account.Number, err)
	}

	return nil
}

func (r *AccountRepository) FindByNumber(ctx context.Context, number domain.AccountNumber) (*domain.Account, error) {
	return r.findOne(ctx, bson.D{{Key: "account_number", Value: number.String()}}, number.String())
}

func (r *AccountRepository) FindByCPF(ctx context.Context, cpf domain.CPF) (*domain.Account, error) {
	return r.findOne(ctx, bson.D{{Key: "cpf", Value: cpf.String()}}, "cpf "+cpf.Formatted())
}

func (r *AccountRepository) ExistsByCPF(ctx context.Context, cpf domain.CPF) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{{Key: "cpf", Value: cpf.String()}}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to count accounts by cpf: %w", err)
	}

	return n > 0, nil
}

func (r *AccountRepository) Delete(ctx context.Context, number domain.AccountNumber) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "account_number", Value: number.String()}})
	if err != nil {
		return fmt.Errorf("failed to delete account %s: %w", number, err)
	}

	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, number)
	}

	return nil
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.D, what string) (*domain.Account, error) {
	var doc accountDocument

	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, what)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load account %s: %w", what, err)
	}

	return fromDocument(doc)
}

func toDocument(a *domain.Account) accountDocument {
	return accountDocument{
		AccountNumber: a.Number.String(),
		HolderName:    a.HolderName,
		CPF:           a.CPF.String(),
		Balance:       a.Balance.String(),
		Status:        string(a.Status),
		CreatedAt:     a.CreatedAt.UTC(),
		UpdatedAt:     a.UpdatedAt.UTC(),
	}
}

func fromDocument(doc accountDocument) (*domain.Account, error) {
	balance, err := domain.ParseMoney(doc.Balance)
	if err != nil {
		return nil, fmt.Errorf("account %s: stored balance: %w", doc.AccountNumber, err)
	}

	status, err := domain.ParseAccountStatus(doc.Status)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", doc.AccountNumber, err)
	}

	return &domain.Account{
		Number:     domain.AccountNumber(doc.AccountNumber),
		HolderName: doc.HolderName,
		CPF:        domain.CPF(doc.CPF),
		Balance:    balance,
		Status:     status,
		CreatedAt:  doc.CreatedAt.UTC(),
		UpdatedAt:  doc.UpdatedAt.UTC(),
	}, nil
}
