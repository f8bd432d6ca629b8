package repository

import (
	"context"

	"github.com/diftofficial/systemAplikaciaGYM/internal/docstore"
	"github.com/diftofficial/systemAplikaciaGYM/internal/models"
)

const (
	UsersCollection        = "users"
	SessionsCollection     = "sessions"
	ParticipantsCollection = "sessionParticipants"
)

const (
	fieldUID    = "uid"
	fieldName   = "name"
	fieldEmail  = "email"
	fieldPhone  = "phone"
	fieldRole   = "role"
	fieldPoints = "points"
)

type UserRepository struct {
	store docstore.Store
}

func NewUserRepository(store docstore.Store) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) CreateUser(ctx context.Context, account *models.Account) error {
	return r.store.Commit(ctx, []docstore.Write{
		docstore.Create(UsersCollection, account.ID, map[string]any{
			fieldUID:    account.ID,
			fieldName:   account.Name,
			fieldEmail:  account.Email,
			fieldPhone:  account.Phone,
			fieldRole:   string(account.Role),
			fieldPoints: account.Points,
		}),
	}, nil)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	doc, err := r.store.Get(ctx, UsersCollection, id)
	if err != nil {
		return nil, err
	}
	account := accountFromDocument(doc)
	return &account, nil
}

// FindByEmail returns every account registered under the email; callers
// decide how to treat ambiguous matches.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) ([]models.Account, error) {
	docs, err := r.store.Query(ctx, UsersCollection, docstore.Where(fieldEmail, docstore.OpEqual, email))
	if err != nil {
		return nil, err
	}
	accounts := make([]models.Account, 0, len(docs))
	for i := range docs {
		accounts = append(accounts, accountFromDocument(&docs[i]))
	}
	return accounts, nil
}

func (r *UserRepository) List(ctx context.Context) ([]models.Account, error) {
	docs, err := r.store.Query(ctx, UsersCollection, docstore.Query{})
	if err != nil {
		return nil, err
	}
	accounts := make([]models.Account, 0, len(docs))
	for i := range docs {
		accounts = append(accounts, accountFromDocument(&docs[i]))
	}
	return accounts, nil
}

// SetPoints writes a new balance for an existing account.
func SetPoints(accountID string, points int64) docstore.Write {
	return docstore.Update(UsersCollection, accountID, map[string]any{fieldPoints: points})
}

// PointsUnchanged guards a commit on the balance observed in account.
func PointsUnchanged(account *models.Account) docstore.Precondition {
	if !account.PointsRecorded {
		return docstore.FieldEquals(UsersCollection, account.ID, fieldPoints, nil)
	}
	return docstore.FieldEquals(UsersCollection, account.ID, fieldPoints, account.Points)
}

func accountFromDocument(doc *docstore.Document) models.Account {
	role, ok := models.ParseRole(doc.String(fieldRole))
	if !ok {
		role = models.RoleUser
	}
	return models.Account{
		ID:             doc.ID,
		Name:           doc.String(fieldName),
		Email:          doc.String(fieldEmail),
		Phone:          doc.String(fieldPhone),
		Role:           role,
		Points:         doc.Int(fieldPoints),
		PointsRecorded: doc.Has(fieldPoints),
	}
}
