package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dmitrijs2005/conduit/internal/common"
	"github.com/dmitrijs2005/conduit/internal/dbx"
	"github.com/dmitrijs2005/conduit/internal/server/models"
	"github.com/dmitrijs2005/conduit/internal/server/repositories/follows"
	"github.com/dmitrijs2005/conduit/internal/server/repositories/todos"
	"github.com/dmitrijs2005/conduit/internal/server/repositories/users"
)

type fakeUsers struct {
	byID      map[int64]*models.User
	createErr error
}

func (f *fakeUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	u.ID = int64(len(f.byID) + 1)
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range f.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.byID {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) Update(ctx context.Context, u *models.User) error {
	if _, ok := f.byID[u.ID]; !ok {
		return common.ErrorNotFound
	}
	f.byID[u.ID] = u
	return nil
}

// fakeFollows reports every pair as absent and fails Insert with insertErr.
type fakeFollows struct {
	insertErr error
}

func (f *fakeFollows) Insert(ctx context.Context, followerID, followeeID int64) (bool, error) {
	if f.insertErr != nil {
		return false, f.insertErr
	}
	return true, nil
}

func (f *fakeFollows) Delete(ctx context.Context, followerID, followeeID int64) (bool, error) {
	return false, nil
}

func (f *fakeFollows) Exists(ctx context.Context, followerID, followeeID int64) (bool, error) {
	return false, nil
}

type fakeManager struct {
	users   users.Repository
	follows follows.Repository
	todos   todos.Repository
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeManager) Users(dbx.DBTX) users.Repository              { return m.users }
func (m *fakeManager) Follows(dbx.DBTX) follows.Repository          { return m.follows }
func (m *fakeManager) Todos(dbx.DBTX) todos.Repository              { return m.todos }
