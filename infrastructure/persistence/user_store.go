package persistence

import (
	"context"
	"fmt"

	"github.com/codeBunny2022/CentrAlignWebapp/domain/store"
	"github.com/codeBunny2022/CentrAlignWebapp/domain/user"
	"github.com/codeBunny2022/CentrAlignWebapp/internal/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserStore implements user.UserStore using GORM.
type UserStore struct {
	database.Repository[user.User, UserModel]
}

// NewUserStore creates a new UserStore.
func NewUserStore(db database.Database) UserStore {
	return UserStore{
		Repository: database.NewRepository[user.User, UserModel](db, UserMapper{}, "user"),
	}
}

// Save creates or updates a user.
func (s UserStore) Save(ctx context.Context, u user.User) (user.User, error) {
	model := s.Mapper().ToModel(u)

	var result *gorm.DB
	if u.ID() == 0 {
		result = s.DB(ctx).Create(&model)
	} else {
		result = s.DB(ctx).Save(&model)
	}
	if result.Error != nil {
		return user.User{}, fmt.Errorf("save user: %w", result.Error)
	}
	return s.Mapper().ToDomain(model), nil
}

// GetByEmail returns a user by normalized email.
func (s UserStore) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return s.FindOne(ctx, store.WithCondition("email", user.NormalizeEmail(email)))
}

// GetByUUID returns a user by public identifier.
func (s UserStore) GetByUUID(ctx context.Context, id uuid.UUID) (user.User, error) {
	return s.FindOne(ctx, store.WithCondition("uuid", id.String()))
}

// ExistsByEmail checks whether a user with the email exists.
func (s UserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.Exists(ctx, store.WithCondition("email", user.NormalizeEmail(email)))
}
