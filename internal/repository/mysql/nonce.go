package mysql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"conduit-api/internal/model"
	"conduit-api/internal/repository"
)

type NonceRepository struct {
	db *gorm.DB
}

func NewNonceRepository(db *gorm.DB) *NonceRepository {
	return &NonceRepository{db: db}
}

func (r *NonceRepository) Create(ctx context.Context, email string) error {
	nonce := model.Nonce{User: email, Counter: model.NonceBaseline}
	if err := r.db.WithContext(ctx).Create(&nonce).Error; err != nil {
		return fmt.Errorf("create nonce failed: %w", wrapError(err))
	}
	return nil
}

// Increment bumps the counter with a single UPDATE and reads the new value
// back inside the same transaction, while the row lock is still held.
func (r *NonceRepository) Increment(ctx context.Context, email string) (int64, error) {
	var counter int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Nonce{}).
			Where("user_email = ?", email).
			UpdateColumn("counter", gorm.Expr("counter + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		return tx.Model(&model.Nonce{}).
			Select("counter").
			Where("user_email = ?", email).
			Row().
			Scan(&counter)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("increment nonce failed: %w", err)
	}
	return counter, nil
}

func (r *NonceRepository) Reset(ctx context.Context, email string) error {
	return r.updateColumn(ctx, email, "counter", model.NonceBaseline)
}

func (r *NonceRepository) Current(ctx context.Context, email string) (int64, error) {
	var nonce model.Nonce
	if err := r.db.WithContext(ctx).Where("user_email = ?", email).First(&nonce).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, repository.ErrNotFound
		}
		return 0, fmt.Errorf("query nonce failed: %w", err)
	}
	return nonce.Counter, nil
}

func (r *NonceRepository) Rekey(ctx context.Context, oldEmail, newEmail string) error {
	return r.updateColumn(ctx, oldEmail, "user_email", newEmail)
}

func (r *NonceRepository) Delete(ctx context.Context, email string) error {
	res := r.db.WithContext(ctx).Where("user_email = ?", email).Delete(&model.Nonce{})
	if res.Error != nil {
		return fmt.Errorf("delete nonce failed: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// updateColumn sets one column of the nonce row keyed by email. MySQL
// reports zero affected rows when the value is unchanged, so a miss is
// confirmed with an existence check before returning ErrNotFound.
func (r *NonceRepository) updateColumn(ctx context.Context, email, column string, value any) error {
	res := r.db.WithContext(ctx).Model(&model.Nonce{}).
		Where("user_email = ?", email).
		UpdateColumn(column, value)
	if res.Error != nil {
		return fmt.Errorf("update nonce failed: %w", wrapError(res.Error))
	}
	if res.RowsAffected > 0 {
		return nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Nonce{}).Where("user_email = ?", email).Count(&count).Error; err != nil {
		return fmt.Errorf("query nonce failed: %w", err)
	}
	if count == 0 {
		return repository.ErrNotFound
	}
	return nil
}
