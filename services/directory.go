package services

import (
	"context"
	"errors"
	"fmt"

	"adminchat/db"
	"adminchat/models"

	"gorm.io/gorm"
)

// DirectoryService - справочник пользователей хост-приложения.
// Личность вызывающего устанавливается снаружи, здесь только резолвинг
// отображаемых данных, ролей и идентичности админа.
type DirectoryService struct{}

func NewDirectoryService() *DirectoryService {
	return &DirectoryService{}
}

// AdminID возвращает идентичность выделенного админа: пользователь с ролью
// admin и наименьшим id. Жестко зашитого id нет.
func (ds *DirectoryService) AdminID(ctx context.Context) (int64, error) {
	var admin models.User
	err := db.GetReadOnlyDB(ctx).
		Where("role = ?", models.RoleAdmin).
		Order("id ASC").
		First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("no admin user configured: %w", ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve admin: %w", err)
	}
	return admin.ID, nil
}

// GetUser возвращает пользователя по id
func (ds *DirectoryService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := db.GetReadOnlyDB(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return &user, nil
}

// RoleOf возвращает роль пользователя
func (ds *DirectoryService) RoleOf(ctx context.Context, id int64) (models.Role, error) {
	user, err := ds.GetUser(ctx, id)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

// ListNonAdminUsers возвращает всех пользователей без админской роли,
// по имени по возрастанию
func (ds *DirectoryService) ListNonAdminUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := db.GetReadOnlyDB(ctx).
		Where("role <> ?", models.RoleAdmin).
		Order("name ASC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
