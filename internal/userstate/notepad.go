package userstate

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/EnspecPower/analytics_hub/internal/model"
)

const errorMessageSaveNotepad = "userstate: save notepad"

// Notepad returns the stored draft notepad text for an email. Absent profiles
// yield empty text rather than an error.
func (store *Store) Notepad(ctx context.Context, email string) (string, error) {
	normalizedEmail := normalizeEmail(email)
	if normalizedEmail == "" {
		return "", nil
	}

	var storedUser model.User
	queryErr := store.database.WithContext(ctx).First(&storedUser, "email = ?", normalizedEmail).Error
	if errors.Is(queryErr, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if queryErr != nil {
		return "", fmt.Errorf("%s: %w", errorMessageLoadProfile, queryErr)
	}
	return storedUser.NotepadText, nil
}

// SaveNotepad persists the draft notepad text for an email. Without a stored
// profile the call is a no-op reported through the returned flag.
func (store *Store) SaveNotepad(ctx context.Context, email string, notepadText string) (bool, error) {
	normalizedEmail := normalizeEmail(email)
	if normalizedEmail == "" {
		return false, nil
	}

	updateResult := store.database.WithContext(ctx).
		Model(&model.User{}).
		Where("email = ?", normalizedEmail).
		Update("notepad_text", notepadText)
	if updateResult.Error != nil {
		return false, fmt.Errorf("%s: %w", errorMessageSaveNotepad, updateResult.Error)
	}
	return updateResult.RowsAffected > 0, nil
}
