package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/runoshun/whatstask/internal/domain"
)

// InitStoreInput contains the input parameters for InitStore.
type InitStoreInput struct {
	DataDir string      // Path to the data directory
	Admin   domain.User // First admin to register (optional, zero = none)
}

// InitStoreOutput contains the output from InitStore.
type InitStoreOutput struct {
	DataDir            string // Path to the data directory
	AlreadyInitialized bool   // True if the store already existed
	AdminRegistered    bool   // True if Admin was written to the user directory
}

// InitStore prepares the data directory, the task store and the user directory.
type InitStore struct {
	storeInit domain.StoreInitializer
	users     domain.UserDirectory
	writer    domain.UserWriter
}

// NewInitStore creates a new InitStore use case.
func NewInitStore(storeInit domain.StoreInitializer, users domain.UserDirectory, writer domain.UserWriter) *InitStore {
	return &InitStore{storeInit: storeInit, users: users, writer: writer}
}

// Execute creates the data and logs directories and initializes the store.
// Running it again is harmless: existing data is left alone.
func (uc *InitStore) Execute(ctx context.Context, in InitStoreInput) (*InitStoreOutput, error) {
	alreadyInitialized := uc.storeInit.IsInitialized()

	if err := os.MkdirAll(filepath.Join(in.DataDir, "logs"), 0o750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	if !alreadyInitialized {
		if err := uc.storeInit.Initialize(); err != nil {
			return nil, fmt.Errorf("initialize task store: %w", err)
		}
	}

	out := &InitStoreOutput{DataDir: in.DataDir, AlreadyInitialized: alreadyInitialized}
	if in.Admin.ID == "" {
		return out, nil
	}

	existing, err := uc.users.GetByID(ctx, in.Admin.ID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if existing != nil {
		return out, nil
	}
	admin := in.Admin
	admin.Role = domain.RoleAdmin
	if err := validateUser(&admin); err != nil {
		return nil, err
	}
	if err := uc.writer.Put(ctx, admin); err != nil {
		return nil, fmt.Errorf("register admin: %w", err)
	}
	out.AdminRegistered = true
	return out, nil
}
