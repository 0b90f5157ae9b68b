package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/medipoint/medipointbackend/auth"
	"github.com/medipoint/medipointbackend/models"
)

// SeedAdmin makes sure the bootstrap admin from the environment exists.
func SeedAdmin(ctx context.Context, st IdentityStore) error {
	email := strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL")))
	pass := os.Getenv("ADMIN_PASSWORD")

	if email == "" || pass == "" {
		return fmt.Errorf("missing ADMIN_EMAIL or ADMIN_PASSWORD env vars")
	}

	if _, err := st.FindByEmail(ctx, models.AdminRole, email); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("seed admin lookup: %w", err)
	}

	hash, err := auth.HashPassword(pass)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := &models.Identity{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: hash,
		Status:       true,
	}
	if err := st.Insert(ctx, models.AdminRole, admin); err != nil {
		// A concurrent boot may have won the race; that admin is as good as ours.
		if errors.Is(err, ErrDuplicateEmail) {
			return nil
		}
		return fmt.Errorf("seed admin insert: %w", err)
	}
	return nil
}
