package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lukman83/autovit-sync/internal/apperr"
)

// RoleAdmin is the role allowed to import, edit and delete listings.
const RoleAdmin = "admin"

// LookupRole returns the role of userID, or ErrNotFound when the user has
// none.
func (s *Store) LookupRole(ctx context.Context, userID string) (string, error) {
	var role string
	err := s.db.QueryRowContext(ctx, s.rebind("SELECT role FROM admin_users WHERE user_id = ?"), userID).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", apperr.Wrap(apperr.KindStorage, "Nu am putut verifica rolul utilizatorului", err)
	}
	return role, nil
}

// SetRole grants role to userID, replacing any previous role.
func (s *Store) SetRole(ctx context.Context, userID, role string) error {
	_, err := s.db.ExecContext(ctx,
		s.rebind("INSERT INTO admin_users (user_id, role) VALUES (?, ?) ON CONFLICT (user_id) DO UPDATE SET role = excluded.role"),
		userID, role)
	if err != nil {
		return apperr.Wrap(apperr.KindStorage, "Nu am putut salva rolul utilizatorului", err)
	}
	return nil
}

// RevokeRole removes userID from admin_users.
func (s *Store) RevokeRole(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM admin_users WHERE user_id = ?"), userID); err != nil {
		return apperr.Wrap(apperr.KindStorage, "Nu am putut șterge rolul utilizatorului", err)
	}
	return nil
}
