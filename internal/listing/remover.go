package listing

import (
	"context"

	"github.com/rs/zerolog"
)

// Remover deletes listings.
type Remover struct {
	store Store
}

func NewRemover(s Store) *Remover {
	return &Remover{store: s}
}

// Delete removes the listing with the given id. Deleting a listing that does
// not exist succeeds.
func (r *Remover) Delete(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	existed, err := r.store.DeleteListing(ctx, id)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("id", id).Msg("delete failed")
		return err
	}
	zerolog.Ctx(ctx).Info().Str("id", id).Bool("existed", existed).Msg("listing deleted")
	return nil
}
