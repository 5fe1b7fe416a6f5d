// Package seed registers the console's sample identities.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ErlanBelekov/admin-console/internal/domain"
	"github.com/ErlanBelekov/admin-console/internal/password"
	"github.com/ErlanBelekov/admin-console/internal/repository"
	"github.com/ErlanBelekov/admin-console/internal/validate"
)

type Identity struct {
	Identifier string `validate:"required,identifier"`
	Secret     string `validate:"required,secret"`
}

var Samples = []Identity{
	{Identifier: "admin@example.com", Secret: "Password1234"},
	{Identifier: "admin.s12345@allright.com", Secret: "Password1234"},
	{Identifier: "user.s12345@allright.com", Secret: "Password1234"},
	{Identifier: "superadmin.s12345@allright.com", Secret: "Admin1234"},
}

// Run hashes and stores each identity. Existing identifiers are skipped so the
// command can be re-run. Returns the number created.
func Run(ctx context.Context, repo repository.IdentityRepository, identities []Identity, logger *slog.Logger) (int, error) {
	v := validate.New()
	created := 0

	for _, in := range identities {
		if err := v.Struct(in); err != nil {
			return created, fmt.Errorf("invalid identity %q: %w", in.Identifier, err)
		}

		hash, err := password.Hash(in.Secret)
		if err != nil {
			return created, fmt.Errorf("hash secret for %q: %w", in.Identifier, err)
		}

		if _, err := repo.CreateIdentity(ctx, in.Identifier, hash); err != nil {
			if errors.Is(err, domain.ErrIdentityExists) {
				logger.Debug("identity already present", "identifier", in.Identifier)
				continue
			}
			return created, fmt.Errorf("create identity %q: %w", in.Identifier, err)
		}
		created++
	}
	return created, nil
}
