package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	shadowid "github.com/shadowid/shadowid"
)

var _ shadowid.IdentityProvider = (*Postgres)(nil)

// Postgres implements IdentityProvider over database/sql. The caller opens
// the pool (pgx stdlib driver) and owns its lifecycle.
type Postgres struct {
	db *sql.DB
}

// NewPostgres wraps an open connection pool.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the users table when it does not exist yet.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		create table if not exists users (
			id uuid primary key,
			anonymous_identifier varchar(256) not null unique,
			role varchar(50) not null default 'user',
			created_at timestamptz not null default now(),
			last_login timestamptz
		)`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Create inserts a new identity with the default role.
func (p *Postgres) Create(ctx context.Context, anonymousIdentifier string) (shadowid.Identity, error) {
	id := shadowid.Identity{
		ID:                  uuid.NewString(),
		AnonymousIdentifier: anonymousIdentifier,
		Role:                shadowid.RoleUser,
		CreatedAt:           time.Now().UTC(),
	}

	_, err := p.db.ExecContext(ctx,
		`insert into users(id, anonymous_identifier, role, created_at) values($1, $2, $3, $4)
		 on conflict (anonymous_identifier) do nothing`,
		id.ID, id.AnonymousIdentifier, string(id.Role), id.CreatedAt,
	)
	if err != nil {
		return shadowid.Identity{}, err
	}

	// The conflict clause makes duplicate seeds race-safe; read back the
	// winning row so Create reports the canonical record or ErrIdentityExists.
	existing, err := p.FindByIdentifier(ctx, anonymousIdentifier)
	if err != nil {
		return shadowid.Identity{}, err
	}
	if existing.ID != id.ID {
		return existing, shadowid.ErrIdentityExists
	}
	return existing, nil
}

// FindByIdentifier looks up an identity by its anonymous identifier.
func (p *Postgres) FindByIdentifier(ctx context.Context, anonymousIdentifier string) (shadowid.Identity, error) {
	row := p.db.QueryRowContext(ctx,
		`select id, anonymous_identifier, role, created_at, last_login
		 from users where anonymous_identifier = $1`,
		anonymousIdentifier,
	)

	var (
		rec       shadowid.Identity
		role      string
		lastLogin sql.NullTime
	)
	if err := row.Scan(&rec.ID, &rec.AnonymousIdentifier, &role, &rec.CreatedAt, &lastLogin); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return shadowid.Identity{}, shadowid.ErrIdentityNotFound
		}
		return shadowid.Identity{}, err
	}
	rec.Role = shadowid.Role(role)
	if lastLogin.Valid {
		t := lastLogin.Time
		rec.LastLogin = &t
	}
	return rec, nil
}

// UpdateLastLogin stamps the last successful login time.
func (p *Postgres) UpdateLastLogin(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx,
		`update users set last_login = now() where id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return shadowid.ErrIdentityNotFound
	}
	return nil
}
