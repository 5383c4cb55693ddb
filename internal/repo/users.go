package repo

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, name, email, avatar_url, role, last_login_at, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.AvatarURL, &u.Role, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	return u, mapErr(err)
}

// UpsertIdentityParams descreve o snapshot do perfil recebido do provedor.
type UpsertIdentityParams struct {
	Provider       string
	ProviderUserID string
	ProviderEmail  *string
	RawProfile     json.RawMessage
}

// UpsertIdentity insere ou atualiza a identidade por (provider, provider_user_id) e avança last_login_at.
func (q *Queries) UpsertIdentity(ctx context.Context, arg UpsertIdentityParams) (UserIdentity, error) {
	const query = `
		INSERT INTO user_identities (provider, provider_user_id, provider_email, raw_profile, last_login_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (provider, provider_user_id) DO UPDATE
		SET provider_email = COALESCE(EXCLUDED.provider_email, user_identities.provider_email),
		    raw_profile = EXCLUDED.raw_profile,
		    last_login_at = now(),
		    updated_at = now()
		RETURNING id, user_id, provider, provider_user_id, provider_email, raw_profile, last_login_at
	`
	var ident UserIdentity
	err := q.db.QueryRow(ctx, query, arg.Provider, arg.ProviderUserID, arg.ProviderEmail, jsonOrEmpty(arg.RawProfile)).Scan(
		&ident.ID, &ident.UserID, &ident.Provider, &ident.ProviderUserID, &ident.ProviderEmail, &ident.RawProfile, &ident.LastLoginAt,
	)
	return ident, mapErr(err)
}

// LinkIdentity associa a identidade ao usuário.
func (q *Queries) LinkIdentity(ctx context.Context, identityID, userID uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `UPDATE user_identities SET user_id = $2, updated_at = now() WHERE id = $1`, identityID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateUserParams traz os campos iniciais de um usuário.
type CreateUserParams struct {
	Name      *string
	Email     *string
	AvatarURL *string
}

// CreateUser cria usuário já marcando o login atual.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	query := `
		INSERT INTO users (name, email, avatar_url, last_login_at)
		VALUES ($1, $2, $3, now())
		RETURNING ` + userColumns
	return scanUser(q.db.QueryRow(ctx, query, arg.Name, arg.Email, arg.AvatarURL))
}

// TouchUserLogin avança last_login_at e completa campos de exibição sem sobrescrever valores com nulos.
func (q *Queries) TouchUserLogin(ctx context.Context, id uuid.UUID, arg CreateUserParams) (User, error) {
	query := `
		UPDATE users
		SET name = COALESCE($2, name),
		    email = COALESCE($3, email),
		    avatar_url = COALESCE($4, avatar_url),
		    last_login_at = now(),
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(q.db.QueryRow(ctx, query, id, arg.Name, arg.Email, arg.AvatarURL))
}

// GetUserByID busca usuário pelo identificador.
func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	return scanUser(q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// FindUserByEmail busca o usuário mais antigo com o e-mail informado.
func (q *Queries) FindUserByEmail(ctx context.Context, email string) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = $1 ORDER BY created_at LIMIT 1`
	return scanUser(q.db.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email))))
}
