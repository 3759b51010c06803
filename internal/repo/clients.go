package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const clientColumns = `
id, nom, postnom, prenom, full_name, matricule, date_naissance, adresse,
pays_origine, phone_number, whatsapp_number, whatsapp_country_code, email,
nationality, document_type, commentaire, total_sejours, total_nuits,
fidelite_score, tags, statut, attribue_par, is_vip, is_duplicate,
created_at, updated_at`

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	err := row.Scan(
		&c.ID, &c.Nom, &c.Postnom, &c.Prenom, &c.FullName, &c.Matricule,
		&c.DateNaissance, &c.Adresse, &c.PaysOrigine, &c.PhoneNumber,
		&c.WhatsappNumber, &c.WhatsappCountryCode, &c.Email, &c.Nationality,
		&c.DocumentType, &c.Commentaire, &c.TotalSejours, &c.TotalNuits,
		&c.FideliteScore, &c.Tags, &c.Statut, &c.AttribuePar, &c.IsVIP,
		&c.IsDuplicate, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// InsertClient stores a new client row and returns the persisted record.
func (r *Repository) InsertClient(ctx context.Context, c Client) (*Client, error) {
	const q = `
INSERT INTO clients (
    nom, postnom, prenom, full_name, matricule, date_naissance, adresse,
    pays_origine, phone_number, whatsapp_number, whatsapp_country_code, email,
    nationality, document_type, commentaire, total_sejours, total_nuits,
    fidelite_score, tags, statut, attribue_par, is_vip, is_duplicate
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
        $16, $17, $18, $19, $20, $21, $22, $23)
RETURNING ` + clientColumns + `;`

	row := r.pool.QueryRow(ctx, q,
		c.Nom, c.Postnom, c.Prenom, c.FullName, c.Matricule, c.DateNaissance,
		c.Adresse, c.PaysOrigine, c.PhoneNumber, c.WhatsappNumber,
		c.WhatsappCountryCode, c.Email, c.Nationality, c.DocumentType,
		c.Commentaire, c.TotalSejours, c.TotalNuits, c.FideliteScore, c.Tags,
		c.Statut, c.AttribuePar, c.IsVIP, c.IsDuplicate,
	)
	inserted, err := scanClient(row)
	if err != nil {
		return nil, fmt.Errorf("insert client: %w", err)
	}
	return inserted, nil
}

// GetClientByID returns a client by internal identifier.
func (r *Repository) GetClientByID(ctx context.Context, id string) (*Client, error) {
	q := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1 LIMIT 1;`
	c, err := scanClient(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get client by id: %w", err)
	}
	return c, nil
}

// FindClientByPhone looks a client up by WhatsApp number or classic phone,
// with and without the country code prefix. Used by chat authentication.
func (r *Repository) FindClientByPhone(ctx context.Context, number, countryCode string) (*Client, error) {
	q := `
SELECT ` + clientColumns + `
FROM clients
WHERE whatsapp_number = $1
   OR phone_number = $1
   OR phone_number = $2
ORDER BY created_at DESC
LIMIT 1;`
	c, err := scanClient(r.pool.QueryRow(ctx, q, number, countryCode+number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find client by phone: %w", err)
	}
	return c, nil
}

// FindReturningClient probes for an existing client matching the WhatsApp
// number exactly or the surname as a case-insensitive partial match. A hit
// means the registration at hand is a returning visit, not a new relationship.
func (r *Repository) FindReturningClient(ctx context.Context, whatsappNumber, surname string) (*Client, error) {
	q := `
SELECT ` + clientColumns + `
FROM clients
WHERE whatsapp_number = $1
   OR full_name ILIKE '%' || $2 || '%'
ORDER BY created_at ASC
LIMIT 1;`
	c, err := scanClient(r.pool.QueryRow(ctx, q, whatsappNumber, surname))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find returning client: %w", err)
	}
	return c, nil
}

// ListClients returns all clients, newest first.
func (r *Repository) ListClients(ctx context.Context) ([]Client, error) {
	q := `SELECT ` + clientColumns + ` FROM clients ORDER BY created_at DESC;`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clients: %w", err)
	}
	return clients, nil
}
