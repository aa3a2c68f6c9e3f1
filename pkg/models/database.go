package models

import "time"

// DatabaseConnection is a registered target database. Name is the
// user-chosen unique identifier; URL is the raw connection URL and must
// never leave the process unmasked.
type DatabaseConnection struct {
	Name      string    `json:"name"`
	URL       string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateConnectionRequest is the body of a connection registration call.
type CreateConnectionRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ConnectionResponse is the externally visible form of a connection.
// ConnectionURL is always masked.
type ConnectionResponse struct {
	Name          string    `json:"name"`
	ConnectionURL string    `json:"connection_url"`
	DBType        string    `json:"db_type,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	TableCount    int       `json:"table_count"`
	ViewCount     int       `json:"view_count"`
}

// ConnectionListResponse wraps the connection listing.
type ConnectionListResponse struct {
	Data []ConnectionResponse `json:"data"`
}
