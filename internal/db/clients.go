package db

import (
	"context"
)

// Client is a merchant row, as much of it as the automation needs.
type Client struct {
	ID            int64
	Name          string
	ManagerChatID int64
	IsActive      bool
}

// ListActiveClients returns all merchants the scheduler should evaluate.
func (db *DB) ListActiveClients(ctx context.Context) ([]Client, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT id, name, manager_chat_id, is_active FROM clients WHERE is_active = 1 ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.Name, &c.ManagerChatID, &c.IsActive); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// GetManagerChatID returns the Telegram chat wired to a merchant, 0 when none.
func (db *DB) GetManagerChatID(ctx context.Context, clientID int64) (int64, error) {
	var chatID int64
	err := db.QueryRowContext(ctx,
		"SELECT manager_chat_id FROM clients WHERE id = ?", clientID).Scan(&chatID)
	if err != nil {
		return 0, err
	}
	return chatID, nil
}

// ListActiveClientIDs returns just the merchant ids, the shape the scheduler
// loop consumes.
func (db *DB) ListActiveClientIDs(ctx context.Context) ([]int64, error) {
	clients, err := db.ListActiveClients(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(clients))
	for i, c := range clients {
		ids[i] = c.ID
	}
	return ids, nil
}
