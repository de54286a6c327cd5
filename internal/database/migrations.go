package database

import (
	"fmt"
	"log"
	"os"
)

// Initialize creates all required tables
// Uses INFORMATION_SCHEMA to check for table existence (MySQL-compatible),
// so it is safe to run on every startup.
func (db *DB) Initialize() error {
	log.Println("🔍 Checking database schema...")

	if err := db.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("✅ Database initialized successfully")
	return nil
}

func (db *DB) runMigrations() error {
	dbName := os.Getenv("MYSQL_DATABASE")
	if dbName == "" {
		dbName = "planhub" // default
	}

	tableExists := func(tableName string) (bool, error) {
		var count int
		query := `
			SELECT COUNT(*)
			FROM INFORMATION_SCHEMA.TABLES
			WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		`
		err := db.QueryRow(query, dbName, tableName).Scan(&count)
		if err != nil {
			return false, err
		}
		return count > 0, nil
	}

	createTable := func(name, ddl string) error {
		exists, err := tableExists(name)
		if err != nil {
			return fmt.Errorf("failed to check table %s: %w", name, err)
		}
		if exists {
			return nil
		}
		log.Printf("📦 Running migration: creating %s table", name)
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", name, err)
		}
		log.Printf("✅ Migration completed: %s table created", name)
		return nil
	}

	migrations := []struct {
		name string
		ddl  string
	}{
		{"users", `
			CREATE TABLE users (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				email VARCHAR(255) COMMENT 'Empty means push-only notification',
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				INDEX idx_email (email)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci
		`},
		{"projects", `
			CREATE TABLE projects (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				code VARCHAR(64) NOT NULL,
				end_date DATETIME NULL COMMENT 'Projects without a deadline skip reminders',
				status VARCHAR(32) NOT NULL DEFAULT 'PLANNING',
				manager_id BIGINT NOT NULL,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
				INDEX idx_deadline (end_date, status),
				INDEX idx_manager (manager_id)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci
		`},
		{"project_members", `
			CREATE TABLE project_members (
				project_id BIGINT NOT NULL,
				user_id BIGINT NOT NULL,
				role VARCHAR(32) NOT NULL COMMENT 'implementer or follower',
				PRIMARY KEY (project_id, user_id, role),
				INDEX idx_user (user_id)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci
		`},
		{"tasks", `
			CREATE TABLE tasks (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				title VARCHAR(500) NOT NULL,
				end_date DATETIME NULL,
				status VARCHAR(32) NOT NULL DEFAULT 'TODO',
				type VARCHAR(32) NOT NULL DEFAULT 'PERSONAL',
				creator_id BIGINT NOT NULL,
				reminder_at DATETIME NULL,
				is_reminder_sent BOOLEAN NOT NULL DEFAULT FALSE COMMENT 'One-way latch per reminder occurrence',
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
				INDEX idx_deadline (end_date, status, type),
				INDEX idx_reminder (reminder_at, is_reminder_sent)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci
		`},
		{"kanban_boards", `
			CREATE TABLE kanban_boards (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				title VARCHAR(255) NOT NULL,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci
		`},
		{"kanban_lists", `
			CREATE TABLE kanban_lists (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				board_id BIGINT NOT NULL,
				title VARCHAR(255) NOT NULL,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				INDEX idx_board (board_id)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci
		`},
		{"kanban_cards", `
			CREATE TABLE kanban_cards (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				list_id BIGINT NOT NULL,
				title VARCHAR(500) NOT NULL,
				due_date DATETIME NULL,
				completed BOOLEAN NOT NULL DEFAULT FALSE,
				deadline_reminder_sent BOOLEAN NOT NULL DEFAULT FALSE COMMENT 'One-way latch per deadline occurrence',
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
				INDEX idx_list (list_id),
				INDEX idx_deadline (due_date, completed, deadline_reminder_sent)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci
		`},
		{"kanban_card_assignees", `
			CREATE TABLE kanban_card_assignees (
				card_id BIGINT NOT NULL,
				user_id BIGINT NOT NULL,
				PRIMARY KEY (card_id, user_id),
				INDEX idx_user (user_id)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci
		`},
		{"kanban_board_members", `
			CREATE TABLE kanban_board_members (
				board_id BIGINT NOT NULL,
				user_id BIGINT NOT NULL,
				PRIMARY KEY (board_id, user_id),
				INDEX idx_user (user_id)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci
		`},
	}

	for _, m := range migrations {
		if err := createTable(m.name, m.ddl); err != nil {
			return err
		}
	}

	log.Println("✅ All migrations completed")
	return nil
}
