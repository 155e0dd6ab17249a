package dbadmin

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Pgx administers databases over a direct admin connection.
type Pgx struct {
	url string
}

// NewPgx returns a provisioner connecting with the admin connection string url.
func NewPgx(url string) *Pgx {
	return &Pgx{url: url}
}

func (p *Pgx) withConn(ctx context.Context, fn func(*pgx.Conn) error) error {
	conn, err := pgx.Connect(ctx, p.url)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer conn.Close(ctx)
	return fn(conn)
}

// Exists queries pg_database for name.
func (p *Pgx) Exists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := p.withConn(ctx, func(conn *pgx.Conn) error {
		return p.exists(ctx, conn, name, &exists)
	})
	return exists, err
}

func (p *Pgx) exists(ctx context.Context, conn *pgx.Conn, name string, out *bool) error {
	var one int
	err := conn.QueryRow(ctx, "SELECT 1 FROM pg_database WHERE datname = $1", name).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		*out = false
		return nil
	}
	if err != nil {
		return fmt.Errorf("check database %s: %w", name, err)
	}
	*out = true
	return nil
}

// Create issues CREATE DATABASE unless name already exists.
func (p *Pgx) Create(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	return p.withConn(ctx, func(conn *pgx.Conn) error {
		var exists bool
		if err := p.exists(ctx, conn, name, &exists); err != nil {
			return err
		}
		if exists {
			return nil
		}
		// CREATE DATABASE cannot take bind parameters.
		if _, err := conn.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{name}.Sanitize()); err != nil {
			return fmt.Errorf("create database %s: %w", name, err)
		}
		return nil
	})
}

// Drop issues DROP DATABASE IF EXISTS.
func (p *Pgx) Drop(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	return p.withConn(ctx, func(conn *pgx.Conn) error {
		if _, err := conn.Exec(ctx, "DROP DATABASE IF EXISTS "+pgx.Identifier{name}.Sanitize()); err != nil {
			return fmt.Errorf("drop database %s: %w", name, err)
		}
		return nil
	})
}
