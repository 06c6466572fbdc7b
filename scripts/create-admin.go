// Command create-admin provisions an admin user directly in the
// database. Intended for bootstrapping a fresh deployment.
//
// Usage:
//
//	go run ./scripts/create-admin.go -email admin@example.com -password secret123
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/billax/billax/internal/auth"
	"github.com/billax/billax/internal/model"
	"github.com/billax/billax/internal/repository"
)

type output struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		email       = flag.String("email", "", "admin email address")
		password    = flag.String("password", "", "admin password (min 8 characters)")
		firstName   = flag.String("first-name", "Admin", "first name")
		lastName    = flag.String("last-name", "User", "last name")
	)
	flag.Parse()

	if *databaseURL == "" {
		fatal("DATABASE_URL is required (flag or env)")
	}
	if *email == "" || !strings.Contains(*email, "@") {
		fatal("-email is required")
	}
	if *password == "" {
		fatal("-password is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fatal("connect to database: %v", err)
	}
	defer repo.Close()

	hash, err := auth.HashPassword(*password)
	if err != nil {
		fatal("hash password: %v", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           ulid.Make().String(),
		Email:        strings.ToLower(strings.TrimSpace(*email)),
		PasswordHash: hash,
		FirstName:    *firstName,
		LastName:     *lastName,
		Role:         model.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := repo.CreateUser(ctx, user); err != nil {
		fatal("create user: %v", err)
	}

	out := output{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
