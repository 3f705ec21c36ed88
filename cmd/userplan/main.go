package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/sqlinline"
)

func main() {
	var (
		userFlag string
		planFlag string
	)

	flag.StringVar(&userFlag, "user", "", "user ID to update")
	flag.StringVar(&planFlag, "plan", "premium", "plan to assign (free, premium)")
	flag.Parse()

	_ = godotenv.Load()

	userID := strings.TrimSpace(userFlag)
	if userID == "" {
		exitWithError(errors.New("-user is required"))
	}

	plan, ok := domain.ParseTier(planFlag)
	if !ok {
		exitWithError(fmt.Errorf("unsupported plan %q", planFlag))
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "userplan").Logger()
	runner := infra.NewSQLRunner(pool, logger)

	updateCtx, cancelUpdate := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelUpdate()

	var updated domain.User
	row := runner.QueryRow(updateCtx, sqlinline.QUpdateUserTier, userID, string(plan))
	if err := row.Scan(&updated.ID, &updated.Email, &updated.Plan, &updated.CreatedAt, &updated.UpdatedAt); err != nil {
		exitWithError(fmt.Errorf("failed to update user plan: %w", err))
	}

	fmt.Printf("User %s (%s) updated to plan %s\n", updated.ID, updated.Email, updated.Plan)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
