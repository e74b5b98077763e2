// Command admin creates a user directly in the database, typically the first
// administrator of a fresh deployment. It reads the same configuration as
// the server.
package main

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/admin"
	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

func main() {

	if err := run(context.Background()); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

}

// run returns instead of exiting so deferred cleanup always happens.
func run(ctx context.Context) error {
	cfg := config.LoadConfig()
	logger := logging.NewJSONLogger(os.Stderr, cfg.LogLevel)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	us := services.NewUserService(db, m, cryptox.NewArgon2Hasher(cryptox.DefaultParams), logger)

	return admin.Run(ctx, us, bufio.NewReader(os.Stdin), os.Stdout)
}
