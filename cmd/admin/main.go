// Command admin creates an ADMIN account directly in the configured store.
//
//	admin -d postgres://... -username root -email root@example.com -first Ada -last Lovelace
package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/accountkeeper/internal/admincli"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server"
	"github.com/dmitrijs2005/accountkeeper/internal/server/config"
)

func main() {
	ctx := context.Background()

	opts, err := admincli.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if cfg.DatabaseDSN == "" {
		log.Fatalf("a database DSN is required (-d or ACCOUNTS_DATABASE_DSN)")
	}

	logger := logging.NewJSON(os.Stderr, cfg.LogLevel)

	st, err := server.OpenStorage(ctx, cfg.DatabaseDSN, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer st.Close()

	accounts := server.NewAccountService(cfg, st, logger)

	if err := admincli.Run(ctx, os.Stdout, accounts, opts, admincli.TerminalPassword); err != nil {
		st.Close()
		log.Fatalf("%v", err)
	}
}
