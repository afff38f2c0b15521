package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/trezcool/acadify/core"
	"github.com/trezcool/acadify/core/academic"
	"github.com/trezcool/acadify/core/session"
	logsvc "github.com/trezcool/acadify/services/logger"
	"github.com/trezcool/acadify/storage/kvrepo"
	"github.com/trezcool/acadify/storage/kvstore"
)

func main() {
	os.Exit(start())
}

func start() int {
	ctx := context.Background()
	conf := core.NewConfig()

	// logs go to stderr only while debugging; rollbar takes over otherwise
	var logOut io.Writer = io.Discard
	if conf.Debug {
		logOut = os.Stderr
	}
	logger := logsvc.NewRollbarLogger(log.New(logOut, "ACADIFY : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	defer logger.Close()

	// set up store
	kv, closeStore, err := kvstore.Open(ctx, conf.Store)
	if err != nil {
		logger.Error("opening store", err, map[string]interface{}{"engine": conf.Store.Engine})
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error("closing store", err)
		}
	}()
	repo := kvrepo.New(kv, conf.Store.KeyPrefix, logger)

	// set up services
	validate, translator := core.NewValidator()
	academic.InitValidators(validate, translator)
	svc := academic.NewService(repo, validate, translator, logger)
	sessions := session.NewManager(repo, svc, logger)

	// the demo data is installed on first use
	if err = svc.Seed(ctx); err != nil {
		logger.Error("seeding", err)
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	// start CLI
	cli := commandLine{svc: svc, sessions: sessions, out: os.Stdout}
	if err = cli.run(ctx, os.Args); err != nil {
		if err != errHelp {
			if !isUserError(err) {
				logger.Error("command failed", err)
			}
			fmt.Fprintf(os.Stderr, "error: %s\n", describeError(err))
		}
		return 1
	}
	return 0
}
