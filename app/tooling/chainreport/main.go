// This program summarizes the transactions in the latest block of an
// Ethereum node.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ardanlabs/chaindb/business/core/snapshot"
	"github.com/ardanlabs/chaindb/foundation/logger"
	"github.com/ardanlabs/conf/v3"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger. The report owns stdout.
	log, err := logger.New("CHAINREPORT", "stderr")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		RPC struct {
			URL     string        `conf:"default:http://localhost:8545,mask"`
			Timeout time.Duration `conf:"default:2m"`
		}
		Output string `conf:"default:text,help:text or json"`
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "latest block transaction report",
		},
	}

	const prefix = "CHAINREPORT"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Node Support

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RPC.Timeout)
	defer cancel()

	client, err := ethclient.DialContext(ctx, cfg.RPC.URL)
	if err != nil {
		return fmt.Errorf("dialing node: %w", err)
	}
	defer client.Close()

	// =========================================================================
	// Report

	report, err := snapshot.Take(ctx, client, log)
	if err != nil {
		return fmt.Errorf("taking snapshot: %w", err)
	}
	report.URL = cfg.RPC.URL

	return write(os.Stdout, report, cfg.Output)
}

func write(w io.Writer, report snapshot.Report, format string) error {
	switch format {
	case "text":
		return report.WriteText(w)

	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	return fmt.Errorf("unknown output format %q", format)
}
