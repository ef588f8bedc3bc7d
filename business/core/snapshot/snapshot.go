// Package snapshot summarizes the transactions carried by the latest block
// of an Ethereum node.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/ardanlabs/chaindb/foundation/stats"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/params"
	"go.uber.org/zap"
)

// ether is the number of wei in one ether.
var ether = new(big.Float).SetInt(big.NewInt(params.Ether))

// Client represents the node behavior required to take a snapshot. It is
// satisfied by *ethclient.Client.
type Client interface {
	BlockNumber(ctx context.Context) (uint64, error)
	BlockByNumber(ctx context.Context, number *big.Int) (*types.Block, error)
	TransactionByHash(ctx context.Context, hash common.Hash) (tx *types.Transaction, isPending bool, err error)
}

// Report is the result of a snapshot. All amounts are in ether.
type Report struct {
	URL         string        `json:"url"`
	Connected   bool          `json:"is_connected"`
	BlockNumber uint64        `json:"block_number"`
	Count       int           `json:"count"`
	Value       stats.Summary `json:"value"`
	Gas         stats.Summary `json:"gas"`
	GasPrice    stats.Summary `json:"gas_price"`
	Elapsed     time.Duration `json:"-"`
}

// Take reads the latest block, fetches every transaction in it and
// summarizes value, gas and gas price. An empty block produces a report with
// a zero count and zero summaries.
func Take(ctx context.Context, client Client, log *zap.SugaredLogger) (Report, error) {
	started := time.Now()

	number, err := client.BlockNumber(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("reading block number: %w", err)
	}

	report := Report{
		Connected:   true,
		BlockNumber: number,
	}

	// A nil number asks the node for its latest block.
	block, err := client.BlockByNumber(ctx, nil)
	if err != nil {
		return report, fmt.Errorf("reading latest block: %w", err)
	}

	log.Infow("snapshot", "status", "block fetched", "block_number", number, "latest", block.NumberU64(), "transactions", len(block.Transactions()))

	var values, gas, gasPrice []float64
	for _, blockTx := range block.Transactions() {
		tx, _, err := client.TransactionByHash(ctx, blockTx.Hash())
		if err != nil {
			return report, fmt.Errorf("reading transaction %s: %w", blockTx.Hash(), err)
		}

		values = append(values, toEther(tx.Value()))
		gas = append(gas, toEther(new(big.Int).SetUint64(tx.Gas())))
		gasPrice = append(gasPrice, toEther(tx.GasPrice()))
	}

	report.Count = len(values)

	if report.Count > 0 {
		if report.Value, err = stats.Summarize(values); err != nil {
			return report, fmt.Errorf("summarizing values: %w", err)
		}

		if report.Gas, err = stats.Summarize(gas); err != nil {
			return report, fmt.Errorf("summarizing gas: %w", err)
		}

		if report.GasPrice, err = stats.Summarize(gasPrice); err != nil {
			return report, fmt.Errorf("summarizing gas price: %w", err)
		}
	}

	report.Elapsed = time.Since(started)

	log.Infow("snapshot", "status", "block calculated", "count", report.Count, "elapsed", report.Elapsed)

	return report, nil
}

// WriteText writes the report in its human readable layout.
func (r Report) WriteText(w io.Writer) error {
	ew := errWriter{w: w}

	ew.printf("url %s\n", r.URL)
	ew.printf("is_connected: %t\n", r.Connected)
	ew.printf("block_number: %d\n", r.BlockNumber)
	ew.printf("Block calculated in %.6f seconds.\n", r.Elapsed.Seconds())
	ew.printf("Count: %d\n", r.Count)

	sections := []struct {
		title   string
		summary stats.Summary
	}{
		{"Transaction values:", r.Value},
		{"Gas values:", r.Gas},
		{"GasPrice values:", r.GasPrice},
	}

	for i, s := range sections {
		if i > 0 {
			ew.printf("\n")
		}
		ew.printf("%s\n", s.title)
		ew.printf("Maximal value [ETH]: %v\n", s.summary.Max)
		ew.printf("Minimal value [ETH]: %v\n", s.summary.Min)
		ew.printf("Median value [ETH]: %v\n", s.summary.Median)
		ew.printf("Average value [ETH]: %v\n", s.summary.Mean)
	}

	ew.printf(" --- \n")

	return ew.err
}

// MarshalJSON renders the elapsed time as a duration string.
func (r Report) MarshalJSON() ([]byte, error) {
	type report Report

	return json.Marshal(struct {
		report
		Elapsed string `json:"elapsed"`
	}{
		report:  report(r),
		Elapsed: r.Elapsed.String(),
	})
}

// =============================================================================

func toEther(wei *big.Int) float64 {
	if wei == nil {
		return 0
	}

	f, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), ether).Float64()
	return f
}

// errWriter keeps the first write error so a layout can be written without
// checking every line.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, a ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, a...)
}
