package main

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/quantfold/orderflow-core/src/audit"
	"github.com/quantfold/orderflow-core/src/models"
	"github.com/quantfold/orderflow-core/src/risk"
	"github.com/quantfold/orderflow-core/src/utils"
)

type RunArgs struct {
	Symbol   string
	Entry    string
	Stop     string
	TargetRR string
	Balance  string
	RiskPct  string
	Source   string
	Record   bool
}

func parsePrice(name, value string) (decimal.Decimal, error) {
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}

	return parsed, nil
}

func Run(args RunArgs) (*models.PositionPlan, error) {
	entry, err := parsePrice("entry", args.Entry)
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}

	stop, err := parsePrice("stop", args.Stop)
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}

	targetRR, err := parsePrice("rr", args.TargetRR)
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}

	balance, err := parsePrice("balance", args.Balance)
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}

	riskPct, err := parsePrice("risk", args.RiskPct)
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}

	plan, err := risk.CalculatePositionPlan(risk.PlanRequest{
		Symbol:         args.Symbol,
		EntryPrice:     entry,
		StopPrice:      stop,
		TargetRR:       targetRR,
		Balance:        balance,
		RiskPct:        riskPct,
		PullbackSource: args.Source,
	})
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}

	if args.Record {
		dsn := os.Getenv("AUDIT_DATABASE_URL")
		if dsn == "" {
			return nil, fmt.Errorf("Run: missing AUDIT_DATABASE_URL environment variable")
		}

		store, err := audit.NewPostgresStore(dsn)
		if err != nil {
			return nil, fmt.Errorf("Run: %w", err)
		}

		if _, err := store.RecordPlan(plan); err != nil {
			return nil, fmt.Errorf("Run: %w", err)
		}
	}

	return plan, nil
}

var runCmd = &cobra.Command{
	Use:   "plan --symbol AAPL --entry 100.00 --stop 93.00 --rr 2.0 --balance 10000 --risk 1.0",
	Short: "Calculate a risk-bounded position plan",
	Run: func(cmd *cobra.Command, args []string) {
		runArgs := RunArgs{}

		var err error
		if runArgs.Symbol, err = cmd.Flags().GetString("symbol"); err != nil {
			log.Fatalf("error getting symbol: %v", err)
		}
		if runArgs.Entry, err = cmd.Flags().GetString("entry"); err != nil {
			log.Fatalf("error getting entry: %v", err)
		}
		if runArgs.Stop, err = cmd.Flags().GetString("stop"); err != nil {
			log.Fatalf("error getting stop: %v", err)
		}
		if runArgs.TargetRR, err = cmd.Flags().GetString("rr"); err != nil {
			log.Fatalf("error getting rr: %v", err)
		}
		if runArgs.Balance, err = cmd.Flags().GetString("balance"); err != nil {
			log.Fatalf("error getting balance: %v", err)
		}
		if runArgs.RiskPct, err = cmd.Flags().GetString("risk"); err != nil {
			log.Fatalf("error getting risk: %v", err)
		}
		if runArgs.Source, err = cmd.Flags().GetString("source"); err != nil {
			log.Fatalf("error getting source: %v", err)
		}
		if runArgs.Record, err = cmd.Flags().GetBool("record"); err != nil {
			log.Fatalf("error getting record: %v", err)
		}

		plan, err := Run(runArgs)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}

		fmt.Print(utils.RenderPositionPlan(plan))
	},
}

func main() {
	runCmd.Flags().String("symbol", "", "ticker symbol")
	runCmd.Flags().String("entry", "", "entry price")
	runCmd.Flags().String("stop", "", "stop price")
	runCmd.Flags().String("rr", "2.0", "target reward:risk ratio")
	runCmd.Flags().String("balance", "", "account balance")
	runCmd.Flags().String("risk", "1.0", "risk percent of balance")
	runCmd.Flags().String("source", "manual", "stop source: atr, pullback or manual")
	runCmd.Flags().Bool("record", false, "persist the plan to the audit trail")

	runCmd.MarkFlagRequired("symbol")
	runCmd.MarkFlagRequired("entry")
	runCmd.MarkFlagRequired("stop")
	runCmd.MarkFlagRequired("balance")

	if err := runCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
