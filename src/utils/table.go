package utils

import (
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/quantfold/orderflow-core/src/models"
)

// RenderPositionPlan formats a plan for console output and log lines.
func RenderPositionPlan(plan *models.PositionPlan) string {
	display := &strings.Builder{}

	table := tablewriter.NewWriter(display)
	table.SetAlignment(tablewriter.ALIGN_CENTER)
	table.SetColumnSeparator("")
	table.SetHeader([]string{"Symbol", "Side", "Qty", "Entry", "Stop", "Target", "Risk $", "Reward $", "R:R", "Source"})

	table.Append([]string{
		plan.Symbol,
		plan.Side.String(),
		strconv.FormatInt(plan.Quantity, 10),
		plan.EntryPrice.StringFixed(2),
		plan.StopPrice.StringFixed(2),
		plan.TargetPrice.StringFixed(2),
		plan.RiskAmount.StringFixed(2),
		plan.RewardAmount.StringFixed(2),
		plan.RewardRatio.StringFixed(2),
		plan.PullbackSource,
	})

	table.Render()

	return display.String()
}
