// Package support answers account-specific questions using the
// customer directory, tolerating unknown users and data-source errors.
package support

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/agentswarm/agentswarm/agent/contract"
	"github.com/agentswarm/agentswarm/agent/vocab"
)

const (
	agentName = "support"

	// transactionLimit caps the history pulled when the message implies
	// recent activity.
	transactionLimit = 3

	compositionTemperature = 0.4

	unknownCustomerAnswer = "I could not find an account for your user. " +
		"Please double-check that you are signed in with the right account, " +
		"or contact our support team so we can verify your registration."
)

// Agent composes account-aware technical answers. Lookups that fail are
// recorded in the trace and the answer degrades instead of erroring.
type Agent struct {
	directory    contractx.CustomerDirectory
	completion   contractx.CompletionClient
	systemPrompt string
}

var _ contractx.SupportAgent = (*Agent)(nil)

func New(directory contractx.CustomerDirectory, completion contractx.CompletionClient, systemPrompt string) *Agent {
	return &Agent{
		directory:    directory,
		completion:   completion,
		systemPrompt: systemPrompt,
	}
}

func (a *Agent) Answer(ctx context.Context, msg contractx.Message) (string, contractx.AgentStepTrace) {
	trace := contractx.NewStepTrace(agentName)

	info, err := a.directory.GetCustomerInfo(ctx, msg.UserID)
	if err != nil {
		trace.ToolCalls["get_customer_info"] = contractx.ToolResult{
			"success": false,
			"error":   err.Error(),
		}
		log.Debug().Err(err).Str("user_id", msg.UserID).Msg("customer lookup failed, returning generic guidance")
		return unknownCustomerAnswer, trace
	}
	trace.ToolCalls["get_customer_info"] = contractx.ToolResult{
		"success":        true,
		"account_status": info.AccountStatus,
		"products_count": len(info.Products),
	}

	status, statusErr := a.directory.CheckAccountStatus(ctx, msg.UserID)
	if statusErr != nil {
		trace.ToolCalls["check_account_status"] = contractx.ToolResult{
			"success": false,
			"error":   statusErr.Error(),
		}
	} else {
		trace.ToolCalls["check_account_status"] = contractx.ToolResult{
			"success":      true,
			"status":       status.Status,
			"issues_count": len(status.Issues),
		}
	}

	var transactions []contractx.Transaction
	if _, implied := vocab.MatchesTransaction(msg.Trimmed()); implied {
		var txnErr error
		transactions, txnErr = a.directory.GetRecentTransactions(ctx, msg.UserID, transactionLimit)
		if txnErr != nil {
			trace.ToolCalls["get_recent_transactions"] = contractx.ToolResult{
				"success": false,
				"error":   txnErr.Error(),
			}
		} else {
			trace.ToolCalls["get_recent_transactions"] = contractx.ToolResult{
				"success":       true,
				"results_count": len(transactions),
			}
		}
	}

	facts := accountFacts(info, status, transactions)
	answer, err := a.completion.Complete(ctx, a.systemPrompt, compositionPrompt(msg.Trimmed(), facts), compositionTemperature)
	if err != nil || strings.TrimSpace(answer) == "" {
		log.Debug().Err(err).Msg("support composition failed, returning account summary")
		return facts, trace
	}
	return answer, trace
}

// accountFacts renders the concrete account data as plain sentences.
// This string is both the composition grounding and the degraded answer.
func accountFacts(info *contractx.CustomerRecord, status *contractx.AccountStatus, transactions []contractx.Transaction) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Hello %s. Your account is %s.", info.Name, info.AccountStatus)
	fmt.Fprintf(&sb, " Current balance: R$ %.2f.", info.Balance)
	fmt.Fprintf(&sb, " Daily transfer limit: R$ %.2f, monthly limit: R$ %.2f.", info.DailyLimit, info.MonthlyLimit)
	if len(info.Products) > 0 {
		fmt.Fprintf(&sb, " Active products: %s.", strings.Join(info.Products, ", "))
	}

	if status != nil {
		if len(status.Issues) > 0 {
			fmt.Fprintf(&sb, " Detected issues: %s.", strings.Join(status.Issues, "; "))
		} else {
			sb.WriteString(" No issues were detected on your account.")
		}
		if status.LastTransaction != "" {
			fmt.Fprintf(&sb, " Last transaction on %s.", status.LastTransaction)
		}
	}

	if len(transactions) > 0 {
		sb.WriteString(" Recent transactions:")
		for _, txn := range transactions {
			fmt.Fprintf(&sb, " %s %s R$ %.2f (%s);", txn.Date, txn.Type, txn.Amount, txn.Description)
		}
	}
	return sb.String()
}

func compositionPrompt(question, facts string) string {
	var sb strings.Builder
	sb.WriteString("Customer message: ")
	sb.WriteString(question)
	sb.WriteString("\n\nAccount facts:\n")
	sb.WriteString(facts)
	sb.WriteString("\n\nWrite a clear support answer using only the account facts above.")
	return sb.String()
}
