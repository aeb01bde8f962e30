package blockchain

import (
	"context"
	"time"

	"wager-ledger/internal/models"

	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// DiagnosticResult holds the result of a chain connectivity check
type DiagnosticResult struct {
	RPCConnected    bool   `json:"rpc_connected"`
	RPCURL          string `json:"rpc_url,omitempty"`
	RPCError        string `json:"rpc_error,omitempty"`
	LatestBlockhash string `json:"latest_blockhash,omitempty"`
	ProgramID       string `json:"program_id"`
	SampleProfile   string `json:"sample_profile_pda,omitempty"`
	PDAError        string `json:"pda_error,omitempty"`
	Timestamp       string `json:"timestamp"`
}

// RunDiagnostics checks RPC connectivity and address derivation
func (c *AnchorClient) RunDiagnostics(ctx context.Context) *DiagnosticResult {
	programID := c.deriver.ProgramID()
	result := &DiagnosticResult{
		Timestamp: time.Now().Format(time.RFC3339),
		ProgramID: programID.String(),
		RPCURL:    c.rpcURL,
	}

	blockhash, err := c.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	switch {
	case err != nil:
		result.RPCError = err.Error()
		c.logger.Warn("chain rpc unreachable", zap.Error(err))
	case blockhash == nil || blockhash.Value == nil:
		result.RPCError = "empty blockhash response"
	default:
		result.RPCConnected = true
		result.LatestBlockhash = blockhash.Value.Blockhash.String()
	}

	// The program's own profile PDA is a stable derivation check.
	sample, _, err := c.deriver.ProfileAddress(models.Address(programID))
	if err != nil {
		result.PDAError = err.Error()
	} else {
		result.SampleProfile = sample.String()
	}

	return result
}
