package rpc

import (
	"encoding/json"
	"fmt"

	"github.com/blockberries/fquorum/crypto"
	"github.com/blockberries/fquorum/engine"
	"github.com/blockberries/fquorum/types"
)

// NewValidatorServer builds a Server exposing the four endpoints spec §6
// names: send_raw_transaction, submit_vote, submit_votes and
// get_recovery_info, plus a get_account convenience query.
func NewValidatorServer(v *engine.Validator) (*Server, error) {
	return NewServerBuilder().
		WithMethod("send_raw_transaction", sendRawTransaction(v)).
		WithMethod("submit_vote", submitVote(v)).
		WithMethod("submit_votes", submitVotes(v)).
		WithMethod("get_recovery_info", getRecoveryInfo(v)).
		WithMethod("get_account", getAccount(v)).
		Build()
}

type sendRawTransactionParams struct {
	Transaction *types.Transaction `json:"transaction"`
}

func sendRawTransaction(v *engine.Validator) Handler {
	return func(raw json.RawMessage) (any, error) {
		var params sendRawTransactionParams
		if err := json.Unmarshal(raw, &params); err != nil {
			return nil, fmt.Errorf("rpc: decoding send_raw_transaction params: %w", err)
		}
		if params.Transaction == nil {
			return nil, fmt.Errorf("rpc: send_raw_transaction requires a transaction")
		}
		vote, err := v.OnTransaction(params.Transaction)
		if err != nil {
			return nil, err
		}
		return vote, nil
	}
}

type submitVoteParams struct {
	Vote types.Vote `json:"vote"`
}

func submitVote(v *engine.Validator) Handler {
	return func(raw json.RawMessage) (any, error) {
		var params submitVoteParams
		if err := json.Unmarshal(raw, &params); err != nil {
			return nil, fmt.Errorf("rpc: decoding submit_vote params: %w", err)
		}
		if err := v.OnVote(params.Vote); err != nil {
			return nil, err
		}
		return struct{}{}, nil
	}
}

type submitVotesParams struct {
	Votes []types.Vote `json:"votes"`
}

func submitVotes(v *engine.Validator) Handler {
	return func(raw json.RawMessage) (any, error) {
		var params submitVotesParams
		if err := json.Unmarshal(raw, &params); err != nil {
			return nil, fmt.Errorf("rpc: decoding submit_votes params: %w", err)
		}
		if err := v.OnVotes(params.Votes); err != nil {
			return nil, err
		}
		return struct{}{}, nil
	}
}

type accountParams struct {
	Account crypto.Address `json:"account"`
}

func getRecoveryInfo(v *engine.Validator) Handler {
	return func(raw json.RawMessage) (any, error) {
		var params accountParams
		if err := json.Unmarshal(raw, &params); err != nil {
			return nil, fmt.Errorf("rpc: decoding get_recovery_info params: %w", err)
		}
		info, err := v.RecoveryInfo(params.Account)
		if err != nil {
			return nil, err
		}
		return info, nil
	}
}

func getAccount(v *engine.Validator) Handler {
	return func(raw json.RawMessage) (any, error) {
		var params accountParams
		if err := json.Unmarshal(raw, &params); err != nil {
			return nil, fmt.Errorf("rpc: decoding get_account params: %w", err)
		}
		snap, err := v.Account(params.Account)
		if err != nil {
			return nil, err
		}
		return snap, nil
	}
}
