// Package errors provides structured, coded error handling for the game core.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Commit log errors
	CodeAlreadyExists     Code = "ALREADY_EXISTS"
	CodeNotFound          Code = "NOT_FOUND"
	CodeCorruptEntry      Code = "CORRUPT_ENTRY"
	CodeBusy              Code = "BUSY"
	CodeWriteError        Code = "WRITE_ERROR"
	CodeTimeout           Code = "TIMEOUT"
	CodeCommitEmpty       Code = "COMMIT_EMPTY"
	CodeAlreadySubscribed Code = "ALREADY_SUBSCRIBED"
	CodeCycleSuspected    Code = "CYCLE_SUSPECTED"

	// Player errors
	CodePlayerNameEmpty     Code = "PLAYER_NAME_EMPTY"
	CodePlayerNameTaken     Code = "PLAYER_NAME_TAKEN"
	CodePlayerNotFound      Code = "PLAYER_NOT_FOUND"
	CodePlayerAlreadyInGame Code = "PLAYER_ALREADY_IN_GAME"

	// Game errors
	CodeGameNameTaken        Code = "GAME_NAME_TAKEN"
	CodeGameNotFound         Code = "GAME_NOT_FOUND"
	CodeGameAlreadyStarted   Code = "GAME_ALREADY_STARTED"
	CodeGameFull             Code = "GAME_FULL"
	CodeGameNotEnoughPlayers Code = "GAME_NOT_ENOUGH_PLAYERS"
	CodeGameNotHost          Code = "GAME_NOT_HOST"
	CodeGameOwnGame          Code = "GAME_OWN_GAME"

	// Turn and stage errors
	CodeTurnOutOfOrder  Code = "TURN_OUT_OF_ORDER"
	CodeStageDisallowed Code = "STAGE_DISALLOWS_OPERATION"

	// Territory errors
	CodeTerritoryUnknown     Code = "TERRITORY_UNKNOWN"
	CodeTerritoryNotOwned    Code = "TERRITORY_NOT_OWNED"
	CodeTerritoryNotAdjacent Code = "TERRITORY_NOT_ADJACENT"

	// Battle errors
	CodeBattleInvalidLoss Code = "BATTLE_INVALID_LOSS"

	// Reinforcement errors
	CodeReinforcementExhausted Code = "REINFORCEMENT_EXHAUSTED"

	// Card errors
	CodeCardsWrongCount    Code = "CARDS_WRONG_COUNT"
	CodeCardsNotOwned      Code = "CARDS_NOT_OWNED"
	CodeCardsNotRedeemable Code = "CARDS_NOT_REDEEMABLE"
)

// GRPCCode maps domain codes to gRPC status codes for the API surface.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodePlayerNameEmpty,
		CodeCommitEmpty,
		CodeCardsWrongCount,
		CodeTerritoryUnknown:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeBusy,
		CodeGameAlreadyStarted,
		CodeGameFull,
		CodeGameNotEnoughPlayers,
		CodeGameNotHost,
		CodeGameOwnGame,
		CodePlayerAlreadyInGame,
		CodeTurnOutOfOrder,
		CodeStageDisallowed,
		CodeTerritoryNotOwned,
		CodeTerritoryNotAdjacent,
		CodeBattleInvalidLoss,
		CodeReinforcementExhausted,
		CodeCardsNotOwned,
		CodeCardsNotRedeemable,
		CodeAlreadySubscribed,
		CodeCycleSuspected:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist
	case CodeNotFound,
		CodePlayerNotFound,
		CodeGameNotFound:
		return codes.NotFound

	// AlreadyExists - unique resource constraint
	case CodeAlreadyExists,
		CodePlayerNameTaken,
		CodeGameNameTaken:
		return codes.AlreadyExists

	case CodeTimeout:
		return codes.DeadlineExceeded

	case CodeCorruptEntry:
		return codes.DataLoss

	default:
		return codes.Internal
	}
}
