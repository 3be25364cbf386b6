package solana

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/ybbus/jsonrpc"
)

// TransactionErrorKey is the string key of a transaction error.
//
// Source: https://github.com/solana-labs/solana/blob/fc2bf2d3b669d1c6655ae48b0a05f470938f3676/sdk/src/transaction/mod.rs#L37
type TransactionErrorKey string

const (
	TransactionErrorAccountInUse             TransactionErrorKey = "AccountInUse"
	TransactionErrorAccountLoadedTwice       TransactionErrorKey = "AccountLoadedTwice"
	TransactionErrorAccountNotFound          TransactionErrorKey = "AccountNotFound"
	TransactionErrorProgramAccountNotFound   TransactionErrorKey = "ProgramAccountNotFound"
	TransactionErrorInsufficientFundsForFee  TransactionErrorKey = "InsufficientFundsForFee"
	TransactionErrorInvalidAccountForFee     TransactionErrorKey = "InvalidAccountForFee"
	TransactionErrorAlreadyProcessed         TransactionErrorKey = "AlreadyProcessed"
	TransactionErrorBlockhashNotFound        TransactionErrorKey = "BlockhashNotFound"
	TransactionErrorInstructionError         TransactionErrorKey = "InstructionError"
	TransactionErrorMissingSignatureForFee   TransactionErrorKey = "MissingSignatureForFee"
	TransactionErrorInvalidAccountIndex      TransactionErrorKey = "InvalidAccountIndex"
	TransactionErrorSignatureFailure         TransactionErrorKey = "SignatureFailure"
	TransactionErrorSanitizeFailure          TransactionErrorKey = "SanitizeFailure"
	TransactionErrorClusterMaintenance       TransactionErrorKey = "ClusterMaintenance"
	TransactionErrorInsufficientFundsForRent TransactionErrorKey = "InsufficientFundsForRent"
)

// InstructionErrorKey is the string key of an instruction error.
//
// Source: https://github.com/solana-labs/solana/blob/4e2754341514cd181ae3f373cc2548bd22e918b8/sdk/program/src/instruction.rs#L23
type InstructionErrorKey string

const (
	InstructionErrorGenericError              InstructionErrorKey = "GenericError"
	InstructionErrorInvalidArgument           InstructionErrorKey = "InvalidArgument"
	InstructionErrorInvalidInstructionData    InstructionErrorKey = "InvalidInstructionData"
	InstructionErrorInvalidAccountData        InstructionErrorKey = "InvalidAccountData"
	InstructionErrorInsufficientFunds         InstructionErrorKey = "InsufficientFunds"
	InstructionErrorIncorrectProgramID        InstructionErrorKey = "IncorrectProgramId"
	InstructionErrorMissingRequiredSignature  InstructionErrorKey = "MissingRequiredSignature"
	InstructionErrorAccountAlreadyInitialized InstructionErrorKey = "AccountAlreadyInitialized"
	InstructionErrorUninitializedAccount      InstructionErrorKey = "UninitializedAccount"
	InstructionErrorNotEnoughAccountKeys      InstructionErrorKey = "NotEnoughAccountKeys"
	InstructionErrorInvalidSeeds              InstructionErrorKey = "InvalidSeeds"
	InstructionErrorIllegalOwner              InstructionErrorKey = "IllegalOwner"
	InstructionErrorCustom                    InstructionErrorKey = "Custom"
)

// CustomError is the numeric error returned by a program.
type CustomError int

func (c CustomError) Error() string {
	return fmt.Sprintf("custom program error: 0x%x", int(c))
}

// InstructionError is the failure of a single instruction within a
// transaction.
type InstructionError struct {
	Index int
	Err   error
}

func (i InstructionError) Error() string {
	return fmt.Sprintf("Error processing Instruction %d: %v", i.Index, i.Err)
}

func (i InstructionError) ErrorKey() InstructionErrorKey {
	if i.Err == nil {
		return ""
	}
	if i.CustomError() != nil {
		return InstructionErrorCustom
	}
	return InstructionErrorKey(i.Err.Error())
}

func (i InstructionError) CustomError() *CustomError {
	if ce, ok := i.Err.(CustomError); ok {
		return &ce
	}
	return nil
}

func (i InstructionError) raw() interface{} {
	if ce, ok := i.Err.(CustomError); ok {
		return []interface{}{i.Index, map[string]interface{}{string(InstructionErrorCustom): int(ce)}}
	}
	return []interface{}{i.Index, i.Err.Error()}
}

// TransactionError is a parsed transaction failure as reported by the RPC
// node, either during preflight or in a signature status.
type TransactionError struct {
	key              TransactionErrorKey
	instructionError *InstructionError
	raw              interface{}
}

func NewTransactionError(key TransactionErrorKey) *TransactionError {
	return &TransactionError{
		key: key,
		raw: string(key),
	}
}

// NewInstructionTransactionError wraps an instruction failure as a
// transaction error.
func NewInstructionTransactionError(ie InstructionError) *TransactionError {
	return &TransactionError{
		key:              TransactionErrorInstructionError,
		instructionError: &ie,
		raw:              map[string]interface{}{string(TransactionErrorInstructionError): ie.raw()},
	}
}

// ParseRPCError extracts the transaction error carried by a jsonrpc error,
// if any. Preflight simulation failures carry one in their data field.
func ParseRPCError(err *jsonrpc.RPCError) (*TransactionError, error) {
	if err == nil {
		return nil, nil
	}

	data, ok := err.Data.(map[string]interface{})
	if !ok {
		return nil, errors.New("expected map type")
	}

	if txErr, ok := data["err"]; ok && txErr != nil {
		return ParseTransactionError(txErr)
	}

	return nil, nil
}

// ParseTransactionError parses the JSON value of an "err" field.
func ParseTransactionError(raw interface{}) (*TransactionError, error) {
	switch t := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return &TransactionError{key: TransactionErrorKey(t), raw: raw}, nil
	case map[string]interface{}:
		if len(t) != 1 {
			return &TransactionError{key: "Unknown", raw: raw}, errors.Errorf("invalid transaction error size: %d", len(t))
		}

		for k, v := range t {
			if k != string(TransactionErrorInstructionError) {
				return &TransactionError{key: TransactionErrorKey(k), raw: raw}, nil
			}

			ie, err := parseInstructionError(v)
			if err != nil {
				return &TransactionError{key: "Unknown", raw: raw}, errors.Wrap(err, "failed to parse instruction error")
			}
			return &TransactionError{key: TransactionErrorInstructionError, instructionError: &ie, raw: raw}, nil
		}
	}

	return nil, errors.Errorf("unhandled error type %T", raw)
}

func parseInstructionError(v interface{}) (e InstructionError, err error) {
	values, ok := v.([]interface{})
	if !ok {
		return e, errors.New("unexpected instruction error format")
	}
	if len(values) != 2 {
		return e, errors.Errorf("unexpected InstructionError tuple size: %d", len(values))
	}

	if e.Index, err = parseJSONNumber(values[0]); err != nil {
		return e, err
	}

	switch t := values[1].(type) {
	case string:
		e.Err = errors.New(t)
	case map[string]interface{}:
		if len(t) != 1 {
			return e, errors.Errorf("invalid instruction error size: %d", len(t))
		}
		for k, v := range t {
			if k != string(InstructionErrorCustom) {
				e.Err = errors.New(k)
				break
			}
			code, err := parseJSONNumber(v)
			if err != nil {
				return e, errors.Wrap(err, "invalid custom error code")
			}
			e.Err = CustomError(code)
		}
	default:
		return e, errors.Errorf("unhandled instruction error type %T", t)
	}

	return e, nil
}

func (t TransactionError) Error() string {
	if t.instructionError != nil {
		return t.instructionError.Error()
	}
	return string(t.key)
}

func (t TransactionError) ErrorKey() TransactionErrorKey {
	return t.key
}

func (t TransactionError) InstructionError() *InstructionError {
	return t.instructionError
}

func (t TransactionError) JSONString() (string, error) {
	b, err := json.Marshal(t.raw)
	return string(b), err
}

// IsBlockhashNotFound reports whether the transaction referenced a blockhash
// the cluster no longer (or does not yet) recognise.
func (t TransactionError) IsBlockhashNotFound() bool {
	return t.key == TransactionErrorBlockhashNotFound
}

func parseJSONNumber(v interface{}) (int, error) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, errors.Errorf("non int64 value: %v", v)
		}
		return int(i), nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, errors.Errorf("non numeric value: %v", v)
		}
		return int(i), nil
	case float64:
		return int(n), nil
	}
	return 0, errors.Errorf("non numeric value: %v", v)
}
