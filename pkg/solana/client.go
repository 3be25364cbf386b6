package solana

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/ybbus/jsonrpc"

	"github.com/tokenforge/tokenforge/pkg/rate"
	"github.com/tokenforge/tokenforge/pkg/retry"
	"github.com/tokenforge/tokenforge/pkg/retry/backoff"
)

const (
	// todo: we can retrieve these from the Syscall account
	//       but they're unlikely to change.
	ticksPerSec  = 160
	ticksPerSlot = 64
	slotsPerSec  = ticksPerSec / ticksPerSlot

	// PollRate is the rate at which blocks should be polled at.
	PollRate = (time.Second / slotsPerSec) / 2

	// Reference: https://github.com/solana-labs/solana/blob/71e9958e061493d7545bd28d4ac7a85aaed6ffbb/client/src/rpc_custom_error.rs#L11
	rpcNodeUnhealthyCode = -32005

	invalidParamCode = -32602

	blockhashCacheWindow = 2 * time.Second
)

type Commitment struct {
	Commitment string `json:"commitment"`
}

const (
	confirmationStatusProcessed = "processed"
	confirmationStatusConfirmed = "confirmed"
	confirmationStatusFinalized = "finalized"
)

var (
	CommitmentProcessed = Commitment{Commitment: confirmationStatusProcessed}
	CommitmentConfirmed = Commitment{Commitment: confirmationStatusConfirmed}
	CommitmentFinalized = Commitment{Commitment: confirmationStatusFinalized}
)

// ParseCommitment maps a commitment name to its value.
func ParseCommitment(s string) (Commitment, error) {
	switch s {
	case confirmationStatusProcessed:
		return CommitmentProcessed, nil
	case confirmationStatusConfirmed, "":
		return CommitmentConfirmed, nil
	case confirmationStatusFinalized:
		return CommitmentFinalized, nil
	}
	return Commitment{}, errors.Errorf("unknown commitment %q", s)
}

var (
	ErrNoAccountInfo = errors.New("no account info")
	ErrNoBalance     = errors.New("no balance")
)

// AccountInfo contains the Solana account information (not to be confused with a TokenAccount)
type AccountInfo struct {
	Data       []byte
	Owner      ed25519.PublicKey
	Lamports   uint64
	Executable bool
}

type SignatureStatus struct {
	Slot        uint64
	ErrorResult *TransactionError

	// Confirmations will be nil if the transaction has been rooted.
	Confirmations      *int
	ConfirmationStatus string
}

func (s SignatureStatus) Confirmed() bool {
	if s.Finalized() {
		return true
	}

	if s.ConfirmationStatus == confirmationStatusConfirmed {
		return true
	}

	return *s.Confirmations >= 1
}

func (s SignatureStatus) Finalized() bool {
	return s.Confirmations == nil || s.ConfirmationStatus == confirmationStatusFinalized
}

// Reached reports whether the status satisfies the commitment.
func (s SignatureStatus) Reached(commitment Commitment) bool {
	switch commitment {
	case CommitmentFinalized:
		return s.Finalized()
	case CommitmentConfirmed:
		return s.Confirmed()
	default:
		return true
	}
}

type TokenAmount struct {
	Amount   string `json:"amount"`   // example: "49801500000",
	Decimals uint64 `json:"decimals"` // example: 5,
}

// SubmitOptions controls how sendTransaction is invoked.
type SubmitOptions struct {
	SkipPreflight       bool
	PreflightCommitment Commitment
}

// Client provides an interaction with the Solana JSON RPC API.
//
// Reference: https://docs.solana.com/api/http
type Client interface {
	GetAccountInfo(ed25519.PublicKey, Commitment) (AccountInfo, error)
	GetBalance(ed25519.PublicKey) (uint64, error)
	GetBlockHeight(Commitment) (uint64, error)
	GetLatestBlockhash(Commitment) (RecentBlockhash, error)
	GetMinimumBalanceForRentExemption(size uint64) (lamports uint64, err error)
	GetSignatureStatuses([]Signature) ([]*SignatureStatus, error)
	GetTokenAccountBalance(ed25519.PublicKey, Commitment) (amount uint64, slot uint64, err error)
	IsBlockhashValid(Blockhash, Commitment) (bool, error)

	// SubmitTransaction sends a signed transaction. If the node rejects the
	// transaction during preflight, the returned error is a *TransactionError.
	SubmitTransaction(Transaction, SubmitOptions) (Signature, error)
}

var (
	errRateLimited  = errors.New("rate limited")
	errServiceError = errors.New("service error")
)

type client struct {
	log     *logrus.Entry
	client  jsonrpc.RPCClient
	retrier retry.Retrier
	limiter rate.Limiter

	blockMu   sync.RWMutex
	blockhash map[Commitment]cachedBlockhash
}

type cachedBlockhash struct {
	value     RecentBlockhash
	fetchedAt time.Time
}

// NewWithLimiter returns a client whose requests are throttled per RPC method
// by limiter.
func NewWithLimiter(endpoint string, limiter rate.Limiter) Client {
	c := newClient(jsonrpc.NewClient(endpoint))
	c.limiter = limiter
	return c
}

func newClient(rpc jsonrpc.RPCClient) *client {
	return &client{
		log:     logrus.StandardLogger().WithField("type", "solana/client"),
		client:  rpc,
		limiter: &rate.NoLimiter{},
		retrier: retry.NewRetrier(
			retry.RetriableErrors(errRateLimited, errServiceError),
			retry.Limit(3),
			retry.BackoffWithJitter(backoff.BinaryExponential(time.Second), 10*time.Second, 0.1),
		),
		blockhash: make(map[Commitment]cachedBlockhash),
	}
}

func (c *client) call(out interface{}, method string, params ...interface{}) error {
	var lastErr error
	_, err := c.retrier.Retry(func() error {
		if err := c.limiter.Wait(context.Background(), method); err != nil {
			return errors.Wrap(err, "rate limiter")
		}

		err := c.client.CallFor(out, method, params...)
		if err == nil {
			return nil
		}

		lastErr = err
		return c.handleRpcError(method, err)
	})

	// Surface the underlying RPC error once retries are exhausted, since
	// callers inspect its code.
	if err != nil && (err == errRateLimited || err == errServiceError) && lastErr != nil {
		return errors.Wrap(lastErr, err.Error())
	}
	return err
}

func (c *client) handleRpcError(method string, err error) error {
	switch e := err.(type) {
	case *jsonrpc.RPCError:
		if e.Code == 429 {
			c.log.WithField("method", method).Warn("rate limited")
			return errRateLimited
		}
		if e.Code >= 500 || e.Code == rpcNodeUnhealthyCode {
			return errServiceError
		}
	case *jsonrpc.HTTPError:
		if e.Code == 429 {
			c.log.WithField("method", method).Warn("rate limited")
			return errRateLimited
		}
		if e.Code >= 500 {
			return errServiceError
		}
	}

	return err
}

func (c *client) GetMinimumBalanceForRentExemption(dataSize uint64) (lamports uint64, err error) {
	if err := c.call(&lamports, "getMinimumBalanceForRentExemption", dataSize); err != nil {
		return 0, errors.Wrapf(err, "getMinimumBalanceForRentExemption() failed to send request")
	}

	return lamports, nil
}

func (c *client) GetBlockHeight(commitment Commitment) (height uint64, err error) {
	// note: we have to wrap the commitment in an []interface{} otherwise the
	//       solana RPC node complains. Technically this is a violation of the
	//       JSON RPC v2.0 spec.
	if err := c.call(&height, "getBlockHeight", []interface{}{commitment}); err != nil {
		return 0, errors.Wrapf(err, "getBlockHeight() failed to send request")
	}

	c.evictBlockhash(func(cached RecentBlockhash) bool {
		return height > cached.LastValidBlockHeight
	})

	return height, nil
}

// GetLatestBlockhash returns a recent blockhash. Results are reused for a
// couple of seconds to avoid hammering the node during retries.
func (c *client) GetLatestBlockhash(commitment Commitment) (RecentBlockhash, error) {
	window := time.Duration(float64(blockhashCacheWindow) * (0.8 + 0.2*rand.Float64()))

	c.blockMu.RLock()
	cached, ok := c.blockhash[commitment]
	c.blockMu.RUnlock()
	if ok && time.Since(cached.fetchedAt) < window {
		return cached.value, nil
	}

	var resp struct {
		Value struct {
			Blockhash            string `json:"blockhash"`
			LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
		} `json:"value"`
	}
	if err := c.call(&resp, "getLatestBlockhash", []interface{}{commitment}); err != nil {
		return RecentBlockhash{}, errors.Wrapf(err, "getLatestBlockhash() failed to send request")
	}

	raw, err := base58.Decode(resp.Value.Blockhash)
	if err != nil {
		return RecentBlockhash{}, errors.Wrap(err, "invalid base58 encoded hash in response")
	}
	if len(raw) != len(Blockhash{}) {
		return RecentBlockhash{}, errors.Errorf("invalid blockhash length %d", len(raw))
	}

	var result RecentBlockhash
	copy(result.Blockhash[:], raw)
	result.LastValidBlockHeight = resp.Value.LastValidBlockHeight

	c.blockMu.Lock()
	c.blockhash[commitment] = cachedBlockhash{value: result, fetchedAt: time.Now()}
	c.blockMu.Unlock()

	return result, nil
}

func (c *client) IsBlockhashValid(hash Blockhash, commitment Commitment) (bool, error) {
	var resp struct {
		Value bool `json:"value"`
	}
	if err := c.call(&resp, "isBlockhashValid", base58.Encode(hash[:]), commitment); err != nil {
		return false, errors.Wrapf(err, "isBlockhashValid() failed to send request")
	}

	if !resp.Value {
		c.evictBlockhash(func(cached RecentBlockhash) bool {
			return cached.Blockhash == hash
		})
	}

	return resp.Value, nil
}

// evictBlockhash drops cached blockhashes the cluster no longer accepts, so
// the next GetLatestBlockhash goes to the node.
func (c *client) evictBlockhash(stale func(RecentBlockhash) bool) {
	c.blockMu.Lock()
	defer c.blockMu.Unlock()

	for commitment, cached := range c.blockhash {
		if stale(cached.value) {
			delete(c.blockhash, commitment)
		}
	}
}

func (c *client) GetBalance(account ed25519.PublicKey) (uint64, error) {
	var resp struct {
		Value uint64 `json:"value"`
	}
	if err := c.call(&resp, "getBalance", base58.Encode(account), CommitmentProcessed); err != nil {
		if isInvalidParam(err) {
			return 0, ErrNoBalance
		}
		return 0, errors.Wrapf(err, "getBalance() failed to send request")
	}

	return resp.Value, nil
}

func (c *client) GetTokenAccountBalance(account ed25519.PublicKey, commitment Commitment) (uint64, uint64, error) {
	var resp struct {
		Context struct {
			Slot uint64 `json:"slot"`
		} `json:"context"`
		Value TokenAmount `json:"value"`
	}
	if err := c.call(&resp, "getTokenAccountBalance", base58.Encode(account), commitment); err != nil {
		if isInvalidParam(err) {
			return 0, 0, ErrNoBalance
		}
		return 0, 0, errors.Wrapf(err, "getTokenAccountBalance() failed to send request")
	}

	amount, err := strconv.ParseUint(resp.Value.Amount, 10, 64)
	if err != nil {
		return 0, 0, errors.Errorf("invalid value in response")
	}

	return amount, resp.Context.Slot, nil
}

func (c *client) SubmitTransaction(txn Transaction, opts SubmitOptions) (Signature, error) {
	var sig Signature
	if len(txn.Signatures) > 0 {
		sig = txn.Signatures[0]
	}

	preflight := opts.PreflightCommitment
	if preflight == (Commitment{}) {
		preflight = CommitmentConfirmed
	}

	config := struct {
		Encoding            string `json:"encoding"`
		SkipPreflight       bool   `json:"skipPreflight"`
		PreflightCommitment string `json:"preflightCommitment"`
	}{
		Encoding:            "base64",
		SkipPreflight:       opts.SkipPreflight,
		PreflightCommitment: preflight.Commitment,
	}

	var sigStr string
	err := c.call(&sigStr, "sendTransaction", base64.StdEncoding.EncodeToString(txn.Marshal()), config)
	if err == nil {
		return sig, nil
	}

	rpcErr, ok := errors.Cause(err).(*jsonrpc.RPCError)
	if !ok {
		return sig, errors.Wrap(err, "sendTransaction() failed to send request")
	}

	txErr, parseErr := ParseRPCError(rpcErr)
	if parseErr != nil || txErr == nil {
		return sig, errors.Wrap(err, "sendTransaction() failed")
	}

	if txErr.IsBlockhashNotFound() {
		c.evictBlockhash(func(cached RecentBlockhash) bool {
			return cached.Blockhash == txn.Message.RecentBlockhash
		})
	}

	c.log.WithFields(logrus.Fields{
		"method":    "sendTransaction",
		"signature": sig.String(),
		"error_key": txErr.ErrorKey(),
	}).Debug("transaction rejected during preflight")

	return sig, txErr
}

func (c *client) GetAccountInfo(account ed25519.PublicKey, commitment Commitment) (accountInfo AccountInfo, err error) {
	type rpcResponse struct {
		Value *struct {
			Lamports   uint64   `json:"lamports"`
			Owner      string   `json:"owner"`
			Data       []string `json:"data"`
			Executable bool     `json:"executable"`
		} `json:"value"`
	}

	rpcConfig := struct {
		Commitment string `json:"commitment"`
		Encoding   string `json:"encoding"`
	}{
		Commitment: commitment.Commitment,
		Encoding:   "base64",
	}

	var resp rpcResponse
	if err := c.call(&resp, "getAccountInfo", base58.Encode(account), rpcConfig); err != nil {
		return accountInfo, errors.Wrap(err, "getAccountInfo() failed to send request")
	}

	if resp.Value == nil {
		return accountInfo, ErrNoAccountInfo
	}

	accountInfo.Owner, err = base58.Decode(resp.Value.Owner)
	if err != nil {
		return accountInfo, errors.Wrap(err, "invalid base58 encoded owner")
	}

	if len(resp.Value.Data) > 0 {
		accountInfo.Data, err = base64.StdEncoding.DecodeString(resp.Value.Data[0])
		if err != nil {
			return accountInfo, errors.Wrap(err, "invalid base64 encoded data")
		}
	}

	accountInfo.Lamports = resp.Value.Lamports
	accountInfo.Executable = resp.Value.Executable

	return accountInfo, nil
}

func (c *client) GetSignatureStatuses(sigs []Signature) ([]*SignatureStatus, error) {
	encoded := make([]string, len(sigs))
	for i := range sigs {
		encoded[i] = sigs[i].String()
	}

	req := struct {
		SearchTransactionHistory bool `json:"searchTransactionHistory"`
	}{
		SearchTransactionHistory: true,
	}

	type signatureStatus struct {
		Slot               uint64          `json:"slot"`
		Confirmations      *int            `json:"confirmations"`
		ConfirmationStatus string          `json:"confirmationStatus"`
		Err                json.RawMessage `json:"err"`
	}

	var resp struct {
		Value []*signatureStatus `json:"value"`
	}
	if err := c.call(&resp, "getSignatureStatuses", encoded, req); err != nil {
		return nil, errors.Wrap(err, "getSignatureStatuses() failed to send request")
	}

	statuses := make([]*SignatureStatus, len(sigs))
	for i, v := range resp.Value {
		if v == nil || i >= len(statuses) {
			continue
		}

		status := &SignatureStatus{
			Slot:               v.Slot,
			Confirmations:      v.Confirmations,
			ConfirmationStatus: v.ConfirmationStatus,
		}

		if len(v.Err) > 0 && !bytes.Equal(v.Err, []byte("null")) {
			var raw interface{}
			d := json.NewDecoder(bytes.NewBuffer(v.Err))
			d.UseNumber()
			if err := d.Decode(&raw); err != nil {
				return nil, errors.Wrap(err, "failed to parse transaction result")
			}

			txErr, err := ParseTransactionError(raw)
			if err != nil {
				return nil, errors.Wrap(err, "failed to parse transaction result")
			}
			status.ErrorResult = txErr
		}

		statuses[i] = status
	}

	return statuses, nil
}

func isInvalidParam(err error) bool {
	rpcErr, ok := errors.Cause(err).(*jsonrpc.RPCError)
	return ok && rpcErr.Code == invalidParamCode
}
