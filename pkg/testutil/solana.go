package testutil

import (
	"crypto/ed25519"
	"encoding/binary"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tokenforge/tokenforge/pkg/forge/common"
	"github.com/tokenforge/tokenforge/pkg/solana"
)

func GenerateSolanaKeys(t *testing.T, n int) []ed25519.PublicKey {
	keys := make([]ed25519.PublicKey, n)
	for i := 0; i < n; i++ {
		p, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = p
	}
	return keys
}

func NewRandomAccount(t *testing.T) *common.Account {
	account, err := common.NewRandomAccount()
	require.NoError(t, err)

	return account
}

// BlockhashValidity is the number of blocks a blockhash handed out by
// SolanaClient stays valid for.
const BlockhashValidity = 150

// SolanaClient is an in memory solana.Client. By default every submission
// succeeds and is immediately confirmed. The exported hooks override that
// behaviour and may be set before the client is used. Hooks run with the
// client lock held and must not call back into the client.
type SolanaClient struct {
	mu sync.Mutex

	blockHeight   uint64
	blockhashes   uint64
	calls         map[string]int
	submitted     []solana.Transaction
	accounts      map[string]solana.AccountInfo
	tokenBalances map[string]uint64

	RentExemption uint64

	// SubmitFunc returns the preflight result of a submission. A
	// *solana.TransactionError return value rejects it.
	SubmitFunc func(txn solana.Transaction) error

	// StatusFunc returns the status of a submitted signature. Nil means the
	// cluster has not seen it.
	StatusFunc func(sig solana.Signature) *solana.SignatureStatus

	// BlockhashValidFunc overrides the result of IsBlockhashValid.
	BlockhashValidFunc func(solana.Blockhash) bool
}

func NewSolanaClient() *SolanaClient {
	return &SolanaClient{
		blockHeight:   1000,
		calls:         make(map[string]int),
		accounts:      make(map[string]solana.AccountInfo),
		tokenBalances: make(map[string]uint64),
		RentExemption: 1461600,
	}
}

// ConfirmedStatus is the status of a transaction that reached the confirmed
// commitment level.
func ConfirmedStatus(slot uint64) *solana.SignatureStatus {
	confirmations := 1
	return &solana.SignatureStatus{
		Slot:               slot,
		Confirmations:      &confirmations,
		ConfirmationStatus: "confirmed",
	}
}

// AdvanceBlockHeight moves the chain forward by n blocks.
func (c *SolanaClient) AdvanceBlockHeight(n uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.blockHeight += n
}

func (c *SolanaClient) SetAccount(address ed25519.PublicKey, info solana.AccountInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.accounts[string(address)] = info
}

func (c *SolanaClient) SetTokenBalance(address ed25519.PublicKey, amount uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tokenBalances[string(address)] = amount
}

// Calls returns the number of times method was invoked.
func (c *SolanaClient) Calls(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.calls[method]
}

// TotalCalls returns the number of RPC calls made.
func (c *SolanaClient) TotalCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total int
	for _, n := range c.calls {
		total += n
	}
	return total
}

// Submitted returns every transaction passed to SubmitTransaction.
func (c *SolanaClient) Submitted() []solana.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]solana.Transaction(nil), c.submitted...)
}

func (c *SolanaClient) record(method string) {
	c.calls[method]++
}

func (c *SolanaClient) GetAccountInfo(address ed25519.PublicKey, _ solana.Commitment) (solana.AccountInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("getAccountInfo")

	info, ok := c.accounts[string(address)]
	if !ok {
		return solana.AccountInfo{}, solana.ErrNoAccountInfo
	}
	return info, nil
}

func (c *SolanaClient) GetBalance(address ed25519.PublicKey) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("getBalance")

	info, ok := c.accounts[string(address)]
	if !ok {
		return 0, solana.ErrNoBalance
	}
	return info.Lamports, nil
}

func (c *SolanaClient) GetBlockHeight(_ solana.Commitment) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("getBlockHeight")

	return c.blockHeight, nil
}

// GetLatestBlockhash hands out a distinct blockhash on every call, valid for
// BlockhashValidity blocks from the current height.
func (c *SolanaClient) GetLatestBlockhash(_ solana.Commitment) (solana.RecentBlockhash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("getLatestBlockhash")

	c.blockhashes++

	var rbh solana.RecentBlockhash
	binary.LittleEndian.PutUint64(rbh.Blockhash[:], c.blockhashes)
	rbh.Blockhash[31] = 0xff
	rbh.LastValidBlockHeight = c.blockHeight + BlockhashValidity
	return rbh, nil
}

func (c *SolanaClient) GetMinimumBalanceForRentExemption(_ uint64) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("getMinimumBalanceForRentExemption")

	return c.RentExemption, nil
}

func (c *SolanaClient) GetSignatureStatuses(sigs []solana.Signature) ([]*solana.SignatureStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("getSignatureStatuses")

	statuses := make([]*solana.SignatureStatus, len(sigs))
	for i, sig := range sigs {
		if c.StatusFunc != nil {
			statuses[i] = c.StatusFunc(sig)
			continue
		}

		for _, txn := range c.submitted {
			if txn.Signatures[0] == sig {
				statuses[i] = ConfirmedStatus(c.blockHeight)
			}
		}
	}
	return statuses, nil
}

func (c *SolanaClient) GetTokenAccountBalance(address ed25519.PublicKey, _ solana.Commitment) (uint64, uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("getTokenAccountBalance")

	amount, ok := c.tokenBalances[string(address)]
	if !ok {
		return 0, 0, solana.ErrNoBalance
	}
	return amount, c.blockHeight, nil
}

func (c *SolanaClient) IsBlockhashValid(hash solana.Blockhash, _ solana.Commitment) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("isBlockhashValid")

	if c.BlockhashValidFunc != nil {
		return c.BlockhashValidFunc(hash), nil
	}
	return true, nil
}

func (c *SolanaClient) SubmitTransaction(txn solana.Transaction, _ solana.SubmitOptions) (solana.Signature, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("sendTransaction")

	sig := txn.Signatures[0]
	if c.SubmitFunc != nil {
		if err := c.SubmitFunc(txn); err != nil {
			return sig, err
		}
	}

	c.submitted = append(c.submitted, txn)
	return sig, nil
}
