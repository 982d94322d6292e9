package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.dedis.ch/kyber/v4"
)

// Journal is an append-only, hash-chained and signed log of the mutations
// accepted by a session.
type Journal struct {
	mu        sync.RWMutex
	sessionID string
	signer    *Signer
	blocks    []Block
}

// NewJournal creates a journal whose genesis block records the session id and
// the public key of signer. A nil signer gets a fresh key pair.
func NewJournal(sessionID string, signer *Signer) (*Journal, error) {
	if signer == nil {
		signer = NewSigner()
	}
	j := &Journal{
		sessionID: sessionID,
		signer:    signer,
		blocks:    make([]Block, 0),
	}

	genesis := Block{
		Index:     0,
		Timestamp: time.Now().Unix(),
		PrevHash:  "0",
		Action:    Action{Kind: "genesis", PlayerID: -1},
		Metadata: Metadata{
			SessionID: sessionID,
			Extra:     map[string]string{"public_key": signer.PublicHex()},
		},
	}
	if err := j.seal(&genesis); err != nil {
		return nil, err
	}
	j.blocks = append(j.blocks, genesis)
	return j, nil
}

func (j *Journal) SessionID() string {
	return j.sessionID
}

func (j *Journal) Public() kyber.Point {
	return j.signer.Public()
}

// Append seals action into a new block at the end of the chain. The extra
// parameter can optionally carry additional metadata.
func (j *Journal) Append(action Action, turn int, extra ...map[string]string) (Block, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	var extraMsg map[string]string
	if len(extra) > 0 {
		extraMsg = extra[0]
	}
	latest := j.blocks[len(j.blocks)-1]

	newBlock := Block{
		Index:     latest.Index + 1,
		Timestamp: time.Now().Unix(),
		PrevHash:  latest.Hash,
		Action:    action,
		Metadata: Metadata{
			SessionID: j.sessionID,
			Turn:      turn,
			Extra:     extraMsg,
		},
	}
	if err := j.seal(&newBlock); err != nil {
		return Block{}, err
	}
	if err := j.validateBlock(newBlock, latest); err != nil {
		return Block{}, fmt.Errorf("invalid block: %w", err)
	}

	j.blocks = append(j.blocks, newBlock)
	return newBlock, nil
}

// GetLatest returns the most recently added block.
func (j *Journal) GetLatest() (Block, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if len(j.blocks) == 0 {
		return Block{}, fmt.Errorf("journal is empty")
	}
	return j.blocks[len(j.blocks)-1], nil
}

// GetByIndex retrieves a block by its index in the chain.
func (j *Journal) GetByIndex(index int) (Block, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if index < 0 || index >= len(j.blocks) {
		return Block{}, fmt.Errorf("index %d out of range", index)
	}
	return j.blocks[index], nil
}

func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.blocks)
}

// Blocks returns a copy of the chain.
func (j *Journal) Blocks() []Block {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]Block, len(j.blocks))
	copy(out, j.blocks)
	return out
}

// Verify checks the whole chain: genesis, index continuity, hash links, block
// hashes and signatures.
func (j *Journal) Verify() error {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return VerifyChain(j.blocks, j.signer.Public())
}

// VerifyChain checks a chain exported with Blocks against the public key of
// the server that wrote it.
func VerifyChain(blocks []Block, public kyber.Point) error {
	if len(blocks) == 0 {
		return fmt.Errorf("empty journal")
	}
	genesis := blocks[0]
	if genesis.PrevHash != "0" || genesis.Index != 0 {
		return fmt.Errorf("invalid genesis block")
	}
	if err := checkSeal(genesis, public); err != nil {
		return fmt.Errorf("genesis invalid: %w", err)
	}
	for i := 1; i < len(blocks); i++ {
		if err := checkLink(blocks[i], blocks[i-1]); err != nil {
			return fmt.Errorf("block %d invalid: %w", i, err)
		}
		if err := checkSeal(blocks[i], public); err != nil {
			return fmt.Errorf("block %d invalid: %w", i, err)
		}
	}
	return nil
}

func (j *Journal) validateBlock(current, previous Block) error {
	if err := checkLink(current, previous); err != nil {
		return err
	}
	return checkSeal(current, j.signer.Public())
}

func (j *Journal) seal(b *Block) error {
	b.Hash = calculateHash(*b)
	sig, err := j.signer.Sign([]byte(b.Hash))
	if err != nil {
		return fmt.Errorf("signing block %d: %w", b.Index, err)
	}
	b.Signature = sig
	return nil
}

func checkLink(current, previous Block) error {
	if current.Index != previous.Index+1 {
		return fmt.Errorf("invalid index: expected %d, got %d", previous.Index+1, current.Index)
	}
	if current.PrevHash != previous.Hash {
		return fmt.Errorf("invalid prev hash: expected %s, got %s", previous.Hash, current.PrevHash)
	}
	if current.Metadata.SessionID != previous.Metadata.SessionID {
		return fmt.Errorf("session changed from %s to %s", previous.Metadata.SessionID, current.Metadata.SessionID)
	}
	return nil
}

func checkSeal(b Block, public kyber.Point) error {
	expectedHash := calculateHash(b)
	if b.Hash != expectedHash {
		return fmt.Errorf("invalid hash: expected %s, got %s", expectedHash, b.Hash)
	}
	if err := VerifySignature(public, []byte(b.Hash), b.Signature); err != nil {
		return fmt.Errorf("bad signature: %w", err)
	}
	return nil
}

// calculateHash computes the SHA256 of every field of the block but the hash
// and the signature.
func calculateHash(block Block) string {
	actionBytes, _ := json.Marshal(block.Action)
	extraBytes, _ := json.Marshal(block.Metadata.Extra)

	data := fmt.Sprintf("%d%d%s%s%s%d%s",
		block.Index,
		block.Timestamp,
		block.PrevHash,
		string(actionBytes),
		block.Metadata.SessionID,
		block.Metadata.Turn,
		string(extraBytes),
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
