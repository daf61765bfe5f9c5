package artifact

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"time"
)

// Artifact is the immutable output of a single pipeline stage. Once a stage
// records its artifact it is never mutated; downstream stages only read it.
type Artifact struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Adapter   string    `json:"adapter"`
	Model     string    `json:"model"`
	Prompt    string    `json:"prompt"`
	CreatedAt time.Time `json:"created_at"`
	Hash      string    `json:"hash"`
}

// New creates an Artifact with a computed content hash.
func New(content, adapter, model, prompt string) *Artifact {
	a := &Artifact{
		ID:        generateID(),
		Content:   content,
		Adapter:   adapter,
		Model:     model,
		Prompt:    prompt,
		CreatedAt: time.Now().UTC(),
	}
	a.Hash = a.computeHash()
	return a
}

func (a *Artifact) computeHash() string {
	h := sha256.New()
	h.Write([]byte(a.Content))
	h.Write([]byte(a.Adapter))
	h.Write([]byte(a.Model))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func generateID() string {
	h := sha256.New()
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(time.Now().UnixNano()))
	h.Write(b)
	return hex.EncodeToString(h.Sum(nil))[:12]
}

// HashString returns the short content hash used in evidence records.
func HashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:16]
}
