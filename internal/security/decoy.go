package security

import (
	"context"
	"sync"
)

const decoySecret = "decoy#Secret-never-issued"

// Decoy runs one verification against a fixed hash. Lookups that find no
// stored hash call it so they cost the same as lookups that do.
type Decoy struct {
	hasher SecretHasher
	once   sync.Once
	hash   string
}

func NewDecoy(h SecretHasher) *Decoy {
	return &Decoy{hasher: h}
}

// Verify never reports a match; errors are swallowed.
func (d *Decoy) Verify(ctx context.Context, secret string) {
	if d == nil || d.hasher == nil {
		return
	}
	d.once.Do(func() {
		d.hash, _ = HashSecret(context.WithoutCancel(ctx), d.hasher, decoySecret)
	})
	if d.hash == "" {
		return
	}
	if secret == "" || secret == decoySecret {
		secret = "-"
	}
	_, _ = VerifySecret(ctx, d.hasher, secret, d.hash)
}
