// internal/vault/vault.go
//
// Minimal Vault KV-v2 reader.
//
// Context
// -------
// Config values may be written as `vault:mount/secret/path#key` instead of a
// literal.  This client resolves those references at boot.  Reads are cached
// for the process lifetime; HiveTag re-reads secrets only on Reload, so no
// TTL bookkeeping or renewal loop is needed here.
//
// Environment expectations
// ------------------------
// • VAULT_ADDR   – scheme and host of the Vault server.
// • VAULT_TOKEN  – token with read access to the referenced paths.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	vault "github.com/hashicorp/vault/api"
)

// Client is safe for concurrent use.  Zero value is invalid; use New.
type Client struct {
	api *vault.Client

	mu    sync.RWMutex
	cache map[string]string // "mount/path#key" → value
}

// New constructs a client from VAULT_ADDR and VAULT_TOKEN.
func New(_ context.Context) (*Client, error) {
	cfg := vault.DefaultConfig()
	if addr := os.Getenv("VAULT_ADDR"); addr != "" {
		cfg.Address = addr
	}
	api, err := vault.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	tok := os.Getenv("VAULT_TOKEN")
	if tok == "" {
		return nil, errors.New("vault: VAULT_TOKEN is not set")
	}
	api.SetToken(tok)
	return &Client{api: api, cache: make(map[string]string)}, nil
}

// Resolve fetches the value behind a "mount/secret/path#key" reference.
func (c *Client) Resolve(ctx context.Context, ref string) (string, error) {
	c.mu.RLock()
	if v, ok := c.cache[ref]; ok {
		c.mu.RUnlock()
		return v, nil
	}
	c.mu.RUnlock()

	path, key, ok := strings.Cut(ref, "#")
	if !ok {
		return "", fmt.Errorf("vault: reference %q has no #key part", ref)
	}
	mount, sub, ok := strings.Cut(path, "/")
	if !ok {
		return "", fmt.Errorf("vault: reference %q has no mount part", ref)
	}

	sec, err := c.api.KVv2(mount).Get(ctx, sub)
	if err != nil {
		return "", err
	}
	raw, ok := sec.Data[key]
	if !ok {
		return "", fmt.Errorf("vault: key %q not present at %q", key, path)
	}
	val, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("vault: key %q at %q is not a string", key, path)
	}

	c.mu.Lock()
	c.cache[ref] = val
	c.mu.Unlock()
	return val, nil
}
