package cache

import "perltoolbox/internal/diag"

// Lookup returns the diagnostics cached under key.
func (c *DiskCache) Lookup(key Digest) ([]diag.Diagnostic, bool, error) {
	var p Payload
	ok, err := c.Get(key, &p)
	if err != nil || !ok {
		return nil, false, err
	}
	return p.List(), true, nil
}

// Store caches the diagnostics a pipeline produced under key.
func (c *DiskCache) Store(key Digest, pipeline string, list []diag.Diagnostic) error {
	p, err := NewPayload(pipeline, list)
	if err != nil {
		return err
	}
	return c.Put(key, p)
}
