package cache

import (
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

// writeRaw stores p without stamping the current schema.
func writeRaw(c *DiskCache, key Digest, p *Payload) error {
	data, err := msgpack.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(c.pathFor(key), data, 0o644)
}
