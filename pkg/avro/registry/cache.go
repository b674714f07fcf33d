package registry

import (
	"fmt"

	"github.com/Sokol111/avrocodec/pkg/avro/schema"
	"github.com/Sokol111/avrocodec/pkg/avro/session"
	lru "github.com/hashicorp/golang-lru/v2"

	hambavro "github.com/hamba/avro/v2"
)

// DefaultCacheSize is the number of sessions kept when no size is configured.
const DefaultCacheSize = 128

// Cache keeps idle sessions keyed by schema fingerprint, so that registering
// a schema again reuses compiled codecs. A session is owned by one caller
// between Take and Put; two owners never share codecs.
type Cache struct {
	idle *lru.Cache[string, *session.Session]
	opts []session.Option
}

// NewCache returns a cache holding up to size idle sessions built with opts.
func NewCache(size int, opts ...session.Option) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	idle, err := lru.New[string, *session.Session](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}
	return &Cache{idle: idle, opts: opts}, nil
}

// Take returns an idle session for s, compiling one when none is idle. The
// caller owns the session until it hands it back with Put.
func (c *Cache) Take(s hambavro.Schema) (*session.Session, error) {
	fp := schema.Fingerprint(s)
	// Remove reports true to exactly one of two racing callers.
	if sess, ok := c.idle.Peek(fp); ok && c.idle.Remove(fp) {
		return sess, nil
	}
	return session.New(s, c.opts...)
}

// Put hands sess back for reuse. It is dropped when an idle session for the
// same schema is already cached.
func (c *Cache) Put(sess *session.Session) {
	c.idle.ContainsOrAdd(sess.Fingerprint(), sess)
}

// Len returns the number of idle sessions.
func (c *Cache) Len() int {
	return c.idle.Len()
}
