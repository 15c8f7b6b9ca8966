package authsession

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/modularsaas/authsession/credential"
	"github.com/modularsaas/authsession/realtime"
	"github.com/modularsaas/authsession/session"
)

// Builder assembles a [Manager]. Collaborators are attached with the
// With* methods; Build validates the combination and wires everything
// together. A Builder is single-use.
type Builder struct {
	config Config
	redis  *redis.Client
	store  *session.Store

	directory Directory
	legacy    Directory
	auditSink AuditSink
	presence  realtime.Publisher
	redirect  RedirectFunc

	built bool
}

// New returns a Builder carrying the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis attaches the Redis client backing session persistence.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithStore attaches a prebuilt session store, bypassing WithRedis. Test
// setups use it to inject fakes.
func (b *Builder) WithStore(store *session.Store) *Builder {
	b.store = store
	return b
}

// WithDirectory attaches the primary account directory.
func (b *Builder) WithDirectory(dir Directory) *Builder {
	b.directory = dir
	return b
}

// WithLegacyDirectory attaches a fallback directory consulted when the
// primary holds no match. Migrated deployments point it at the old
// account store.
func (b *Builder) WithLegacyDirectory(dir Directory) *Builder {
	b.legacy = dir
	return b
}

// WithAuditSink attaches the sink receiving audit events. Ignored unless
// Audit.Enabled is set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithPresence attaches a realtime publisher for presence join/leave
// announcements. Optional; publish failures are logged and dropped.
func (b *Builder) WithPresence(pub realtime.Publisher) *Builder {
	b.presence = pub
	return b
}

// WithRedirect attaches the logout redirect hook.
func (b *Builder) WithRedirect(fn RedirectFunc) *Builder {
	b.redirect = fn
	return b
}

// WithMetricsEnabled toggles the metrics system.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles login latency histogram collection.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a ready Manager.
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.directory == nil {
		return nil, errors.New("directory required")
	}
	if b.store == nil && b.redis == nil {
		return nil, errors.New("redis client or session store required")
	}

	store := b.store
	if store == nil {
		codec, err := session.NewCodec(cfg.Session.SigningKey)
		if err != nil {
			return nil, err
		}
		store = session.NewStore(b.redis, cfg.Session.StorageKey, codec)
	}

	verifier, err := credential.New(credential.Config{
		AllowPlaintext: cfg.Credential.AllowPlaintext,
	})
	if err != nil {
		return nil, err
	}

	m := &Manager{
		config:    cfg,
		store:     store,
		directory: b.directory,
		legacy:    b.legacy,
		verifier:  verifier,
		presence:  b.presence,
		redirect:  b.redirect,
		state:     StateUnauthenticated,
	}

	m.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	m.metrics = NewMetrics(cfg.Metrics)

	b.built = true

	return m, nil
}
