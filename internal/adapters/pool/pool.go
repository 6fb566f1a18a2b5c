// Package pool loads the ghost bot content pool.
package pool

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/ghostrace/internal/domain/model"
	"github.com/okian/ghostrace/pkg/logger"
)

// ErrEmptyPool is returned by Parse when the content lists no usable bot.
var ErrEmptyPool = errors.New("bot pool is empty")

// Loader reads the pool, preferring a local override over shipped content.
type Loader struct {
	path         string
	overridePath string
	log          logger.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithOverridePath sets the locally overridden pool location.
func WithOverridePath(path string) Option {
	return func(l *Loader) { l.overridePath = path }
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

// NewLoader returns a loader for the shipped pool at path.
func NewLoader(path string, opts ...Option) *Loader {
	l := &Loader{path: path, log: logger.Nop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load never fails: missing or malformed content yields an empty pool and
// a logged error. The override wins when it exists and parses.
func (l *Loader) Load(ctx context.Context) model.BotPool {
	for _, path := range []string{l.overridePath, l.path} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			l.log.Debug(ctx, "bot pool not present", logger.String("path", path))
			continue
		}
		p, err := Parse(path)
		if err != nil {
			l.log.Error(ctx, "bot pool unusable", logger.String("path", path), logger.Error(err))
			continue
		}
		l.log.Info(ctx, "bot pool loaded", logger.String("path", path), logger.Int("bots", len(p.Bots)))
		return p
	}
	l.log.Error(ctx, "no bot pool available, races will run without opponents")
	return model.BotPool{}
}

// Parse reads one YAML pool file with a top-level "bots" list. Profiles
// without an id or with an unknown personality are dropped.
func Parse(path string) (model.BotPool, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return model.BotPool{}, fmt.Errorf("load %s: %w", path, err)
	}
	var raw model.BotPool
	if err := k.UnmarshalWithConf("", &raw, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return model.BotPool{}, fmt.Errorf("decode %s: %w", path, err)
	}

	out := model.BotPool{Bots: make([]model.BotProfile, 0, len(raw.Bots))}
	for _, b := range raw.Bots {
		if b.ID == "" || !knownPersonality(b.Personality) {
			continue
		}
		if b.DisplayName == "" {
			b.DisplayName = b.ID
		}
		out.Bots = append(out.Bots, b)
	}
	if len(out.Bots) == 0 {
		return model.BotPool{}, ErrEmptyPool
	}
	return out, nil
}

func knownPersonality(p model.Personality) bool {
	for _, q := range model.Personalities {
		if p == q {
			return true
		}
	}
	return false
}
