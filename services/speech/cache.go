// File: services/speech/cache.go
package speech

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sethvargo/go-retry"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Synthesizer turns text into telephone audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// AudioHandle is synthesized audio plus the content key it is stored under.
type AudioHandle struct {
	Key    string
	Audio  []byte
	Cached bool
}

// Options tunes the cache.
type Options struct {
	Voice      string
	LocalSize  int
	LocalTTL   time.Duration
	MaxRetries uint64
	Backoff    time.Duration
}

// Cache is a content-addressed speech cache: an in-process LRU over a shared
// store, with concurrent misses for the same text coalesced into one
// provider call.
type Cache struct {
	voice      string
	synth      Synthesizer
	store      AudioStore
	local      *expirable.LRU[string, []byte]
	group      singleflight.Group
	maxRetries uint64
	backoff    time.Duration
	logger     *zap.Logger
}

func NewCache(synth Synthesizer, store AudioStore, opts Options, logger *zap.Logger) *Cache {
	if opts.LocalSize <= 0 {
		opts.LocalSize = 512
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 200 * time.Millisecond
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	return &Cache{
		voice:      opts.Voice,
		synth:      synth,
		store:      store,
		local:      expirable.NewLRU[string, []byte](opts.LocalSize, nil, opts.LocalTTL),
		maxRetries: opts.MaxRetries,
		backoff:    opts.Backoff,
		logger:     logger,
	}
}

// Key returns the cache key of text for a voice.
func Key(voice, text string) string {
	sum := sha256.Sum256([]byte(text))
	return "tts:" + voice + ":" + hex.EncodeToString(sum[:])
}

// Speak returns audio for text, synthesizing it only when no tier has it.
// Identical text always yields the same bytes.
func (c *Cache) Speak(ctx context.Context, text string) (AudioHandle, error) {
	key := Key(c.voice, text)
	if audio, ok := c.local.Get(key); ok {
		return AudioHandle{Key: key, Audio: audio, Cached: true}, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		return c.load(ctx, key, text)
	})
	if err != nil {
		return AudioHandle{}, err
	}
	return v.(AudioHandle), nil
}

func (c *Cache) load(ctx context.Context, key, text string) (AudioHandle, error) {
	audio, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("Audio store read failed", zap.String("key", key), zap.Error(err))
	}
	if ok {
		c.local.Add(key, audio)
		return AudioHandle{Key: key, Audio: audio, Cached: true}, nil
	}

	b := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.backoff))
	err = retry.Do(ctx, b, func(ctx context.Context) error {
		var serr error
		audio, serr = c.synth.Synthesize(ctx, text)
		if serr != nil && temporary(serr) {
			c.logger.Debug("Retrying synthesis", zap.String("key", key), zap.Error(serr))
			return retry.RetryableError(serr)
		}
		return serr
	})
	if err != nil {
		return AudioHandle{}, fmt.Errorf("synthesize %q: %w", text, err)
	}

	if err := c.store.Set(ctx, key, audio); err != nil {
		c.logger.Warn("Audio store write failed", zap.String("key", key), zap.Error(err))
	}
	c.local.Add(key, audio)
	return AudioHandle{Key: key, Audio: audio}, nil
}

func temporary(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return ne.Timeout()
	}
	return false
}

// Prewarm synthesizes texts ahead of the first call. Failures are logged and
// the remaining texts still load.
func (c *Cache) Prewarm(ctx context.Context, texts []string) int {
	p := pool.NewWithResults[bool]().WithContext(ctx).WithMaxGoroutines(4)
	for _, text := range texts {
		text := text
		p.Go(func(ctx context.Context) (bool, error) {
			if _, err := c.Speak(ctx, text); err != nil {
				c.logger.Warn("Prewarm failed", zap.String("text", text), zap.Error(err))
				return false, nil
			}
			return true, nil
		})
	}
	results, _ := p.Wait()
	n := 0
	for _, ok := range results {
		if ok {
			n++
		}
	}
	return n
}
