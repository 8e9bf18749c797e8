// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package escrow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/blinklabs-io/escrow/database"
	"github.com/blinklabs-io/escrow/event"
	"github.com/blinklabs-io/escrow/registrar"
	"github.com/blinklabs-io/escrow/voter"
)

// Engine applies escrow operations against stored registrars and voters.
// Writes are serialized and each operation runs in its own database
// transaction. Events are published only after the transaction commits.
type Engine struct {
	db            *database.Database
	registrars    *lru.Cache
	eventBus      *event.EventBus
	metrics       *engineMetrics
	tracer        trace.Tracer
	shutdownFuncs []func(context.Context) error
	config        Config
	mu            sync.RWMutex
	shutdownOnce  sync.Once
	stopped       bool
}

func New(cfg Config) (*Engine, error) {
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.vault == nil {
		cfg.vault = NopVault{}
	}
	if cfg.clock == nil {
		cfg.clock = time.Now
	}
	if cfg.shutdownTimeout <= 0 {
		cfg.shutdownTimeout = defaultShutdownTimeout
	}
	if cfg.registrarCacheSize <= 0 {
		cfg.registrarCacheSize = defaultRegistrarCacheSize
	}
	registrars, err := lru.New(cfg.registrarCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create registrar cache: %w", err)
	}
	e := &Engine{
		config:     cfg,
		registrars: registrars,
	}
	if e.config.tracing {
		if err := e.setupTracing(); err != nil {
			return nil, err
		}
	}
	e.tracer = otel.Tracer(tracerName)
	db, err := database.New(&database.Config{
		DataDir:       cfg.dataDir,
		Logger:        cfg.logger,
		PromRegistry:  cfg.promRegistry,
		Journal:       cfg.journal,
		JournalTuning: cfg.journalTuning,
	})
	if db == nil {
		e.runShutdownFuncs(context.Background())
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	e.db = db
	if err != nil {
		var dbErr database.CommitTimestampError
		if !errors.As(err, &dbErr) {
			_ = db.Close()
			e.runShutdownFuncs(context.Background())
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		cfg.logger.Warn(
			"database initialization error, needs recovery",
			"error", err,
		)
		if err := db.RecoverCommitTimestampConflict(); err != nil {
			_ = db.Close()
			e.runShutdownFuncs(context.Background())
			return nil, fmt.Errorf("failed to recover database: %w", err)
		}
	}
	e.eventBus = event.NewEventBus(cfg.promRegistry, cfg.logger)
	if cfg.promRegistry != nil {
		e.initMetrics()
	}
	return e, nil
}

// EventBus returns the bus that engine events are published on
func (e *Engine) EventBus() *event.EventBus {
	return e.eventBus
}

// Database returns the underlying database
func (e *Engine) Database() *database.Database {
	return e.db
}

func (e *Engine) Stop() error {
	var err error
	e.shutdownOnce.Do(func() {
		err = e.shutdown()
	})
	return err
}

func (e *Engine) shutdown() error {
	ctx, cancel := context.WithTimeout(
		context.Background(),
		e.config.shutdownTimeout,
	)
	defer cancel()

	e.config.logger.Debug("starting graceful shutdown")

	// Wait for in-flight operations and refuse new ones
	e.mu.Lock()
	e.stopped = true
	e.mu.Unlock()

	var err error
	if closeErr := e.db.Close(); closeErr != nil {
		err = errors.Join(err, fmt.Errorf("database close: %w", closeErr))
	}
	e.eventBus.Stop()
	err = errors.Join(err, e.runShutdownFuncs(ctx))

	e.config.logger.Debug("graceful shutdown complete")
	return err
}

func (e *Engine) runShutdownFuncs(ctx context.Context) error {
	var err error
	for _, fn := range e.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	e.shutdownFuncs = nil
	return err
}

// operation carries the state of one write while its transaction is open
type operation struct {
	txn    *database.Txn
	events []event.Event
}

func (o *operation) publish(eventType event.EventType, data any) {
	o.events = append(o.events, event.NewEvent(eventType, data))
}

func (e *Engine) startSpan(
	ctx context.Context,
	op string,
	key registrar.Key,
) (context.Context, trace.Span) {
	return e.tracer.Start(
		ctx,
		"escrow."+op,
		trace.WithAttributes(
			attribute.String("escrow.registrar", key.String()),
		),
	)
}

func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// write runs fn in a read-write transaction and publishes the events it
// queued once the transaction has committed
func (e *Engine) write(
	ctx context.Context,
	op string,
	key registrar.Key,
	fn func(context.Context, *operation) error,
) (err error) {
	start := time.Now()
	ctx, span := e.startSpan(ctx, op, key)
	defer func() {
		e.observe(op, start, err)
		finishSpan(span, err)
	}()
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrEngineStopped
	}
	o := &operation{}
	err = e.db.Transaction(true).Do(func(txn *database.Txn) error {
		o.txn = txn
		return fn(ctx, o)
	})
	if err != nil {
		e.config.logger.Debug(
			"operation failed",
			"op", op,
			"registrar", key.String(),
			"error", err,
		)
		return err
	}
	// Any write may have changed the registrar, including mint usage counts
	e.registrars.Remove(key)
	for _, evt := range o.events {
		e.eventBus.Publish(evt.Type, evt)
	}
	e.config.logger.Debug(
		"operation applied",
		"op", op,
		"registrar", key.String(),
	)
	return nil
}

// read runs fn in a read-only transaction
func (e *Engine) read(
	ctx context.Context,
	op string,
	key registrar.Key,
	fn func(context.Context, *database.Txn) error,
) (err error) {
	start := time.Now()
	ctx, span := e.startSpan(ctx, op, key)
	defer func() {
		e.observe(op, start, err)
		finishSpan(span, err)
	}()
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.stopped {
		return ErrEngineStopped
	}
	txn := e.db.Transaction(false)
	defer txn.Release()
	return fn(ctx, txn)
}

// now returns the current time as seen by the registrar
func (e *Engine) now(reg *registrar.Registrar) int64 {
	return reg.Clock(e.config.clock().Unix())
}

// cachedRegistrar returns a copy of a registrar for the read path. Writes
// always load from their own transaction
func (e *Engine) cachedRegistrar(
	txn *database.Txn,
	key registrar.Key,
) (*registrar.Registrar, error) {
	if cached, ok := e.registrars.Get(key); ok {
		e.observeCache(true)
		tmpReg := cached.(registrar.Registrar) //nolint:forcetypeassert
		return &tmpReg, nil
	}
	e.observeCache(false)
	reg, err := e.db.GetRegistrar(key, txn)
	if err != nil {
		return nil, err
	}
	e.registrars.Add(key, *reg)
	return reg, nil
}

func (e *Engine) loadVoter(
	txn *database.Txn,
	key registrar.Key,
	authority registrar.Identity,
) (*registrar.Registrar, *voter.Voter, error) {
	reg, err := e.cachedRegistrar(txn, key)
	if err != nil {
		return nil, nil, err
	}
	v, err := e.db.GetVoter(key, authority, txn)
	if err != nil {
		return nil, nil, err
	}
	return reg, v, nil
}

// journal appends an operation record within the operation's transaction
func (e *Engine) journal(
	o *operation,
	key registrar.Key,
	rec *database.JournalRecord,
) error {
	return e.db.AppendJournal(key, rec, o.txn)
}

func newRecord(op string, now int64) *database.JournalRecord {
	return &database.JournalRecord{
		Operation: op,
		Timestamp: now,
		Index:     -1,
		MintIndex: -1,
	}
}
