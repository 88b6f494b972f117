package fluentdb

import (
	"context"
	"database/sql"
)

// -----------------------------------------------------------------------------
//  Transaction: aynı bağlantı üzerinde atomik yürütme.
//
//  Transaction, fn'e yalnızca *sql.Tx üzerinden çalışan bir alt session verir.
//  Alt session kendi yürütme durumunu (LastError, Affected, ...) tutar; fn
//  bittiğinde trace kayıtları üst session'ın trace'ine eklenir.
//
//  Bağlantı havuzu tek bağlantıdır: fn içinde üst session'ı kullanmak bağlantıyı
//  bekler ve ctx sona erene kadar bloklanır. fn içinde yalnızca tx kullanılmalıdır.
//
//  -- @author   Ahmet ALTUN
//  -- @github   github.com/biyonik
//  -- @linkedin linkedin.com/in/biyonik
//  -- @email    ahmet.altun60@gmail.com
// -----------------------------------------------------------------------------

// Transaction, fn'i bir transaction içinde çalıştırır. fn hata döndürürse veya
// panic olursa rollback yapılır, aksi halde commit edilir.
//
// Örnek:
//
//	err := s.Transaction(ctx, func(tx *fluentdb.Session) error {
//	    if _, err := tx.Fail(true).Table("accounts").Where(map[string]any{"id": 1}).UpdateContext(ctx, debit); err != nil {
//	        return err
//	    }
//	    _, err := tx.Fail(true).Table("accounts").Where(map[string]any{"id": 2}).UpdateContext(ctx, credit)
//	    return err
//	})
func (s *Session) Transaction(ctx context.Context, fn func(tx *Session) error) (err error) {
	return s.TransactionOptions(ctx, nil, fn)
}

// TransactionOptions, Transaction'ın sql.TxOptions alan versiyonudur.
func (s *Session) TransactionOptions(ctx context.Context, opts *sql.TxOptions, fn func(tx *Session) error) (err error) {
	db, err := s.Connection(ctx)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return &QueryError{Query: "BEGIN", Err: err}
	}

	child := s.fork(tx)
	defer func() {
		child.finish()
		s.mergeTrace(child.Trace())
	}()

	// Panic güvenliği: fn panic olursa rollback yapılır ve panic devam eder.
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(child); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return &QueryError{Query: "ROLLBACK", Err: rbErr}
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return &QueryError{Query: "COMMIT", Err: err}
	}
	return nil
}

// fork, üst session'ın gramer, önek ve log ayarlarını taşıyan bir transaction session'ı üretir.
func (s *Session) fork(tx *sql.Tx) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	return &Session{
		tx:         tx,
		config:     s.config,
		grammar:    s.grammar,
		prefix:     s.prefix,
		logger:     s.logger,
		debug:      s.debug,
		traceLimit: s.traceLimit,
	}
}

func (s *Session) finish() {
	s.mu.Lock()
	s.txDone = true
	s.mu.Unlock()
}

func (s *Session) mergeTrace(entries []TraceEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		s.appendTraceLocked(e)
	}
}
