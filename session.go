package fluentdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-version"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/spf13/cast"

	"github.com/biyonik/fluentdb/dialect"
)

/*
=======================================================================================================================
  SESSION – Yürütme Durumunun Sahibi

  Session; bağlantıyı, dialect gramerini, tablo önekini ve son yürütmenin izlerini
  (son sorgu, bindingler, etkilenen satır, son eklenen id, son hata, trace) tek bir
  nesnede toplar. Her hit mutex altında çalışır; bir session'da aynı anda tek sorgu
  yürür. İstek başına ayrı session kullanmak için WithSession / FromContext.

  Hata politikası:
  - ConfigError ve ConnectionError her zaman çağırana döner.
  - QueryError LastError'a yazılır ve yutulur; Fail(true) ile bir sonraki hit için
    çağırana döndürülür. Bayrak her hit'in sonunda sıfırlanır.
  - ValidationError hit'e hiç ulaşmaz.

  @author    Ahmet ALTUN
  @github    github.com/biyonik
  @linkedin  linkedin.com/in/biyonik
  @email     ahmet.altun60@gmail.com
=======================================================================================================================
*/

// executor, hem *sql.DB hem *sql.Tx tarafından sağlanan hazırlık yöntemidir.
type executor interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

var (
	_ executor = (*sql.DB)(nil)
	_ executor = (*sql.Tx)(nil)
)

// versionRegex, "10.5.8-MariaDB-log" veya "16.2 (Debian ...)" gibi değerlerden sürüm kısmını alır.
var versionRegex = regexp.MustCompile(`^\d+(\.\d+)*`)

// TraceEntry, denenen tek bir ifadenin kaydıdır.
type TraceEntry struct {
	Query    string
	Bindings []any
	Err      error
	Duration time.Duration
	At       time.Time
}

// Session, tek bir bağlantı üzerindeki yürütme durumudur.
type Session struct {
	mu sync.Mutex

	db        *sql.DB
	tx        *sql.Tx
	txDone    bool
	config    Config
	connector *Connector
	initErr   error

	grammar    dialect.Grammar
	prefix     string
	optPrefix  string
	logger     Logger
	debug      bool
	traceLimit int

	lastQuery    string
	lastBindings []any
	affected     int64
	lastID       sql.NullInt64
	lastResult   Result
	lastErr      error
	failFast     bool
	trace        []TraceEntry
}

// New, bağlantısız bir session oluşturur. WithPresets veya WithConnector verilmişse
// ilk sorguda DefaultPreset ile bağlanır.
func New(opts ...Option) *Session {
	s := &Session{logger: NopLogger{}}
	applyOptions(s, opts)
	return s
}

// NewSession, var olan bir *sql.DB'yi sarar. Gramer verilmemişse sürücüden tahmin edilir.
func NewSession(db *sql.DB, opts ...Option) *Session {
	s := New(opts...)
	s.db = db
	if s.grammar == nil && db != nil {
		s.grammar = grammarForDriver(db.Driver())
	}
	return s
}

// Open, params'ı çözer, bağlantıyı açar ve hazır bir session döndürür.
//
// Örnek:
//
//	s, err := fluentdb.Open(ctx, "default")
//	s, err := fluentdb.Open(ctx, fluentdb.Config{Dialect: "sqlite", File: ":memory:"})
func Open(ctx context.Context, params any, opts ...Option) (*Session, error) {
	s := New(opts...)
	if _, err := s.Connect(ctx, params); err != nil {
		return nil, err
	}
	return s, nil
}

func grammarForDriver(d driver.Driver) dialect.Grammar {
	switch d.(type) {
	case *sqlite3.SQLiteDriver:
		return dialect.SQLite()
	case *pq.Driver:
		return dialect.Postgres()
	default:
		return dialect.MySQL()
	}
}

// Connect, params'ı çözer, bağlantıyı açar ve session'a bağlar. Önceki bağlantı kapatılır.
func (s *Session) Connect(ctx context.Context, params any) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connectLocked(ctx, params)
}

func (s *Session) connectLocked(ctx context.Context, params any) (*sql.DB, error) {
	if s.initErr != nil {
		return nil, s.initErr
	}
	if s.tx != nil {
		return nil, &ConnectionError{Err: errors.New("cannot reconnect inside a transaction")}
	}
	if s.connector == nil {
		s.connector = NewConnector(nil, nil)
	}

	cfg, err := s.connector.Resolve(params)
	if err != nil {
		return nil, err
	}
	db, err := s.connector.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	grammar, err := dialect.ForName(cfg.Dialect)
	if err != nil {
		_ = db.Close()
		return nil, &ConfigError{Field: "dialect", Reason: err.Error()}
	}

	if s.db != nil && s.db != db {
		_ = s.db.Close()
	}
	s.db = db
	s.config = cfg
	s.grammar = grammar
	s.prefix = cfg.Prefix
	if s.prefix == "" {
		s.prefix = s.optPrefix
	}
	return db, nil
}

// Connection, canlı bağlantıyı döndürür. Bağlantı yoksa ve connector tanımlıysa
// DefaultPreset ile tembel olarak bağlanır.
func (s *Session) Connection(ctx context.Context) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db, nil
	}
	if s.initErr != nil {
		return nil, s.initErr
	}
	if s.connector == nil {
		return nil, &ConnectionError{Err: ErrNoConnection}
	}
	return s.connectLocked(ctx, DefaultPreset)
}

func (s *Session) executorLocked(ctx context.Context) (executor, error) {
	if s.initErr != nil {
		return nil, s.initErr
	}
	if s.tx != nil {
		if s.txDone {
			return nil, ErrTxClosed
		}
		return s.tx, nil
	}
	if s.db != nil {
		return s.db, nil
	}
	if s.connector == nil {
		return nil, &ConnectionError{Err: ErrNoConnection}
	}
	return s.connectLocked(ctx, DefaultPreset)
}

// grammarFor, derleme için grameri döndürür; gerekirse önce bağlanır.
func (s *Session) grammarFor(ctx context.Context) (dialect.Grammar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initErr != nil {
		return nil, s.initErr
	}
	if s.grammar != nil {
		return s.grammar, nil
	}
	if _, err := s.executorLocked(ctx); err != nil {
		return nil, err
	}
	return s.grammar, nil
}

// ----------------------------------------------------------------------------
// Execution
// ----------------------------------------------------------------------------

// Query, sonuç kümesi döndüren bir ifadeyi çalıştırır ve satırları seçilen şekle sokar.
// Başarısız sorguda boş bir sonuç ve nil hata döner; hata LastError'dan okunur.
// Fail(true) ile kurulmuşsa *QueryError döner.
func (s *Session) Query(ctx context.Context, query string, bindings []any, opts ...QueryOption) (Result, error) {
	res, _, err := s.query(ctx, query, bindings, opts)
	return res, err
}

// query, Query'nin gövdesidir; ek olarak hit başladığında fail-fast'in kurulu olup
// olmadığını döndürür.
func (s *Session) query(ctx context.Context, query string, bindings []any, opts []QueryOption) (Result, bool, error) {
	o := buildQueryOptions(opts)

	res, armed, err := s.hit(ctx, query, bindings, o.materializer())
	if err != nil {
		if err = propagate(err, armed); err != nil {
			return nil, armed, err
		}
		return emptyResult(o), armed, nil
	}
	return res, armed, nil
}

// Execute, sonuç kümesi beklenmeyen bir ifadeyi çalıştırır ve başarıyı döndürür.
func (s *Session) Execute(ctx context.Context, query string, bindings ...any) (bool, error) {
	_, armed, err := s.hit(ctx, query, bindings, nil)
	if err != nil {
		return false, propagate(err, armed)
	}
	return true, nil
}

// hit, ifadeyi hazırlar, bindingleri sırayla bağlar ve çalıştırır. m verilmişse satırlar
// hit içinde tüketilir. Her durumda trace'e bir kayıt ekler ve fail-fast bayrağını sıfırlar.
// armed, bu hit başladığında fail-fast bayrağının kurulu olup olmadığını bildirir.
func (s *Session) hit(ctx context.Context, query string, bindings []any, m Materializer) (res Result, armed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	armed = s.failFast
	defer func() { s.failFast = false }()

	exec, err := s.executorLocked(ctx)
	if err != nil {
		return nil, armed, err
	}

	bindings = append([]any{}, bindings...)

	start := time.Now()
	res, affected, lastID, execErr := run(ctx, exec, query, bindings, m)
	elapsed := time.Since(start)

	s.lastQuery = query
	s.lastBindings = bindings

	if execErr != nil {
		qerr := &QueryError{Query: query, Bindings: bindings, Err: execErr}
		s.affected = 0
		s.lastID = sql.NullInt64{}
		s.lastErr = qerr
		s.lastResult = nil
		err = qerr
	} else {
		s.affected = affected
		s.lastID = lastID
		s.lastErr = nil
		s.lastResult = res
	}

	s.appendTraceLocked(TraceEntry{
		Query:    query,
		Bindings: bindings,
		Err:      s.lastErr,
		Duration: elapsed,
		At:       start,
	})

	if s.debug {
		s.logger.Log(query, bindings, elapsed, execErr)
	}

	return res, armed, err
}

func run(ctx context.Context, exec executor, query string, bindings []any, m Materializer) (Result, int64, sql.NullInt64, error) {
	var lastID sql.NullInt64

	stmt, err := exec.PrepareContext(ctx, query)
	if err != nil {
		return nil, 0, lastID, err
	}
	defer stmt.Close()

	if m != nil {
		rows, err := stmt.QueryContext(ctx, bindings...)
		if err != nil {
			return nil, 0, lastID, err
		}
		defer rows.Close()

		res, err := m.Materialize(rows)
		if err != nil {
			return nil, 0, lastID, err
		}
		return res, int64(res.Len()), lastID, nil
	}

	result, err := stmt.ExecContext(ctx, bindings...)
	if err != nil {
		return nil, 0, lastID, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		affected = 0
	}
	if id, err := result.LastInsertId(); err == nil {
		lastID = sql.NullInt64{Int64: id, Valid: true}
	}
	return nil, affected, lastID, nil
}

// propagate, yutulabilir bir QueryError'ı fail-fast kurulu değilse nil'e çevirir.
// Diğer hata türleri her zaman döner.
func propagate(err error, armed bool) error {
	var qerr *QueryError
	if armed || !errors.As(err, &qerr) {
		return err
	}
	return nil
}

// failLast, son hit başarılı olsa da sonucu kullanılamadığında hatayı
// LastError'a ve son trace kaydına yazar.
func (s *Session) failLast(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastErr = err
	s.lastResult = nil
	if n := len(s.trace); n > 0 {
		s.trace[n-1].Err = err
	}
}

func (s *Session) appendTraceLocked(entry TraceEntry) {
	s.trace = append(s.trace, entry)
	if s.traceLimit > 0 && len(s.trace) > s.traceLimit {
		s.trace = append([]TraceEntry(nil), s.trace[len(s.trace)-s.traceLimit:]...)
	}
}

// Fail, bir sonraki hit başarısız olursa hatanın çağırana dönmesini sağlar.
// Bayrak tek kullanımlıktır.
//
// Örnek:
//
//	ok, err := s.Fail(true).Execute(ctx, "DELETE FROM logs")
func (s *Session) Fail(on bool) *Session {
	s.mu.Lock()
	s.failFast = on
	s.mu.Unlock()
	return s
}

// ----------------------------------------------------------------------------
// Accessors
// ----------------------------------------------------------------------------

// Affected, son hit'te etkilenen (sorgularda okunan) satır sayısıdır.
func (s *Session) Affected() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.affected
}

// LastID, son eklenen kaydın id'sini döndürür. Sürücü bildirmiyorsa veya son hit
// başarısızsa ok false'tur.
func (s *Session) LastID() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastID.Int64, s.lastID.Valid
}

func (s *Session) LastQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastQuery
}

func (s *Session) LastBindings() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]any(nil), s.lastBindings...)
}

// LastResult, son başarılı sorgunun sonucudur; Execute sonrası nil'dir.
func (s *Session) LastResult() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastResult
}

// LastError, son hit'in hatasıdır; başarılı hit sonrası nil'dir.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Trace, tüm denemelerin kopyasını sırayla döndürür.
func (s *Session) Trace() []TraceEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]TraceEntry(nil), s.trace...)
}

func (s *Session) ClearTrace() {
	s.mu.Lock()
	s.trace = nil
	s.mu.Unlock()
}

// Dialect, aktif gramerin adını döndürür; gramer henüz bilinmiyorsa boştur.
func (s *Session) Dialect() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.grammar == nil {
		return ""
	}
	return s.grammar.Name()
}

func (s *Session) Prefix() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefix
}

// Config, Connect ile çözülen yapılandırmayı döndürür.
func (s *Session) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// ServerVersion, sunucu sürümünü sorgular. Sorgu trace'e eklenir; hata her zaman döner.
func (s *Session) ServerVersion(ctx context.Context) (*version.Version, error) {
	g, err := s.grammarFor(ctx)
	if err != nil {
		return nil, err
	}

	res, _, err := s.hit(ctx, g.VersionQuery(), nil, NewMaterializer(MaterializeScalarColumn, ContainerCollection, ""))
	if err != nil {
		return nil, err
	}

	values := res.(*ColumnValues).Values
	if len(values) == 0 {
		return nil, &QueryError{Query: g.VersionQuery(), Err: sql.ErrNoRows}
	}

	raw := versionRegex.FindString(strings.TrimSpace(cast.ToString(values[0])))
	if raw == "" {
		return nil, &QueryError{Query: g.VersionQuery(), Err: fmt.Errorf("unrecognized server version %q", values[0])}
	}
	return version.NewVersion(raw)
}

// Close, bağlantıyı kapatır. Transaction session'ında etkisizdir.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tx != nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Table, prefix + name tablosu üzerinde yeni bir Query başlatır.
func (s *Session) Table(name string) *Query {
	return newQuery(s, nil, name)
}
