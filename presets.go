package fluentdb

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// -----------------------------------------------------------------------------
//  Presets, isimlendirilmiş bağlantı yapılandırmalarıdır.
//
//  Dosya biçimi (.fluentdb.yaml, .fluentdb.json veya .fluentdb.toml):
//
//	presets:
//	  default:
//	    dialect: sqlite
//	    file: ./storage/app.db
//	  reporting:
//	    dialect: mysql
//	    host: db.internal
//	    database: reports
//	    user: reader
//	    password: ${REPORTING_PASSWORD}
//
//  Arama sırası: çalışma dizini, ev dizini, ~/.config/fluentdb.
//  FLUENTDB_PRESETS_<AD>_<ALAN> ortam değişkenleri dosyadaki değeri ezer.
//  ${VAR} ifadeleri ortamdan, yoksa .env / .env.local dosyalarından doldurulur.
//
//  -- @author   Ahmet ALTUN
//  -- @github   github.com/biyonik
//  -- @linkedin linkedin.com/in/biyonik
//  -- @email    ahmet.altun60@gmail.com
// -----------------------------------------------------------------------------

// DefaultPreset, parametresiz bağlantıda kullanılan preset adıdır.
const DefaultPreset = "default"

// EnvPrefix, preset değerlerini ezen ortam değişkenlerinin önekidir.
const EnvPrefix = "FLUENTDB"

const presetFileName = ".fluentdb"

var envRefRegex = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Presets, adı verilen Config kayıtlarının eşzamanlı kullanıma uygun kümesidir.
type Presets struct {
	mu      sync.RWMutex
	configs map[string]Config
	source  string

	v      *viper.Viper
	dotenv map[string]string
}

// PresetOption, LoadPresets davranışını değiştirir.
type PresetOption func(*presetLoader)

type presetLoader struct {
	fs       afero.Fs
	file     string
	paths    []string
	envFiles []string
}

// WithPresetFile, arama yerine belirli bir dosyayı okur. Dosya yoksa hata döner.
func WithPresetFile(path string) PresetOption {
	return func(l *presetLoader) {
		l.file = path
	}
}

// WithPresetFs, dosya sistemini değiştirir (testlerde afero.NewMemMapFs).
func WithPresetFs(fs afero.Fs) PresetOption {
	return func(l *presetLoader) {
		if fs != nil {
			l.fs = fs
		}
	}
}

// WithSearchPaths, varsayılan arama dizinlerinin yerine geçer.
func WithSearchPaths(paths ...string) PresetOption {
	return func(l *presetLoader) {
		l.paths = paths
	}
}

// WithEnvFiles, okunacak dotenv dosyalarını belirler. Sonraki dosya öncekini ezer.
func WithEnvFiles(files ...string) PresetOption {
	return func(l *presetLoader) {
		l.envFiles = files
	}
}

// NewPresets, programatik olarak verilen yapılandırmalardan bir küme oluşturur.
func NewPresets(configs map[string]Config) *Presets {
	p := &Presets{configs: make(map[string]Config, len(configs))}
	for name, cfg := range configs {
		p.configs[strings.ToLower(name)] = cfg
	}
	return p
}

// LoadPresets, preset dosyasını bulur, okur ve çözümler.
// Arama modunda dosya bulunamazsa boş bir küme döner.
func LoadPresets(opts ...PresetOption) (*Presets, error) {
	l := &presetLoader{
		fs:       afero.NewOsFs(),
		envFiles: []string{".env", ".env.local"},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	if l.paths == nil {
		l.paths = defaultSearchPaths()
	}

	dotenv, err := readDotenv(l.fs, l.envFiles)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetFs(l.fs)
	if l.file != "" {
		v.SetConfigFile(l.file)
	} else {
		v.SetConfigName(presetFileName)
		for _, path := range l.paths {
			v.AddConfigPath(path)
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if l.file == "" && errors.As(err, &notFound) {
			return &Presets{configs: map[string]Config{}, dotenv: dotenv}, nil
		}
		return nil, &ConfigError{Field: "file", Reason: err.Error()}
	}

	p := &Presets{v: v, dotenv: dotenv, source: v.ConfigFileUsed()}
	configs, err := p.decode()
	if err != nil {
		return nil, err
	}
	p.configs = configs
	return p, nil
}

// Lookup, adı verilen preset'i döndürür. Adlar büyük/küçük harf duyarsızdır.
func (p *Presets) Lookup(name string) (Config, error) {
	if name == "" {
		name = DefaultPreset
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	cfg, ok := p.configs[strings.ToLower(name)]
	if !ok {
		return Config{}, &ConfigError{Preset: name, Reason: "unknown preset"}
	}
	return cfg, nil
}

// Names, tanımlı preset adlarını sıralı döndürür.
func (p *Presets) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, 0, len(p.configs))
	for name := range p.configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Source, okunan preset dosyasının yolunu döndürür; programatik kümelerde boştur.
func (p *Presets) Source() string {
	return p.source
}

// Watch, preset dosyası değiştiğinde kümeyi yeniden yükler ve fn'i çağırır.
// Çözümleme başarısız olursa eski küme korunur ve hata fn'e iletilir.
func (p *Presets) Watch(fn func(err error)) error {
	if p.v == nil || p.source == "" {
		return &ConfigError{Reason: "presets are not backed by a file"}
	}

	p.v.OnConfigChange(func(fsnotify.Event) {
		configs, err := p.decode()
		if err == nil {
			p.mu.Lock()
			p.configs = configs
			p.mu.Unlock()
		}
		if fn != nil {
			fn(err)
		}
	})
	p.v.WatchConfig()
	return nil
}

func (p *Presets) decode() (map[string]Config, error) {
	configs := make(map[string]Config)

	for name := range p.v.GetStringMap("presets") {
		raw := make(map[string]any, len(configFields))
		for _, field := range configFields {
			key := "presets." + name + "." + field
			if !p.v.IsSet(key) {
				continue
			}
			if field == "params" {
				params := p.v.GetStringMapString(key)
				for k, val := range params {
					params[k] = p.expand(val)
				}
				raw[field] = params
				continue
			}
			value := p.v.Get(key)
			if s, ok := value.(string); ok {
				value = p.expand(s)
			}
			raw[field] = value
		}

		var cfg Config
		if err := decodeConfig(raw, &cfg); err != nil {
			return nil, &ConfigError{Preset: name, Reason: err.Error()}
		}
		configs[name] = cfg
	}

	return configs, nil
}

// expand, ${VAR} ifadelerini önce ortamdan, sonra dotenv değerlerinden doldurur.
func (p *Presets) expand(s string) string {
	return envRefRegex.ReplaceAllStringFunc(s, func(ref string) string {
		key := ref[2 : len(ref)-1]
		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		return p.dotenv[key]
	})
}

// decodeConfig, gevşek tipli bir map'i Config'e çevirir ("5432" -> 5432 gibi).
func decodeConfig(raw map[string]any, cfg *Config) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}

func readDotenv(fs afero.Fs, files []string) (map[string]string, error) {
	values := make(map[string]string)
	for _, file := range files {
		exists, err := afero.Exists(fs, file)
		if err != nil || !exists {
			continue
		}
		data, err := afero.ReadFile(fs, file)
		if err != nil {
			return nil, &ConfigError{Field: "env", Reason: err.Error()}
		}
		parsed, err := godotenv.Unmarshal(string(data))
		if err != nil {
			return nil, &ConfigError{Field: "env", Reason: file + ": " + err.Error()}
		}
		for k, v := range parsed {
			values[k] = v
		}
	}
	return values, nil
}

func defaultSearchPaths() []string {
	paths := []string{"."}
	if home, err := homedir.Dir(); err == nil {
		paths = append(paths, home, filepath.Join(home, ".config", "fluentdb"))
	}
	return paths
}
