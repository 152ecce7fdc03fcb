package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/voidshard/era5d/internal/utils"
	"github.com/voidshard/era5d/pkg/api"
	"github.com/voidshard/era5d/pkg/api/http/client"
	"github.com/voidshard/era5d/pkg/archive"
	"github.com/voidshard/era5d/pkg/log"
	"github.com/voidshard/era5d/pkg/queue"
	"github.com/voidshard/era5d/pkg/registry"
)

type optsGeneral struct {
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
	LogLevel string `long:"log-level" env:"LOG_LEVEL" default:"info" description:"Log level (debug, info, warn, error)"`
}

// setupLogging installs the global logger; the returned func flushes it.
func (o *optsGeneral) setupLogging() func() {
	logger := log.InitLog(log.Level(o.LogLevel, o.Debug))
	undo := zap.ReplaceGlobals(logger)
	return func() {
		_ = logger.Sync()
		undo()
	}
}

type optsDatabase struct {
	DatabaseURL string `long:"database-url" env:"DATABASE_URL" description:"Postgres connection string, jobs are held in memory if not set"`
	SkipMigrate bool   `long:"skip-migrate" env:"SKIP_MIGRATE" description:"Don't apply schema migrations on start up"`
}

func (o *optsDatabase) registryOptions() *registry.Options {
	return &registry.Options{URL: o.DatabaseURL, SkipMigrate: o.SkipMigrate}
}

type optsQueue struct {
	QueueURL string `long:"queue-url" env:"QUEUE_URL" description:"Redis connection string (or REDIS_URL), an in process worker pool is used if not set"`
	Workers  int    `long:"workers" env:"WORKERS" default:"4" description:"Number of retrievals run at once"`

	QueueTLSCaCert string `long:"queue-tls-ca-cert" env:"QUEUE_TLS_CA_CERT" description:"Path to queue CA certificate"`
	QueueTLSCert   string `long:"queue-tls-cert" env:"QUEUE_TLS_CERT" description:"Path to queue client certificate"`
	QueueTLSKey    string `long:"queue-tls-key" env:"QUEUE_TLS_KEY" description:"Path to queue client key"`
}

func (o *optsQueue) url() string {
	if o.QueueURL != "" {
		return o.QueueURL
	}
	return os.Getenv("REDIS_URL")
}

func (o *optsQueue) queueOptions() (*queue.Options, error) {
	files := &utils.TLSFiles{CACert: o.QueueTLSCaCert, Cert: o.QueueTLSCert, Key: o.QueueTLSKey}
	tlsCfg, err := files.Config()
	if err != nil {
		return nil, err
	}
	return &queue.Options{URL: o.url(), TLSConfig: tlsCfg, Workers: o.Workers}, nil
}

type optsArchive struct {
	DownloadDir  string        `long:"download-dir" env:"DOWNLOAD_DIR" description:"Where retrieved files are written (default: $TMPDIR/era5d)"`
	CDSAPIURL    string        `long:"cdsapi-url" env:"CDSAPI_URL" description:"Archive API URL"`
	CDSAPIKey    string        `long:"cdsapi-key" env:"CDSAPI_KEY" description:"Archive API key"`
	CDSAPIRC     string        `long:"cdsapi-rc" env:"CDSAPI_RC" description:"Archive credentials file (default: ~/.cdsapirc)"`
	PollInterval time.Duration `long:"poll-interval" env:"POLL_INTERVAL" default:"5s" description:"Mean time between archive job status checks"`
}

func (o *optsArchive) apiOptions() *api.Options {
	opts := api.OptionsDefault()
	if o.DownloadDir != "" {
		opts.DownloadDir = o.DownloadDir
	}
	opts.Archive.PollInterval = o.PollInterval

	if o.CDSAPIKey != "" {
		url := o.CDSAPIURL
		if url == "" {
			url = archive.DefaultURL
		}
		opts.Archive.Credentials = &archive.Credentials{URL: url, Key: o.CDSAPIKey}
	} else if o.CDSAPIRC != "" {
		// credentials are loaded lazily, from the environment
		os.Setenv("CDSAPI_RC", o.CDSAPIRC)
	}
	return opts
}

type optsClient struct {
	Server string `long:"server" env:"ERA5D_SERVER" default:"http://localhost:8100" description:"era5d API address"`
}

func (o *optsClient) client() (*client.Client, error) {
	return client.New(o.Server)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	err := enc.Encode(v)
	if err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
