package common

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/kvapp/lib/db"
	"github.com/go-playground/validator/v10"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Defaults
// --------------------------------------------------------------------------

const (
	ServiceName = "kvapp"

	DefaultConfigFile      = "cfg-kvapp.json"
	DefaultDatabaseName    = "db"
	DefaultDatabaseDir     = "db.kv"
	DefaultBindAddr        = "127.0.0.1"
	DefaultBindPort        = 8080
	DefaultEngine          = db.ImplBadger
	DefaultMaxValueBytes   = 32 << 20
	DefaultShutdownTimeout = 10 * time.Second
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultLogLevel        = "info"
)

// --------------------------------------------------------------------------
// Server configuration structs
// --------------------------------------------------------------------------

// DatabaseConfig is one configured database: the name it is served under,
// the directory the engine keeps its files in and the engine kind.
type DatabaseConfig struct {
	Name   string            `mapstructure:"name" json:"name" validate:"required,dbname"`
	Path   string            `mapstructure:"path" json:"path" validate:"required_unless=Engine memory"`
	Engine db.Implementation `mapstructure:"engine" json:"engine,omitempty" validate:"omitempty,engine"`
}

// ServerConfig holds all configuration parameters of the HTTP server.
type ServerConfig struct {
	// Databases in configuration order
	Databases []DatabaseConfig `validate:"required,min=1,unique=Name,dive"`

	// Listener settings. Endpoint overrides BindAddr/BindPort and may be a
	// unix socket path.
	BindAddr string
	BindPort int `validate:"min=1,max=65535"`
	Endpoint string

	// Request handling
	MaxValueBytes   int64         `validate:"min=0"`
	ReadTimeout     time.Duration `validate:"min=0"`
	WriteTimeout    time.Duration `validate:"min=0"`
	IdleTimeout     time.Duration `validate:"min=0"`
	ShutdownTimeout time.Duration `validate:"min=0"`

	// Logging configuration
	LogLevel string `validate:"oneof=debug info warn warning error"`
}

// ListenAddress returns the address the listener binds to.
func (c *ServerConfig) ListenAddress() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return net.JoinHostPort(c.BindAddr, strconv.Itoa(c.BindPort))
}

// IsUnixSocket reports whether the endpoint is a unix socket path.
func (c *ServerConfig) IsUnixSocket() bool {
	return c.Endpoint != "" && !strings.Contains(c.Endpoint, ":")
}

// ApplyDefaults fills in zero values with the defaults.
func (c *ServerConfig) ApplyDefaults() {
	if c.BindAddr == "" {
		c.BindAddr = DefaultBindAddr
	}
	if c.BindPort == 0 {
		c.BindPort = DefaultBindPort
	}
	if c.MaxValueBytes == 0 {
		c.MaxValueBytes = DefaultMaxValueBytes
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = DefaultIdleTimeout
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	for i := range c.Databases {
		if c.Databases[i].Engine == "" {
			c.Databases[i].Engine = DefaultEngine
		}
	}
}

// --------------------------------------------------------------------------
// Validation
// --------------------------------------------------------------------------

// dbNamePattern admits the RFC 3986 unreserved characters, so a name never
// needs escaping inside a URI path segment.
var dbNamePattern = regexp.MustCompile(`^[A-Za-z0-9._~-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("dbname", func(fl validator.FieldLevel) bool {
		return ValidDatabaseName(fl.Field().String())
	})
	_ = v.RegisterValidation("engine", func(fl validator.FieldLevel) bool {
		return db.Implementation(fl.Field().String()).Valid()
	})
	return v
}

// ValidDatabaseName reports whether name can be served under /api/{name}/.
func ValidDatabaseName(name string) bool {
	return name != "." && name != ".." && dbNamePattern.MatchString(name)
}

// Validate checks the configuration and returns a readable error for the first problem per field.
func (c *ServerConfig) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return err
	}

	msgs := make([]string, 0, len(vErrs))
	for _, fe := range vErrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "ServerConfig.")
	switch fe.Tag() {
	case "required", "required_unless":
		return fmt.Sprintf("%s is required", field)
	case "dbname":
		return fmt.Sprintf("%s %q is not a valid database name (allowed: letters, digits, '.', '_', '~', '-')", field, fe.Value())
	case "engine":
		return fmt.Sprintf("%s %q is not a known engine (expected one of: %v)", field, fe.Value(), db.Implementations)
	case "unique":
		return fmt.Sprintf("%s contain duplicate names", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// --------------------------------------------------------------------------
// Formatting
// --------------------------------------------------------------------------

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("HTTP Server")
	addField("Endpoint", c.ListenAddress())
	addField("Max Value Size", fmt.Sprintf("%d bytes", c.MaxValueBytes))
	addField("Read Timeout", c.ReadTimeout.String())
	addField("Write Timeout", c.WriteTimeout.String())
	addField("Idle Timeout", c.IdleTimeout.String())
	addField("Shutdown Timeout", c.ShutdownTimeout.String())

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	addSection("Databases")
	for _, d := range c.Databases {
		if d.Engine == db.ImplMemory {
			addField(d.Name, string(d.Engine))
		} else {
			addField(d.Name, fmt.Sprintf("%s (%s)", d.Path, d.Engine))
		}
	}

	return sb.String()
}

// --------------------------------------------------------------------------
// Client configuration struct
// --------------------------------------------------------------------------

type ClientConfig struct {
	Endpoints     []string
	TimeoutSecond int
	RetryCount    int
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	sb.WriteString("\nCLIENT CONFIGURATION\n")
	sb.WriteString(fmt.Sprintf("  %-22s: %d sec\n", "Timeout", c.TimeoutSecond))
	sb.WriteString(fmt.Sprintf("  %-22s: %d\n", "Retry Count", c.RetryCount))

	sb.WriteString("\nENDPOINTS\n")
	for i, endpoint := range c.Endpoints {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", strconv.Itoa(i), endpoint))
	}

	return sb.String()
}
