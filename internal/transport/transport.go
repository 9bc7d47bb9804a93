package transport

import (
	"fmt"
	"strings"
	"time"
)

// Config carries the full set of credentials for one connection. It is
// passed by value everywhere a connection is opened, so testing a candidate
// connection or resuming a job started under different settings never
// touches shared state.
type Config struct {
	Kind     string `json:"kind"` // "sftp" or "ftp"
	Host     string `json:"host"`
	Username string `json:"username"`
	Password string `json:"password"`
	Port     int    `json:"port"`
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c Config) Validate() error {
	if c.Host == "" || c.Username == "" || c.Password == "" {
		return fmt.Errorf("missing connection credentials")
	}
	switch c.Kind {
	case "sftp", "ftp":
		return nil
	default:
		return fmt.Errorf("unknown connection type %q", c.Kind)
	}
}

type FileInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// Transport is the file-exchange surface the sync engine needs from the
// remote EDGE server. Implementations are selected once at dial time.
type Transport interface {
	List(path string) (map[string]FileInfo, error)
	Read(path string) ([]byte, error)
	Write(path string, data []byte) error
	Exists(path string) (bool, error)
	Close() error
}

// Dialer opens a Transport for a Config. The engine takes a Dialer so
// tests can substitute an in-memory server.
type Dialer func(cfg Config) (Transport, error)

// Dial connects with the protocol named in cfg.Kind.
func Dial(cfg Config) (Transport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Kind == "ftp" {
		return dialFTP(cfg)
	}
	return dialSFTP(cfg)
}

// InboxPath derives the EDGE inbox directory from the configured base folder.
func InboxPath(base string) string {
	return strings.TrimRight(base, "/") + "/Inbox"
}

// OutboxPath derives the EDGE outbox directory from the configured base folder.
func OutboxPath(base string) string {
	return strings.TrimRight(base, "/") + "/Outbox"
}
