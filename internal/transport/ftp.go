package transport

import (
	"bytes"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"time"

	"github.com/jlaffaye/ftp"
)

type ftpTransport struct {
	conn *ftp.ServerConn
}

func dialFTP(cfg Config) (Transport, error) {
	conn, err := ftp.Dial(cfg.Addr(),
		ftp.DialWithTimeout(30*time.Second),
		ftp.DialWithExplicitTLS(&tls.Config{ServerName: cfg.Host}),
	)
	if err != nil {
		return nil, fmt.Errorf("ftp connection to host failed: %w", err)
	}

	if err := conn.Login(cfg.Username, cfg.Password); err != nil {
		conn.Quit()
		return nil, fmt.Errorf("ftp login failed: %w", err)
	}

	return &ftpTransport{conn: conn}, nil
}

func (t *ftpTransport) List(path string) (map[string]FileInfo, error) {
	entries, err := t.conn.List(path)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", path, err)
	}

	items := make(map[string]FileInfo, len(entries))
	for _, e := range entries {
		if e.Name == "." || e.Name == ".." {
			continue
		}
		items[e.Name] = FileInfo{
			Name:    e.Name,
			Size:    int64(e.Size),
			ModTime: e.Time,
			IsDir:   e.Type == ftp.EntryTypeFolder,
		}
	}
	return items, nil
}

func (t *ftpTransport) Read(path string) ([]byte, error) {
	resp, err := t.conn.Retr(path)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve %s: %w", path, err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func (t *ftpTransport) Write(path string, data []byte) error {
	if err := t.conn.Stor(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to store %s: %w", path, err)
	}
	return nil
}

func (t *ftpTransport) Exists(path string) (bool, error) {
	_, err := t.conn.FileSize(path)
	if err == nil {
		return true, nil
	}
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		return false, nil
	}
	// Fall back to a directory probe for servers without SIZE support.
	if _, listErr := t.conn.List(path); listErr == nil {
		return true, nil
	}
	return false, nil
}

func (t *ftpTransport) Close() error {
	return t.conn.Quit()
}
