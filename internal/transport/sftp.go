package transport

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

type sftpTransport struct {
	conn   *ssh.Client
	client *sftp.Client
}

func dialSFTP(cfg Config) (Transport, error) {
	sshCfg := &ssh.ClientConfig{
		User: cfg.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(cfg.Password),
		},
		// EDGE file servers are provisioned ad hoc; host keys are not
		// distributed alongside the credentials.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         30 * time.Second,
	}

	conn, err := ssh.Dial("tcp", cfg.Addr(), sshCfg)
	if err != nil {
		return nil, fmt.Errorf("sftp login failed: %w", err)
	}

	client, err := sftp.NewClient(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("sftp session failed: %w", err)
	}

	return &sftpTransport{conn: conn, client: client}, nil
}

func (t *sftpTransport) List(path string) (map[string]FileInfo, error) {
	entries, err := t.client.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", path, err)
	}

	items := make(map[string]FileInfo, len(entries))
	for _, e := range entries {
		items[e.Name()] = FileInfo{
			Name:    e.Name(),
			Size:    e.Size(),
			ModTime: e.ModTime(),
			IsDir:   e.IsDir(),
		}
	}
	return items, nil
}

func (t *sftpTransport) Read(path string) ([]byte, error) {
	f, err := t.client.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func (t *sftpTransport) Write(path string, data []byte) error {
	f, err := t.client.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (t *sftpTransport) Exists(path string) (bool, error) {
	_, err := t.client.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (t *sftpTransport) Close() error {
	t.client.Close()
	return t.conn.Close()
}
