// Package archive stores generated report documents in S3-compatible object
// storage.
package archive

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"
)

// Archive receives finished report documents.
type Archive interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
}

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
}

// Enabled reports whether an endpoint was configured at all.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.Endpoint) != ""
}

func (c Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Endpoint) == "" {
		missing = append(missing, "endpoint")
	}
	if strings.TrimSpace(c.AccessKey) == "" {
		missing = append(missing, "access key")
	}
	if strings.TrimSpace(c.SecretKey) == "" {
		missing = append(missing, "secret key")
	}
	if strings.TrimSpace(c.Bucket) == "" {
		missing = append(missing, "bucket")
	}
	if len(missing) > 0 {
		return fmt.Errorf("archive config missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// Key is the object key of a report: reports/<company>/<yyyy>/<mm>/<report>.txt
func Key(companyID, reportID string, generatedAt time.Time) string {
	t := generatedAt.UTC()
	return path.Join("reports", companyID, t.Format("2006"), t.Format("01"), reportID+".txt")
}

// Memory keeps archived objects in process.
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

var _ Archive = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

// FailWith makes every later Put return err.
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *Memory) Put(_ context.Context, key string, body []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if key == "" {
		return errors.New("empty object key")
	}
	m.objects[key] = append([]byte(nil), body...)
	return nil
}

// Object returns the stored body for key.
func (m *Memory) Object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	return b, ok
}
