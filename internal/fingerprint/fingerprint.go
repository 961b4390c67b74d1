// Package fingerprint produces the machine fingerprint a license provider
// binds a license to.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/dmitrijs2005/botadmin/internal/filex"
)

const DefaultOutputFile = "machine_request.json"

// Identifier is one named machine identifier. Order matters for the hash.
type Identifier struct {
	Name  string
	Value string
}

// Source reads the value of an identifier; "" means unavailable.
type Source struct {
	Name string
	Read func() string
}

// LinuxSources are the stable identifiers read on Linux: the hardware UUID
// and the OS machine id.
var LinuxSources = []Source{
	{Name: "product_uuid", Read: func() string { return filex.ReadTrimmed("/sys/class/dmi/id/product_uuid") }},
	{Name: "machine_id", Read: func() string { return filex.ReadTrimmed("/etc/machine-id") }},
}

// DefaultSources returns the identifier sources for the running OS.
func DefaultSources() []Source {
	if runtime.GOOS == "linux" {
		return LinuxSources
	}
	return nil
}

// Collect reads every source and drops the empty ones.
func Collect(sources []Source) []Identifier {
	ids := make([]Identifier, 0, len(sources))
	for _, s := range sources {
		if v := s.Read(); v != "" {
			ids = append(ids, Identifier{Name: s.Name, Value: v})
		}
	}
	return ids
}

// Hash joins the identifiers as name=value with "|" and returns the hex
// SHA-256 of the result.
func Hash(ids []Identifier) string {
	items := make([]string, len(ids))
	for i, id := range ids {
		items[i] = id.Name + "=" + id.Value
	}
	sum := sha256.Sum256([]byte(strings.Join(items, "|")))
	return hex.EncodeToString(sum[:])
}

// Request is the file sent to the license provider.
type Request struct {
	Fingerprint string `json:"fingerprint"`
	GeneratedAt string `json:"generated_at"`
}

func NewRequest(ids []Identifier, now time.Time) Request {
	return Request{Fingerprint: Hash(ids), GeneratedAt: timestamp(now)}
}

// timestamp renders now in UTC with microseconds, omitted when zero.
func timestamp(now time.Time) string {
	now = now.UTC()
	layout := "2006-01-02T15:04:05"
	if now.Nanosecond()/1000 != 0 {
		layout += ".000000"
	}
	return now.Format(layout) + "Z"
}

// WriteRequest writes r as indented JSON to path.
func WriteRequest(path string, r Request) error {
	data, err := json.MarshalIndent(r, "", "    ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
