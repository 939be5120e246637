package notify

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/hazyhaar/orgwatch/internal/snapshot"
)

// Stdout writes reports as JSON lines, one object per cycle. Useful
// for dry runs and for piping into other tooling.
type Stdout struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewStdout creates a sink writing to w. If w is nil, os.Stdout is
// used.
func NewStdout(w io.Writer) *Stdout {
	if w == nil {
		w = os.Stdout
	}
	return &Stdout{enc: json.NewEncoder(w)}
}

func (s *Stdout) Notify(_ context.Context, report snapshot.ChangeSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(report)
}

func (s *Stdout) Close() error { return nil }
