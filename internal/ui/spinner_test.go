package ui

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerDrawsLatestMessage(t *testing.T) {
	out := &syncBuffer{}
	s := NewSpinner(out)
	s.interval = time.Millisecond

	s.Start("Descarc anunțul...")
	s.Update("Salvez anunțul...")
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Salvez anunțul...")
	}, time.Second, time.Millisecond)

	s.Println("ok 7054112233")
	s.Stop()
	require.Contains(t, out.String(), "ok 7054112233\n")
	require.True(t, strings.HasSuffix(out.String(), "\r\033[K"))

	// nothing is drawn after Stop returns
	n := len(out.String())
	time.Sleep(5 * time.Millisecond)
	require.Len(t, out.String(), n)
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	out := &syncBuffer{}
	s := NewSpinner(out)
	s.Stop()
	require.Empty(t, out.String())

	s.Start("a")
	s.Start("b")
	s.Stop()
	s.Stop()
}
