package session

import (
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrdwe/floodfile/pkg/channel"
	"github.com/jrdwe/floodfile/pkg/payload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func macFor(b byte) net.HardwareAddr {
	return net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, b}
}

// newPeerPair wires two sessions together on an in-memory loopback medium
// and starts both loops, returning a cleanup func.
func newPeerPair(t *testing.T, storageA, storageB string) (a, b *Session, cleanup func()) {
	t.Helper()
	chA, chB := channel.NewLoopbackPair("peerA", macFor(0xA), "peerB", macFor(0xB))
	require.NoError(t, chA.SetPath(storageA))
	require.NoError(t, chB.SetPath(storageB))

	a = New(chA, nil)
	b = New(chB, nil)

	go a.Run()
	go b.Run()

	return a, b, func() {
		a.Close()
		b.Close()
	}
}

func waitForEvent(t *testing.T, events <-chan Event, timeout time.Duration) Event {
	t.Helper()
	select {
	case e := <-events:
		return e
	case <-time.After(timeout):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func assertNoEvent(t *testing.T, events <-chan Event, window time.Duration) {
	t.Helper()
	select {
	case e := <-events:
		t.Fatalf("expected no event, got %#v", e)
	case <-time.After(window):
	}
}

// S1 — Advertise round-trip.
func TestAdvertiseRoundTrip(t *testing.T) {
	a, b, cleanup := newPeerPair(t, t.TempDir(), t.TempDir())
	defer cleanup()

	a.Send(AdvertiseFile{Path: "/tmp/a.txt"})

	evt := waitForEvent(t, b.Events(), 2*time.Second)
	newFile, ok := evt.(NewFile)
	require.True(t, ok)
	assert.Equal(t, "/tmp/a.txt", newFile.Path)
}

// S2 — Request/transfer with small payload.
func TestRequestTransferSmallPayload(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(filePath, []byte("hello"), 0o644))

	storageB := t.TempDir()
	a, b, cleanup := newPeerPair(t, dir, storageB)
	defer cleanup()

	a.Send(AdvertiseFile{Path: filePath})
	waitForEvent(t, b.Events(), 2*time.Second)

	b.Send(RequestFile{Path: filePath})

	evt := waitForEvent(t, b.Events(), 2*time.Second)
	alert, ok := evt.(AlertUser)
	require.True(t, ok)
	assert.Contains(t, alert.Text, "saved:")

	saved, err := os.ReadFile(filepath.Join(storageB, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(saved))
}

// S3 — Unsolicited file is ignored. A File payload is handed directly to
// the dispatch logic (bypassing advertise/request) to simulate a peer
// fabricating a transfer the session never asked for.
func TestUnsolicitedFileIgnored(t *testing.T) {
	storageB := t.TempDir()
	chA, chB := channel.NewLoopbackPair("peerA", macFor(0xA), "peerB", macFor(0xB))
	require.NoError(t, chB.SetPath(storageB))
	b := New(chB, nil)

	hash, err := payload.ComputeFileHash("/tmp/x")
	require.NoError(t, err)
	b.shared[hash] = "/tmp/x"

	b.handleIncomingFile(payload.File{Hash: hash, Data: []byte("x")})

	entries, err := os.ReadDir(storageB)
	require.NoError(t, err)
	assert.Empty(t, entries)

	chA.Close()
	chB.Close()
}

// S4 — Duplicate advertise.
func TestDuplicateAdvertiseDeduplicates(t *testing.T) {
	a, b, cleanup := newPeerPair(t, t.TempDir(), t.TempDir())
	defer cleanup()

	a.Send(AdvertiseFile{Path: "/tmp/a.txt"})
	a.Send(AdvertiseFile{Path: "/tmp/a.txt"})
	a.Send(AdvertiseFile{Path: "/tmp/a.txt"})

	waitForEvent(t, b.Events(), 2*time.Second)
	assertNoEvent(t, b.Events(), 300*time.Millisecond)
}

// S6 — Interface switch clears view.
func TestChangeInterfaceResetsState(t *testing.T) {
	chA, chB := channel.NewLoopbackPair("peerA", macFor(0xA), "peerB", macFor(0xB))
	defer chA.Close()

	opened := false
	opener := func(name string) (*channel.Channel, error) {
		opened = true
		newCh, _ := channel.NewLoopbackPair(name, macFor(0xC), "dangling", macFor(0xD))
		return newCh, nil
	}

	b := New(chB, opener)

	hash, err := payload.ComputeFileHash("/tmp/a.txt")
	require.NoError(t, err)
	b.shared[hash] = "/tmp/a.txt"
	b.requested[hash] = struct{}{}
	b.sharing[hash] = "/tmp/mine.txt"

	b.handleChangeInterface("other-interface")

	assert.True(t, opened)
	assert.Empty(t, b.shared)
	assert.Empty(t, b.sharing)
	assert.Empty(t, b.requested)

	b.ch.Close()
}

// Invariant 7 restated: requesting the file again after the switch, with
// no new advertise, must not produce a saved file (the hash is gone from
// `shared`).
func TestRequestAfterInterfaceSwitchYieldsNoSave(t *testing.T) {
	storage := t.TempDir()
	chB, scratch := channel.NewLoopbackPair("peerB", macFor(0xB), "scratch", macFor(0xE))
	defer scratch.Close()
	require.NoError(t, chB.SetPath(storage))

	b := New(chB, nil)

	hash, err := payload.ComputeFileHash("/tmp/a.txt")
	require.NoError(t, err)
	b.shared[hash] = "/tmp/a.txt"

	opener := func(name string) (*channel.Channel, error) {
		newCh, _ := channel.NewLoopbackPair(name, macFor(0xF), "dangling2", macFor(0x10))
		return newCh, nil
	}
	b.openInterface = opener
	b.handleChangeInterface("fresh")
	defer b.ch.Close()

	b.handleRequestFile("/tmp/a.txt")

	b.handleIncomingFile(payload.File{Hash: hash, Data: []byte("hello")})

	entries, err := os.ReadDir(storage)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
