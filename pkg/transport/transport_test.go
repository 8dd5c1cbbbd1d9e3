// SPDX-License-Identifier: GPL-2.0-or-later

package transport

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"gcast/pkg/front"
	"gcast/pkg/gatekeeper"
	"gcast/pkg/protocol"
)

func dialTestServer(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(strings.Replace(url, "http://", "ws://", 1), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestServerBridgesConnectionToHandle(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv := NewServer("", nil)

	handled := make(chan struct{})
	handle := func(ctx context.Context, from gatekeeper.Receiver, to gatekeeper.Sender) error {
		defer close(handled)

		msg, ok := <-from
		require.True(t, ok)
		require.Equal(t, protocol.TSPowerCtrl, msg.ToServer.Kind)

		to <- protocol.ToClientMessage(0, front.Mpv(front.Load))
		return nil
	}

	ts := httptest.NewServer(srv.handler(handle))
	defer ts.Close()

	conn := dialTestServer(t, ts.URL)

	in := protocol.ToServerMessage(0, protocol.ToServer{Kind: protocol.TSPowerCtrl, PowerCtrl: protocol.PowerCtrlPoweroff})
	require.NoError(t, encodeTo(conn, in))

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	got, err := decodeFrom(data)
	require.NoError(t, err)
	require.Equal(t, front.Mpv(front.Load), got.ToClient)

	select {
	case <-handled:
	case <-time.After(time.Second):
		t.Fatal("handle did not return")
	}
}

func TestServerRejectsASecondConcurrentConnection(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv := NewServer("", nil)

	block := make(chan struct{})
	handle := func(ctx context.Context, from gatekeeper.Receiver, to gatekeeper.Sender) error {
		<-block
		return nil
	}

	ts := httptest.NewServer(srv.handler(handle))
	defer ts.Close()

	_ = dialTestServer(t, ts.URL)
	time.Sleep(20 * time.Millisecond) // let the handler goroutine mark the server busy

	resp, err := http.Get(ts.URL) //nolint:noctx
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	close(block)
}

func encodeTo(conn *websocket.Conn, m protocol.Message) error {
	var buf bytes.Buffer
	if err := protocol.Encode(&buf, m); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.BinaryMessage, buf.Bytes())
}

func decodeFrom(data []byte) (protocol.Message, error) {
	return protocol.Decode(bytes.NewReader(data))
}
