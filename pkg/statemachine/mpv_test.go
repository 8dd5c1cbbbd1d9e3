// SPDX-License-Identifier: GPL-2.0-or-later

package statemachine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"gcast/config"
	"gcast/pkg/front"
	"gcast/pkg/gatekeeper"
	"gcast/pkg/mpv"
	"gcast/pkg/protocol"
)

// No Go libmpv cgo binding exists to fake nativeHandle from outside
// pkg/mpv, so these only exercise the routing this package owns: root
// validation, path construction, and error surfacing when the native
// seam itself can't be built. pkg/mpv's own suite covers Handle's event
// loop once a native handle exists.

func TestMpvFileStateRejectsOutOfRangeRoot(t *testing.T) {
	from := make(chan protocol.Message)
	to := make(chan protocol.Message, 1)
	ctrl := gatekeeper.New(from, to, nil)
	deps := &Deps{Config: &config.Config{RootDirs: []string{"/movies"}}, NewNative: mpv.UnimplementedNative}

	err := mpvFileState(context.Background(), ctrl, deps, protocol.MpvStart{Kind: protocol.MpvStartFile, Root: 5, Path: "a.mkv"})

	var j *jump
	require.True(t, errors.As(err, &j))
	require.Equal(t, jumpKindUserError, j.kind)
}

func TestMpvFileStateSurfacesNativeUnavailable(t *testing.T) {
	from := make(chan protocol.Message)
	to := make(chan protocol.Message, 1)
	ctrl := gatekeeper.New(from, to, nil)
	deps := &Deps{Config: &config.Config{RootDirs: []string{"/movies"}}, NewNative: mpv.UnimplementedNative}

	err := mpvFileState(context.Background(), ctrl, deps, protocol.MpvStart{Kind: protocol.MpvStartFile, Root: 0, Path: "a.mkv"})

	var j *jump
	require.True(t, errors.As(err, &j))
	require.Equal(t, jumpKindUserError, j.kind)
	require.Contains(t, j.body, mpv.ErrNativeUnavailable.Error())

	first := <-to
	require.Equal(t, front.Mpv(front.Load), first.ToClient)
}

func TestMpvURLStateSurfacesNativeUnavailable(t *testing.T) {
	from := make(chan protocol.Message)
	to := make(chan protocol.Message, 1)
	ctrl := gatekeeper.New(from, to, nil)
	deps := &Deps{Config: &config.Config{RootDirs: []string{"/movies"}}, NewNative: mpv.UnimplementedNative}

	err := mpvURLState(context.Background(), ctrl, deps, protocol.MpvStart{Kind: protocol.MpvStartURL, URL: "http://example.test/video"})

	var j *jump
	require.True(t, errors.As(err, &j))
	require.Equal(t, jumpKindUserError, j.kind)
	require.Contains(t, j.body, mpv.ErrNativeUnavailable.Error())
}
