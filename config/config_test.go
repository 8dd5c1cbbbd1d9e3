// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const validTOML = `
root_dirs = ["/media/movies", "/media/shows"]
port = 9001
poweroff_exe = "/usr/sbin/poweroff"
refresh_cache_boot = true

[spotify]
executable = "/usr/bin/spotify"
fullscreen_exe = "/usr/local/bin/spotify-fullscreen"
`

func TestParseValidConfig(t *testing.T) {
	c, err := Parse([]byte(validTOML))
	require.NoError(t, err)
	require.Equal(t, []string{"/media/movies", "/media/shows"}, c.RootDirs)
	require.Equal(t, 9001, c.Port)
	require.True(t, c.RefreshCacheBoot)
	require.Equal(t, "/usr/bin/spotify", c.Spotify.Executable)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte(validTOML + "\nbogus_key = true\n"))
	require.Error(t, err)
}

func TestParseRejectsRelativeRootDir(t *testing.T) {
	bad := `
root_dirs = ["media/movies"]
port = 9001
poweroff_exe = "/usr/sbin/poweroff"
[spotify]
executable = "/usr/bin/spotify"
fullscreen_exe = "/usr/local/bin/spotify-fullscreen"
`
	_, err := Parse([]byte(bad))
	require.Error(t, err)
}

func TestParseRejectsMissingRootDirs(t *testing.T) {
	bad := `
root_dirs = []
port = 9001
poweroff_exe = "/usr/sbin/poweroff"
[spotify]
executable = "/usr/bin/spotify"
fullscreen_exe = "/usr/local/bin/spotify-fullscreen"
`
	_, err := Parse([]byte(bad))
	require.Error(t, err)
}

func TestParseRejectsPortOutOfRange(t *testing.T) {
	bad := `
root_dirs = ["/media"]
port = 0
poweroff_exe = "/usr/sbin/poweroff"
[spotify]
executable = "/usr/bin/spotify"
fullscreen_exe = "/usr/local/bin/spotify-fullscreen"
`
	_, err := Parse([]byte(bad))
	require.Error(t, err)
}
