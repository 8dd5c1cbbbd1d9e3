// SPDX-License-Identifier: GPL-2.0-or-later

package mpv

import "errors"

// ErrNativeUnavailable is returned by every Handle built with
// UnimplementedNative.
var ErrNativeUnavailable = errors.New("mpv: no native libmpv binding linked into this build")

// UnimplementedNative is the default NewNativeFunc: this build carries
// the façade above the nativeHandle seam but no cgo binding behind it.
// A real deployment links one in behind a build tag and wires that
// constructor in instead.
func UnimplementedNative() (nativeHandle, error) {
	return nil, ErrNativeUnavailable
}
