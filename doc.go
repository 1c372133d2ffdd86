// Copyright 2026 The Subocean Project Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

/*
Package usbl is the top-level package of the usbl module, an Ultra-Short
Baseline acoustic positioning engine. See cmd/usblrx for the receive-mode
binary, cmd/usbltx for the transmit-mode binary, and internal/supervisor
for how the receive-mode pipeline's workers are wired together.
*/
package usbl
