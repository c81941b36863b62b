// Package migrations embeds the trips and stops schema migrations so goose
// can apply them programmatically at server startup and in integration tests.
package migrations

import "embed"

// FS contains every *.sql migration compiled into the binary. Hand it to
// goose.UpFS so deployments never depend on a migrations directory on disk.
//
//go:embed *.sql
var FS embed.FS
