package schemas

import "embed"

// SchemasFS содержит JSON-схемы внешнего каталога и файла избранного.
//
//go:embed catalog/*.json favorites/*.json
var SchemasFS embed.FS
